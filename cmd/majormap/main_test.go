// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackinmonster/MajorMap/internal/graph"
	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCatalogURL, cfg.Catalog.BaseURL)
	assert.Equal(t, 1, cfg.Catalog.FirstPage)
	assert.Equal(t, 37, cfg.Catalog.LastPage)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, time.Second, cfg.Catalog.RequestDelay)
	assert.Equal(t, defaultUserAgent, cfg.Catalog.UserAgent)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, types.DefaultProgramsURL, cfg.Catalog.ProgramsURL)
	assert.Equal(t, filepath.Join("catalog", "programs"), cfg.Catalog.ProgramsDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("catalog.last_page", 3)
	v.Set("catalog.timeout", "5s")
	v.Set("store.data_dir", "/tmp/mm")

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Catalog.LastPage)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "/tmp/mm", cfg.Store.DataDir)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"reversed range", "catalog.first_page", 40},
		{"zero first page", "catalog.first_page", 0},
		{"url without page", "catalog.base_url", "https://example.edu/catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set(tt.key, tt.val)
			_, err := loadConfig(v)
			assert.Error(t, err)
		})
	}
}

func testRegistry(t *testing.T, codes ...string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, c := range codes {
		k, ok := types.ParseCourseKey(c)
		require.True(t, ok, c)
		_, err := reg.Register(k.Subject, k.Number, types.CourseAttributes{})
		require.NoError(t, err)
	}
	return reg
}

func TestWriteRequisites(t *testing.T) {
	reg := testRegistry(t, "MATH 2241", "MATH 1242", "MATH 1120", "MATH 1241", "STAT 1220", "STAT 1222")
	one, two := int64(1), int64(2)
	reqs := []graph.Requisite{
		{RelatedID: 4, ChoiceGroup: &one},
		{RelatedID: 5, ChoiceGroup: &two},
		{RelatedID: 2},
		{RelatedID: 3, ChoiceGroup: &one},
		{RelatedID: 6, ChoiceGroup: &two},
	}

	var buf bytes.Buffer
	writeRequisites(&buf, reg, reqs)
	assert.Equal(t, "MATH 1242\none of: MATH 1120, MATH 1241\none of: STAT 1220, STAT 1222\n", buf.String())

	buf.Reset()
	writeRequisites(&buf, reg, nil)
	assert.Equal(t, "None.\n", buf.String())
}

func TestWriteCycles(t *testing.T) {
	reg := testRegistry(t, "CHEM 1251", "CHEM 1252")
	g := graph.New()
	g.Insert(
		types.Relationship{TargetID: 1, RelatedID: 2, Type: types.Prerequisite},
		types.Relationship{TargetID: 2, RelatedID: 1, Type: types.Prerequisite},
	)

	var buf bytes.Buffer
	writeCycles(&buf, reg, g.DetectCycles())
	assert.Equal(t, "CHEM 1251 -> CHEM 1252 -> CHEM 1251\n\n1 cycle(s)\n", buf.String())

	buf.Reset()
	writeCycles(&buf, reg, nil)
	assert.Equal(t, "No cycles.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"MATH 1241", 40, "MATH 1241"},
		{"abcdefghij", 8, "abcde..."},
		{"Français é è à ç ü ö", 10, "Françai..."},
		{"ééééééééééé", 6, "ééé..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), got)
	}
}

func TestWriteCourseList(t *testing.T) {
	reg := testRegistry(t, "PHYS 2101", "MATH 1241")
	var buf bytes.Buffer
	writeCourseList(&buf, reg, []types.CourseID{1, 2, 9})
	assert.Equal(t, "#9\nMATH 1241\nPHYS 2101\n", buf.String())
}

func samplePrograms() []types.Program {
	return []types.Program{
		{
			Name: "Computer Science, B.S.",
			Categories: []types.Category{
				{Name: "Major Courses (6 Credit Hours)", Courses: []types.CourseKey{
					{Subject: "ITSC", Number: "1212"}, {Subject: "ITSC", Number: "1213"},
				}},
				{Name: "Free Electives (3 Credit Hours)"},
			},
		},
		{Name: "Mathematics, B.S."},
	}
}

func TestMatchPrograms(t *testing.T) {
	got := matchPrograms(samplePrograms(), "computer")
	require.Len(t, got, 1)
	assert.Equal(t, "Computer Science, B.S.", got[0].Name)

	assert.Len(t, matchPrograms(samplePrograms(), "B.S."), 2)
	assert.Empty(t, matchPrograms(samplePrograms(), "history"))
}

func TestWriteProgramDetails(t *testing.T) {
	var buf bytes.Buffer
	writeProgramDetails(&buf, samplePrograms()[:1])
	assert.Equal(t, "Computer Science, B.S.\n"+
		"  Major Courses (6 Credit Hours)\n"+
		"    ITSC 1212, ITSC 1213\n"+
		"  Free Electives (3 Credit Hours)\n", buf.String())
}

func TestWriteProgramList(t *testing.T) {
	var buf bytes.Buffer
	writeProgramList(&buf, samplePrograms())
	assert.Contains(t, buf.String(), "Computer Science, B.S.")
	assert.Contains(t, buf.String(), "  2 categories     2 courses")
	assert.True(t, strings.HasSuffix(buf.String(), "\n2 programs\n"))

	buf.Reset()
	writeProgramList(&buf, nil)
	assert.Equal(t, "No programs. Run fetch --programs, then ingest.\n", buf.String())
}
