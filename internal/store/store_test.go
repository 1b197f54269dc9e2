// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func course(id types.CourseID, subject, number, name string) types.Course {
	return types.Course{
		ID:               id,
		Subject:          subject,
		Number:           number,
		CourseAttributes: types.CourseAttributes{Name: name, Credits: "3"},
	}
}

func group(g int64) *int64 { return &g }

// snapshot: MATH 2241 needs MATH 1242; MATH 1242 needs MATH 1241 or MATH 1120.
func snapshot() ([]types.Course, []types.Relationship, []types.Anomaly) {
	courses := []types.Course{
		course(1, "MATH", "2241", "Calculus III"),
		course(2, "MATH", "1242", "Calculus II"),
		course(3, "MATH", "1241", "Calculus I"),
		course(4, "MATH", "1120", "Calculus"),
	}
	edges := []types.Relationship{
		{TargetID: 1, RelatedID: 2, Type: types.Prerequisite},
		{TargetID: 2, RelatedID: 3, Type: types.Prerequisite, ChoiceGroup: group(1)},
		{TargetID: 2, RelatedID: 4, Type: types.Prerequisite, ChoiceGroup: group(1)},
	}
	anomalies := []types.Anomaly{{
		CourseSubject: "MATH", CourseNumber: "2241",
		Modality: types.Corequisite, RawText: "STAT 9999",
		Reason: types.ReasonUnresolvedCourse, Detail: "STAT 9999",
	}}
	return courses, edges, anomalies
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	courses, edges, anomalies := snapshot()
	sum, err := s.SaveSnapshot(ctx, courses, edges, anomalies)
	require.NoError(t, err)
	assert.Equal(t, SaveSummary{Inserted: 4}, sum)

	reg, err := s.LoadRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
	id, err := reg.Resolve("MATH", "2241")
	require.NoError(t, err)
	assert.Equal(t, types.CourseID(1), id)

	g, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, edges, g.Edges())
	assert.Equal(t, []types.CourseID{2, 3, 4}, g.TransitivePrerequisitesOf(1))

	got, err := s.Anomalies(ctx)
	require.NoError(t, err)
	assert.Equal(t, anomalies, got)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Courses: 4, Relationships: 3, ChoiceGroups: 1, Anomalies: 1}, st)
}

func TestSaveSnapshotKeepsIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	courses, edges, _ := snapshot()
	_, err := s.SaveSnapshot(ctx, courses, edges, nil)
	require.NoError(t, err)

	// A fresh ingestion numbers courses differently and drops MATH 1120.
	second := []types.Course{
		course(1, "MATH", "1241", "Calculus I"),
		course(2, "MATH", "1242", "Calculus II (revised)"),
		course(3, "MATH", "2241", "Calculus III"),
		course(4, "STAT", "1220", "Statistics"),
	}
	secondEdges := []types.Relationship{
		{TargetID: 3, RelatedID: 2, Type: types.Prerequisite},
		{TargetID: 2, RelatedID: 1, Type: types.Prerequisite},
	}
	sum, err := s.SaveSnapshot(ctx, second, secondEdges, nil)
	require.NoError(t, err)
	assert.Equal(t, SaveSummary{Inserted: 1, Updated: 3, Removed: 1}, sum)

	c, err := s.CourseByCode(ctx, "math", "2241")
	require.NoError(t, err)
	assert.Equal(t, types.CourseID(1), c.ID)

	c, err = s.CourseByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Calculus II (revised)", c.Name)

	_, err = s.CourseByCode(ctx, "MATH", "1120")
	require.ErrorIs(t, err, ErrCourseNotFound)

	g, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Relationship{
		{TargetID: 1, RelatedID: 2, Type: types.Prerequisite},
		{TargetID: 2, RelatedID: 3, Type: types.Prerequisite},
	}, g.Edges())

	anomalies, err := s.Anomalies(ctx)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestSaveSnapshotNeverReusesIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveSnapshot(ctx, []types.Course{
		course(1, "MATH", "1241", "Calculus I"),
		course(2, "MATH", "1242", "Calculus II"),
	}, nil, nil)
	require.NoError(t, err)
	removed, err := s.CourseByCode(ctx, "MATH", "1242")
	require.NoError(t, err)

	sum, err := s.SaveSnapshot(ctx, []types.Course{course(1, "MATH", "1241", "Calculus I")}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Removed)

	_, err = s.SaveSnapshot(ctx, []types.Course{
		course(1, "MATH", "1241", "Calculus I"),
		course(2, "CHEM", "1251", "General Chemistry I"),
	}, nil, nil)
	require.NoError(t, err)

	added, err := s.CourseByCode(ctx, "CHEM", "1251")
	require.NoError(t, err)
	assert.NotEqual(t, removed.ID, added.ID)
	assert.Greater(t, added.ID, removed.ID)
}

func TestSaveSnapshotRejectsDanglingEdge(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	courses, _, _ := snapshot()
	_, err := s.SaveSnapshot(ctx, courses, []types.Relationship{
		{TargetID: 1, RelatedID: 99, Type: types.Prerequisite},
	}, nil)
	require.Error(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Courses, "failed snapshot must roll back")
}

func TestCourseByIDNotFound(t *testing.T) {
	_, err := testStore(t).CourseByID(context.Background(), 42)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	courses, edges, anomalies := snapshot()
	_, err := s.SaveSnapshot(ctx, courses, edges, anomalies)
	require.NoError(t, err)

	t.Run("yaml", func(t *testing.T) {
		path, err := s.ExportYAML(ctx)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entries []ExportEntry
		require.NoError(t, yaml.Unmarshal(data, &entries))
		require.Len(t, entries, 4)
		assert.Equal(t, "1120", entries[0].Number)
		assert.Equal(t, "Calculus II", entries[2].Name)
		require.Len(t, entries[2].Requisites, 2)
		assert.Equal(t, "MATH 1241", entries[2].Requisites[0].Course)
		require.NotNil(t, entries[2].Requisites[0].ChoiceGroup)
		assert.Equal(t, int64(1), *entries[2].Requisites[0].ChoiceGroup)
	})

	t.Run("json", func(t *testing.T) {
		path, err := s.ExportJSON(ctx)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entries []map[string]any
		require.NoError(t, json.Unmarshal(data, &entries))
		require.Len(t, entries, 4)
		assert.Equal(t, "MATH", entries[3]["subject"])
		assert.Equal(t, "2241", entries[3]["number"])
		assert.Len(t, entries[3]["requisites"], 1)
	})

	t.Run("csv", func(t *testing.T) {
		paths, err := s.ExportCSV(ctx)
		require.NoError(t, err)
		require.Len(t, paths, 4)
		assert.Equal(t, CategoriesCSVFile, filepath.Base(paths[2]))
		assert.Equal(t, CategoryCoursesCSVFile, filepath.Base(paths[3]))

		f, err := os.Open(paths[1])
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"target_course_id", "related_course_id", "type", "choice_group"}, rows[0])
		assert.Equal(t, []string{"1", "2", "prerequisite", ""}, rows[1])
		assert.Equal(t, []string{"2", "3", "prerequisite", "1"}, rows[2])
	})
}
