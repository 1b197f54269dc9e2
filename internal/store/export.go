// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ExportRequisite is one requirement of an exported course.
type ExportRequisite struct {
	Course      string `json:"course" yaml:"course"`
	Type        string `json:"type" yaml:"type"`
	ChoiceGroup *int64 `json:"choice_group,omitempty" yaml:"choice_group,omitempty"`
}

// ExportEntry holds a course with its direct requirements.
type ExportEntry struct {
	types.Course `yaml:",inline"`
	Requisites   []ExportRequisite `json:"requisites,omitempty" yaml:"requisites,omitempty"`
}

// Export file names written under the data directory.
const (
	ExportYAMLFile         = "export.yaml"
	ExportJSONFile         = "export.json"
	CoursesCSVFile         = "courses.csv"
	RelationshipsCSVFile   = "relationships.csv"
	CategoriesCSVFile      = "major_categories.csv"
	CategoryCoursesCSVFile = "category_courses.csv"
)

// ExportYAML writes every course with its requisites to data_dir/export.yaml
// and returns the path written.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, ExportYAMLFile)
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every course with its requisites to data_dir/export.json
// and returns the path written.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, ExportJSONFile)
	return path, os.WriteFile(path, data, 0o644)
}

// ExportCSV writes the courses, relationships, program categories and
// category course tables as CSV files under data_dir and returns their
// paths in that order.
func (s *Store) ExportCSV(ctx context.Context) ([]string, error) {
	courses, err := s.Courses(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := s.Relationships(ctx)
	if err != nil {
		return nil, err
	}
	programs, err := s.Programs(ctx)
	if err != nil {
		return nil, err
	}

	courseRows := [][]string{{"id", "subject", "number", "name", "credits", "description", "restrictions"}}
	for _, c := range courses {
		courseRows = append(courseRows, []string{
			strconv.FormatInt(int64(c.ID), 10), c.Subject, c.Number,
			c.Name, c.Credits, c.Description, c.Restrictions,
		})
	}

	edgeRows := [][]string{{"target_course_id", "related_course_id", "type", "choice_group"}}
	for _, e := range edges {
		group := ""
		if e.ChoiceGroup != nil {
			group = strconv.FormatInt(*e.ChoiceGroup, 10)
		}
		edgeRows = append(edgeRows, []string{
			strconv.FormatInt(int64(e.TargetID), 10),
			strconv.FormatInt(int64(e.RelatedID), 10),
			string(e.Type), group,
		})
	}

	categoryRows := [][]string{{"major", "category_id", "category_name", "credit_hours"}}
	memberRows := [][]string{{"category_id", "course"}}
	for _, p := range programs {
		for _, cat := range p.Categories {
			id := strconv.FormatInt(cat.ID, 10)
			categoryRows = append(categoryRows, []string{p.Name, id, cat.Name, strconv.Itoa(cat.Credits)})
			for _, k := range cat.Courses {
				memberRows = append(memberRows, []string{id, k.String()})
			}
		}
	}

	paths := []string{
		filepath.Join(s.dataDir, CoursesCSVFile),
		filepath.Join(s.dataDir, RelationshipsCSVFile),
		filepath.Join(s.dataDir, CategoriesCSVFile),
		filepath.Join(s.dataDir, CategoryCoursesCSVFile),
	}
	for i, rows := range [][][]string{courseRows, edgeRows, categoryRows, memberRows} {
		if err := writeCSV(paths[i], rows); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	courses, err := s.Courses(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	edges, err := s.Relationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	codes := make(map[types.CourseID]string, len(courses))
	for _, c := range courses {
		codes[c.ID] = c.Code()
	}
	reqs := make(map[types.CourseID][]ExportRequisite)
	for _, e := range edges {
		reqs[e.TargetID] = append(reqs[e.TargetID], ExportRequisite{
			Course:      codes[e.RelatedID],
			Type:        string(e.Type),
			ChoiceGroup: e.ChoiceGroup,
		})
	}

	entries := make([]ExportEntry, len(courses))
	for i, c := range courses {
		entries[i] = ExportEntry{Course: c, Requisites: reqs[c.ID]}
	}
	return entries, nil
}
