// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// SavePrograms replaces the stored programs with programs. Programs are
// matched by name, so a program keeps its id across saves; categories and
// their course lists are rewritten. Only resolved CourseIDs are stored.
func (s *Store) SavePrograms(ctx context.Context, programs []types.Program) (SaveSummary, error) {
	var sum SaveSummary
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM program_categories`); err != nil {
		return sum, fmt.Errorf("clearing categories: %w", err)
	}

	lookup, err := tx.PrepareContext(ctx, `SELECT id FROM programs WHERE name = ?`)
	if err != nil {
		return sum, fmt.Errorf("preparing lookup: %w", err)
	}
	defer lookup.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO programs (name, url) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET url=excluded.url`)
	if err != nil {
		return sum, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	insCategory, err := tx.PrepareContext(ctx,
		`INSERT INTO program_categories (program_id, position, name, credits) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return sum, fmt.Errorf("preparing category insert: %w", err)
	}
	defer insCategory.Close()

	insCourse, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO category_courses (category_id, course_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return sum, fmt.Errorf("preparing category course insert: %w", err)
	}
	defer insCourse.Close()

	keep := make(map[int64]bool, len(programs))
	for _, p := range programs {
		var id int64
		err := lookup.QueryRowContext(ctx, p.Name).Scan(&id)
		existed := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return sum, fmt.Errorf("looking up program %q: %w", p.Name, err)
		}

		res, err := upsert.ExecContext(ctx, p.Name, p.URL)
		if err != nil {
			return sum, fmt.Errorf("upserting program %q: %w", p.Name, err)
		}
		if existed {
			sum.Updated++
		} else {
			if id, err = res.LastInsertId(); err != nil {
				return sum, fmt.Errorf("reading id of program %q: %w", p.Name, err)
			}
			sum.Inserted++
		}
		keep[id] = true

		for pos, cat := range p.Categories {
			res, err := insCategory.ExecContext(ctx, id, pos, cat.Name, cat.Credits)
			if err != nil {
				return sum, fmt.Errorf("inserting category %q of %q: %w", cat.Name, p.Name, err)
			}
			catID, err := res.LastInsertId()
			if err != nil {
				return sum, fmt.Errorf("reading id of category %q: %w", cat.Name, err)
			}
			for i, course := range cat.CourseIDs {
				if _, err := insCourse.ExecContext(ctx, catID, int64(course), i); err != nil {
					return sum, fmt.Errorf("inserting course %d of category %q: %w", course, cat.Name, err)
				}
			}
		}
	}

	removed, err := deleteStale(ctx, tx, "programs", keep)
	if err != nil {
		return sum, err
	}
	sum.Removed = removed

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing programs: %w", err)
	}
	return sum, nil
}

// Programs returns every stored program ordered by name, with categories in
// page order. Category course keys and ids come from the registry tables.
func (s *Store) Programs(ctx context.Context) ([]types.Program, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, url FROM programs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	var programs []types.Program
	index := make(map[types.ProgramID]int)
	for rows.Next() {
		var p types.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.URL); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		index[p.ID] = len(programs)
		programs = append(programs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, program_id, name, credits FROM program_categories ORDER BY program_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	type slot struct{ program, category int }
	categories := make(map[int64]slot)
	for rows.Next() {
		var (
			cat       types.Category
			programID types.ProgramID
		)
		if err := rows.Scan(&cat.ID, &programID, &cat.Name, &cat.Credits); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		pi, ok := index[programID]
		if !ok {
			continue
		}
		categories[cat.ID] = slot{pi, len(programs[pi].Categories)}
		programs[pi].Categories = append(programs[pi].Categories, cat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT cc.category_id, c.id, c.subject, c.number
		 FROM category_courses cc JOIN courses c ON c.id = cc.course_id
		 ORDER BY cc.category_id, cc.position`)
	if err != nil {
		return nil, fmt.Errorf("querying category courses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			catID    int64
			courseID types.CourseID
			key      types.CourseKey
		)
		if err := rows.Scan(&catID, &courseID, &key.Subject, &key.Number); err != nil {
			return nil, fmt.Errorf("scanning category course: %w", err)
		}
		at, ok := categories[catID]
		if !ok {
			continue
		}
		cat := &programs[at.program].Categories[at.category]
		cat.Courses = append(cat.Courses, key)
		cat.CourseIDs = append(cat.CourseIDs, courseID)
	}
	return programs, rows.Err()
}
