// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the course registry, relationship edges and
// ingestion anomalies in SQLite, and rebuilds the in-memory registry and
// graph from them for queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hackinmonster/MajorMap/internal/graph"
	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

const dbFile = "majormap.db"

// ErrCourseNotFound is returned by lookups for a course that is not stored.
var ErrCourseNotFound = errors.New("course not found")

// Store manages the MajorMap SQLite database. Course ids come from an
// AUTOINCREMENT column, so the id of a removed course is never handed out
// again.
type Store struct {
	db      *sql.DB
	dataDir string
}

// Open opens or creates data_dir/majormap.db and its schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database and exports.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			number TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			credits TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			restrictions TEXT NOT NULL DEFAULT '',
			UNIQUE(subject, number)
		)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target_course_id INTEGER NOT NULL REFERENCES courses(id),
			related_course_id INTEGER NOT NULL REFERENCES courses(id),
			type TEXT NOT NULL,
			choice_group INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_course_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_course_id, type)`,
		`CREATE TABLE IF NOT EXISTS programs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS program_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			program_id INTEGER NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			credits INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS category_courses (
			category_id INTEGER NOT NULL REFERENCES program_categories(id) ON DELETE CASCADE,
			course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			PRIMARY KEY (category_id, course_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_program_categories_program ON program_categories(program_id)`,
		`CREATE INDEX IF NOT EXISTS idx_category_courses_course ON category_courses(course_id)`,
		`CREATE TABLE IF NOT EXISTS anomalies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			course_subject TEXT NOT NULL,
			course_number TEXT NOT NULL,
			modality TEXT NOT NULL,
			raw_text TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSummary holds the course counts of one snapshot save.
type SaveSummary struct {
	Inserted int
	Updated  int
	Removed  int
}

// SaveSnapshot replaces the stored catalog with the result of one ingestion
// pass in a single transaction. Courses are matched by (subject, number) so
// a course keeps its stored id across re-ingestion; edges are rewritten to
// the stored ids. Courses absent from the snapshot are removed, and all
// relationships and anomalies are replaced.
func (s *Store) SaveSnapshot(ctx context.Context, courses []types.Course, edges []types.Relationship, anomalies []types.Anomaly) (SaveSummary, error) {
	var sum SaveSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM relationships`, `DELETE FROM anomalies`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return sum, fmt.Errorf("clearing snapshot: %w", err)
		}
	}

	lookup, err := tx.PrepareContext(ctx, `SELECT id FROM courses WHERE subject = ? AND number = ?`)
	if err != nil {
		return sum, fmt.Errorf("preparing lookup: %w", err)
	}
	defer lookup.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO courses (subject, number, name, credits, description, restrictions)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(subject, number) DO UPDATE SET
			name=excluded.name, credits=excluded.credits,
			description=excluded.description, restrictions=excluded.restrictions`)
	if err != nil {
		return sum, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	// Insert in id order so a fresh database mirrors the registry's ids.
	ordered := append([]types.Course(nil), courses...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	stored := make(map[types.CourseID]types.CourseID, len(ordered))
	keep := make(map[int64]bool, len(ordered))
	for _, c := range ordered {
		var id int64
		err := lookup.QueryRowContext(ctx, c.Subject, c.Number).Scan(&id)
		existed := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return sum, fmt.Errorf("looking up %s: %w", c.Code(), err)
		}

		res, err := upsert.ExecContext(ctx, c.Subject, c.Number, c.Name, c.Credits, c.Description, c.Restrictions)
		if err != nil {
			return sum, fmt.Errorf("upserting %s: %w", c.Code(), err)
		}
		if existed {
			sum.Updated++
		} else {
			if id, err = res.LastInsertId(); err != nil {
				return sum, fmt.Errorf("reading id of %s: %w", c.Code(), err)
			}
			sum.Inserted++
		}
		stored[c.ID] = types.CourseID(id)
		keep[id] = true
	}

	removed, err := deleteStale(ctx, tx, "courses", keep)
	if err != nil {
		return sum, err
	}
	sum.Removed = removed

	insEdge, err := tx.PrepareContext(ctx,
		`INSERT INTO relationships (target_course_id, related_course_id, type, choice_group) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return sum, fmt.Errorf("preparing relationship insert: %w", err)
	}
	defer insEdge.Close()

	for _, e := range edges {
		target, ok1 := stored[e.TargetID]
		related, ok2 := stored[e.RelatedID]
		if !ok1 || !ok2 {
			return sum, fmt.Errorf("edge %d -> %d references a course outside the snapshot", e.TargetID, e.RelatedID)
		}
		var group sql.NullInt64
		if e.ChoiceGroup != nil {
			group = sql.NullInt64{Int64: *e.ChoiceGroup, Valid: true}
		}
		if _, err := insEdge.ExecContext(ctx, int64(target), int64(related), string(e.Type), group); err != nil {
			return sum, fmt.Errorf("inserting relationship: %w", err)
		}
	}

	insAnomaly, err := tx.PrepareContext(ctx,
		`INSERT INTO anomalies (course_subject, course_number, modality, raw_text, reason, detail) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return sum, fmt.Errorf("preparing anomaly insert: %w", err)
	}
	defer insAnomaly.Close()

	for _, a := range anomalies {
		if _, err := insAnomaly.ExecContext(ctx,
			a.CourseSubject, a.CourseNumber, string(a.Modality), a.RawText, string(a.Reason), a.Detail,
		); err != nil {
			return sum, fmt.Errorf("inserting anomaly: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing snapshot: %w", err)
	}
	return sum, nil
}

// deleteStale removes the rows of table whose id is not in keep. table is
// one of the package's own table names.
func deleteStale(ctx context.Context, tx *sql.Tx, table string, keep map[int64]bool) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM `+table)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", table, err)
	}
	var stale []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning %s id: %w", table, err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing %s: %w", table, err)
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("removing %s row %d: %w", table, id, err)
		}
	}
	return len(stale), nil
}

// Courses returns every stored course ordered by subject and number.
func (s *Store) Courses(ctx context.Context) ([]types.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, number, name, credits, description, restrictions
		 FROM courses ORDER BY subject, number`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var out []types.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Relationships returns every stored edge in insertion order.
func (s *Store) Relationships(ctx context.Context) ([]types.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target_course_id, related_course_id, type, choice_group FROM relationships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var out []types.Relationship
	for rows.Next() {
		var (
			target, related int64
			typ             string
			group           sql.NullInt64
		)
		if err := rows.Scan(&target, &related, &typ, &group); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		e := types.Relationship{
			TargetID:  types.CourseID(target),
			RelatedID: types.CourseID(related),
			Type:      types.Modality(typ),
		}
		if group.Valid {
			g := group.Int64
			e.ChoiceGroup = &g
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadRegistry rebuilds a registry holding the stored courses under their
// stored ids.
func (s *Store) LoadRegistry(ctx context.Context) (*registry.Registry, error) {
	courses, err := s.Courses(ctx)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	for _, c := range courses {
		if err := reg.Restore(c); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", c.Code(), err)
		}
	}
	return reg, nil
}

// LoadGraph rebuilds the relationship graph from the stored edges.
func (s *Store) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	edges, err := s.Relationships(ctx)
	if err != nil {
		return nil, err
	}
	g := graph.New()
	g.Insert(edges...)
	return g, nil
}

// CourseByCode returns the course with the given natural key.
func (s *Store) CourseByCode(ctx context.Context, subject, number string) (types.Course, error) {
	key := types.NewCourseKey(subject, number)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, number, name, credits, description, restrictions
		 FROM courses WHERE subject = ? AND number = ?`, key.Subject, key.Number)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, key)
	}
	return c, err
}

// CourseByID returns the course with the given id.
func (s *Store) CourseByID(ctx context.Context, id types.CourseID) (types.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, number, name, credits, description, restrictions
		 FROM courses WHERE id = ?`, int64(id))
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Course{}, fmt.Errorf("%w: id %d", ErrCourseNotFound, id)
	}
	return c, err
}

// Anomalies returns the anomalies of the last saved snapshot in the order
// they were recorded.
func (s *Store) Anomalies(ctx context.Context) ([]types.Anomaly, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_subject, course_number, modality, raw_text, reason, detail FROM anomalies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying anomalies: %w", err)
	}
	defer rows.Close()

	var out []types.Anomaly
	for rows.Next() {
		var a types.Anomaly
		var modality, reason string
		if err := rows.Scan(&a.CourseSubject, &a.CourseNumber, &modality, &a.RawText, &reason, &a.Detail); err != nil {
			return nil, fmt.Errorf("scanning anomaly: %w", err)
		}
		a.Modality = types.Modality(modality)
		a.Reason = types.AnomalyReason(reason)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Stats holds row counts of the stored snapshot.
type Stats struct {
	Courses       int `json:"courses" yaml:"courses"`
	Relationships int `json:"relationships" yaml:"relationships"`
	ChoiceGroups  int `json:"choice_groups" yaml:"choice_groups"`
	Anomalies     int `json:"anomalies" yaml:"anomalies"`
	Programs      int `json:"programs" yaml:"programs"`
	Categories    int `json:"categories" yaml:"categories"`
}

// Stats counts the stored rows.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM courses),
		(SELECT count(*) FROM relationships),
		(SELECT count(DISTINCT choice_group) FROM relationships),
		(SELECT count(*) FROM anomalies),
		(SELECT count(*) FROM programs),
		(SELECT count(*) FROM program_categories)`,
	).Scan(&st.Courses, &st.Relationships, &st.ChoiceGroups, &st.Anomalies, &st.Programs, &st.Categories)
	if err != nil {
		return Stats{}, fmt.Errorf("counting rows: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (types.Course, error) {
	var c types.Course
	var id int64
	err := row.Scan(&id, &c.Subject, &c.Number, &c.Name, &c.Credits, &c.Description, &c.Restrictions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, err
		}
		return types.Course{}, fmt.Errorf("scanning course: %w", err)
	}
	c.ID = types.CourseID(id)
	return c, nil
}
