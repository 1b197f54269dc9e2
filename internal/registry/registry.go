// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry holds the canonical set of catalog courses and assigns
// their stable identities.
//
// A Registry is the only place course ids are created. Ingestion registers
// every course of a catalog snapshot first; relationship building then only
// resolves. Reads are safe from many goroutines; writes serialize.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ErrNotFound is returned by Resolve when a course code is not registered.
var ErrNotFound = errors.New("course not found")

// ErrInvalidCourse is returned by Register when subject or number is empty.
var ErrInvalidCourse = errors.New("invalid course code")

// Registry maps (subject, number) to course records.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[types.CourseKey]types.CourseID
	byID   map[types.CourseID]*types.Course
	nextID types.CourseID
}

// New returns an empty registry whose first id is 1.
func New() *Registry {
	return &Registry{
		byKey:  make(map[types.CourseKey]types.CourseID),
		byID:   make(map[types.CourseID]*types.Course),
		nextID: 1,
	}
}

// Register inserts the course if absent, otherwise backfills its attributes.
// Only non-empty incoming attributes overwrite stored ones, so a sparse
// re-scrape never erases data. It returns the course id either way.
func (r *Registry) Register(subject, number string, attrs types.CourseAttributes) (types.CourseID, error) {
	key := types.NewCourseKey(subject, number)
	if key.Subject == "" || key.Number == "" {
		return 0, fmt.Errorf("%w: %q %q", ErrInvalidCourse, subject, number)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[key]; ok {
		backfill(&r.byID[id].CourseAttributes, attrs)
		return id, nil
	}

	id := r.nextID
	r.nextID++
	r.byKey[key] = id
	r.byID[id] = &types.Course{
		ID:               id,
		Subject:          key.Subject,
		Number:           key.Number,
		CourseAttributes: attrs,
	}
	return id, nil
}

// Restore inserts a course with an id assigned by an earlier run, e.g. when
// reloading from the store. Later Register calls never hand out an id at or
// below the highest restored one.
func (r *Registry) Restore(c types.Course) error {
	key := types.NewCourseKey(c.Subject, c.Number)
	if key.Subject == "" || key.Number == "" || c.ID <= 0 {
		return fmt.Errorf("%w: id %d %q %q", ErrInvalidCourse, c.ID, c.Subject, c.Number)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byKey[key]; ok && existing != c.ID {
		return fmt.Errorf("course %s already registered as %d", key, existing)
	}
	if other, ok := r.byID[c.ID]; ok && types.NewCourseKey(other.Subject, other.Number) != key {
		return fmt.Errorf("id %d already assigned to %s", c.ID, other.Code())
	}

	c.Subject, c.Number = key.Subject, key.Number
	r.byKey[key] = c.ID
	r.byID[c.ID] = &c
	if c.ID >= r.nextID {
		r.nextID = c.ID + 1
	}
	return nil
}

// Resolve looks up a course id. It never creates an entry.
func (r *Registry) Resolve(subject, number string) (types.CourseID, error) {
	key := types.NewCourseKey(subject, number)

	r.mu.RLock()
	id, ok := r.byKey[key]
	r.mu.RUnlock()

	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return id, nil
}

// Get returns a copy of the course with the given id.
func (r *Registry) Get(id types.CourseID) (types.Course, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return types.Course{}, false
	}
	return *c, true
}

// All returns copies of every course sorted by (subject, number).
func (r *Registry) All() []types.Course {
	r.mu.RLock()
	out := make([]types.Course, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// Len returns the number of registered courses.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func backfill(dst *types.CourseAttributes, src types.CourseAttributes) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Credits != "" {
		dst.Credits = src.Credits
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Restrictions != "" {
		dst.Restrictions = src.Restrictions
	}
}
