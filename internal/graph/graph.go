// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph stores relationship edges and answers requisite queries
// over them.
//
// The graph is a directed multigraph: an edge points from the course that
// has the requirement (target) to the course it requires (related). Cycles
// are accepted on insert; DetectCycles reports them as a data-quality
// diagnostic.
package graph

import (
	"sort"
	"sync"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// Requisite is one direct requirement of a course.
type Requisite struct {
	RelatedID   types.CourseID `json:"related_course_id" yaml:"related_course_id"`
	ChoiceGroup *int64         `json:"choice_group" yaml:"choice_group"`
}

// Graph is an append-only edge set indexed in both directions. Insert
// serializes with a write lock; queries share a read lock and never mutate.
type Graph struct {
	mu    sync.RWMutex
	edges []types.Relationship
	out   map[types.CourseID][]int
	in    map[types.CourseID][]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		out: make(map[types.CourseID][]int),
		in:  make(map[types.CourseID][]int),
	}
}

// Insert appends edges as given; it does not deduplicate.
func (g *Graph) Insert(edges ...types.Relationship) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range edges {
		i := len(g.edges)
		g.edges = append(g.edges, e)
		g.out[e.TargetID] = append(g.out[e.TargetID], i)
		g.in[e.RelatedID] = append(g.in[e.RelatedID], i)
	}
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Edges returns a copy of every edge in insertion order.
func (g *Graph) Edges() []types.Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.Relationship(nil), g.edges...)
}

// RequisitesOf returns the direct requirements of id under modality, in
// insertion order.
func (g *Graph) RequisitesOf(id types.CourseID, modality types.Modality) []Requisite {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Requisite
	for _, i := range g.out[id] {
		e := g.edges[i]
		if e.Type == modality {
			out = append(out, Requisite{RelatedID: e.RelatedID, ChoiceGroup: e.ChoiceGroup})
		}
	}
	return out
}

// PrerequisitesOf returns the direct (one-hop) prerequisites of id.
func (g *Graph) PrerequisitesOf(id types.CourseID) []Requisite {
	return g.RequisitesOf(id, types.Prerequisite)
}

// DependentsOf returns the courses that list id as a requirement under
// modality, ascending and without duplicates.
func (g *Graph) DependentsOf(id types.CourseID, modality types.Modality) []types.CourseID {
	g.mu.RLock()
	set := make(map[types.CourseID]bool)
	for _, i := range g.in[id] {
		if e := g.edges[i]; e.Type == modality {
			set[e.TargetID] = true
		}
	}
	g.mu.RUnlock()

	return sortedIDs(set)
}

// TransitivePrerequisitesOf returns every course reachable from id over
// prerequisite edges, ascending. Each course is expanded once, so the walk
// terminates on cyclic data; id itself is included only when a cycle leads
// back to it.
func (g *Graph) TransitivePrerequisitesOf(id types.CourseID) []types.CourseID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[types.CourseID]bool)
	stack := g.neighbors(id, types.Prerequisite)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, g.neighbors(n, types.Prerequisite)...)
	}

	return sortedIDs(visited)
}

// neighbors returns related ids of id's outgoing edges of one modality.
// Callers hold the read lock.
func (g *Graph) neighbors(id types.CourseID, modality types.Modality) []types.CourseID {
	var out []types.CourseID
	for _, i := range g.out[id] {
		if e := g.edges[i]; e.Type == modality {
			out = append(out, e.RelatedID)
		}
	}
	return out
}

// adjacency snapshots the subgraph of one modality with neighbour lists
// sorted and deduplicated.
func (g *Graph) adjacency(modality types.Modality) map[types.CourseID][]types.CourseID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj := make(map[types.CourseID][]types.CourseID)
	for id := range g.out {
		set := make(map[types.CourseID]bool)
		for _, n := range g.neighbors(id, modality) {
			set[n] = true
		}
		if len(set) > 0 {
			adj[id] = sortedIDs(set)
		}
	}
	return adj
}

func sortedIDs(set map[types.CourseID]bool) []types.CourseID {
	out := make([]types.CourseID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
