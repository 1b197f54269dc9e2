// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"sort"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

const (
	unvisited = iota
	onStack
	done
)

// DetectCycles runs a depth-first search over the prerequisite subgraph and
// returns one cycle per back edge found. A single search does not enumerate
// every elementary cycle: a cycle whose closing path runs through a course
// already finished is missed. With A->B, B->A, A->C and C->B only A->B->A
// is reported, not A->C->B->A. Every reported cycle is a real cycle, and
// the result is empty only when the subgraph is acyclic. Each cycle lists
// course ids in edge order starting from its smallest id; a cycle reached
// through several back edges is reported once. Roots and neighbours are
// visited in ascending id order, so the result is deterministic.
func (g *Graph) DetectCycles() [][]types.CourseID {
	adj := g.adjacency(types.Prerequisite)

	roots := make([]types.CourseID, 0, len(adj))
	for id := range adj {
		roots = append(roots, id)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var (
		state  = make(map[types.CourseID]int)
		pos    = make(map[types.CourseID]int)
		path   []types.CourseID
		seen   = make(map[string]bool)
		cycles [][]types.CourseID
	)

	var visit func(u types.CourseID)
	visit = func(u types.CourseID) {
		state[u] = onStack
		pos[u] = len(path)
		path = append(path, u)

		for _, v := range adj[u] {
			switch state[v] {
			case unvisited:
				visit(v)
			case onStack:
				c := canonicalCycle(path[pos[v]:])
				key := fmt.Sprint(c)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, c)
				}
			}
		}

		path = path[:len(path)-1]
		delete(pos, u)
		state[u] = done
	}

	for _, id := range roots {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}

// canonicalCycle copies c rotated so its smallest id comes first.
func canonicalCycle(c []types.CourseID) []types.CourseID {
	start := 0
	for i, id := range c {
		if id < c[start] {
			start = i
		}
	}
	out := make([]types.CourseID, 0, len(c))
	out = append(out, c[start:]...)
	return append(out, c[:start]...)
}
