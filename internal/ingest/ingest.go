// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns parsed catalog entries into registered courses and
// relationship edges. Courses are registered first so that requirement text
// may reference any course of the catalog regardless of page order.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hackinmonster/MajorMap/internal/catalog"
	"github.com/hackinmonster/MajorMap/internal/graph"
	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/internal/relation"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// Summary holds the outcome of one ingestion pass.
type Summary struct {
	Courses      int
	Requirements int
	Edges        int

	// Anomalies is sorted by course, then modality, then reason.
	Anomalies []types.Anomaly
}

// Dropped returns the number of anomalies that cost an edge.
func (s Summary) Dropped() int {
	n := 0
	for _, a := range s.Anomalies {
		if !a.Informational() {
			n++
		}
	}
	return n
}

// Pipeline wires the registry, builder and graph of one ingestion pass.
type Pipeline struct {
	Registry *registry.Registry
	Builder  *relation.Builder
	Graph    *graph.Graph
	Log      zerolog.Logger

	// Workers bounds concurrent requirement builds. Zero means NumCPU.
	Workers int
}

// New returns a Pipeline over fresh in-memory state.
func New(log zerolog.Logger, workers int) *Pipeline {
	reg := registry.New()
	return &Pipeline{
		Registry: reg,
		Builder:  relation.NewBuilder(reg),
		Graph:    graph.New(),
		Log:      log,
		Workers:  workers,
	}
}

type job struct {
	target types.CourseID
	req    types.RawRequirementText
}

// Run registers every entry, then builds edges for every requirement
// section on a bounded worker pool. Entries without a usable course code
// are logged and skipped. Run returns early only on context cancellation.
func (p *Pipeline) Run(ctx context.Context, entries []catalog.Entry) (Summary, error) {
	var sum Summary

	var jobs []job
	for _, e := range entries {
		id, err := p.Registry.Register(e.Subject, e.Number, e.CourseAttributes)
		if err != nil {
			p.Log.Warn().Err(err).Int("page", e.Page).Int("position", e.Position).Msg("skipping entry")
			continue
		}
		for _, req := range e.Requirements() {
			jobs = append(jobs, job{target: id, req: req})
		}
	}
	sum.Courses = p.Registry.Len()
	sum.Requirements = len(jobs)
	p.Log.Info().Int("courses", sum.Courses).Int("requirements", sum.Requirements).Msg("registered courses")

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu        sync.Mutex
		anomalies []types.Anomaly
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := p.Builder.Process(j.target, j.req)
			p.Graph.Insert(res.Edges...)
			for _, a := range res.Anomalies {
				p.logAnomaly(a)
			}
			if len(res.Anomalies) > 0 {
				mu.Lock()
				anomalies = append(anomalies, res.Anomalies...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("building relationships: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("building relationships: %w", err)
	}

	sortAnomalies(anomalies)
	sum.Anomalies = anomalies
	sum.Edges = p.Graph.Len()
	p.Log.Info().Int("edges", sum.Edges).Int("anomalies", len(anomalies)).Msg("built relationships")
	return sum, nil
}

func (p *Pipeline) logAnomaly(a types.Anomaly) {
	ev := p.Log.Warn()
	if a.Informational() {
		ev = p.Log.Info()
	}
	ev.Str("course", a.CourseSubject+" "+a.CourseNumber).
		Str("modality", string(a.Modality)).
		Str("reason", string(a.Reason)).
		Str("detail", a.Detail).
		Msg("requirement anomaly")
}

var modalityOrder = map[types.Modality]int{
	types.Prerequisite:     0,
	types.Corequisite:      1,
	types.PreOrCorequisite: 2,
}

func sortAnomalies(as []types.Anomaly) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.CourseSubject != b.CourseSubject {
			return a.CourseSubject < b.CourseSubject
		}
		if a.CourseNumber != b.CourseNumber {
			return a.CourseNumber < b.CourseNumber
		}
		if a.Modality != b.Modality {
			return modalityOrder[a.Modality] < modalityOrder[b.Modality]
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return a.Detail < b.Detail
	})
}
