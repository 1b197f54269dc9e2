// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hackinmonster/MajorMap/internal/relation"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ProgramSummary holds the outcome of resolving program course lists.
type ProgramSummary struct {
	Programs   int
	Categories int
	Courses    int

	// Unresolved lists "Program / Category: CODE" for every course code that
	// is not in the catalog, in program order.
	Unresolved []string
}

// ResolvePrograms fills each category's CourseIDs from its course codes.
// Codes the resolver does not know are logged, listed in the summary and
// left without an id; the input slice is not modified.
func ResolvePrograms(r relation.Resolver, programs []types.Program, log zerolog.Logger) ([]types.Program, ProgramSummary) {
	var sum ProgramSummary
	out := make([]types.Program, len(programs))
	for i, p := range programs {
		p.Categories = append([]types.Category(nil), p.Categories...)
		for j := range p.Categories {
			cat := &p.Categories[j]
			cat.CourseIDs = nil
			for _, k := range cat.Courses {
				id, err := r.Resolve(k.Subject, k.Number)
				if err != nil {
					sum.Unresolved = append(sum.Unresolved, fmt.Sprintf("%s / %s: %s", p.Name, cat.Name, k))
					log.Warn().Str("program", p.Name).Str("category", cat.Name).
						Str("course", k.String()).Msg("program course not in catalog")
					continue
				}
				cat.CourseIDs = append(cat.CourseIDs, id)
				sum.Courses++
			}
			sum.Categories++
		}
		out[i] = p
		sum.Programs++
	}
	return out, sum
}
