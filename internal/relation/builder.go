// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relation converts tokenized requirement text into typed
// relationship edges between registered courses.
package relation

import (
	"strings"
	"sync/atomic"

	"github.com/hackinmonster/MajorMap/internal/requirement"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// Resolver looks up course ids without creating them. *registry.Registry
// satisfies it.
type Resolver interface {
	Resolve(subject, number string) (types.CourseID, error)
}

// Result is the output of one build: the edges to insert and the
// requirements that were dropped.
type Result struct {
	Edges     []types.Relationship
	Anomalies []types.Anomaly
}

// Builder turns token groups into edges. One Builder is shared by every
// worker of an ingestion pass so choice-group ids never collide; it is safe
// for concurrent use as long as the resolver is not written to meanwhile.
type Builder struct {
	resolver Resolver
	choices  atomic.Int64
}

// NewBuilder returns a Builder resolving codes through r.
func NewBuilder(r Resolver) *Builder {
	return &Builder{resolver: r}
}

// nextChoiceGroup allocates a choice-group id. Ids start at 1 and are never
// handed out twice by the same Builder.
func (b *Builder) nextChoiceGroup() int64 {
	return b.choices.Add(1)
}

type edgeKey struct {
	related types.CourseID
	group   int64
}

// Build emits one edge per resolvable token. Tokens of an All group are
// unconditional (nil ChoiceGroup); tokens of an Any group share a freshly
// allocated ChoiceGroup. The group id is allocated on the first resolved
// member, so a choice whose members all fail to resolve consumes no id.
// Unresolved and self-referencing tokens become anomalies carrying the
// modality and the offending code; callers fill in the course and text.
func (b *Builder) Build(target types.CourseID, groups []requirement.Group, modality types.Modality) Result {
	var res Result
	seen := make(map[edgeKey]bool)

	for _, g := range groups {
		var group *int64

		for _, tok := range g.Tokens {
			related, err := b.resolver.Resolve(tok.Subject, tok.Number)
			if err != nil {
				res.Anomalies = append(res.Anomalies, types.Anomaly{
					Modality: modality,
					Reason:   types.ReasonUnresolvedCourse,
					Detail:   tok.String(),
				})
				continue
			}
			if related == target {
				res.Anomalies = append(res.Anomalies, types.Anomaly{
					Modality: modality,
					Reason:   types.ReasonSelfReference,
					Detail:   tok.String(),
				})
				continue
			}

			if g.Kind == requirement.Any && group == nil {
				id := b.nextChoiceGroup()
				group = &id
			}

			key := edgeKey{related: related}
			if group != nil {
				key.group = *group
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			res.Edges = append(res.Edges, types.Relationship{
				TargetID:    target,
				RelatedID:   related,
				Type:        modality,
				ChoiceGroup: group,
			})
		}
	}

	return res
}

// Process tokenizes one requirement section and builds its edges. Blank
// text is no requirement at all; non-blank text without course codes is
// reported as an informational anomaly. Every anomaly is stamped with the
// course and raw text of req.
func (b *Builder) Process(target types.CourseID, req types.RawRequirementText) Result {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}
	}

	seq := requirement.Tokenize(req.Text)

	var res Result
	if len(seq) == 0 {
		res.Anomalies = []types.Anomaly{{
			Modality: req.Modality,
			Reason:   types.ReasonMalformedText,
		}}
	} else {
		res = b.Build(target, seq.Groups(), req.Modality)
	}

	for i := range res.Anomalies {
		res.Anomalies[i].CourseSubject = req.CourseSubject
		res.Anomalies[i].CourseNumber = req.CourseNumber
		res.Anomalies[i].RawText = req.Text
	}
	return res
}
