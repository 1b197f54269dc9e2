// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type groupShape struct {
	kind  GroupKind
	codes []string
}

func shapes(groups []Group) []groupShape {
	var out []groupShape
	for _, g := range groups {
		s := groupShape{kind: g.Kind}
		for _, tok := range g.Tokens {
			s.codes = append(s.codes, tok.String())
		}
		out = append(out, s)
	}
	return out
}

func TestGroups(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []groupShape
	}{
		{"empty", "", nil},
		{"single", "MATH 1241", []groupShape{{All, []string{"MATH 1241"}}}},
		{
			"all and",
			"MATH 1241 and MATH 1242",
			[]groupShape{{All, []string{"MATH 1241", "MATH 1242"}}},
		},
		{
			"all or",
			"MATH 1241 or MATH 1242",
			[]groupShape{{Any, []string{"MATH 1241", "MATH 1242"}}},
		},
		{
			"and then choice",
			"ITSC 1212 and (MATH 1241 or MATH 1120)",
			[]groupShape{
				{All, []string{"ITSC 1212"}},
				{Any, []string{"MATH 1241", "MATH 1120"}},
			},
		},
		{
			"choice then and",
			"(MATH 1241 or MATH 1120) and STAT 1220",
			[]groupShape{
				{Any, []string{"MATH 1241", "MATH 1120"}},
				{All, []string{"STAT 1220"}},
			},
		},
		{
			"two choices",
			"MATH 1241 or MATH 1120 and STAT 1220 or STAT 1222",
			[]groupShape{
				{Any, []string{"MATH 1241", "MATH 1120"}},
				{Any, []string{"STAT 1220", "STAT 1222"}},
			},
		},
		{
			"required between choices",
			"MATH 1241 or MATH 1120, ITSC 1212, ITSC 1213 and STAT 1220 or STAT 1222",
			[]groupShape{
				{Any, []string{"MATH 1241", "MATH 1120"}},
				{All, []string{"ITSC 1212", "ITSC 1213"}},
				{Any, []string{"STAT 1220", "STAT 1222"}},
			},
		},
		{
			"serial or list",
			"STAT 1220, STAT 1222, or STAT 2122",
			[]groupShape{{Any, []string{"STAT 1220", "STAT 1222", "STAT 2122"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shapes(Tokenize(tt.text).Groups()))
		})
	}
}

func TestGroupsDoNotAliasSequence(t *testing.T) {
	seq := Tokenize("MATH 1241 or MATH 1120")
	groups := seq.Groups()
	groups[0].Tokens[0].Subject = "XXXX"
	assert.Equal(t, "MATH", seq[0].Subject)
}
