// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackinmonster/MajorMap/internal/registry"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

func TestResolvePrograms(t *testing.T) {
	reg := registry.New()
	itsc, err := reg.Register("ITSC", "1212", types.CourseAttributes{})
	require.NoError(t, err)
	math, err := reg.Register("MATH", "1241", types.CourseAttributes{})
	require.NoError(t, err)

	programs := []types.Program{{
		Name: "Computer Science, B.S.",
		Categories: []types.Category{
			{Name: "Major Courses", Credits: 22, Courses: []types.CourseKey{
				types.NewCourseKey("ITSC", "1212"),
				types.NewCourseKey("XYZZ", "9999"),
				types.NewCourseKey("MATH", "1241"),
			}},
			{Name: "Electives"},
		},
	}}

	got, sum := ResolvePrograms(reg, programs, zerolog.Nop())
	require.Len(t, got, 1)
	assert.Equal(t, []types.CourseID{itsc, math}, got[0].Categories[0].CourseIDs)
	assert.Empty(t, got[0].Categories[1].CourseIDs)
	assert.Nil(t, programs[0].Categories[0].CourseIDs, "input must not be modified")

	assert.Equal(t, 1, sum.Programs)
	assert.Equal(t, 2, sum.Categories)
	assert.Equal(t, 2, sum.Courses)
	assert.Equal(t, []string{"Computer Science, B.S. / Major Courses: XYZZ 9999"}, sum.Unresolved)
}
