// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	r := New()

	a, err := r.Register("MATH", "1241", types.CourseAttributes{Name: "Calculus I"})
	require.NoError(t, err)
	b, err := r.Register("MATH", "1242", types.CourseAttributes{Name: "Calculus II"})
	require.NoError(t, err)

	assert.Equal(t, types.CourseID(1), a)
	assert.Equal(t, types.CourseID(2), b)
	assert.Equal(t, 2, r.Len())
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()

	first, err := r.Register("CHEM", "1251L", types.CourseAttributes{Name: "General Chemistry I Lab"})
	require.NoError(t, err)
	again, err := r.Register("chem", " 1251l ", types.CourseAttributes{})
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterBackfillsAttributes(t *testing.T) {
	r := New()

	id, err := r.Register("ITSC", "1212", types.CourseAttributes{Name: "Intro to Computer Science I"})
	require.NoError(t, err)
	_, err = r.Register("ITSC", "1212", types.CourseAttributes{
		Credits:      "4",
		Description:  "Fundamental concepts of programming.",
		Restrictions: "Majors only",
	})
	require.NoError(t, err)

	c, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Intro to Computer Science I", c.Name, "empty incoming name must not erase")
	assert.Equal(t, "4", c.Credits)
	assert.Equal(t, "Fundamental concepts of programming.", c.Description)
	assert.Equal(t, "Majors only", c.Restrictions)
}

func TestRegisterRejectsEmptyCode(t *testing.T) {
	r := New()
	_, err := r.Register("", "1241", types.CourseAttributes{})
	assert.ErrorIs(t, err, ErrInvalidCourse)
	_, err = r.Register("MATH", "  ", types.CourseAttributes{})
	assert.ErrorIs(t, err, ErrInvalidCourse)
	assert.Zero(t, r.Len())
}

func TestResolve(t *testing.T) {
	r := New()
	id, err := r.Register("MATH", "2164", types.CourseAttributes{})
	require.NoError(t, err)

	got, err := r.Resolve("MATH", "2164")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = r.Resolve("XYZZ", "9999")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "XYZZ 9999")
	assert.Equal(t, 1, r.Len(), "Resolve must never create")
}

func TestAllSortsBySubjectAndNumber(t *testing.T) {
	r := New()
	for _, code := range []string{"MATH 2164", "ITSC 1213", "MATH 1241", "ITSC 1212"} {
		k, _ := types.ParseCourseKey(code)
		_, err := r.Register(k.Subject, k.Number, types.CourseAttributes{})
		require.NoError(t, err)
	}

	var codes []string
	for _, c := range r.All() {
		codes = append(codes, c.Code())
	}
	assert.Equal(t, []string{"ITSC 1212", "ITSC 1213", "MATH 1241", "MATH 2164"}, codes)
}

func TestRestore(t *testing.T) {
	r := New()
	require.NoError(t, r.Restore(types.Course{ID: 40, Subject: "MATH", Number: "1241"}))
	require.NoError(t, r.Restore(types.Course{ID: 7, Subject: "MATH", Number: "1242"}))

	id, err := r.Resolve("MATH", "1241")
	require.NoError(t, err)
	assert.Equal(t, types.CourseID(40), id)

	next, err := r.Register("STAT", "2122", types.CourseAttributes{})
	require.NoError(t, err)
	assert.Equal(t, types.CourseID(41), next, "new ids continue past restored ones")

	assert.Error(t, r.Restore(types.Course{ID: 40, Subject: "STAT", Number: "1220"}), "id reuse")
	assert.Error(t, r.Restore(types.Course{ID: 99, Subject: "MATH", Number: "1241"}), "key reuse")
	assert.ErrorIs(t, r.Restore(types.Course{ID: 0, Subject: "MATH", Number: "1100"}), ErrInvalidCourse)
}

func TestConcurrentResolve(t *testing.T) {
	r := New()
	for i := 0; i < 100; i++ {
		_, err := r.Register("ITSC", fmt.Sprintf("%d", 1000+i), types.CourseAttributes{})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id, err := r.Resolve("ITSC", fmt.Sprintf("%d", 1000+i))
				assert.NoError(t, err)
				assert.Equal(t, types.CourseID(i+1), id)
			}
		}()
	}
	wg.Wait()
}

// Property: Resolve after Register returns the registered id, on every call.
func TestRegisterResolveProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("resolve returns the registered id", prop.ForAll(
		func(subject string, number int, repeats int) bool {
			r := New()
			num := fmt.Sprintf("%04d", number)
			id, err := r.Register(subject, num, types.CourseAttributes{Name: "x"})
			if err != nil {
				return false
			}
			for i := 0; i < repeats; i++ {
				again, err := r.Register(subject, num, types.CourseAttributes{})
				if err != nil || again != id {
					return false
				}
				got, err := r.Resolve(subject, num)
				if err != nil || got != id {
					return false
				}
			}
			return r.Len() == 1
		},
		gen.RegexMatch(`^[A-Z]{4}$`),
		gen.IntRange(1000, 9999),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
