// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// CourseID is the surrogate identity of a course. It is assigned once by the
// course registry and never reused.
type CourseID int64

// CourseAttributes holds the descriptive fields of a course. Credits is kept
// free-form because catalogs express it as a single value or a range
// (e.g. "3" or "1-4").
type CourseAttributes struct {
	// Name is the course title as printed in the catalog header.
	Name string `json:"name" yaml:"name"`

	// Credits is the "Credit Hours:" value. Empty when the catalog omits it.
	Credits string `json:"credits,omitempty" yaml:"credits,omitempty"`

	// Description is the paragraph following the course header.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Restrictions is the "Restriction(s):" value.
	Restrictions string `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`
}

// Course is a catalog entry identified by (Subject, Number).
type Course struct {
	ID CourseID `json:"id" yaml:"id"`

	// Subject is the four-letter subject code (e.g. "MATH").
	Subject string `json:"subject" yaml:"subject"`

	// Number is the course number, optionally suffixed with a lab marker
	// (e.g. "2164", "3171L").
	Number string `json:"number" yaml:"number"`

	CourseAttributes `yaml:",inline"`
}

// Code returns the printed course code, e.g. "MATH 2164".
func (c Course) Code() string {
	return c.Subject + " " + c.Number
}

// CourseKey is the natural key of a course.
type CourseKey struct {
	Subject string `json:"subject" yaml:"subject"`
	Number  string `json:"number" yaml:"number"`
}

// NewCourseKey normalizes subject and number into a CourseKey.
func NewCourseKey(subject, number string) CourseKey {
	return CourseKey{
		Subject: strings.ToUpper(strings.TrimSpace(subject)),
		Number:  strings.ToUpper(strings.TrimSpace(number)),
	}
}

// ParseCourseKey splits a code such as "MATH 2164" or "math2164" into a
// CourseKey. It reports false when the code has no subject or number.
func ParseCourseKey(code string) (CourseKey, bool) {
	code = strings.TrimSpace(code)
	if fields := strings.Fields(code); len(fields) == 2 {
		k := NewCourseKey(fields[0], fields[1])
		return k, k.Subject != "" && k.Number != ""
	}
	// Accept the compact form "MATH2164".
	i := strings.IndexFunc(code, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return CourseKey{}, false
	}
	return NewCourseKey(code[:i], code[i:]), true
}

// String returns the printed course code.
func (k CourseKey) String() string {
	return k.Subject + " " + k.Number
}
