// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProgramID is the surrogate identity of a degree program.
type ProgramID int64

// Program is a degree program (major) and its requirement categories.
type Program struct {
	ID ProgramID `json:"id,omitempty" yaml:"id,omitempty"`

	// Name is the program title as linked from the programs index,
	// e.g. "Computer Science, B.S.".
	Name string `json:"name" yaml:"name"`

	// URL is the catalog page the program was read from.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Category is one requirement block of a program, such as
// "Major Courses (22 Credit Hours)".
type Category struct {
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Name is the block header with its credit note.
	Name string `json:"name" yaml:"name"`

	// Credits is the credit-hour figure from the header; zero when absent.
	Credits int `json:"credits" yaml:"credits"`

	// Courses lists the course codes named in the block, in page order and
	// without duplicates.
	Courses []CourseKey `json:"courses,omitempty" yaml:"courses,omitempty"`

	// CourseIDs holds the registered ids of Courses that resolved. Codes
	// absent from the catalog have no entry.
	CourseIDs []CourseID `json:"course_ids,omitempty" yaml:"course_ids,omitempty"`
}
