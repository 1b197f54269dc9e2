// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Modality is the kind of requirement one course places on another.
type Modality string

const (
	Prerequisite     Modality = "prerequisite"
	Corequisite      Modality = "corequisite"
	PreOrCorequisite Modality = "pre_or_corequisite"
)

// Modalities lists every modality in catalog order.
var Modalities = []Modality{Prerequisite, Corequisite, PreOrCorequisite}

// ParseModality accepts the canonical names plus the short forms used on the
// command line ("prereq", "coreq", "pre_or_co").
func ParseModality(s string) (Modality, error) {
	switch s {
	case "prerequisite", "prereq", "pre":
		return Prerequisite, nil
	case "corequisite", "coreq", "co":
		return Corequisite, nil
	case "pre_or_corequisite", "pre_or_co", "pre-or-co":
		return PreOrCorequisite, nil
	}
	return "", fmt.Errorf("unknown modality %q: use prerequisite, corequisite, or pre_or_corequisite", s)
}

// RawRequirementText is the plain text of one labelled requirement section
// of a course, as handed over by the catalog extractor.
type RawRequirementText struct {
	CourseSubject string   `json:"course_subject" yaml:"course_subject"`
	CourseNumber  string   `json:"course_number" yaml:"course_number"`
	Modality      Modality `json:"modality" yaml:"modality"`
	Text          string   `json:"text" yaml:"text"`
}

// Relationship is a directed edge: Target requires Related under Type.
// A nil ChoiceGroup means Related is unconditionally required. Edges that
// share a non-nil ChoiceGroup are alternatives; satisfying any one of them
// satisfies the requirement. ChoiceGroup values are only meaningful as a
// grouping key within one target course.
type Relationship struct {
	TargetID    CourseID `json:"target_course_id" yaml:"target_course_id"`
	RelatedID   CourseID `json:"related_course_id" yaml:"related_course_id"`
	Type        Modality `json:"type" yaml:"type"`
	ChoiceGroup *int64   `json:"choice_group" yaml:"choice_group"`
}

// AnomalyReason classifies a data-quality problem found during ingestion.
type AnomalyReason string

const (
	// ReasonUnresolvedCourse: a course code in requirement text is not in
	// the registry.
	ReasonUnresolvedCourse AnomalyReason = "unresolved_course_reference"

	// ReasonSelfReference: a course lists itself as a requirement.
	ReasonSelfReference AnomalyReason = "self_referential_requirement"

	// ReasonMalformedText: non-empty requirement text with no course codes.
	ReasonMalformedText AnomalyReason = "malformed_requirement_text"
)

// Anomaly records one dropped or unparseable requirement for operator review.
type Anomaly struct {
	CourseSubject string        `json:"course_subject" yaml:"course_subject"`
	CourseNumber  string        `json:"course_number" yaml:"course_number"`
	Modality      Modality      `json:"modality" yaml:"modality"`
	RawText       string        `json:"raw_text" yaml:"raw_text"`
	Reason        AnomalyReason `json:"reason" yaml:"reason"`

	// Detail names the offending token, e.g. "XYZZ 9999".
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Informational reports whether the anomaly is a note rather than a dropped
// edge.
func (a Anomaly) Informational() bool {
	return a.Reason == ReasonMalformedText
}
