// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package requirement turns catalog requirement prose such as
// "MATH 1241 with a grade of C or above, or MATH 1120" into course-code
// tokens and the connectives joining them.
//
// Only course codes and the words "and"/"or" carry meaning; everything else
// in the text is treated as noise between tokens. Adjacent tokens are joined
// by AND unless the text between them ends in an explicit "or" that is not
// cut off by a later comma or semicolon. A serial
// list takes the connective of its final item: "A, B, or C" is a choice
// among all three, "A, B, and C" requires all three.
package requirement

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// Connective joins a token to the token before it.
type Connective int

const (
	// None marks the first token of a sequence.
	None Connective = iota
	And
	Or
)

func (c Connective) String() string {
	switch c {
	case And:
		return "and"
	case Or:
		return "or"
	}
	return "none"
}

// Token is one course code found in requirement text.
type Token struct {
	Subject string
	Number  string

	// Join is the connective between this token and the previous one.
	Join Connective
}

// Key returns the token's course key.
func (t Token) Key() types.CourseKey {
	return types.CourseKey{Subject: t.Subject, Number: t.Number}
}

func (t Token) String() string {
	return t.Subject + " " + t.Number
}

// Sequence is the ordered token stream of one requirement text.
type Sequence []Token

var (
	// Four uppercase letters, whitespace, four digits, optional lab letter.
	coursePattern = regexp.MustCompile(`\b([A-Z]{4})\s+(\d{4}[A-Z]?)\b`)

	// Grade and equivalence qualifiers whose "or" is not a choice between courses.
	qualifierPattern = regexp.MustCompile(`(?i)\bor\s+(better|above|higher|greater|equivalent)\b`)

	connectivePattern = regexp.MustCompile(`(?i)\b(and|or)\b`)
)

// Tokenize extracts course-code tokens from text, left to right. Text
// without course codes yields an empty sequence.
func Tokenize(text string) Sequence {
	text = normalizeSpace(text)

	matches := coursePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seq := make(Sequence, 0, len(matches))
	listSep := make([]bool, len(matches))
	prevEnd := 0
	for i, m := range matches {
		tok := Token{
			Subject: text[m[2]:m[3]],
			Number:  text[m[4]:m[5]],
		}
		if i > 0 {
			tok.Join, listSep[i] = classifyGap(text[prevEnd:m[0]])
		}
		seq = append(seq, tok)
		prevEnd = m[1]
	}

	// Walk backwards so an "or" closing a serial list reaches every comma
	// before it.
	for i := len(seq) - 2; i >= 1; i-- {
		if listSep[i] && seq[i+1].Join == Or {
			seq[i].Join = Or
		}
	}
	return seq
}

// classifyGap decides the connective expressed by the text between two
// course codes. Only the text after the last comma or semicolon counts, so
// a clause such as "or permission of instructor," does not carry over to the
// next code. Within that tail the last "and"/"or" wins; no connective word
// reads as AND. listSep reports a comma with no connective word anywhere in
// the gap, i.e. an inner separator of a serial list.
func classifyGap(gap string) (c Connective, listSep bool) {
	gap = qualifierPattern.ReplaceAllString(gap, " ")

	tail := gap
	if i := strings.LastIndexAny(gap, ",;"); i >= 0 {
		tail = gap[i+1:]
	}

	words := connectivePattern.FindAllString(tail, -1)
	if len(words) == 0 {
		listSep = strings.Contains(gap, ",") && !strings.Contains(gap, ";") && !connectivePattern.MatchString(gap)
		return And, listSep
	}
	if strings.EqualFold(words[len(words)-1], "or") {
		return Or, false
	}
	return And, false
}

// normalizeSpace maps every Unicode space (including the no-break spaces
// catalog markup is full of) to an ASCII space.
func normalizeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

// Codes returns the printed course codes of the sequence in order.
func (s Sequence) Codes() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.String()
	}
	return out
}
