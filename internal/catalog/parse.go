// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog downloads the paginated course catalog and extracts each
// course's header, attributes, and labelled requirement text from the
// acalog markup.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ErrNoCourses is returned by ParsePage when a page holds no course blocks.
var ErrNoCourses = errors.New("no course blocks on page")

// Entry is one course block of a catalog page.
type Entry struct {
	// Page and Position locate the block: 1-based page, 0-based index on it.
	Page     int `json:"page" yaml:"page"`
	Position int `json:"position" yaml:"position"`

	Subject string `json:"subject" yaml:"subject"`
	Number  string `json:"number" yaml:"number"`

	types.CourseAttributes `yaml:",inline"`

	// Sections holds requirement text by modality; absent sections are
	// missing from the map.
	Sections map[types.Modality]string `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Requirements returns the entry's non-blank requirement sections in
// modality order.
func (e Entry) Requirements() []types.RawRequirementText {
	var out []types.RawRequirementText
	for _, m := range types.Modalities {
		text := strings.TrimSpace(e.Sections[m])
		if text == "" {
			continue
		}
		out = append(out, types.RawRequirementText{
			CourseSubject: e.Subject,
			CourseNumber:  e.Number,
			Modality:      m,
			Text:          text,
		})
	}
	return out
}

// segment kinds of a flattened course block.
const (
	segText = iota
	segLabel
	segBreak
	segRule
	segHeader
)

type segment struct {
	kind int
	text string
}

var (
	whitespace      = regexp.MustCompile(`\s+`)
	scheduleLinkTxt = regexp.MustCompile(`(?i)\s*schedule of classes\s*`)
)

// ParsePage extracts every course block (td.width) of one catalog page.
// Blocks whose header has no "SUBJ 1234 - Name" form are skipped.
func ParsePage(r io.Reader, page int) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page %d: %w", page, err)
	}

	blocks := findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Td && hasClass(n, "width")
	})
	if len(blocks) == 0 {
		return nil, fmt.Errorf("page %d: %w", page, ErrNoCourses)
	}

	var entries []Entry
	for _, block := range blocks {
		e, ok := parseBlock(block)
		if !ok {
			continue
		}
		e.Page = page
		e.Position = len(entries)
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("page %d: %w", page, ErrNoCourses)
	}
	return entries, nil
}

func parseBlock(block *html.Node) (Entry, bool) {
	var segs []segment
	flatten(block, &segs)

	var e Entry
	header := ""
	for _, s := range segs {
		if s.kind == segHeader {
			header = s.text
			break
		}
	}
	code, name, found := strings.Cut(header, " - ")
	if !found {
		return Entry{}, false
	}
	key, ok := types.ParseCourseKey(code)
	if !ok {
		return Entry{}, false
	}
	e.Subject, e.Number = key.Subject, key.Number
	e.Name = strings.TrimSpace(name)

	for i, s := range segs {
		switch s.kind {
		case segRule:
			if e.Description == "" {
				e.Description = collect(segs[i+1:], false)
			}
		case segLabel:
			text := collect(segs[i+1:], true)
			switch normalizeLabel(s.text) {
			case "credit hours:":
				e.Credits = strings.Trim(text, "() ")
			case "restriction(s):":
				e.Restrictions = text
			case "prerequisite(s):":
				e.setSection(types.Prerequisite, text)
			case "corequisite(s):":
				e.setSection(types.Corequisite, text)
			case "pre- or corequisite(s):", "pre-or corequisite(s):", "pre- or co-requisite(s):":
				e.setSection(types.PreOrCorequisite, text)
			}
		}
	}
	return e, true
}

func (e *Entry) setSection(m types.Modality, text string) {
	if text == "" {
		return
	}
	if e.Sections == nil {
		e.Sections = make(map[types.Modality]string)
	}
	e.Sections[m] = text
}

// collect joins text segments up to the next label or rule. A labelled
// section also ends at a line break; the description runs across them.
func collect(segs []segment, stopAtBreak bool) string {
	var parts []string
	for _, s := range segs {
		if s.kind == segLabel || s.kind == segRule || s.kind == segHeader {
			break
		}
		if s.kind == segBreak {
			if stopAtBreak && len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, s.text)
	}
	return cleanText(strings.Join(parts, " "))
}

func cleanText(s string) string {
	s = scheduleLinkTxt.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = whitespace.ReplaceAllString(s, " ")
	// Joining inline nodes leaves a space before punctuation: "1241 ,".
	for _, p := range []string{",", ".", ";", ")"} {
		s = strings.ReplaceAll(s, " "+p, p)
	}
	s = strings.ReplaceAll(s, "( ", "(")
	return strings.TrimSpace(s)
}

func normalizeLabel(s string) string {
	return strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(s), " "))
}

// flatten walks n in document order and emits its visible content as
// segments. Hidden elements and scripts are skipped.
func flatten(n *html.Node, segs *[]segment) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" {
				*segs = append(*segs, segment{kind: segText, text: t})
			}
		case html.ElementNode:
			if hidden(c) {
				continue
			}
			switch c.DataAtom {
			case atom.Script, atom.Style:
			case atom.Br:
				*segs = append(*segs, segment{kind: segBreak})
			case atom.Hr:
				*segs = append(*segs, segment{kind: segRule})
			case atom.H1, atom.H2, atom.H3:
				*segs = append(*segs, segment{kind: segHeader, text: cleanText(textOf(c))})
			case atom.Strong, atom.B:
				t := cleanText(textOf(c))
				if strings.HasSuffix(t, ":") {
					*segs = append(*segs, segment{kind: segLabel, text: t})
				} else if t != "" {
					*segs = append(*segs, segment{kind: segText, text: t})
				}
			default:
				flatten(c, segs)
			}
		}
	}
}

// textOf concatenates the visible text below n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case html.ElementNode:
				if !hidden(c) {
					walk(c)
				}
			}
		}
	}
	walk(n)
	return b.String()
}

func hidden(n *html.Node) bool {
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
