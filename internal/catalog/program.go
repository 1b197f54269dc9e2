// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hackinmonster/MajorMap/internal/requirement"
	"github.com/hackinmonster/MajorMap/pkg/types"
)

// ErrNoProgram is returned by ParseProgram when a page has no program
// content area.
var ErrNoProgram = errors.New("no program content on page")

// ProgramLink is one entry of the programs index.
type ProgramLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// File returns the name the program page is saved under: the catalog's
// poid when the URL carries one, otherwise a slug of the name.
func (l ProgramLink) File() string {
	if u, err := url.Parse(l.URL); err == nil {
		if poid := u.Query().Get("poid"); poid != "" {
			return "program-" + slugify(poid) + ".html"
		}
	}
	return "program-" + slugify(l.Name) + ".html"
}

var (
	slugRe    = regexp.MustCompile(`[^a-z0-9]+`)
	creditsRe = regexp.MustCompile(`(?i)\((\d+)(?:\s*-\s*\d+)?\s*credit\s*hours?\)`)

	categoryKeywords = []string{
		"requirement", "core", "major", "concentration",
		"elective", "degree", "curriculum", "foundation",
	}
	navigationText = []string{"back to top", "print-friendly", "facebook", "tweet"}
)

func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ParseProgramIndex returns the program links of an index page, resolving
// relative hrefs against base. Links are deduplicated by URL.
func ParseProgramIndex(r io.Reader, base string) ([]ProgramLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing programs index: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", base, err)
	}

	anchors := findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.A && strings.Contains(attr(n, "href"), "preview_program.php")
	})

	seen := make(map[string]bool)
	var links []ProgramLink
	for _, a := range anchors {
		name := cleanText(textOf(a))
		ref, err := url.Parse(strings.TrimSpace(attr(a, "href")))
		if name == "" || err != nil {
			continue
		}
		u := baseURL.ResolveReference(ref).String()
		if seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, ProgramLink{Name: name, URL: u})
	}
	return links, nil
}

// ParseProgram reads the requirement categories of one program page. Each
// h2-h4 header naming a requirement block starts a category; course codes
// in the content that follows, up to the next such header, belong to it.
func ParseProgram(r io.Reader, link ProgramLink) (types.Program, error) {
	prog := types.Program{Name: link.Name, URL: link.URL}

	doc, err := html.Parse(r)
	if err != nil {
		return prog, fmt.Errorf("parsing program %s: %w", link.Name, err)
	}
	content := findAll(doc, func(n *html.Node) bool {
		return attr(n, "id") == "content-wrapper"
	})
	if len(content) == 0 {
		return prog, fmt.Errorf("%s: %w", link.Name, ErrNoProgram)
	}

	var (
		cur  = -1
		seen map[types.CourseKey]bool
		text []string
	)
	flush := func() {
		if cur >= 0 && len(text) > 0 {
			cat := &prog.Categories[cur]
			for _, tok := range requirement.Tokenize(strings.Join(text, " ")) {
				if k := tok.Key(); !seen[k] {
					seen[k] = true
					cat.Courses = append(cat.Courses, k)
				}
			}
		}
		text = text[:0]
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if t := strings.TrimSpace(c.Data); t != "" {
					text = append(text, t)
				}
			case html.ElementNode:
				if hidden(c) || c.DataAtom == atom.Script || c.DataAtom == atom.Style {
					continue
				}
				if c.DataAtom != atom.H2 && c.DataAtom != atom.H3 && c.DataAtom != atom.H4 {
					walk(c)
					continue
				}
				header := cleanText(textOf(c))
				if !isCategoryHeader(header) {
					text = append(text, header)
					continue
				}
				flush()
				prog.Categories = append(prog.Categories, types.Category{
					Name:    header,
					Credits: parseCredits(header),
				})
				cur = len(prog.Categories) - 1
				seen = make(map[types.CourseKey]bool)
			}
		}
	}
	walk(content[0])
	flush()
	return prog, nil
}

func isCategoryHeader(s string) bool {
	lower := strings.ToLower(s)
	if lower == "" {
		return false
	}
	for _, nav := range navigationText {
		if strings.Contains(lower, nav) {
			return false
		}
	}
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseCredits returns the leading figure of a "(22 Credit Hours)" note.
func parseCredits(s string) int {
	m := creditsRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
