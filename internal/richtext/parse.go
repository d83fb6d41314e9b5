// Package richtext turns the lightweight inline markup used in CV text fields
// into styled segments.
//
// Inline markers are ***bold italic***, **bold** and *italic*. A line starting
// with "# ", "## " or "### " is a heading; one starting with "- " or "• " is a
// list item. Markers that do not close are kept as literal text.
package richtext

import "strings"

// Segment is a run of text sharing one style.
type Segment struct {
	Text     string `json:"text"`
	Bold     bool   `json:"bold,omitempty"`
	Italic   bool   `json:"italic,omitempty"`
	Heading  bool   `json:"heading,omitempty"`
	ListItem bool   `json:"listItem,omitempty"`
}

// Newline separates the segments of consecutive lines.
var Newline = Segment{Text: "\n"}

var (
	headingPrefixes = []string{"### ", "## ", "# "}
	listPrefixes    = []string{"- ", "• "}
)

// Parse splits text into segments. It never fails and keeps no state between
// calls. Empty input yields a single empty segment.
func Parse(text string) []Segment {
	if text == "" {
		return []Segment{{}}
	}

	var out []Segment
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, Newline)
		}
		out = append(out, parseLine(strings.TrimSuffix(line, "\r"))...)
	}
	if len(out) == 0 {
		return []Segment{{}}
	}
	return out
}

func parseLine(line string) []Segment {
	var heading, listItem bool
	if rest, ok := cutAnyPrefix(line, headingPrefixes); ok {
		line, heading = rest, true
	} else if rest, ok := cutAnyPrefix(line, listPrefixes); ok {
		line, listItem = rest, true
	}

	segs := parseInline(line)
	for i := range segs {
		segs[i].Heading = heading
		segs[i].ListItem = listItem
	}
	return segs
}

func cutAnyPrefix(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return s, false
}

// markers in match order; longer markers must come first.
var markers = []struct {
	delim  string
	bold   bool
	italic bool
}{
	{"***", true, true},
	{"**", true, false},
	{"*", false, true},
}

func parseInline(s string) []Segment {
	var (
		out   []Segment
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '*' {
			j := strings.IndexByte(s[i:], '*')
			if j < 0 {
				plain.WriteString(s[i:])
				break
			}
			plain.WriteString(s[i : i+j])
			i += j
			continue
		}

		matched := false
		for _, m := range markers {
			if !strings.HasPrefix(s[i:], m.delim) {
				continue
			}
			start := i + len(m.delim)
			end := strings.Index(s[start:], m.delim)
			if end <= 0 {
				continue
			}
			flush()
			out = append(out, Segment{Text: s[start : start+end], Bold: m.bold, Italic: m.italic})
			i = start + end + len(m.delim)
			matched = true
			break
		}
		if !matched {
			plain.WriteByte('*')
			i++
		}
	}
	flush()
	return out
}
