package narrative

import (
	"sort"
	"strings"
)

// Parse splits a model reply into sections keyed by schema.
//
// Grammar, applied line by line:
//
//	heading  = [ "#"{1,6} ] [ "**" ] name [ "**" ] [ ":" [ "**" ] ] [ inline ]
//
// name is one of the schema headings, matched case-insensitively. A line only counts
// as a heading when it carries a marker: leading hashes, bold, or a colon after the name.
// A bare "Name:" line is a heading only while the reply has not used hash or bold
// headings; after that it is body text. Text after the colon belongs to the section. A section runs until the next recognized
// heading or the end of the text. Text before the first heading is dropped; the first
// non-empty occurrence of a repeated heading wins.
//
// When no heading is found the whole trimmed reply goes to schema.Fallback.
// Empty sections are omitted from the result.
func Parse(text string, schema Schema) map[string]string {
	out := make(map[string]string)

	sections := make([]Section, len(schema.Sections))
	copy(sections, schema.Sections)
	// Longest heading first so "Investment Thesis" is not read as "Investment"
	sort.SliceStable(sections, func(i, j int) bool {
		return len(sections[i].Heading) > len(sections[j].Heading)
	})

	var (
		current string
		body    []string
		found   bool
		styled  bool // a hash or bold heading has been seen
	)
	flush := func() {
		if current == "" {
			return
		}
		if _, seen := out[current]; !seen {
			if content := strings.TrimSpace(strings.Join(body, "\n")); content != "" {
				out[current] = content
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		key, inline, marked, ok := matchHeading(line, sections, !styled)
		if !ok {
			if current != "" {
				body = append(body, line)
			}
			continue
		}
		found = true
		styled = styled || marked
		flush()
		current = key
		body = body[:0]
		if inline != "" {
			body = append(body, inline)
		}
	}
	flush()

	if !found && schema.Fallback != "" {
		if content := strings.TrimSpace(text); content != "" {
			out[schema.Fallback] = content
		}
	}

	return out
}

// matchHeading reports whether line is a heading for one of sections and whether it
// carried a hash or bold marker. allowPlain accepts a bare "Name:" heading.
func matchHeading(line string, sections []Section, allowPlain bool) (key, inline string, marked, ok bool) {
	s := strings.TrimSpace(line)

	if strings.HasPrefix(s, "#") {
		hashes := len(s) - len(strings.TrimLeft(s, "#"))
		if hashes > 6 {
			return "", "", false, false
		}
		s = strings.TrimSpace(s[hashes:])
		marked = true
	}
	if strings.HasPrefix(s, "**") {
		s = strings.TrimSpace(s[2:])
		marked = true
	}

	for _, sec := range sections {
		h := sec.Heading
		if len(s) < len(h) || !strings.EqualFold(s[:len(h)], h) {
			continue
		}

		rest := strings.TrimSpace(strings.TrimPrefix(s[len(h):], "**"))
		colon := strings.HasPrefix(rest, ":")
		if colon {
			rest = strings.TrimSpace(rest[1:])
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "**"))
		} else if rest != "" {
			// "Analysis shows..." is prose, not a heading
			continue
		}

		if !marked && (!colon || !allowPlain) {
			continue
		}
		return sec.Key, rest, marked, true
	}

	return "", "", false, false
}
