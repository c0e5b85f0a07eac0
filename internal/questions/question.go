package questions

import "strings"

// DefaultTechnology groups questions that appear before any technology heading.
const DefaultTechnology = "General"

// Question is a single screening question with its session-wide number.
type Question struct {
	Technology string `json:"technology" yaml:"technology"`
	Text       string `json:"text" yaml:"text"`
	Number     int    `json:"number" yaml:"number"`
}

// Triple is a ready-made question produced by a generator.
// Number is informational only, the parser always renumbers.
type Triple struct {
	Technology string
	Text       string
	Number     int
}

type RawKind int

const (
	KindLines RawKind = iota
	KindTriples
)

// Raw is the output of a question generator: either raw text lines or
// already structured triples.
type Raw struct {
	Kind    RawKind
	Lines   []string
	Triples []Triple
}

func FromLines(lines []string) Raw {
	return Raw{Kind: KindLines, Lines: lines}
}

func FromTriples(triples []Triple) Raw {
	return Raw{Kind: KindTriples, Triples: triples}
}

// FromText splits a text block into trimmed, non-empty lines.
func FromText(text string) Raw {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return FromLines(lines)
}

// IsEmpty reports whether the raw output carries nothing to parse.
func (r Raw) IsEmpty() bool {
	switch r.Kind {
	case KindTriples:
		return len(r.Triples) == 0
	default:
		return len(r.Lines) == 0
	}
}

// Technologies returns technology names in order of first appearance.
func Technologies(list []Question) []string {
	seen := make(map[string]struct{})
	techs := make([]string, 0)
	for _, q := range list {
		if _, ok := seen[q.Technology]; ok {
			continue
		}
		seen[q.Technology] = struct{}{}
		techs = append(techs, q.Technology)
	}
	return techs
}

// IsFirstOfTechnology reports whether no earlier question shares the technology of list[idx].
func IsFirstOfTechnology(list []Question, idx int) bool {
	if idx < 0 || idx >= len(list) {
		return false
	}
	for i := 0; i < idx; i++ {
		if list[i].Technology == list[idx].Technology {
			return false
		}
	}
	return true
}

// SplitTechStack splits a declared tech stack on commas, semicolons and newlines.
// Order and duplicates are preserved.
func SplitTechStack(stack string) []string {
	fields := strings.FieldsFunc(stack, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	techs := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		techs = append(techs, field)
	}
	return techs
}
