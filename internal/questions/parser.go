package questions

import (
	"strings"
	"unicode"
)

const (
	technologyPrefix = "technology:"
	questionsPrefix  = "questions:"
)

// Parse flattens generator output into a globally numbered question list.
// Malformed input degrades to fewer questions, never to an error.
func Parse(raw Raw) []Question {
	if raw.Kind == KindTriples {
		return parseTriples(raw.Triples)
	}
	return parseLines(raw.Lines)
}

func parseTriples(triples []Triple) []Question {
	list := make([]Question, 0, len(triples))
	for i, t := range triples {
		list = append(list, Question{
			Technology: t.Technology,
			Text:       t.Text,
			Number:     i + 1,
		})
	}
	return list
}

func parseLines(lines []string) []Question {
	list := make([]Question, 0)
	current := ""

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, technologyPrefix):
			current = strings.TrimSpace(line[strings.Index(line, ":")+1:])
			continue
		case strings.HasPrefix(lower, questionsPrefix):
			continue
		}

		text, ok := questionText(line)
		if !ok {
			continue
		}

		tech := current
		if tech == "" {
			tech = DefaultTechnology
		}

		list = append(list, Question{
			Technology: tech,
			Text:       text,
			Number:     len(list) + 1,
		})
	}

	return list
}

// questionText extracts the text of a numbered line such as "3. text" or "3) text".
func questionText(line string) (string, bool) {
	if !unicode.IsDigit([]rune(line)[0]) {
		return "", false
	}

	// "." wins over ")" whenever the line has one.
	idx := strings.Index(line, ".")
	if idx == -1 {
		idx = strings.Index(line, ")")
	}
	if idx == -1 {
		return "", false
	}

	text := strings.TrimSpace(line[idx+1:])
	if text == "" {
		return line, true
	}
	return text, true
}
