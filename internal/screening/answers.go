package screening

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Answer is the candidate's reply to one question.
type Answer struct {
	QuestionNumber int    `json:"question_num" yaml:"question_num"`
	Question       string `json:"question" yaml:"question"`
	Answer         string `json:"answer" yaml:"answer"`
}

// AnswersByTechnology groups answers per technology, keeping the order in
// which technologies were first answered. It serializes as an ordered object.
type AnswersByTechnology struct {
	order  []string
	groups map[string][]Answer
}

func NewAnswersByTechnology() *AnswersByTechnology {
	return &AnswersByTechnology{groups: make(map[string][]Answer)}
}

func (a *AnswersByTechnology) Append(tech string, answer Answer) {
	if a.groups == nil {
		a.groups = make(map[string][]Answer)
	}
	if _, ok := a.groups[tech]; !ok {
		a.order = append(a.order, tech)
	}
	a.groups[tech] = append(a.groups[tech], answer)
}

// Technologies returns technology names in insertion order.
func (a *AnswersByTechnology) Technologies() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.order...)
}

func (a *AnswersByTechnology) Get(tech string) []Answer {
	if a == nil {
		return nil
	}
	return append([]Answer(nil), a.groups[tech]...)
}

// Len returns the total number of answers across technologies.
func (a *AnswersByTechnology) Len() int {
	if a == nil {
		return 0
	}
	total := 0
	for _, group := range a.groups {
		total += len(group)
	}
	return total
}

// Clone returns a deep copy.
func (a *AnswersByTechnology) Clone() *AnswersByTechnology {
	out := NewAnswersByTechnology()
	if a == nil {
		return out
	}
	for _, tech := range a.order {
		out.order = append(out.order, tech)
		out.groups[tech] = append([]Answer(nil), a.groups[tech]...)
	}
	return out
}

func (a AnswersByTechnology) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tech := range a.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tech)
		if err != nil {
			return nil, err
		}
		group := a.groups[tech]
		if group == nil {
			group = []Answer{}
		}
		value, err := json.Marshal(group)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *AnswersByTechnology) UnmarshalJSON(data []byte) error {
	*a = AnswersByTechnology{groups: make(map[string][]Answer)}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("answers: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		tech, ok := tok.(string)
		if !ok {
			return fmt.Errorf("answers: expected technology name, got %v", tok)
		}

		var group []Answer
		if err := dec.Decode(&group); err != nil {
			return fmt.Errorf("answers for %q: %w", tech, err)
		}
		if _, seen := a.groups[tech]; !seen {
			a.order = append(a.order, tech)
		}
		a.groups[tech] = append(a.groups[tech], group...)
	}

	_, err = dec.Token()
	return err
}

func (a AnswersByTechnology) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, tech := range a.order {
		value := &yaml.Node{}
		group := a.groups[tech]
		if group == nil {
			group = []Answer{}
		}
		if err := value.Encode(group); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tech},
			value,
		)
	}
	return node, nil
}

func (a *AnswersByTechnology) UnmarshalYAML(value *yaml.Node) error {
	*a = AnswersByTechnology{groups: make(map[string][]Answer)}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("answers: expected mapping at line %d", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		tech := value.Content[i].Value

		var group []Answer
		if err := value.Content[i+1].Decode(&group); err != nil {
			return fmt.Errorf("answers for %q: %w", tech, err)
		}
		if _, seen := a.groups[tech]; !seen {
			a.order = append(a.order, tech)
		}
		a.groups[tech] = append(a.groups[tech], group...)
	}
	return nil
}
