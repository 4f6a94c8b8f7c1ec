package narrative

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Line is a dialogue line that may be gated on the companion's state.
type Line struct {
	Text string `json:"text" yaml:"text"`                     // The line to offer
	When *When  `json:"when,omitempty" yaml:"when,omitempty"` // Optional conditions - if nil, always offered
}

// UnmarshalJSON accepts either a plain string or an object with conditions
func (l *Line) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		l.Text = str
		l.When = nil
		return nil
	}

	type Alias Line
	aux := &struct{ *Alias }{Alias: (*Alias)(l)}
	return json.Unmarshal(data, aux)
}

// UnmarshalYAML accepts the same two forms for scripts
func (l *Line) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		l.When = nil
		return node.Decode(&l.Text)
	}

	type Alias Line
	return node.Decode((*Alias)(l))
}

// When defines the conditions a line needs. Min and Max compare numeric
// variables such as ps_trust, which hold whole percentages.
type When struct {
	Vars map[string]string `json:"vars,omitempty" yaml:"vars,omitempty"` // All specified variables must match exactly
	Min  map[string]int    `json:"min,omitempty" yaml:"min,omitempty"`   // Variable >= value
	Max  map[string]int    `json:"max,omitempty" yaml:"max,omitempty"`   // Variable <= value
}

// EvaluateWhen checks if all conditions are met. A When with no conditions
// never matches.
func EvaluateWhen(when When, vars map[string]string) bool {
	if len(when.Vars) == 0 && len(when.Min) == 0 && len(when.Max) == 0 {
		return false
	}
	if vars == nil {
		return false
	}

	for name, expected := range when.Vars {
		if actual, ok := vars[name]; !ok || actual != expected {
			return false
		}
	}

	for name, lo := range when.Min {
		n, ok := intVar(vars, name)
		if !ok || n < lo {
			return false
		}
	}

	for name, hi := range when.Max {
		n, ok := intVar(vars, name)
		if !ok || n > hi {
			return false
		}
	}

	return true
}

// FilterLines returns the text of every line whose conditions are met.
func FilterLines(lines []Line, vars map[string]string) []string {
	var active []string
	for _, l := range lines {
		if l.When == nil || EvaluateWhen(*l.When, vars) {
			active = append(active, l.Text)
		}
	}
	return active
}

func intVar(vars map[string]string, name string) (int, bool) {
	s, ok := vars[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
