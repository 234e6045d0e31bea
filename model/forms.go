package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type QuestionType string

const (
	QuestionText    QuestionType = "text"
	QuestionBoolean QuestionType = "boolean"
	QuestionRating  QuestionType = "rating"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Question is one self-describing entry of an embedded response form.
type Question struct {
	ID       string       `json:"id" firestore:"id" bson:"id" yaml:"id"`
	Type     QuestionType `json:"type" firestore:"type" bson:"type" yaml:"type"`
	Question string       `json:"question" firestore:"question" bson:"question" yaml:"question"`
	Options  []string     `json:"options,omitempty" firestore:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
}

// Form is an ordered list of questions; responses are keyed by question id.
type Form []Question

// Validate checks that a form is well formed: ids present and unique, known types.
func (f Form) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("form has no questions")
	}
	seen := make(map[string]bool, len(f))
	for i, q := range f {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		switch q.Type {
		case QuestionText, QuestionBoolean, QuestionRating:
		default:
			return fmt.Errorf("question %q has unknown type %q", q.ID, q.Type)
		}
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %q has no text", q.ID)
		}
	}
	return nil
}

func (f Form) Question(id string) (Question, bool) {
	for _, q := range f {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// NormalizeResponses checks every answer against the form and returns the answers in
// their stored shape: text as a trimmed string, boolean as bool, rating as int64.
// Every question must be answered and unknown ids are rejected.
func (f Form) NormalizeResponses(responses map[string]interface{}) (map[string]interface{}, error) {
	if len(responses) == 0 {
		return nil, Invalid("responses", "responses are required")
	}
	for id := range responses {
		if _, ok := f.Question(id); !ok {
			return nil, Invalid("responses."+id, "unknown question")
		}
	}

	out := make(map[string]interface{}, len(f))
	for _, q := range f {
		field := "responses." + q.ID
		raw, ok := responses[q.ID]
		if !ok || raw == nil {
			return nil, Invalid(field, "an answer is required")
		}
		switch q.Type {
		case QuestionText:
			s, ok := raw.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, Invalid(field, "a text answer is required")
			}
			out[q.ID] = strings.TrimSpace(s)
		case QuestionBoolean:
			b, ok := raw.(bool)
			if !ok {
				return nil, Invalid(field, "answer must be true or false")
			}
			out[q.ID] = b
		case QuestionRating:
			n, ok := asInt(raw)
			if !ok || n < MinRating || n > MaxRating {
				return nil, Invalid(field, fmt.Sprintf("rating must be a whole number from %d to %d", MinRating, MaxRating))
			}
			out[q.ID] = n
		default:
			return nil, Invalid(field, "unsupported question type")
		}
	}
	return out, nil
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
