package model

import (
	"encoding/json"
	"strings"
)

// QuestionImport is the raw shape of a question as it appears in imported
// content files and legacy exports. Several generations of the content
// tooling used different field names for the same thing; Canonical resolves
// them all into one Question so nothing downstream has to.
type QuestionImport struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Type     string `json:"type"`

	// "q" and "question" are aliases for the question text.
	Q        string `json:"q"`
	Question string `json:"question"`

	// Options may be a JSON array or a JSON-encoded string of one.
	Options json.RawMessage `json:"options"`

	// "correct", "correctIndex" and "correct_index" are aliases, resolved
	// in that priority order.
	Correct      *int `json:"correct"`
	CorrectIndex *int `json:"correctIndex"`
	CorrectIdx   *int `json:"correct_index"`

	// Accepted answers may likewise arrive as an array or a string of one.
	AcceptedAnswers     json.RawMessage `json:"acceptedAnswers"`
	AcceptedAnswersJSON json.RawMessage `json:"accepted_answers_json"`
	HiddenAnswers       json.RawMessage `json:"hiddenAnswers"`

	// "expl" and "explanation" are aliases.
	Expl        string `json:"expl"`
	Explanation string `json:"explanation"`
}

// Canonical resolves all field aliases and payload encodings into the
// canonical Question shape. Malformed nested JSON degrades to an empty list
// for that field; grading then fails that question instead of crashing the
// session.
func (r QuestionImport) Canonical() Question {
	q := Question{
		ID:              r.ID,
		Category:        r.Category,
		Text:            firstNonEmpty(r.Q, r.Question),
		Options:         stringList(r.Options),
		AcceptedAnswers: firstList(r.AcceptedAnswers, r.AcceptedAnswersJSON),
		HiddenAnswers:   stringList(r.HiddenAnswers),
		Explanation:     firstNonEmpty(r.Expl, r.Explanation),
	}
	if q.Category == "" {
		q.Category = DefaultCategory
	}
	q.Type = inferType(r.Type, r.ID)

	switch {
	case r.Correct != nil:
		q.CorrectIndex = *r.Correct
	case r.CorrectIndex != nil:
		q.CorrectIndex = *r.CorrectIndex
	case r.CorrectIdx != nil:
		q.CorrectIndex = *r.CorrectIdx
	}
	return q
}

// inferType falls back to the "_ft_" ID convention when the explicit type
// field is absent or unknown.
func inferType(explicit, id string) QuestionType {
	switch QuestionType(explicit) {
	case QuestionMultiple, QuestionFreeText:
		return QuestionType(explicit)
	}
	if strings.Contains(id, "_ft_") {
		return QuestionFreeText
	}
	return QuestionMultiple
}

// stringList decodes a raw value that is either a JSON array of strings or a
// JSON string containing one. Anything unparseable yields nil.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return nil
	}
	return list
}

func firstList(raws ...json.RawMessage) []string {
	for _, raw := range raws {
		if list := stringList(raw); list != nil {
			return list
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
