package interview

import "encoding/json"

// Candidate is the record assembled over one interview and persisted at the
// end. Email and phone hold SHA-256 digests; the raw values never reach the
// record or the logs.
type Candidate struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Role       string            `json:"role,omitempty"`
	Experience string            `json:"experience,omitempty"`
	TechStack  string            `json:"tech_stack,omitempty"`
	Questions  []string          `json:"questions,omitempty"`
	Answers    map[string]string `json:"answers,omitempty"`
	Evaluation *Outcome          `json:"evaluation,omitempty"`
}

// QuestionScore is the evaluator's verdict for a single answer.
type QuestionScore struct {
	Question string `json:"question" mapstructure:"question"`
	Answer   string `json:"answer" mapstructure:"answer"`
	Score    int    `json:"score" mapstructure:"score"`
	Feedback string `json:"feedback" mapstructure:"feedback"`
}

// Evaluation is the structured result the oracle is asked to produce: one
// scored entry per question plus the oracle's own average. The average is
// taken as reported and never recomputed here.
type Evaluation struct {
	Evaluations  []QuestionScore `json:"evaluations" mapstructure:"evaluations"`
	AverageScore float64         `json:"average_score" mapstructure:"average_score"`
}

// Outcome is the tagged evaluator result: either a parsed Evaluation or,
// when the oracle's response does not match the expected schema, the raw
// response text. The raw form is a recognized record shape, not an error.
type Outcome struct {
	Parsed *Evaluation
	Raw    string
}

// Fallback reports whether the outcome carries raw oracle text instead of a
// parsed evaluation.
func (o *Outcome) Fallback() bool {
	return o != nil && o.Parsed == nil
}

// MarshalJSON serializes parsed outcomes as the evaluation object and
// fallback outcomes as {"raw": ...}, matching the persisted record format.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Parsed != nil {
		return json.Marshal(o.Parsed)
	}
	return json.Marshal(map[string]string{"raw": o.Raw})
}

// UnmarshalJSON restores either outcome shape, keeping saved records
// round-trippable.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if raw, ok := probe["raw"]; ok && len(probe) == 1 {
		o.Parsed = nil
		return json.Unmarshal(raw, &o.Raw)
	}

	var parsed Evaluation
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	o.Parsed = &parsed
	o.Raw = ""
	return nil
}
