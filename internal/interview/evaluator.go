package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/oracle"
)

const rubricPrompt = `You are a strict and objective technical interviewer evaluating candidate answers.

For each answer provided:
- Carefully assess its correctness, completeness, and clarity.
- Score the answer on a scale of 0 to 5 as follows:

  - 0 = No answer, irrelevant, gibberish, or completely incorrect
  - 1 = Very poor understanding, mostly incorrect
  - 2 = Partially correct, missing key elements
  - 3 = Generally correct but lacking depth or examples
  - 4 = Mostly correct with minor gaps
  - 5 = Completely correct, well-structured, and clearly explained

Return output as JSON with keys:
- 'evaluations': a list of objects with {question, answer, score, feedback}
- 'average_score': the average of all scores (as float)

Be strict in your grading. If an answer is empty or nonsense, assign a score of 0 and explain why.

`

// Evaluator scores a whole interview in a single batched oracle call so the
// grading stays consistent across questions.
type Evaluator struct {
	oracle    oracle.Oracle
	logger    *zap.Logger
	maxLogLen int
}

// NewEvaluator creates an answer evaluator.
func NewEvaluator(o oracle.Oracle, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{oracle: o, logger: log, maxLogLen: 200}
}

// Evaluate sends the rubric and every (question, answer) pair, in question
// order, to the oracle and parses the response into an Evaluation. Missing
// answers are graded as empty. A response that does not match the expected
// schema degrades to the raw-text outcome; only an oracle failure is an
// error.
func (e *Evaluator) Evaluate(ctx context.Context, questions []string, answers map[string]string) (*Outcome, error) {
	var prompt strings.Builder
	prompt.WriteString(rubricPrompt)
	for _, question := range questions {
		fmt.Fprintf(&prompt, "Q: %s\nA: %s\n\n", question, answers[question])
	}

	raw, err := e.oracle.Complete(ctx, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("evaluate answers: %w", err)
	}

	parsed, ok := parseEvaluation(raw)
	if !ok {
		e.logger.Warn("oracle evaluation did not match the expected schema, keeping raw text",
			zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
		)
		return &Outcome{Raw: raw}, nil
	}

	e.logger.Info("answers evaluated",
		zap.Int("questions", len(questions)),
		zap.Float64("average_score", parsed.AverageScore),
	)

	return &Outcome{Parsed: parsed}, nil
}

func parseEvaluation(raw string) (*Evaluation, bool) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, false
	}

	if _, ok := data["evaluations"]; !ok {
		return nil, false
	}

	var parsed Evaluation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &parsed,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(data); err != nil {
		return nil, false
	}

	return &parsed, true
}

// extractJSON strips a markdown code fence when the oracle wraps its JSON in
// one.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
