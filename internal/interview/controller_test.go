package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentscout/screener/internal/hashing"
)

type recordingSink struct {
	turns []Turn
}

func (r *recordingSink) Render(role Role, text string) {
	r.turns = append(r.turns, Turn{Role: role, Text: text})
}

type stubGenerator struct {
	questions     []string
	err           error
	calls         int
	gotTechStack  string
	gotExperience string
}

func (s *stubGenerator) Generate(_ context.Context, techStack, experience string) ([]string, error) {
	s.calls++
	s.gotTechStack = techStack
	s.gotExperience = experience
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

type stubEvaluator struct {
	outcome      *Outcome
	err          error
	calls        int
	gotQuestions []string
	gotAnswers   map[string]string
}

func (s *stubEvaluator) Evaluate(_ context.Context, questions []string, answers map[string]string) (*Outcome, error) {
	s.calls++
	s.gotQuestions = questions
	s.gotAnswers = answers
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

type stubStore struct {
	err   error
	calls int
	saved *Candidate
}

func (s *stubStore) Save(candidate *Candidate) (string, error) {
	s.calls++
	s.saved = candidate
	if s.err != nil {
		return "", s.err
	}
	return "candidates/record.json", nil
}

type fixture struct {
	controller *Controller
	sink       *recordingSink
	generator  *stubGenerator
	evaluator  *stubEvaluator
	store      *stubStore
}

func newFixture(questions []string) *fixture {
	sink := &recordingSink{}
	generator := &stubGenerator{questions: questions}
	evaluator := &stubEvaluator{outcome: &Outcome{Parsed: &Evaluation{AverageScore: 4}}}
	store := &stubStore{}

	return &fixture{
		controller: NewController(generator, evaluator, store, sink, nil),
		sink:       sink,
		generator:  generator,
		evaluator:  evaluator,
		store:      store,
	}
}

func (f *fixture) submit(t *testing.T, utterances ...string) {
	t.Helper()
	for _, text := range utterances {
		require.NoError(t, f.controller.HandleUtterance(context.Background(), text))
	}
}

func (f *fixture) assistantCount(text string) int {
	count := 0
	for _, turn := range f.sink.turns {
		if turn.Role == RoleAssistant && turn.Text == text {
			count++
		}
	}
	return count
}

func TestControllerLinearIntakeFlow(t *testing.T) {
	f := newFixture([]string{"Q1", "Q2"})
	require.NoError(t, f.controller.Start(context.Background()))

	assert.Equal(t, 1, f.assistantCount(msgGreeting))

	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Python, Go")

	candidate := f.controller.Candidate()
	assert.Equal(t, "Alice", candidate.Name)
	assert.Equal(t, hashing.Digest("a@b.com"), candidate.Email)
	assert.Equal(t, hashing.Digest("555-1234"), candidate.Phone)
	assert.Equal(t, "Engineer", candidate.Role)
	assert.Equal(t, "3", candidate.Experience)
	assert.Equal(t, "Python, Go", candidate.TechStack)

	// Raw PII never reaches the record.
	assert.NotEqual(t, "a@b.com", candidate.Email)
	assert.NotEqual(t, "555-1234", candidate.Phone)

	assert.Equal(t, StageAskQuestions, f.controller.Session().Stage)
	assert.Equal(t, []string{"Q1", "Q2"}, candidate.Questions)
	assert.Equal(t, "Python, Go", f.generator.gotTechStack)
	assert.Equal(t, "3", f.generator.gotExperience)

	// The first question is emitted in the same logical turn as the
	// tech-stack submission, before any further input.
	assert.Equal(t, 1, f.assistantCount("Q1"))
	assert.Equal(t, 0, f.assistantCount("Q2"))
}

func TestControllerQuestionLoopToDone(t *testing.T) {
	f := newFixture([]string{"Q1", "Q2"})
	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Python, Go")

	f.submit(t, "answer one")
	assert.Equal(t, 1, f.controller.Session().QuestionIndex)
	assert.Len(t, f.controller.Candidate().Answers, 1)
	assert.Equal(t, 1, f.assistantCount("Q2"))

	f.submit(t, "answer two")
	session := f.controller.Session()
	assert.Equal(t, 2, session.QuestionIndex)
	assert.Len(t, f.controller.Candidate().Answers, 2)

	// Exhausting the questions forces evaluation and persistence within
	// the same logical turn.
	assert.Equal(t, StageDone, session.Stage)
	assert.Equal(t, 1, f.evaluator.calls)
	assert.Equal(t, []string{"Q1", "Q2"}, f.evaluator.gotQuestions)
	assert.Equal(t, map[string]string{"Q1": "answer one", "Q2": "answer two"}, f.evaluator.gotAnswers)
	assert.Equal(t, 1, f.store.calls)
	assert.Equal(t, f.controller.Candidate(), f.store.saved)
	assert.NotNil(t, f.controller.Candidate().Evaluation)
	assert.Equal(t, 1, f.assistantCount(msgEvaluating))
	assert.Equal(t, 1, f.assistantCount(msgClosing))
}

func TestControllerReentryDoesNotDuplicatePrompts(t *testing.T) {
	f := newFixture([]string{"Q1"})
	require.NoError(t, f.controller.Start(context.Background()))
	require.NoError(t, f.controller.Start(context.Background()))
	assert.Equal(t, 1, f.assistantCount(msgGreeting))

	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go")

	// Re-render cycles without new input must not repeat the pending
	// question.
	f.submit(t, "", "  ", "")
	assert.Equal(t, 1, f.assistantCount("Q1"))
	assert.Equal(t, StageAskQuestions, f.controller.Session().Stage)
	assert.Equal(t, 0, f.controller.Session().QuestionIndex)
}

func TestControllerEmptyUtteranceIsNoOp(t *testing.T) {
	f := newFixture(nil)
	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice")

	transcriptLen := len(f.controller.Session().Transcript)
	f.submit(t, "", "   \t ")

	assert.Equal(t, StageAskEmail, f.controller.Session().Stage)
	assert.Len(t, f.controller.Session().Transcript, transcriptLen)
	assert.Empty(t, f.controller.Candidate().Email)
}

func TestControllerGeneratorFailureIsRecoverable(t *testing.T) {
	f := newFixture([]string{"Q1"})
	f.generator.err = errors.New("oracle down")

	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go")

	assert.Equal(t, StageAskTechStack, f.controller.Session().Stage)
	assert.Equal(t, 1, f.assistantCount(msgGeneratorDown))

	// Resending the tech stack retries generation.
	f.generator.err = nil
	f.submit(t, "Go, Python")

	assert.Equal(t, StageAskQuestions, f.controller.Session().Stage)
	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, "Go, Python", f.controller.Candidate().TechStack)
}

func TestControllerZeroQuestionsSkipsToEvaluation(t *testing.T) {
	f := newFixture(nil)
	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go")

	assert.Equal(t, StageDone, f.controller.Session().Stage)
	assert.Equal(t, 1, f.evaluator.calls)
	assert.Empty(t, f.evaluator.gotQuestions)
	assert.Equal(t, 1, f.store.calls)
}

func TestControllerEvaluatorFallbackStillReachesDone(t *testing.T) {
	f := newFixture([]string{"Q1"})
	f.evaluator.outcome = &Outcome{Raw: "not parseable"}

	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go", "answer")

	assert.Equal(t, StageDone, f.controller.Session().Stage)
	require.NotNil(t, f.store.saved.Evaluation)
	assert.True(t, f.store.saved.Evaluation.Fallback())
	assert.Equal(t, "not parseable", f.store.saved.Evaluation.Raw)
}

func TestControllerEvaluatorErrorRetriesOnNextUtterance(t *testing.T) {
	f := newFixture([]string{"Q1"})
	f.evaluator.err = errors.New("oracle down")

	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go", "answer")

	assert.Equal(t, StageEvaluate, f.controller.Session().Stage)
	assert.Equal(t, 1, f.assistantCount(msgEvaluatorDown))
	assert.Equal(t, 0, f.store.calls)

	f.evaluator.err = nil
	f.submit(t, "retry please")

	assert.Equal(t, StageDone, f.controller.Session().Stage)
	assert.Equal(t, 2, f.evaluator.calls)
	assert.Equal(t, 1, f.store.calls)
}

func TestControllerEvaluateRunsExactlyOnce(t *testing.T) {
	f := newFixture([]string{"Q1"})
	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go", "answer")

	require.Equal(t, StageDone, f.controller.Session().Stage)

	// Forcing the evaluate body again must not re-invoke the evaluator or
	// re-save the record.
	f.controller.session.Stage = StageEvaluate
	f.submit(t, "again")

	assert.Equal(t, 1, f.evaluator.calls)
	assert.Equal(t, 1, f.store.calls)
}

func TestControllerStoreFailureStillReachesDone(t *testing.T) {
	f := newFixture([]string{"Q1"})
	f.store.err = errors.New("disk full")

	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go")

	err := f.controller.HandleUtterance(context.Background(), "answer")
	require.Error(t, err)

	assert.Equal(t, StageDone, f.controller.Session().Stage)
	assert.Equal(t, 1, f.assistantCount(msgSaveFailed))
	assert.Equal(t, 1, f.assistantCount(msgClosing))
}

func TestControllerDoneIgnoresInput(t *testing.T) {
	f := newFixture([]string{"Q1"})
	require.NoError(t, f.controller.Start(context.Background()))
	f.submit(t, "Alice", "a@b.com", "555-1234", "Engineer", "3", "Go", "answer")
	require.Equal(t, StageDone, f.controller.Session().Stage)

	transcriptLen := len(f.controller.Session().Transcript)
	answers := len(f.controller.Candidate().Answers)

	f.submit(t, "hello?", "anyone there?")

	assert.Equal(t, StageDone, f.controller.Session().Stage)
	assert.Len(t, f.controller.Session().Transcript, transcriptLen)
	assert.Len(t, f.controller.Candidate().Answers, answers)
	assert.Equal(t, 1, f.evaluator.calls)
	assert.Equal(t, 1, f.store.calls)
}

func TestControllerStagesAdvanceStrictlyForward(t *testing.T) {
	f := newFixture([]string{"Q1"})
	require.NoError(t, f.controller.Start(context.Background()))

	expected := []Stage{
		StageAskEmail,
		StageAskPhone,
		StageAskRole,
		StageAskExperience,
		StageAskTechStack,
		StageAskQuestions,
	}

	for i, utterance := range []string{"Alice", "a@b.com", "555-1234", "Engineer", "3", "Go"} {
		f.submit(t, utterance)
		require.Equal(t, expected[i], f.controller.Session().Stage, fmt.Sprintf("after utterance %d", i))
	}
}
