package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/hashing"
)

// Assistant prompts, one per stage transition.
const (
	msgGreeting       = "Hello! I'm TalentScout. What's your name?"
	msgAskEmailFmt    = "Hello %s, nice to meet you! Could you share your email address?"
	msgAskPhone       = "Thanks! And what's your phone number?"
	msgAskRole        = "Great! What role are you applying for?"
	msgAskExperience  = "Nice! How many years of experience do you have?"
	msgAskTechStack   = "And finally, what are your main tech skills? (Separate by commas)"
	msgGenerating     = "Thanks! Generating your interview questions, please wait..."
	msgEvaluating     = "Thanks for answering all questions! Evaluating your responses..."
	msgClosing        = "Thank you! If everything looks good, our HR team will reach out to you within 24 hours."
	msgGeneratorDown  = "Sorry, I couldn't generate your questions right now. Please send your tech skills again to retry."
	msgEvaluatorDown  = "Sorry, I couldn't evaluate your answers right now. Send any message to retry."
	msgSaveFailed     = "Your evaluation finished, but saving the record failed. Our team has been notified."
)

// CompletionNotice is the static text the surface shows once the session has
// reached the done stage.
const CompletionNotice = "Interview session complete. You may now close this window."

// QuestionGenerator produces the interview questions for a tech stack.
type QuestionGenerator interface {
	Generate(ctx context.Context, techStack, experience string) ([]string, error)
}

// AnswerEvaluator scores the collected answers.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, questions []string, answers map[string]string) (*Outcome, error)
}

// RecordStore persists the finished candidate record.
type RecordStore interface {
	Save(candidate *Candidate) (string, error)
}

// Sink receives every turn the controller appends to the transcript.
type Sink interface {
	Render(role Role, text string)
}

// Controller drives one linear intake conversation: it consumes user
// utterances, fills the candidate record stage by stage, and invokes the
// generator, evaluator and store at the right transitions.
type Controller struct {
	session   *Session
	candidate *Candidate
	generator QuestionGenerator
	evaluator AnswerEvaluator
	store     RecordStore
	sink      Sink
	logger    *zap.Logger
}

// NewController creates a controller with a fresh session and an empty
// candidate record.
func NewController(generator QuestionGenerator, evaluator AnswerEvaluator, store RecordStore, sink Sink, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		session:   NewSession(),
		candidate: &Candidate{Answers: make(map[string]string)},
		generator: generator,
		evaluator: evaluator,
		store:     store,
		sink:      sink,
		logger:    log,
	}
}

// Session exposes the conversation state, mainly for the surface and tests.
func (c *Controller) Session() *Session { return c.session }

// Candidate exposes the record being assembled.
func (c *Controller) Candidate() *Candidate { return c.candidate }

// Done reports whether the session has reached the terminal stage.
func (c *Controller) Done() bool { return c.session.Stage == StageDone }

// Start runs one cycle with no pending utterance, emitting the greeting.
func (c *Controller) Start(ctx context.Context) error {
	return c.HandleUtterance(ctx, "")
}

// HandleUtterance processes one user utterance end to end. When a stage
// transition requests continuation (a question to emit, an evaluation to
// run), the controller re-enters the machine within the same call instead of
// waiting for fresh input. Empty or whitespace utterances are treated as
// "no input yet".
func (c *Controller) HandleUtterance(ctx context.Context, text string) error {
	input := strings.TrimSpace(text)
	has := input != ""

	for {
		again, err := c.step(ctx, input, has)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		input, has = "", false
	}
}

// step executes the transition for the current stage. It returns true when
// the machine should be re-entered immediately without new input.
func (c *Controller) step(ctx context.Context, input string, has bool) (bool, error) {
	switch c.session.Stage {
	case StageIntro:
		if !c.session.introShown {
			c.say(msgGreeting)
			c.session.introShown = true
			return false, nil
		}
		if !has {
			return false, nil
		}
		c.candidate.Name = input
		c.echo(input)
		c.say(fmt.Sprintf(msgAskEmailFmt, input))
		c.session.Stage = StageAskEmail

	case StageAskEmail:
		if !has {
			return false, nil
		}
		c.candidate.Email = hashing.Digest(input)
		c.echo(input)
		c.say(msgAskPhone)
		c.session.Stage = StageAskPhone

	case StageAskPhone:
		if !has {
			return false, nil
		}
		c.candidate.Phone = hashing.Digest(input)
		c.echo(input)
		c.say(msgAskRole)
		c.session.Stage = StageAskRole

	case StageAskRole:
		if !has {
			return false, nil
		}
		c.candidate.Role = input
		c.echo(input)
		c.say(msgAskExperience)
		c.session.Stage = StageAskExperience

	case StageAskExperience:
		if !has {
			return false, nil
		}
		c.candidate.Experience = input
		c.echo(input)
		c.say(msgAskTechStack)
		c.session.Stage = StageAskTechStack

	case StageAskTechStack:
		return c.stepTechStack(ctx, input, has)

	case StageAskQuestions:
		return c.stepQuestions(input, has)

	case StageEvaluate:
		return c.stepEvaluate(ctx)

	case StageDone:
		// Terminal. Further input is ignored without state mutation.
		return false, nil
	}

	return false, nil
}

func (c *Controller) stepTechStack(ctx context.Context, input string, has bool) (bool, error) {
	if !has {
		return false, nil
	}

	c.candidate.TechStack = input
	c.echo(input)
	c.say(msgGenerating)

	questions, err := c.generator.Generate(ctx, input, c.candidate.Experience)
	if err != nil {
		// Recoverable: stay in this stage and let the candidate resend
		// the tech stack.
		c.logger.Error("question generation failed", zap.Error(err))
		c.say(msgGeneratorDown)
		return false, nil
	}

	c.candidate.Questions = questions
	c.session.QuestionIndex = 0
	c.session.questionEmitted = false
	c.session.Stage = StageAskQuestions

	// The first question must be shown before the next input is accepted.
	return true, nil
}

func (c *Controller) stepQuestions(input string, has bool) (bool, error) {
	questions := c.candidate.Questions

	if c.session.QuestionIndex >= len(questions) {
		c.say(msgEvaluating)
		c.session.Stage = StageEvaluate
		return true, nil
	}

	current := questions[c.session.QuestionIndex]
	if !c.session.questionEmitted {
		c.say(current)
		c.session.questionEmitted = true
	}

	if !has {
		return false, nil
	}

	c.candidate.Answers[current] = input
	c.echo(input)
	c.session.QuestionIndex++
	c.session.questionEmitted = false

	// Re-enter to emit the next question, or the evaluating notice once
	// the list is exhausted.
	return true, nil
}

func (c *Controller) stepEvaluate(ctx context.Context) (bool, error) {
	if c.session.evaluated {
		return false, nil
	}

	outcome, err := c.evaluator.Evaluate(ctx, c.candidate.Questions, c.candidate.Answers)
	if err != nil {
		// Recoverable: stay in this stage; the next utterance retries.
		c.logger.Error("answer evaluation failed", zap.Error(err))
		c.say(msgEvaluatorDown)
		return false, nil
	}

	c.session.evaluated = true
	c.candidate.Evaluation = outcome

	path, err := c.store.Save(c.candidate)

	c.say(msgClosing)
	c.session.Stage = StageDone

	if err != nil {
		// The record is lost but the candidate still reaches done; the
		// failure is surfaced to the caller.
		c.logger.Error("saving candidate record failed", zap.Error(err))
		c.say(msgSaveFailed)
		return false, fmt.Errorf("save candidate record: %w", err)
	}

	c.logger.Info("candidate record saved", zap.String("path", path))
	return false, nil
}

func (c *Controller) say(text string) {
	c.session.append(RoleAssistant, text)
	c.sink.Render(RoleAssistant, text)
}

func (c *Controller) echo(text string) {
	c.session.append(RoleUser, text)
	c.sink.Render(RoleUser, text)
}
