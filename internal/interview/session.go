package interview

// Stage is one state of the conversation controller's linear flow.
type Stage string

const (
	StageIntro         Stage = "intro"
	StageAskEmail      Stage = "ask_email"
	StageAskPhone      Stage = "ask_phone"
	StageAskRole       Stage = "ask_role"
	StageAskExperience Stage = "ask_experience"
	StageAskTechStack  Stage = "ask_tech_stack"
	StageAskQuestions  Stage = "ask_questions"
	StageEvaluate      Stage = "evaluate"
	StageDone          Stage = "done"
)

// Role attributes a transcript turn to one of the two conversation parties.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in the transcript.
type Turn struct {
	Role Role
	Text string
}

// Session holds the state of one interview conversation. Its lifecycle is a
// single interview: created when the conversation starts, discarded once the
// done stage is reached or the conversation is abandoned.
type Session struct {
	Stage         Stage
	Transcript    []Turn
	QuestionIndex int

	// Emission guards. Each stage's prompt must appear in the transcript
	// exactly once, no matter how many times the stage is re-entered.
	introShown      bool
	questionEmitted bool

	// evaluated fences the evaluate stage body so the evaluator is never
	// re-invoked and the record never re-saved for the same session.
	evaluated bool
}

// NewSession returns a fresh session positioned at the intro stage.
func NewSession() *Session {
	return &Session{Stage: StageIntro}
}

func (s *Session) append(role Role, text string) {
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text})
}
