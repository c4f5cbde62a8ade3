package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/oracle"
)

const defaultQuestionsPerSkill = 3

const questionPromptTemplate = "You are an interviewer. Generate %d technical interview questions for a candidate with %s years of " +
	"experience skilled in %s. Keep them concise and clear. Number each question."

// Generator produces interview questions from a comma-separated skill list,
// one oracle call per skill.
type Generator struct {
	oracle   oracle.Oracle
	perSkill int
	logger   *zap.Logger
}

// NewGenerator creates a question generator asking for perSkill questions
// per skill token (default 3 when non-positive).
func NewGenerator(o oracle.Oracle, perSkill int, log *zap.Logger) *Generator {
	if perSkill <= 0 {
		perSkill = defaultQuestionsPerSkill
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{oracle: o, perSkill: perSkill, logger: log}
}

// Generate splits the tech stack on commas and issues one oracle request per
// skill token, concatenating the parsed question lists in token order. A
// token whose response parses into fewer lines than requested simply
// contributes fewer questions; nothing is padded.
func (g *Generator) Generate(ctx context.Context, techStack, experience string) ([]string, error) {
	skills := SplitSkills(techStack)

	questions := make([]string, 0, len(skills)*g.perSkill)
	for _, skill := range skills {
		prompt := fmt.Sprintf(questionPromptTemplate, g.perSkill, experience, skill)

		raw, err := g.oracle.Complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate questions for %q: %w", skill, err)
		}

		parsed := parseQuestionLines(raw, g.perSkill)
		if len(parsed) < g.perSkill {
			g.logger.Debug("oracle returned fewer questions than requested",
				zap.String("skill", skill),
				zap.Int("requested", g.perSkill),
				zap.Int("parsed", len(parsed)),
			)
		}

		questions = append(questions, parsed...)
	}

	g.logger.Info("generated interview questions",
		zap.Int("skills", len(skills)),
		zap.Int("questions", len(questions)),
	)

	return questions, nil
}

// SplitSkills splits a comma-separated skill list, trimming whitespace and
// dropping empty tokens. Order is preserved and duplicates are kept.
func SplitSkills(techStack string) []string {
	var skills []string
	for _, token := range strings.Split(techStack, ",") {
		if token = strings.TrimSpace(token); token != "" {
			skills = append(skills, token)
		}
	}
	return skills
}

// parseQuestionLines turns the oracle's free-text response into question
// strings: blank lines are discarded, leading numbering is stripped, and at
// most limit lines are kept.
func parseQuestionLines(raw string, limit int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = stripNumbering(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func stripNumbering(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "0123456789")
	line = strings.TrimLeft(line, ".)- ")
	return strings.TrimSpace(line)
}
