package oracle

import "context"

// Oracle is the text-completion backend consumed by the question generator
// and the answer evaluator. One request, one response, no streaming.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
