package port

import "context"

// Generator produces an answer from a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName reports the model the server has loaded. It doubles as a health check.
	ModelName(ctx context.Context) (string, error)
}
