package ai

import "context"

// Generator produces a single text completion for a system/user prompt pair.
// Implementations carry no conversation memory: every call receives the full
// context it needs.
type Generator interface {
	GenerateContent(ctx context.Context, system, user string) (string, error)
}
