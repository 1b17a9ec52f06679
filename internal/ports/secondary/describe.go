package secondary

import "context"

// DescriptionProvider supplies a human-readable description for a task.
// Best-effort: implementations fall back to a local template and never
// block create or update on an upstream failure.
type DescriptionProvider interface {
	Describe(ctx context.Context, title, category, priority string) string
}
