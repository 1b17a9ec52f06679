package primary

import "context"

// ChatService resolves free-text commands into facade operations. It only
// ever acts on an unambiguous target: when several tasks match a textual
// identifier it answers with the candidates and performs nothing.
type ChatService interface {
	Resolve(ctx context.Context, input string) (*ChatReply, error)
}

// ChatReply is the resolver's answer.
type ChatReply struct {
	Text       string
	Performed  bool     // an operation was actually executed
	Candidates []string // filled when disambiguation is needed
}
