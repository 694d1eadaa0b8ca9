package dialog

import (
	"context"

	"github.com/astrelay/astrelay/internal/alice"
)

// ReplyButton is a call-to-action suggested alongside a reply.
type ReplyButton struct {
	Title   string
	Payload string
	URL     string
}

// Reply is the engine's native response: text plus optional speech override,
// session termination and suggested actions.
type Reply struct {
	Text       string
	TTS        string
	EndSession bool
	Buttons    []ReplyButton
}

// Engine is the shared dialog business logic. It consumes requests in the
// Alice skill schema; other platforms reach it through a synthesized shim.
type Engine interface {
	Handle(ctx context.Context, req *alice.Request) (*Reply, error)
}
