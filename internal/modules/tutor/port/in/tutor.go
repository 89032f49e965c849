package in

import (
	"context"

	"huixue/internal/modules/tutor/dto"
)

type Usecase interface {
	// Evaluate judges a raw tutor reply without contacting the tutor.
	Evaluate(raw string) dto.Reply
	// NewConversation starts an empty conversation owned by the caller.
	NewConversation() Conversation
	// Offline reports whether replies come from the built-in responder.
	Offline() bool
}

// Conversation is one learner's dialogue with the tutor. One Send runs at a
// time; SetContext and Reset may be called while it is outstanding, and the
// late reply is then returned but kept out of the new history.
type Conversation interface {
	SetContext(k dto.KnowledgeContext)
	// Send returns an Unjudged apology reply together with a wrapped
	// apperrors.ErrTutorUnavailable when the tutor cannot be reached.
	Send(ctx context.Context, text string) (dto.Reply, error)
	Reset()
	History() []dto.Turn
}
