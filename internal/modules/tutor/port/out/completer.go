package out

import (
	"context"

	"huixue/internal/modules/tutor/domain"
)

type Request struct {
	System   string
	Messages []domain.Turn
}

// Completer sends one prompt to a language model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
