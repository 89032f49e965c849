package in

import (
	"context"

	tutordto "huixue/internal/modules/tutor/dto"
	tutorin "huixue/internal/modules/tutor/port/in"
)

type CLIHandler struct {
	usecase tutorin.Usecase
}

func NewCLIHandler(usecase tutorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Eval(raw string) tutordto.Reply {
	return h.usecase.Evaluate(raw)
}

// Ask sends a single question, optionally framed by a knowledge point title.
func (h CLIHandler) Ask(ctx context.Context, title, question string) (tutordto.Reply, error) {
	conv := h.usecase.NewConversation()
	if title != "" {
		conv.SetContext(tutordto.KnowledgeContext{Title: title})
	}
	return conv.Send(ctx, question)
}

func (h CLIHandler) Offline() bool { return h.usecase.Offline() }
