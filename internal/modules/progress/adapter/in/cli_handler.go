package in

import (
	"context"

	progressdto "huixue/internal/modules/progress/dto"
	progressin "huixue/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context, courseID string) (progressdto.Record, bool) {
	return h.usecase.Load(ctx, courseID)
}

func (h CLIHandler) Reset(ctx context.Context, courseID string) {
	h.usecase.Reset(ctx, courseID)
}

func (h CLIHandler) RemainingDays(ctx context.Context, courseID string) int {
	return h.usecase.RemainingValidityDays(ctx, courseID)
}

func (h CLIHandler) Prune(ctx context.Context) (progressdto.PurgeOutput, error) {
	return h.usecase.PurgeExpired(ctx)
}

func (h CLIHandler) ExportCards(ctx context.Context, courseID, courseTitle string) (progressdto.ExportCardsOutput, error) {
	return h.usecase.ExportCards(ctx, progressdto.ExportCardsInput{CourseID: courseID, CourseTitle: courseTitle})
}
