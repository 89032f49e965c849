package in

import (
	"context"

	"huixue/internal/modules/progress/dto"
)

// Usecase is the progress store contract. Load, Save and Reset never fail
// the caller: storage problems are logged and treated as absent progress.
type Usecase interface {
	Load(ctx context.Context, courseID string) (dto.Record, bool)
	Save(ctx context.Context, input dto.SaveInput)
	Reset(ctx context.Context, courseID string)
	RemainingValidityDays(ctx context.Context, courseID string) int
	HasValid(ctx context.Context, courseID string) bool
	PurgeExpired(ctx context.Context) (dto.PurgeOutput, error)
	ExportCards(ctx context.Context, input dto.ExportCardsInput) (dto.ExportCardsOutput, error)
}
