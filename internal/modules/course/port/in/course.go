package in

import (
	"context"

	"huixue/internal/modules/course/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.CourseSummary, error)
	// Get returns a validated course with its article content loaded.
	Get(ctx context.Context, id string) (dto.Course, error)
	ImportMarkers(ctx context.Context, input dto.ImportMarkersInput) (dto.ImportMarkersOutput, error)
}
