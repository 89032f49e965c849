package in

import (
	"context"

	coursedto "huixue/internal/modules/course/dto"
	coursein "huixue/internal/modules/course/port/in"
)

type CLIHandler struct {
	usecase coursein.Usecase
}

func NewCLIHandler(usecase coursein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]coursedto.CourseSummary, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Show(ctx context.Context, id string) (coursedto.Course, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) ImportXLSX(ctx context.Context, courseID, path, sheet string) (coursedto.ImportMarkersOutput, error) {
	return h.usecase.ImportMarkers(ctx, coursedto.ImportMarkersInput{CourseID: courseID, Path: path, Sheet: sheet})
}
