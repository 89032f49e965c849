package in

import (
	"context"

	lessonin "huixue/internal/modules/lesson/port/in"
)

type TUIHandler struct {
	usecase lessonin.Usecase
}

func NewTUIHandler(usecase lessonin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

// Resume opens a course and restores its saved progress.
func (h TUIHandler) Resume(ctx context.Context, courseID string) (lessonin.Session, error) {
	s, err := h.usecase.Open(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.Start(ctx)
	return s, nil
}
