package out

import (
	"context"
	"fmt"

	"huixue/internal/modules/course/domain"
)

// CourseStore reads course definitions. Find returns
// apperrors.ErrCourseNotFound for unknown ids.
type CourseStore interface {
	List(ctx context.Context) ([]domain.Course, error)
	Find(ctx context.Context, id string) (domain.Course, error)
}

type CourseWriter interface {
	Write(ctx context.Context, course domain.Course) (string, error)
}

// ArticleText is article content loaded from a file, with any anchors the
// file declares.
type ArticleText struct {
	Body    string
	Anchors []domain.Anchor
}

type ArticleReader interface {
	Read(ctx context.Context, path string) (ArticleText, error)
}

type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

type MarkerSheet interface {
	ReadMarkers(ctx context.Context, path, sheet string) ([]domain.Marker, []RowError, error)
}
