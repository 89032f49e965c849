package out

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"huixue/internal/modules/course/domain"
	apperrors "huixue/internal/platform/errors"
)

//go:embed sample/*.yaml
var sampleFS embed.FS

// EmbeddedCourseStore serves the courses bundled into the binary.
type EmbeddedCourseStore struct {
	fsys fs.FS
}

func NewEmbeddedCourseStore() *EmbeddedCourseStore {
	return &EmbeddedCourseStore{fsys: sampleFS}
}

func (s *EmbeddedCourseStore) List(_ context.Context) ([]domain.Course, error) {
	paths, err := fs.Glob(s.fsys, "sample/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob bundled courses: %w", err)
	}
	sort.Strings(paths)
	out := make([]domain.Course, 0, len(paths))
	for _, path := range paths {
		f, err := s.fsys.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bundled course %s: %w", path, err)
		}
		c, err := decodeCourse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode bundled course %s: %w", path, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *EmbeddedCourseStore) Find(ctx context.Context, id string) (domain.Course, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return domain.Course{}, err
	}
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Course{}, fmt.Errorf("%w: %s", apperrors.ErrCourseNotFound, id)
}
