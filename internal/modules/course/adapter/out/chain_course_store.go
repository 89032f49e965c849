package out

import (
	"context"
	"errors"
	"fmt"

	"huixue/internal/modules/course/domain"
	courseout "huixue/internal/modules/course/port/out"
	apperrors "huixue/internal/platform/errors"
)

// ChainCourseStore consults stores in order. An id found in an earlier store
// shadows the same id in later ones.
type ChainCourseStore struct {
	stores []courseout.CourseStore
}

func NewChainCourseStore(stores ...courseout.CourseStore) *ChainCourseStore {
	return &ChainCourseStore{stores: stores}
}

func (s *ChainCourseStore) List(ctx context.Context) ([]domain.Course, error) {
	seen := map[string]struct{}{}
	var out []domain.Course
	for _, store := range s.stores {
		courses, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range courses {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ChainCourseStore) Find(ctx context.Context, id string) (domain.Course, error) {
	for _, store := range s.stores {
		c, err := store.Find(ctx, id)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			return domain.Course{}, err
		}
	}
	return domain.Course{}, fmt.Errorf("%w: %s", apperrors.ErrCourseNotFound, id)
}
