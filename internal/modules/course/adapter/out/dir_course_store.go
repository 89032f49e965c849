package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"huixue/internal/modules/course/domain"
	apperrors "huixue/internal/platform/errors"
)

// DirCourseStore keeps one YAML file per course in a content directory.
// Relative article paths are resolved against that directory.
type DirCourseStore struct {
	dir string
}

func NewDirCourseStore(dir string) *DirCourseStore {
	return &DirCourseStore{dir: dir}
}

func (s *DirCourseStore) List(_ context.Context) ([]domain.Course, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Course, 0, len(paths))
	for _, path := range paths {
		c, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *DirCourseStore) Find(ctx context.Context, id string) (domain.Course, error) {
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

// Write stores the course as <id>.yaml, replacing any earlier file for the
// same id.
func (s *DirCourseStore) Write(_ context.Context, c domain.Course) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	if c.Article != nil && filepath.IsAbs(c.Article.ContentFile) {
		if rel, err := filepath.Rel(s.dir, c.Article.ContentFile); err == nil && !strings.HasPrefix(rel, "..") {
			article := *c.Article
			article.ContentFile = rel
			c.Article = &article
		}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encode course: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode course: %w", err)
	}
	path := filepath.Join(s.dir, c.ID+".yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write course: %w", err)
	}
	return path, nil
}

func (s *DirCourseStore) files() ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob courses: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *DirCourseStore) readFile(path string) (domain.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Course{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	c, err := decodeCourse(f)
	if err != nil {
		return domain.Course{}, fmt.Errorf("decode course %s: %w", path, err)
	}
	if c.Article != nil && c.Article.ContentFile != "" && !filepath.IsAbs(c.Article.ContentFile) {
		c.Article.ContentFile = filepath.Join(filepath.Dir(path), c.Article.ContentFile)
	}
	return c, nil
}

func decodeCourse(r io.Reader) (domain.Course, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c domain.Course
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Course{}, errors.New("empty course file")
		}
		return domain.Course{}, err
	}
	return c, nil
}
