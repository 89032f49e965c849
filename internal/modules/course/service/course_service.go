package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	hclog "github.com/hashicorp/go-hclog"

	"huixue/internal/modules/course/domain"
	courseout "huixue/internal/modules/course/port/out"
	apperrors "huixue/internal/platform/errors"
	"huixue/internal/platform/logging"
)

type CourseService struct {
	store    courseout.CourseStore
	writer   courseout.CourseWriter
	sheet    courseout.MarkerSheet
	readers  map[string]courseout.ArticleReader
	validate *validator.Validate
	logger   hclog.Logger
}

// NewCourseService wires article readers by lower-case file extension
// (".md", ".pdf").
func NewCourseService(
	store courseout.CourseStore,
	writer courseout.CourseWriter,
	sheet courseout.MarkerSheet,
	readers map[string]courseout.ArticleReader,
	logger hclog.Logger,
) *CourseService {
	return &CourseService{
		store:    store,
		writer:   writer,
		sheet:    sheet,
		readers:  readers,
		validate: validator.New(),
		logger:   logging.OrNull(logger).Named("course"),
	}
}

// List returns the valid courses; invalid ones are logged and skipped.
func (s *CourseService) List(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if err := s.Validate(c); err != nil {
			s.logger.Warn("skipping invalid course", "course", c.ID, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (domain.Course, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Course{}, fmt.Errorf("%w: course id is required", apperrors.ErrInvalidInput)
	}
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if err := s.loadArticle(ctx, &c); err != nil {
		return domain.Course{}, err
	}
	if err := s.Validate(c); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

func (s *CourseService) Validate(c domain.Course) error {
	if err := s.validate.Struct(c); err != nil {
		return fmt.Errorf("%w: course %q: %v", apperrors.ErrInvalidInput, c.ID, err)
	}
	if err := c.CheckConsistency(); err != nil {
		return fmt.Errorf("%w: course %q: %v", apperrors.ErrInvalidInput, c.ID, err)
	}
	return nil
}

func (s *CourseService) loadArticle(ctx context.Context, c *domain.Course) error {
	a := c.Article
	if a == nil || a.Content != "" || a.ContentFile == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(a.ContentFile))
	reader, ok := s.readers[ext]
	if !ok {
		return fmt.Errorf("%w: unsupported article file %q", apperrors.ErrInvalidInput, a.ContentFile)
	}
	text, err := reader.Read(ctx, a.ContentFile)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	a.Content = text.Body
	if len(a.Anchors) == 0 {
		a.Anchors = text.Anchors
	}
	return nil
}

type ImportResult struct {
	Path      string
	Imported  int
	RowErrors []courseout.RowError
}

// ImportMarkers replaces a course's markers with the rows of a spreadsheet
// and writes the course back. Unknown courses are created from the sheet.
// Rows that fail to parse are reported and skipped.
func (s *CourseService) ImportMarkers(ctx context.Context, courseID, path, sheet string) (ImportResult, error) {
	if strings.TrimSpace(courseID) == "" || strings.TrimSpace(path) == "" {
		return ImportResult{}, fmt.Errorf("%w: course id and spreadsheet path are required", apperrors.ErrInvalidInput)
	}
	markers, rowErrs, err := s.sheet.ReadMarkers(ctx, path, sheet)
	if err != nil {
		return ImportResult{}, err
	}
	for _, re := range rowErrs {
		s.logger.Warn("marker row skipped", "file", path, "row", re.Row, "error", re.Err)
	}

	c, err := s.store.Find(ctx, courseID)
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound):
		c = domain.Course{ID: courseID, Title: courseID}
	case err != nil:
		return ImportResult{}, err
	}
	c.Markers = markers
	if err := s.Validate(c); err != nil {
		return ImportResult{RowErrors: rowErrs}, err
	}
	out, err := s.writer.Write(ctx, c)
	if err != nil {
		return ImportResult{RowErrors: rowErrs}, err
	}
	s.logger.Info("markers imported", "course", courseID, "count", len(markers), "path", out)
	return ImportResult{Path: out, Imported: len(markers), RowErrors: rowErrs}, nil
}
