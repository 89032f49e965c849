package usecase

import (
	"context"

	"huixue/internal/modules/course/domain"
	"huixue/internal/modules/course/dto"
	coursein "huixue/internal/modules/course/port/in"
	"huixue/internal/modules/course/service"
)

type Interactor struct {
	svc *service.CourseService
}

func NewInteractor(svc *service.CourseService) coursein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.CourseSummary, error) {
	courses, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, dto.CourseSummary{
			ID:        c.ID,
			Title:     c.Title,
			Duration:  c.Duration,
			Markers:   len(c.Markers),
			Questions: len(c.Questions),
			HasQuiz:   c.Quiz != nil,
			Article:   c.Article != nil,
		})
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.Course, error) {
	c, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.Course{}, err
	}
	return toDTO(c), nil
}

func (i *Interactor) ImportMarkers(ctx context.Context, input dto.ImportMarkersInput) (dto.ImportMarkersOutput, error) {
	res, err := i.svc.ImportMarkers(ctx, input.CourseID, input.Path, input.Sheet)
	out := dto.ImportMarkersOutput{Path: res.Path, Imported: res.Imported}
	for _, re := range res.RowErrors {
		out.RowErrors = append(out.RowErrors, re.Error())
	}
	return out, err
}

func toDTO(c domain.Course) dto.Course {
	out := dto.Course{
		ID:       c.ID,
		Title:    c.Title,
		VideoURL: c.VideoURL,
		Duration: c.Duration,
		Summary:  c.Summary,
		Markers:  make([]dto.Marker, 0, len(c.Markers)),
	}
	for _, m := range c.Markers {
		out.Markers = append(out.Markers, dto.Marker{
			ID:              m.ID,
			Time:            m.Time,
			Title:           m.Title,
			Type:            string(m.Type),
			Description:     m.Description,
			TeachingMessage: m.TeachingMessage,
			ExpectedAnswer:  m.ExpectedAnswer,
		})
	}
	if c.Quiz != nil {
		q := &dto.Quiz{TimeLimitMinutes: c.Quiz.Minutes()}
		for _, qq := range c.Quiz.Questions {
			q.Questions = append(q.Questions, dto.QuizQuestion{
				ID:                    qq.ID,
				Question:              qq.Question,
				Options:               append([]string(nil), qq.Options...),
				CorrectIndex:          qq.CorrectIndex,
				Explanation:           qq.Explanation,
				RelatedKnowledgePoint: qq.RelatedKnowledgePoint,
			})
		}
		out.Quiz = q
	}
	if c.Article != nil {
		out.Article = &dto.Article{
			ID:      c.Article.ID,
			Title:   c.Article.Title,
			Content: c.Article.Content,
			Anchors: anchorsDTO(c.Article.Anchors),
		}
	}
	for _, q := range c.Questions {
		dq := dto.Question{
			ID:              q.ID,
			Type:            string(q.Type),
			Title:           q.Title,
			Stem:            q.Stem,
			Anchors:         anchorsDTO(q.Anchors),
			Analysis:        q.Analysis,
			ReferenceAnswer: q.ReferenceAnswer,
		}
		for _, o := range q.Options {
			dq.Options = append(dq.Options, dto.QuestionOption{ID: o.ID, Label: o.Label, Content: o.Content})
		}
		out.Questions = append(out.Questions, dq)
	}
	return out
}

func anchorsDTO(in []domain.Anchor) []dto.Anchor {
	out := make([]dto.Anchor, 0, len(in))
	for _, a := range in {
		out = append(out, dto.Anchor{
			ID:             a.ID,
			Start:          a.Range.Start,
			End:            a.Range.End,
			Content:        a.Content,
			Type:           string(a.Type),
			Description:    a.Description,
			TeachingPrompt: a.TeachingPrompt,
		})
	}
	return out
}
