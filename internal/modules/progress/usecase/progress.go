package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"huixue/internal/modules/progress/domain"
	"huixue/internal/modules/progress/dto"
	progressin "huixue/internal/modules/progress/port/in"
	progressout "huixue/internal/modules/progress/port/out"
	"huixue/internal/modules/progress/service"
	"huixue/internal/platform/clock"
	apperrors "huixue/internal/platform/errors"
)

type Interactor struct {
	svc   *service.ProgressService
	cards progressout.CardWriter
	clock clock.Clock
}

func NewInteractor(svc *service.ProgressService, cards progressout.CardWriter, clk clock.Clock) progressin.Usecase {
	return &Interactor{svc: svc, cards: cards, clock: clk}
}

func (i *Interactor) Load(ctx context.Context, courseID string) (dto.Record, bool) {
	record, ok := i.svc.Load(ctx, courseID)
	if !ok {
		return dto.Record{}, false
	}
	out := toRecordDTO(record)
	out.RemainingDays = record.RemainingDays(i.clock.Now())
	return out, true
}

func (i *Interactor) Save(ctx context.Context, input dto.SaveInput) {
	i.svc.Save(ctx, input.CourseID, toPatch(input))
}

func (i *Interactor) Reset(ctx context.Context, courseID string) {
	i.svc.Reset(ctx, courseID)
}

func (i *Interactor) RemainingValidityDays(ctx context.Context, courseID string) int {
	return i.svc.RemainingValidityDays(ctx, courseID)
}

func (i *Interactor) HasValid(ctx context.Context, courseID string) bool {
	return i.svc.HasValid(ctx, courseID)
}

func (i *Interactor) PurgeExpired(ctx context.Context) (dto.PurgeOutput, error) {
	scanned, removed, err := i.svc.PurgeExpired(ctx)
	return dto.PurgeOutput{Scanned: scanned, Removed: removed}, err
}

func (i *Interactor) ExportCards(ctx context.Context, input dto.ExportCardsInput) (dto.ExportCardsOutput, error) {
	if strings.TrimSpace(input.CourseID) == "" {
		return dto.ExportCardsOutput{}, fmt.Errorf("%w: course id is required", apperrors.ErrInvalidInput)
	}
	if i.cards == nil {
		return dto.ExportCardsOutput{}, fmt.Errorf("card writer is not configured")
	}
	record, ok := i.svc.Load(ctx, input.CourseID)
	if !ok {
		return dto.ExportCardsOutput{}, apperrors.ErrNoProgress
	}
	deck := domain.CardDeck{
		CourseID:   record.CourseID,
		Title:      input.CourseTitle,
		Points:     record.KnowledgePoints,
		Completed:  record.CompletedMarkers,
		ExportedAt: i.clock.Now(),
	}
	if deck.Title == "" {
		deck.Title = record.CourseID
	}
	if record.LastQuizResult != nil {
		score := record.LastQuizResult.Score
		deck.QuizScore = &score
	}
	path, err := i.cards.Write(ctx, deck)
	if err != nil {
		return dto.ExportCardsOutput{}, err
	}
	return dto.ExportCardsOutput{Path: path, Count: len(deck.Points)}, nil
}

func toPatch(in dto.SaveInput) domain.Patch {
	patch := domain.Patch{
		CompletedMarkers:  in.CompletedMarkers,
		QuizCompleted:     in.QuizCompleted,
		SetLastQuizResult: in.SetLastQuizResult,
	}
	if in.KnowledgePoints != nil {
		points := make([]domain.KnowledgePoint, 0, len(*in.KnowledgePoints))
		for _, kp := range *in.KnowledgePoints {
			points = append(points, toPointDomain(kp))
		}
		patch.KnowledgePoints = &points
	}
	if in.QuizResults != nil {
		results := make([]domain.QuizResult, 0, len(*in.QuizResults))
		for _, r := range *in.QuizResults {
			results = append(results, toQuizDomain(r))
		}
		patch.QuizResults = &results
	}
	if in.ActiveView != nil {
		view := domain.View(*in.ActiveView)
		patch.ActiveView = &view
	}
	if in.SetLastQuizResult && in.LastQuizResult != nil {
		r := toQuizDomain(*in.LastQuizResult)
		patch.LastQuizResult = &r
	}
	return patch
}

func toRecordDTO(r domain.Record) dto.Record {
	out := dto.Record{
		CourseID:         r.CourseID,
		CompletedMarkers: append([]string(nil), r.CompletedMarkers...),
		LastAccess:       time.UnixMilli(r.LastAccessTime).UTC(),
		ActiveView:       string(r.ActiveView),
		QuizCompleted:    r.QuizCompleted,
	}
	for _, kp := range r.KnowledgePoints {
		out.KnowledgePoints = append(out.KnowledgePoints, dto.KnowledgePoint{
			ID:            kp.ID,
			Type:          kp.Type,
			Content:       kp.Content,
			Phonetic:      kp.Phonetic,
			Translation:   kp.Translation,
			ExampleInText: kp.ExampleInText,
			ExampleOther:  kp.ExampleOther,
		})
	}
	for _, q := range r.QuizResults {
		out.QuizResults = append(out.QuizResults, toQuizDTO(q))
	}
	if r.LastQuizResult != nil {
		q := toQuizDTO(*r.LastQuizResult)
		out.LastQuizResult = &q
	}
	return out
}

func toPointDomain(kp dto.KnowledgePoint) domain.KnowledgePoint {
	return domain.KnowledgePoint{
		ID:            kp.ID,
		Type:          kp.Type,
		Content:       kp.Content,
		Phonetic:      kp.Phonetic,
		Translation:   kp.Translation,
		ExampleInText: kp.ExampleInText,
		ExampleOther:  kp.ExampleOther,
	}
}

func toQuizDomain(r dto.QuizResult) domain.QuizResult {
	out := domain.QuizResult{
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		TimeTaken:    r.TimeTaken,
		Answers:      make([]domain.QuizAnswer, 0, len(r.Answers)),
		WeakPoints:   append([]string{}, r.WeakPoints...),
	}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, domain.QuizAnswer{QuestionID: a.QuestionID, SelectedIndex: a.SelectedIndex, IsCorrect: a.IsCorrect})
	}
	return out
}

func toQuizDTO(r domain.QuizResult) dto.QuizResult {
	out := dto.QuizResult{
		Score:        r.Score,
		Total:        r.Total,
		CorrectCount: r.CorrectCount,
		TimeTaken:    r.TimeTaken,
		WeakPoints:   append([]string(nil), r.WeakPoints...),
	}
	for _, a := range r.Answers {
		out.Answers = append(out.Answers, dto.QuizAnswer{QuestionID: a.QuestionID, SelectedIndex: a.SelectedIndex, IsCorrect: a.IsCorrect})
	}
	return out
}
