package domain

import (
	"errors"
	"fmt"
)

// CheckConsistency enforces the cross-field rules struct tags cannot
// express: unique ids per id space and in-range answer indexes.
func (c Course) CheckConsistency() error {
	var errs []error
	if dup := firstDuplicate(c.MarkerIDs()); dup != "" {
		errs = append(errs, fmt.Errorf("duplicate marker id %q", dup))
	}
	if dup := firstDuplicate(c.ArticleAnchorIDs()); dup != "" {
		errs = append(errs, fmt.Errorf("duplicate article anchor id %q", dup))
	}
	if dup := firstDuplicate(c.QuestionAnchorIDs()); dup != "" {
		errs = append(errs, fmt.Errorf("duplicate question anchor id %q", dup))
	}
	questionIDs := make([]string, 0, len(c.Questions))
	for _, q := range c.Questions {
		questionIDs = append(questionIDs, q.ID)
		if q.Type != QuestionAnalysis && len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %q: choice question needs options", q.ID))
		}
	}
	if dup := firstDuplicate(questionIDs); dup != "" {
		errs = append(errs, fmt.Errorf("duplicate question id %q", dup))
	}
	if c.Quiz != nil {
		quizIDs := make([]string, 0, len(c.Quiz.Questions))
		for _, q := range c.Quiz.Questions {
			quizIDs = append(quizIDs, q.ID)
			if q.CorrectIndex >= len(q.Options) {
				errs = append(errs, fmt.Errorf("quiz question %q: correct index %d out of range", q.ID, q.CorrectIndex))
			}
		}
		if dup := firstDuplicate(quizIDs); dup != "" {
			errs = append(errs, fmt.Errorf("duplicate quiz question id %q", dup))
		}
	}
	return errors.Join(errs...)
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}
