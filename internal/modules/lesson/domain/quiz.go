package domain

import (
	"math"
	"time"
)

// FullCelebrationScore is the lowest quiz score that earns the full-screen
// celebration.
const FullCelebrationScore = 80

type QuizItem struct {
	ID                    string
	CorrectIndex          int
	RelatedKnowledgePoint string
}

type QuizAnswer struct {
	QuestionID    string
	SelectedIndex int
	IsCorrect     bool
}

type QuizResult struct {
	Score        int
	Total        int
	CorrectCount int
	TimeTaken    int
	Answers      []QuizAnswer
	WeakPoints   []string
}

// ScoreQuiz grades selections keyed by question id. Unanswered questions are
// recorded with SelectedIndex -1 and count as wrong.
func ScoreQuiz(items []QuizItem, selected map[string]int, elapsed time.Duration) QuizResult {
	res := QuizResult{
		Total:     len(items),
		TimeTaken: int(elapsed.Round(time.Second) / time.Second),
		Answers:   make([]QuizAnswer, 0, len(items)),
	}
	weak := map[string]struct{}{}
	for _, it := range items {
		idx, ok := selected[it.ID]
		if !ok {
			idx = -1
		}
		correct := ok && idx == it.CorrectIndex
		if correct {
			res.CorrectCount++
		} else if it.RelatedKnowledgePoint != "" {
			if _, dup := weak[it.RelatedKnowledgePoint]; !dup {
				weak[it.RelatedKnowledgePoint] = struct{}{}
				res.WeakPoints = append(res.WeakPoints, it.RelatedKnowledgePoint)
			}
		}
		res.Answers = append(res.Answers, QuizAnswer{QuestionID: it.ID, SelectedIndex: idx, IsCorrect: correct})
	}
	if res.Total > 0 {
		res.Score = int(math.Round(float64(res.CorrectCount) / float64(res.Total) * 100))
	}
	return res
}

type Celebration int

const (
	CelebrationNone Celebration = iota
	CelebrationLight
	CelebrationFull
)

func (c Celebration) String() string {
	switch c {
	case CelebrationLight:
		return "light"
	case CelebrationFull:
		return "full"
	default:
		return "none"
	}
}

func (r QuizResult) Celebration() Celebration {
	if r.Score >= FullCelebrationScore {
		return CelebrationFull
	}
	return CelebrationNone
}
