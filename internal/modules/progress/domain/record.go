package domain

import (
	"math"
	"strings"
	"time"
)

const (
	SchemaVersion = 1

	// KeyPrefix namespaces progress records inside a shared key-value store.
	KeyPrefix = "huixue_progress_"

	ExpiryWindow = 30 * 24 * time.Hour
	day          = 24 * time.Hour
)

// View is the content pane a learner had open.
type View string

const (
	ViewVideo    View = "video"
	ViewArticle  View = "article"
	ViewQuestion View = "question"
)

func (v View) Valid() bool {
	return v == ViewVideo || v == ViewArticle || v == ViewQuestion
}

type KnowledgePoint struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	Phonetic      string   `json:"phonetic,omitempty"`
	Translation   string   `json:"translation"`
	ExampleInText string   `json:"exampleInText"`
	ExampleOther  []string `json:"exampleOther,omitempty"`
}

type QuizAnswer struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
	IsCorrect     bool   `json:"isCorrect"`
}

type QuizResult struct {
	Score        int          `json:"score"`
	Total        int          `json:"total"`
	CorrectCount int          `json:"correctCount"`
	TimeTaken    int          `json:"timeTaken"`
	Answers      []QuizAnswer `json:"answers"`
	WeakPoints   []string     `json:"weakPoints"`
}

// Record is the persisted progress snapshot for one course. LastAccessTime
// is epoch milliseconds.
type Record struct {
	CourseID         string           `json:"courseId"`
	CompletedMarkers []string         `json:"completedMarkers"`
	KnowledgePoints  []KnowledgePoint `json:"knowledgePoints"`
	QuizResults      []QuizResult     `json:"quizResults"`
	LastAccessTime   int64            `json:"lastAccessTime"`
	ActiveView       View             `json:"activeView"`
	QuizCompleted    bool             `json:"quizCompleted"`
	LastQuizResult   *QuizResult      `json:"lastQuizResult"`
}

// Patch is a partial record. Nil fields are absent and keep the stored
// value. LastQuizResult distinguishes "absent" (SetLastQuizResult false)
// from "explicitly cleared".
type Patch struct {
	CompletedMarkers  *[]string
	KnowledgePoints   *[]KnowledgePoint
	QuizResults       *[]QuizResult
	ActiveView        *View
	QuizCompleted     *bool
	LastQuizResult    *QuizResult
	SetLastQuizResult bool
}

func Key(courseID string) string {
	return KeyPrefix + courseID
}

// CourseIDFromKey reverses Key; ok is false for keys outside the namespace.
func CourseIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, KeyPrefix), true
}

// Merge overlays patch on stored (which may be nil), fills defaults for
// anything still missing and stamps the access time.
func Merge(courseID string, stored *Record, patch Patch, now time.Time) Record {
	out := Record{
		CourseID:         courseID,
		CompletedMarkers: []string{},
		KnowledgePoints:  []KnowledgePoint{},
		QuizResults:      []QuizResult{},
		ActiveView:       ViewVideo,
	}
	if stored != nil {
		if stored.CompletedMarkers != nil {
			out.CompletedMarkers = stored.CompletedMarkers
		}
		if stored.KnowledgePoints != nil {
			out.KnowledgePoints = stored.KnowledgePoints
		}
		if stored.QuizResults != nil {
			out.QuizResults = stored.QuizResults
		}
		if stored.ActiveView.Valid() {
			out.ActiveView = stored.ActiveView
		}
		out.QuizCompleted = stored.QuizCompleted
		out.LastQuizResult = stored.LastQuizResult
	}

	if patch.CompletedMarkers != nil {
		out.CompletedMarkers = *patch.CompletedMarkers
	}
	if patch.KnowledgePoints != nil {
		out.KnowledgePoints = *patch.KnowledgePoints
	}
	if patch.QuizResults != nil {
		out.QuizResults = *patch.QuizResults
	}
	if patch.ActiveView != nil && patch.ActiveView.Valid() {
		out.ActiveView = *patch.ActiveView
	}
	if patch.QuizCompleted != nil {
		out.QuizCompleted = *patch.QuizCompleted
	}
	if patch.SetLastQuizResult {
		out.LastQuizResult = patch.LastQuizResult
	}

	out.CompletedMarkers = uniqueStrings(out.CompletedMarkers)
	out.KnowledgePoints = uniquePoints(out.KnowledgePoints)
	out.LastAccessTime = now.UnixMilli()
	return out
}

// Age is how long ago the record was last written.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(r.LastAccessTime))
}

func (r Record) Expired(now time.Time) bool {
	return r.Age(now) > ExpiryWindow
}

// RemainingDays rounds the unexpired part of the window up to whole days.
func (r Record) RemainingDays(now time.Time) int {
	remaining := ExpiryWindow - r.Age(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(day)))
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniquePoints(in []KnowledgePoint) []KnowledgePoint {
	seen := make(map[string]struct{}, len(in))
	out := make([]KnowledgePoint, 0, len(in))
	for _, kp := range in {
		if _, ok := seen[kp.ID]; ok {
			continue
		}
		seen[kp.ID] = struct{}{}
		out = append(out, kp)
	}
	return out
}
