package dto

import "time"

type KnowledgePoint struct {
	ID            string
	Type          string
	Content       string
	Phonetic      string
	Translation   string
	ExampleInText string
	ExampleOther  []string
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

type Record struct {
	CourseID         string
	CompletedMarkers []string
	KnowledgePoints  []KnowledgePoint
	QuizResults      []QuizResult
	LastAccess       time.Time
	ActiveView       string
	QuizCompleted    bool
	LastQuizResult   *QuizResult
	RemainingDays    int
}

// SaveInput is a partial record: nil fields are left as stored.
type SaveInput struct {
	CourseID          string
	CompletedMarkers  *[]string
	KnowledgePoints   *[]KnowledgePoint
	QuizResults       *[]QuizResult
	ActiveView        *string
	QuizCompleted     *bool
	LastQuizResult    *QuizResult
	SetLastQuizResult bool
}

type PurgeOutput struct {
	Scanned int
	Removed []string
}

type ExportCardsInput struct {
	CourseID    string
	CourseTitle string
}

type ExportCardsOutput struct {
	Path  string
	Count int
}
