package domain

import "time"

// CardDeck is the set of knowledge cards exported as one review note.
type CardDeck struct {
	CourseID   string
	Title      string
	Points     []KnowledgePoint
	Completed  []string
	QuizScore  *int
	ExportedAt time.Time
}
