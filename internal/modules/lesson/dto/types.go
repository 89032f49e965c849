package dto

import "time"

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic,omitempty"`
	FollowUps []string  `json:"suggestedFollowUps,omitempty"`
}

type Card struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	Translation   string   `json:"translation"`
	ExampleInText string   `json:"exampleInText"`
	ExampleOther  []string `json:"exampleOther,omitempty"`
	Phonetic      string   `json:"phonetic,omitempty"`
}

type Transition struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Next     string `json:"nextStage"`
	NextName string `json:"nextStageName"`
	ShowSkip bool   `json:"showSkip"`
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

type StageProgress struct {
	Video    float64 `json:"video"`
	Article  float64 `json:"article"`
	Question float64 `json:"question"`
}

// Snapshot is a read-only copy of session state for rendering.
type Snapshot struct {
	CourseID        string        `json:"courseId"`
	CourseTitle     string        `json:"courseTitle"`
	ActiveView      string        `json:"activeView"`
	CurrentStage    string        `json:"currentStage"`
	CompletedStages []string      `json:"completedStages"`
	StageProgress   StageProgress `json:"stageProgress"`
	OverallPercent  int           `json:"overallPercent"`

	Messages []Message `json:"messages"`
	Loading  bool      `json:"loading"`
	Cards    []Card    `json:"cards"`

	CompletedMarkers    []string `json:"completedMarkers"`
	MarkerTotal         int      `json:"markerTotal"`
	AllMarkersCompleted bool     `json:"allMarkersCompleted"`
	CurrentMarker       string   `json:"currentMarker,omitempty"`
	CurrentAnchor       string   `json:"currentAnchor,omitempty"`
	ArticleAnchorsDone  []string `json:"articleAnchorsDone"`
	QuestionAnchorsDone []string `json:"questionAnchorsDone"`

	PendingTransition *Transition `json:"pendingTransition,omitempty"`

	QuizAvailable bool         `json:"quizAvailable"`
	QuizOpen      bool         `json:"quizOpen"`
	QuizCompleted bool         `json:"quizCompleted"`
	QuizDeadline  time.Time    `json:"quizDeadline,omitempty"`
	LastQuiz      *QuizResult  `json:"lastQuizResult,omitempty"`
	QuizHistory   []QuizResult `json:"quizResults"`

	// CelebrationSeq increases on every celebration so renderers can tell a
	// new one from the last one they showed.
	Celebration    string `json:"celebration"`
	CelebrationSeq int    `json:"celebrationSeq"`

	Playing        bool     `json:"playing"`
	Position       float64  `json:"position"`
	PendingEffects []string `json:"pendingEffects"`
}
