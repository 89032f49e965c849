package dto

type Marker struct {
	ID              string  `json:"id"`
	Time            float64 `json:"time"`
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	Description     string  `json:"description,omitempty"`
	TeachingMessage string  `json:"teachingMessage,omitempty"`
	ExpectedAnswer  string  `json:"expectedAnswer,omitempty"`
}

type Anchor struct {
	ID             string `json:"id"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	TeachingPrompt string `json:"teachingPrompt,omitempty"`
}

type Article struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Anchors []Anchor `json:"anchors"`
}

type QuestionOption struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

type Question struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Stem            string           `json:"stem"`
	Options         []QuestionOption `json:"options,omitempty"`
	Anchors         []Anchor         `json:"anchors"`
	Analysis        string           `json:"analysis,omitempty"`
	ReferenceAnswer string           `json:"referenceAnswer,omitempty"`
}

type QuizQuestion struct {
	ID                    string   `json:"id"`
	Question              string   `json:"question"`
	Options               []string `json:"options"`
	CorrectIndex          int      `json:"correctIndex"`
	Explanation           string   `json:"explanation,omitempty"`
	RelatedKnowledgePoint string   `json:"relatedKnowledgePoint,omitempty"`
}

type Quiz struct {
	TimeLimitMinutes int            `json:"timeLimit"`
	Questions        []QuizQuestion `json:"questions"`
}

type Course struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	VideoURL  string     `json:"videoUrl,omitempty"`
	Duration  float64    `json:"duration"`
	Summary   string     `json:"summary,omitempty"`
	Markers   []Marker   `json:"markers"`
	Quiz      *Quiz      `json:"quiz,omitempty"`
	Article   *Article   `json:"article,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

type CourseSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Markers   int     `json:"markers"`
	Questions int     `json:"questions"`
	HasQuiz   bool    `json:"hasQuiz"`
	Article   bool    `json:"article"`
}

type ImportMarkersInput struct {
	CourseID string
	Path     string
	Sheet    string
}

type ImportMarkersOutput struct {
	Path      string
	Imported  int
	RowErrors []string
}
