package dto

type KnowledgeContext struct {
	Title           string
	Description     string
	TeachingMessage string
	ExpectedAnswer  string
}

type Evaluation struct {
	IsCorrect  bool    `json:"isCorrect"`
	Confidence float64 `json:"confidence"`
	Feedback   string  `json:"feedbackType"`
}

// Verdict kinds.
const (
	VerdictStructured = "structured"
	VerdictFallback   = "fallback"
	VerdictUnjudged   = "unjudged"
)

type Verdict struct {
	Kind       string     `json:"kind"`
	Evaluation Evaluation `json:"evaluation"`
}

func (v Verdict) Judged() bool {
	return v.Kind == VerdictStructured || v.Kind == VerdictFallback
}

func (v Verdict) Confident() bool { return v.Kind == VerdictStructured }

func (v Verdict) Correct() bool { return v.Judged() && v.Evaluation.IsCorrect }

type Reply struct {
	Message   string   `json:"message"`
	Topic     string   `json:"topic,omitempty"`
	FollowUps []string `json:"followUps"`
	Verdict   Verdict  `json:"verdict"`
}

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
