package domain

// Course files are YAML; the same structs carry the validation rules.

const DefaultQuizMinutes = 10

type MarkerType string

const (
	MarkerImportant  MarkerType = "important"
	MarkerGrammar    MarkerType = "grammar"
	MarkerVocabulary MarkerType = "vocabulary"
	MarkerReading    MarkerType = "reading"
	MarkerPhrase     MarkerType = "phrase"
	MarkerWord       MarkerType = "word"
)

type AnchorType string

const (
	AnchorImportant  AnchorType = "important"
	AnchorErrorProne AnchorType = "error_prone"
	AnchorSkip       AnchorType = "skip"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionAnalysis QuestionType = "analysis"
)

type Marker struct {
	ID              string     `yaml:"id" validate:"required"`
	Time            float64    `yaml:"time" validate:"gte=0"`
	Title           string     `yaml:"title" validate:"required"`
	Type            MarkerType `yaml:"type" validate:"required,oneof=important grammar vocabulary reading phrase word"`
	Description     string     `yaml:"description,omitempty"`
	TeachingMessage string     `yaml:"teachingMessage,omitempty"`
	ExpectedAnswer  string     `yaml:"expectedAnswer,omitempty"`
}

// Range is advisory; anchors are matched by content.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Anchor struct {
	ID             string     `yaml:"id" validate:"required"`
	Range          Range      `yaml:"range,omitempty"`
	Content        string     `yaml:"content" validate:"required"`
	Type           AnchorType `yaml:"type" validate:"required,oneof=important error_prone skip"`
	Description    string     `yaml:"description"`
	TeachingPrompt string     `yaml:"teachingPrompt,omitempty"`
}

type Article struct {
	ID          string   `yaml:"id" validate:"required"`
	Title       string   `yaml:"title" validate:"required"`
	Content     string   `yaml:"content,omitempty" validate:"required_without=ContentFile"`
	ContentFile string   `yaml:"contentFile,omitempty"`
	Anchors     []Anchor `yaml:"anchors" validate:"dive"`
}

type QuestionOption struct {
	ID      string `yaml:"id" validate:"required"`
	Label   string `yaml:"label" validate:"required"`
	Content string `yaml:"content" validate:"required"`
}

type Question struct {
	ID              string           `yaml:"id" validate:"required"`
	Type            QuestionType     `yaml:"type" validate:"required,oneof=single multiple analysis"`
	Title           string           `yaml:"title" validate:"required"`
	Stem            string           `yaml:"stem" validate:"required"`
	Options         []QuestionOption `yaml:"options,omitempty" validate:"dive"`
	Anchors         []Anchor         `yaml:"anchors" validate:"dive"`
	Analysis        string           `yaml:"analysis,omitempty"`
	ReferenceAnswer string           `yaml:"referenceAnswer,omitempty"`
}

type QuizQuestion struct {
	ID                    string   `yaml:"id" validate:"required"`
	Question              string   `yaml:"question" validate:"required"`
	Options               []string `yaml:"options" validate:"min=2,dive,required"`
	CorrectIndex          int      `yaml:"correctIndex" validate:"gte=0"`
	Explanation           string   `yaml:"explanation,omitempty"`
	RelatedKnowledgePoint string   `yaml:"relatedKnowledgePoint,omitempty"`
}

type Quiz struct {
	TimeLimit int            `yaml:"timeLimit,omitempty" validate:"gte=0"`
	Questions []QuizQuestion `yaml:"questions" validate:"min=1,dive"`
}

// Minutes is the time limit, defaulting to ten minutes.
func (q Quiz) Minutes() int {
	if q.TimeLimit <= 0 {
		return DefaultQuizMinutes
	}
	return q.TimeLimit
}

type Course struct {
	ID        string     `yaml:"id" validate:"required"`
	Title     string     `yaml:"title" validate:"required"`
	VideoURL  string     `yaml:"videoUrl,omitempty"`
	Duration  float64    `yaml:"duration" validate:"gte=0"`
	Summary   string     `yaml:"summary,omitempty"`
	Markers   []Marker   `yaml:"markers" validate:"dive"`
	Quiz      *Quiz      `yaml:"quiz,omitempty"`
	Article   *Article   `yaml:"article,omitempty"`
	Questions []Question `yaml:"questions,omitempty" validate:"dive"`
}

func (c Course) Marker(id string) (Marker, bool) {
	for _, m := range c.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}

func (c Course) MarkerIndex(id string) int {
	for i, m := range c.Markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (c Course) MarkerIDs() []string {
	ids := make([]string, 0, len(c.Markers))
	for _, m := range c.Markers {
		ids = append(ids, m.ID)
	}
	return ids
}

func (c Course) ArticleAnchorIDs() []string {
	if c.Article == nil {
		return nil
	}
	return anchorIDs(c.Article.Anchors)
}

// QuestionAnchorIDs lists the anchors of every question in paper order.
func (c Course) QuestionAnchorIDs() []string {
	var ids []string
	for _, q := range c.Questions {
		ids = append(ids, anchorIDs(q.Anchors)...)
	}
	return ids
}

// QuestionAnchor finds an anchor across all questions along with its
// question.
func (c Course) QuestionAnchor(id string) (Anchor, Question, bool) {
	for _, q := range c.Questions {
		for _, a := range q.Anchors {
			if a.ID == id {
				return a, q, true
			}
		}
	}
	return Anchor{}, Question{}, false
}

func (c Course) ArticleAnchor(id string) (Anchor, bool) {
	if c.Article == nil {
		return Anchor{}, false
	}
	for _, a := range c.Article.Anchors {
		if a.ID == id {
			return a, true
		}
	}
	return Anchor{}, false
}

func anchorIDs(anchors []Anchor) []string {
	ids := make([]string, 0, len(anchors))
	for _, a := range anchors {
		ids = append(ids, a.ID)
	}
	return ids
}
