package domain

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidVerdictKind = errors.New("tutor: invalid verdict kind")

type FeedbackType string

const (
	FeedbackPraise     FeedbackType = "praise"
	FeedbackHint       FeedbackType = "hint"
	FeedbackCorrection FeedbackType = "correction"
)

func (f FeedbackType) Valid() bool {
	return f == FeedbackPraise || f == FeedbackHint || f == FeedbackCorrection
}

type Evaluation struct {
	IsCorrect  bool
	Confidence float64
	Feedback   FeedbackType
}

// VerdictKind records where a judgment came from. Only Structured verdicts
// are the tutor's own explicit judgment.
type VerdictKind int

const (
	Structured VerdictKind = iota + 1 // Parsed from the tutor's JSON reply.
	Fallback                          // Guessed from keywords in free text.
	Unjudged                          // No reply to judge (service failure).
)

var (
	verdictNames  = [...]string{Structured: "structured", Fallback: "fallback", Unjudged: "unjudged"}
	verdictByName = map[string]VerdictKind{
		"structured": Structured,
		"fallback":   Fallback,
		"unjudged":   Unjudged,
	}
)

var (
	_ fmt.Stringer             = VerdictKind(0)
	_ encoding.TextMarshaler   = VerdictKind(0)
	_ encoding.TextUnmarshaler = (*VerdictKind)(nil)
)

func (k VerdictKind) String() string {
	if k.IsValid() {
		return verdictNames[k]
	}
	return fmt.Sprintf("VerdictKind(%d)", int(k))
}

func (k VerdictKind) IsValid() bool {
	return k >= Structured && k <= Unjudged
}

func (k VerdictKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVerdictKind, int(k))
	}
	return []byte(verdictNames[k]), nil
}

func (k *VerdictKind) UnmarshalText(text []byte) error {
	v, ok := verdictByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidVerdictKind, text)
	}
	*k = v
	return nil
}

type Verdict struct {
	Kind       VerdictKind
	Evaluation Evaluation
}

// Confident reports whether the verdict is the tutor's explicit judgment.
func (v Verdict) Confident() bool { return v.Kind == Structured }

// Judged is false when the tutor could not be reached.
func (v Verdict) Judged() bool { return v.Kind == Structured || v.Kind == Fallback }

// Correct is true only for a judged, correct answer.
func (v Verdict) Correct() bool { return v.Judged() && v.Evaluation.IsCorrect }

// Result is an evaluated tutor reply.
type Result struct {
	Message   string
	Verdict   Verdict
	FollowUps []string
}

const (
	fallbackCorrectConfidence   = 0.7
	fallbackUncertainConfidence = 0.5
)

var (
	positiveMarkers = []string{"✅", "🎉", "完全正确", "正确", "没错", "很好", "棒", "优秀", "exactly", "well done"}
	negativeMarkers = []string{"不正确", "不对", "错误", "incorrect", "wrong", "not quite", "not right"}

	// negatedPraise are negations that contain a positive marker; they are
	// cut out before looking for praise. Longest forms first.
	negatedPraise = []string{"不完全正确", "不太正确", "不够正确", "不是很好", "不正确", "并不优秀"}
)

// Evaluate turns a raw tutor reply into a judged result. It tries the
// structured JSON shape first and falls back to keyword matching; it never
// fails.
func Evaluate(raw string) Result {
	if res, ok := parseStructured(StripFence(raw)); ok {
		return res
	}
	return keywordResult(raw)
}

// StripFence removes a surrounding markdown code fence, optionally tagged
// json.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type structuredReply struct {
	Evaluation *struct {
		IsCorrect    *bool           `json:"isCorrect"`
		Confidence   *float64        `json:"confidence"`
		FeedbackType json.RawMessage `json:"feedbackType"`
	} `json:"evaluation"`
	Message           *string         `json:"message"`
	FollowUpQuestions json.RawMessage `json:"followUpQuestions"`
}

func parseStructured(text string) (Result, bool) {
	var reply structuredReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Result{}, false
	}
	if reply.Evaluation == nil || reply.Evaluation.IsCorrect == nil || reply.Evaluation.Confidence == nil || reply.Message == nil {
		return Result{}, false
	}

	eval := Evaluation{
		IsCorrect:  *reply.Evaluation.IsCorrect,
		Confidence: clamp01(*reply.Evaluation.Confidence),
	}
	var feedback string
	if err := json.Unmarshal(reply.Evaluation.FeedbackType, &feedback); err == nil && FeedbackType(feedback).Valid() {
		eval.Feedback = FeedbackType(feedback)
	} else if eval.IsCorrect {
		eval.Feedback = FeedbackPraise
	} else {
		eval.Feedback = FeedbackHint
	}

	followUps := []string{}
	var asList []string
	if err := json.Unmarshal(reply.FollowUpQuestions, &asList); err == nil && asList != nil {
		followUps = asList
	}
	return Result{
		Message:   *reply.Message,
		Verdict:   Verdict{Kind: Structured, Evaluation: eval},
		FollowUps: followUps,
	}, true
}

func keywordResult(raw string) Result {
	text := strings.ToLower(raw)
	correct := containsAny(stripAll(text, negatedPraise), positiveMarkers)
	negative := containsAny(text, negativeMarkers)

	eval := Evaluation{IsCorrect: correct, Confidence: fallbackUncertainConfidence, Feedback: FeedbackHint}
	switch {
	case correct:
		eval.Confidence = fallbackCorrectConfidence
		eval.Feedback = FeedbackPraise
	case negative:
		eval.Feedback = FeedbackCorrection
	}
	return Result{
		Message:   raw,
		Verdict:   Verdict{Kind: Fallback, Evaluation: eval},
		FollowUps: []string{},
	}
}

func stripAll(text string, phrases []string) string {
	for _, p := range phrases {
		text = strings.ReplaceAll(text, p, " ")
	}
	return text
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
