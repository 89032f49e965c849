package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"huixue/internal/modules/tutor/domain"
)

func TestEvaluateStructuredReply(t *testing.T) {
	t.Parallel()
	raw := "```json\n{\"evaluation\":{\"isCorrect\":true,\"confidence\":0.9,\"feedbackType\":\"praise\"},\"message\":\"对\",\"followUpQuestions\":[\"q1\"]}\n```"
	got := domain.Evaluate(raw)
	if got.Verdict.Kind != domain.Structured || !got.Verdict.Confident() {
		t.Fatalf("expected structured verdict, got %v", got.Verdict.Kind)
	}
	if got.Message != "对" || !got.Verdict.Correct() || got.Verdict.Evaluation.Confidence != 0.9 {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(got.FollowUps) != 1 || got.FollowUps[0] != "q1" {
		t.Fatalf("unexpected follow ups %v", got.FollowUps)
	}
}

func TestEvaluateStructuredNormalisesFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		raw        string
		confidence float64
		feedback   domain.FeedbackType
		followUps  int
	}{
		{
			name:       "confidence above one is clamped",
			raw:        `{"evaluation":{"isCorrect":false,"confidence":1.5},"message":"x"}`,
			confidence: 1,
			feedback:   domain.FeedbackHint,
		},
		{
			name:       "negative confidence is clamped",
			raw:        `{"evaluation":{"isCorrect":true,"confidence":-3,"feedbackType":"bogus"},"message":"x","followUpQuestions":"nope"}`,
			confidence: 0,
			feedback:   domain.FeedbackPraise,
		},
		{
			name:       "bare fence without language tag",
			raw:        "```\n{\"evaluation\":{\"isCorrect\":false,\"confidence\":0.4,\"feedbackType\":\"correction\"},\"message\":\"x\",\"followUpQuestions\":[\"a\",\"b\"]}\n```",
			confidence: 0.4,
			feedback:   domain.FeedbackCorrection,
			followUps:  2,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := domain.Evaluate(tt.raw)
			if got.Verdict.Kind != domain.Structured {
				t.Fatalf("expected structured verdict, got %v", got.Verdict.Kind)
			}
			if got.Verdict.Evaluation.Confidence != tt.confidence {
				t.Fatalf("confidence = %v, want %v", got.Verdict.Evaluation.Confidence, tt.confidence)
			}
			if got.Verdict.Evaluation.Feedback != tt.feedback {
				t.Fatalf("feedback = %v, want %v", got.Verdict.Evaluation.Feedback, tt.feedback)
			}
			if got.FollowUps == nil || len(got.FollowUps) != tt.followUps {
				t.Fatalf("follow ups = %v, want %d entries", got.FollowUps, tt.followUps)
			}
		})
	}
}

func TestEvaluateFallsBackToKeywords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		raw        string
		correct    bool
		confidence float64
		feedback   domain.FeedbackType
	}{
		{"praise emoji", "✅ 回答正确！物质决定意识。", true, 0.7, domain.FeedbackPraise},
		{"plain praise", "很好，继续加油", true, 0.7, domain.FeedbackPraise},
		{"correction", "抱歉，不对", false, 0.5, domain.FeedbackCorrection},
		{"negated praise is not praise", "这个说法不正确", false, 0.5, domain.FeedbackCorrection},
		{"partly right is not praise", "不完全正确，还差一点", false, 0.5, domain.FeedbackHint},
		{"praise mentioning no mistakes", "✅ 很好，完全没有错误！", true, 0.7, domain.FeedbackPraise},
		{"praise beside a negative word", "🎉 没错，这不是错误的理解", true, 0.7, domain.FeedbackPraise},
		{"english negation", "That is INCORRECT.", false, 0.5, domain.FeedbackCorrection},
		{"neutral", "让我们再想一想", false, 0.5, domain.FeedbackHint},
		{"wrong types", `{"evaluation":{"isCorrect":"yes","confidence":1},"message":"正确"}`, true, 0.7, domain.FeedbackPraise},
		{"missing message", `{"evaluation":{"isCorrect":true,"confidence":1}}`, false, 0.5, domain.FeedbackHint},
		{"json null", "null", false, 0.5, domain.FeedbackHint},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := domain.Evaluate(tt.raw)
			if got.Verdict.Kind != domain.Fallback || got.Verdict.Confident() {
				t.Fatalf("expected fallback verdict, got %v", got.Verdict.Kind)
			}
			if got.Message != tt.raw {
				t.Fatalf("fallback message must be the raw text, got %q", got.Message)
			}
			ev := got.Verdict.Evaluation
			if ev.IsCorrect != tt.correct || ev.Confidence != tt.confidence || ev.Feedback != tt.feedback {
				t.Fatalf("unexpected evaluation %+v", ev)
			}
			if got.FollowUps == nil || len(got.FollowUps) != 0 {
				t.Fatalf("fallback follow ups must be empty, got %v", got.FollowUps)
			}
		})
	}
}

func TestUnjudgedVerdictIsNeverCorrect(t *testing.T) {
	t.Parallel()
	v := domain.Verdict{Kind: domain.Unjudged, Evaluation: domain.Evaluation{IsCorrect: true}}
	if v.Judged() || v.Correct() || v.Confident() {
		t.Fatalf("unjudged verdict must not count as a judgment")
	}
}

func TestVerdictKindText(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(map[string]domain.VerdictKind{"k": domain.Fallback})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"k":"fallback"}` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var k domain.VerdictKind
	if err := k.UnmarshalText([]byte("structured")); err != nil || k != domain.Structured {
		t.Fatalf("unmarshal structured: %v %v", k, err)
	}
	if err := k.UnmarshalText([]byte("maybe")); !errors.Is(err, domain.ErrInvalidVerdictKind) {
		t.Fatalf("expected invalid kind error, got %v", err)
	}
	if _, err := domain.VerdictKind(0).MarshalText(); err == nil {
		t.Fatalf("zero kind must not marshal")
	}
}

func TestConversationPrompt(t *testing.T) {
	t.Parallel()
	c := domain.NewConversation()
	c.Append(domain.RoleUser, "hi")
	c.SetContext(domain.KnowledgeContext{Title: "物质与意识", Description: "d", TeachingMessage: "m", ExpectedAnswer: "物质决定意识"})
	if len(c.History()) != 0 {
		t.Fatalf("new context must clear history")
	}
	prompt := c.SystemPrompt(domain.DetectTopic("剩余价值率怎么算"))
	for _, want := range []string{"物质与意识", "物质决定意识", "政治经济学"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	c.Reset()
	if _, ok := c.Context(); ok {
		t.Fatalf("reset must drop the context")
	}
	if strings.Contains(c.SystemPrompt(domain.TopicNone), "物质与意识") {
		t.Fatalf("reset prompt must be the base prompt")
	}
}

func TestConversationCommitChecksGeneration(t *testing.T) {
	t.Parallel()
	c := domain.NewConversation()
	c.SetContext(domain.KnowledgeContext{Title: "物质"})

	x := c.Begin("物质是客观实在", domain.TopicNone)
	if len(x.Messages) != 1 || x.Messages[0].Role != domain.RoleUser || !strings.Contains(x.System, "物质") {
		t.Fatalf("unexpected exchange %+v", x)
	}
	if len(c.History()) != 0 {
		t.Fatalf("begin must not touch history")
	}
	if !c.Commit(x, "对") {
		t.Fatalf("commit under the same context must succeed")
	}
	if h := c.History(); len(h) != 2 || h[1].Content != "对" {
		t.Fatalf("unexpected history %+v", h)
	}

	stale := c.Begin("再问一次", domain.TopicNone)
	c.Reset()
	if c.Commit(stale, "迟到的回复") {
		t.Fatalf("commit after reset must be refused")
	}
	if len(c.History()) != 0 {
		t.Fatalf("refused commit must leave history empty")
	}
}

func TestDetectTopic(t *testing.T) {
	t.Parallel()
	tests := map[string]domain.Topic{
		"什么是剩余价值":  domain.TopicCapital,
		"C+V+M 是什么": domain.TopicCapital,
		"矛盾的特殊性":   domain.TopicDialectics,
		"辛亥革命的意义":  domain.TopicHistory,
		"你好":       domain.TopicNone,
	}
	for text, want := range tests {
		if got := domain.DetectTopic(text); got != want {
			t.Fatalf("DetectTopic(%q) = %q, want %q", text, got, want)
		}
	}
	if len(domain.TopicCapital.FollowUps()) == 0 || domain.TopicNone.FollowUps() != nil {
		t.Fatalf("unexpected canned follow ups")
	}
}
