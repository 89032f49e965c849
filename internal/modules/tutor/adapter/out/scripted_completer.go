package out

import (
	"context"
	"encoding/json"
	"strings"

	"huixue/internal/modules/tutor/domain"
	tutorout "huixue/internal/modules/tutor/port/out"
)

type scriptedReply struct {
	keywords []string
	reply    string
}

// Canned structured replies keyed by words a correct answer would use.
var scriptedReplies = []scriptedReply{
	{[]string{"决定", "物质", "第一性"}, structured(true, 0.95, "praise", "✅ 回答正确！物质决定意识，这是唯物论的基石。先有物质世界，才有对它的反映。")},
	{[]string{"特殊", "具体"}, structured(true, 0.95, "praise", "🎉 没错！具体问题具体分析，体现的正是矛盾的特殊性。")},
	{[]string{"量变", "积累"}, structured(true, 0.95, "praise", "✅ 正确！冰冻三尺非一日之寒，量变是质变的必要准备。")},
	{[]string{"标准", "检验"}, structured(true, 0.98, "praise", "🎉 完全正确！实践是检验真理的唯一标准，理论必须经过实践检验。")},
	{[]string{"群众", "人民", "时势"}, structured(true, 0.95, "praise", "✅ 回答得好！人民群众是历史的创造者，是社会发展的决定力量。")},
}

var scriptedDefault = structured(false, 0.6, "hint", "🤔 你的想法有一定道理，我们再深入想想这个问题的核心要点……")

// ScriptedCompleter answers offline from a fixed keyword table. It replies in
// the same JSON shape a live tutor is asked for.
type ScriptedCompleter struct{}

func NewScriptedCompleter() ScriptedCompleter { return ScriptedCompleter{} }

func (ScriptedCompleter) Complete(ctx context.Context, req tutorout.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			last = strings.ToLower(req.Messages[i].Content)
			break
		}
	}
	for _, r := range scriptedReplies {
		for _, k := range r.keywords {
			if strings.Contains(last, k) {
				return r.reply, nil
			}
		}
	}
	return scriptedDefault, nil
}

type scriptedEvaluation struct {
	IsCorrect    bool    `json:"isCorrect"`
	Confidence   float64 `json:"confidence"`
	FeedbackType string  `json:"feedbackType"`
}

type scriptedBody struct {
	Evaluation        scriptedEvaluation `json:"evaluation"`
	Message           string             `json:"message"`
	FollowUpQuestions []string           `json:"followUpQuestions"`
}

func structured(correct bool, confidence float64, feedback, message string) string {
	b, _ := json.Marshal(scriptedBody{
		Evaluation:        scriptedEvaluation{IsCorrect: correct, Confidence: confidence, FeedbackType: feedback},
		Message:           message,
		FollowUpQuestions: []string{},
	})
	return string(b)
}
