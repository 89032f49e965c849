package domain

import "strings"

type Topic string

const (
	TopicNone       Topic = ""
	TopicCapital    Topic = "capital"
	TopicDialectics Topic = "dialectics"
	TopicHistory    Topic = "history"
)

// Checked in this order; the first topic with a matching keyword wins.
var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicCapital, []string{"资本", "剩余价值", "c+v+m", "利润率"}},
	{TopicDialectics, []string{"对立统一", "矛盾", "量变质变"}},
	{TopicHistory, []string{"新民主主义", "辛亥革命"}},
}

func DetectTopic(text string) Topic {
	lower := strings.ToLower(text)
	for _, tk := range topicKeywords {
		if containsAny(lower, tk.keywords) {
			return tk.topic
		}
	}
	return TopicNone
}

// FollowUps are canned prompts offered when the tutor suggests none.
func (t Topic) FollowUps() []string {
	switch t {
	case TopicCapital:
		return []string{"试试计算剩余价值率？", "资本有哪几种循环形式？", "利润率和剩余价值率有什么区别？"}
	case TopicDialectics:
		return []string{"能举一个生活中的矛盾例子吗？", "量变到质变的临界点叫什么？"}
	default:
		return nil
	}
}

func (t Topic) PromptSection() string {
	if t == TopicCapital {
		return "【专项：政治经济学】学生在问《资本论》相关内容。请重点解析概念定义，并尽量用公式（如 m' = m/v）辅助说明。"
	}
	return ""
}
