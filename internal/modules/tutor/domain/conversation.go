package domain

import (
	"fmt"
	"strings"
	"sync"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

// KnowledgeContext is the point the tutor is currently teaching.
type KnowledgeContext struct {
	Title           string
	Description     string
	TeachingMessage string
	ExpectedAnswer  string
}

const BasePrompt = `你是一位考研政治辅导老师，正在通过视频课程讲解马克思主义基本原理。

教学要求：
1. 耐心鼓励，善于用生活中的例子解释抽象概念
2. 每次回复不超过 100 字
3. 学生答对时给予肯定并适当拓展
4. 学生答错时温和纠正，引导其重新思考

你必须只返回如下 JSON，不要输出其他内容：
{
  "evaluation": {
    "isCorrect": true 或 false,
    "confidence": 0 到 1 之间的小数,
    "feedbackType": "praise" | "hint" | "correction"
  },
  "message": "给学生的回复",
  "followUpQuestions": ["追问1", "追问2"]
}

isCorrect 在学生回答正确或基本正确时为 true；回答错误或不完整时为 false。
讲解始终围绕当前知识点。`

// Conversation holds the prompt context and turn history for one session.
// A turn reads a snapshot through Begin and lands through Commit, so the
// context may change while a request is outstanding.
type Conversation struct {
	mu         sync.Mutex
	context    *KnowledgeContext
	history    []Turn
	generation uint64
}

// Exchange is one outstanding turn: what was sent, and the context
// generation it was sent under.
type Exchange struct {
	System     string
	Messages   []Turn
	question   string
	generation uint64
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// SetContext switches to a new knowledge point and starts a fresh history.
func (c *Conversation) SetContext(k KnowledgeContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = &k
	c.history = nil
	c.generation++
}

func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = nil
	c.history = nil
	c.generation++
}

func (c *Conversation) Context() (KnowledgeContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.context == nil {
		return KnowledgeContext{}, false
	}
	return *c.context, true
}

func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Turn{Role: role, Content: content})
}

// Begin snapshots the prompt and history with the learner's text appended.
// The history itself is untouched until Commit.
func (c *Conversation) Begin(text string, topic Topic) Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Turn, len(c.history), len(c.history)+1)
	copy(msgs, c.history)
	msgs = append(msgs, Turn{Role: RoleUser, Content: text})
	return Exchange{
		System:     c.systemPrompt(topic),
		Messages:   msgs,
		question:   text,
		generation: c.generation,
	}
}

// Commit records a completed exchange. It reports false, recording nothing,
// when the context was changed or reset after Begin.
func (c *Conversation) Commit(x Exchange, answer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x.generation != c.generation {
		return false
	}
	c.history = append(c.history,
		Turn{Role: RoleUser, Content: x.question},
		Turn{Role: RoleAssistant, Content: answer},
	)
	return true
}

func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}

// SystemPrompt is the base prompt plus the current knowledge point and any
// topic section.
func (c *Conversation) SystemPrompt(topic Topic) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.systemPrompt(topic)
}

func (c *Conversation) systemPrompt(topic Topic) string {
	var b strings.Builder
	b.WriteString(BasePrompt)
	if c.context != nil {
		k := c.context
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "当前知识点：「%s」\n", k.Title)
		fmt.Fprintf(&b, "知识点说明：%s\n", k.Description)
		fmt.Fprintf(&b, "你刚才对学生说：%s\n", k.TeachingMessage)
		if k.ExpectedAnswer != "" {
			fmt.Fprintf(&b, "正确答案应包含的关键词：%s\n", k.ExpectedAnswer)
		}
		b.WriteString("请根据学生的回答进行评判和讲解。")
	}
	if extra := topic.PromptSection(); extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	return b.String()
}
