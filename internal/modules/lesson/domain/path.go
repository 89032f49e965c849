package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrStageNotCurrent       = errors.New("lesson: stage is not the current stage")
	ErrStageAlreadyCompleted = errors.New("lesson: stage already completed")
)

// Transition is the prompt shown between two stages.
type Transition struct {
	Title    string
	Message  string
	Next     Stage
	NextName string
	ShowSkip bool
}

// Outcome of a successful Advance: a prompt toward the next stage, or the
// closing message once the path is finished.
type Outcome struct {
	Prompt     *Transition
	Completion string
}

var completionMessages = map[Stage]string{
	StageVideo:    "🎉 恭喜完成视频学习！\n\n接下来进入「文章精读」阶段，通过深度阅读巩固刚才学到的知识点。",
	StageArticle:  "📖 文章精读完成！\n\n现在进入「题目精讲」阶段，通过实战练习检验你的学习成果。",
	StageQuestion: "🏆 太棒了！你已完成所有学习阶段！\n\n可以进行课后测验来全面检验学习效果。",
}

var guidanceMessages = map[Stage]string{
	StageArticle:  "📖 进入文章精读模式！\n\n点击高亮部分可以查看详细解析，让我们深入理解刚才视频中的知识点。",
	StageQuestion: "✍️ 进入题目精讲模式！\n\n点击题目中的高亮部分查看解析，检验你的理解程度。",
}

// LearningPath tracks the current stage, the completed stages and a
// percentage per view.
type LearningPath struct {
	current   Stage
	completed []Stage
	progress  [StageCompleted]float64
}

func NewLearningPath() *LearningPath {
	return &LearningPath{current: StageVideo}
}

func (p *LearningPath) Current() Stage { return p.current }

func (p *LearningPath) Completed() []Stage {
	out := make([]Stage, len(p.completed))
	copy(out, p.completed)
	return out
}

func (p *LearningPath) IsCompleted(s Stage) bool {
	for _, c := range p.completed {
		if c == s {
			return true
		}
	}
	return false
}

// Progress is the percentage recorded for a view; 0 for other stages.
func (p *LearningPath) Progress(s Stage) float64 {
	if !s.IsView() {
		return 0
	}
	return p.progress[s]
}

// Percent is the rounded mean of the three view percentages.
func (p *LearningPath) Percent() int {
	var sum float64
	for _, v := range Views {
		sum += p.progress[v]
	}
	return int(math.Round(sum / float64(len(Views))))
}

// Advance completes the current stage and moves to the next one.
func (p *LearningPath) Advance(s Stage) (Outcome, error) {
	if !s.IsView() {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidStage, s)
	}
	if p.IsCompleted(s) {
		return Outcome{}, fmt.Errorf("%w: %v", ErrStageAlreadyCompleted, s)
	}
	if p.current != s {
		return Outcome{}, fmt.Errorf("%w: %v (current %v)", ErrStageNotCurrent, s, p.current)
	}
	p.completed = append(p.completed, s)
	p.progress[s] = 100
	next := s.Next()
	p.current = next

	if next == StageCompleted {
		return Outcome{Completion: completionMessages[s]}, nil
	}
	return Outcome{Prompt: &Transition{
		Title:    s.DisplayName() + "完成！",
		Message:  completionMessages[s],
		Next:     next,
		NextName: next.DisplayName(),
		ShowSkip: true,
	}}, nil
}

// UpdateProgress records a percentage, clamped to [0,100]. It never advances.
func (p *LearningPath) UpdateProgress(s Stage, value float64) error {
	if !s.IsView() {
		return fmt.Errorf("%w: %v", ErrInvalidStage, s)
	}
	p.progress[s] = math.Min(100, math.Max(0, value))
	return nil
}

// SwitchView moves to any view without touching completion bookkeeping.
func (p *LearningPath) SwitchView(s Stage) error {
	if !s.IsView() {
		return fmt.Errorf("%w: %v", ErrInvalidStage, s)
	}
	p.current = s
	return nil
}

// ConfirmTransition resolves a stage prompt. It returns the guidance message
// (empty when skipped) and, unless next is StageCompleted, the view to show.
func ConfirmTransition(next Stage, skip bool) (guidance string, view Stage, activate bool) {
	if next == StageCompleted || !next.IsView() {
		return "", 0, false
	}
	if !skip {
		guidance = guidanceMessages[next]
	}
	return guidance, next, true
}
