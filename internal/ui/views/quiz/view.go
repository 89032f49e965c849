package quiz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	coursedto "huixue/internal/modules/course/dto"
	lessondto "huixue/internal/modules/lesson/dto"
	"huixue/internal/ui/theme"
)

type StartMsg struct{}

type SubmitMsg struct{ Selected map[string]int }

// ReviewMsg jumps back to the video at a weak knowledge point.
type ReviewMsg struct{ MarkerID string }

type CloseMsg struct{}

// Model is the after-class quiz: question navigation, selection and the
// result page.
type Model struct {
	quiz     *coursedto.Quiz
	markers  map[string]string
	snap     lessondto.Snapshot
	now      time.Time
	current  int
	selected map[string]int
	weak     int
	width    int
	height   int
}

func New(course coursedto.Course) Model {
	titles := make(map[string]string, len(course.Markers))
	for _, mk := range course.Markers {
		titles[mk.ID] = mk.Title
	}
	return Model{quiz: course.Quiz, markers: titles, selected: map[string]int{}}
}

func (m *Model) SetState(s lessondto.Snapshot, now time.Time) {
	if s.QuizOpen && !m.snap.QuizOpen {
		m.current = 0
		m.selected = map[string]int{}
	}
	m.snap = s
	m.now = now
}

// Expired reports an open quiz whose time limit has passed.
func (m Model) Expired() bool {
	return m.snap.QuizOpen && !m.snap.QuizCompleted && !m.snap.QuizDeadline.IsZero() && !m.now.Before(m.snap.QuizDeadline)
}

// Selections returns a copy of the learner's choices.
func (m Model) Selections() map[string]int {
	out := make(map[string]int, len(m.selected))
	for k, v := range m.selected {
		out[k] = v
	}
	return out
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(k string) (Model, tea.Cmd) {
	switch {
	case m.quiz == nil:
		return m, nil
	case m.snap.QuizOpen && !m.snap.QuizCompleted:
		qs := m.quiz.Questions
		switch k {
		case "up", "k", "left":
			if m.current > 0 {
				m.current--
			}
		case "down", "j", "right":
			if m.current < len(qs)-1 {
				m.current++
			}
		case "enter":
			sel := m.Selections()
			return m, func() tea.Msg { return SubmitMsg{Selected: sel} }
		case "esc":
			return m, func() tea.Msg { return CloseMsg{} }
		default:
			if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(qs[m.current].Options) {
				m.selected[qs[m.current].ID] = n - 1
				if m.current < len(qs)-1 {
					m.current++
				}
			}
		}
	case m.snap.LastQuiz != nil:
		weak := m.snap.LastQuiz.WeakPoints
		switch k {
		case "up", "k":
			if m.weak > 0 {
				m.weak--
			}
		case "down", "j":
			if m.weak < len(weak)-1 {
				m.weak++
			}
		case "enter", "r":
			if m.weak < len(weak) {
				id := weak[m.weak]
				return m, func() tea.Msg { return ReviewMsg{MarkerID: id} }
			}
		}
	case m.snap.QuizAvailable:
		if k == "enter" || k == "s" {
			return m, func() tea.Msg { return StartMsg{} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch {
	case m.quiz == nil || len(m.quiz.Questions) == 0:
		body = theme.Muted.Render("本课没有课后测验")
	case m.snap.QuizOpen && !m.snap.QuizCompleted:
		body = m.renderQuestion()
	case m.snap.LastQuiz != nil:
		body = m.renderResult(*m.snap.LastQuiz)
	case m.snap.QuizAvailable:
		body = theme.Title.Render("课后测验") + "\n\n" +
			fmt.Sprintf("共 %d 题，限时 %d 分钟。\n\n", len(m.quiz.Questions), m.quiz.TimeLimitMinutes) +
			theme.Hot.Render("按 enter 开始测验")
	default:
		body = theme.Muted.Render(fmt.Sprintf("完成全部视频知识点后解锁测验（%d/%d）", len(m.snap.CompletedMarkers), m.snap.MarkerTotal))
	}
	return theme.Pane.Width(max(10, m.width-4)).Height(max(1, m.height-4)).Render(body)
}

func (m Model) renderQuestion() string {
	qs := m.quiz.Questions
	q := qs[m.current]
	var sb strings.Builder
	header := fmt.Sprintf("第 %d/%d 题   已答 %d 题", m.current+1, len(qs), len(m.selected))
	if !m.snap.QuizDeadline.IsZero() {
		left := m.snap.QuizDeadline.Sub(m.now).Round(time.Second)
		if left < 0 {
			left = 0
		}
		header += fmt.Sprintf("   剩余 %02d:%02d", int(left.Minutes()), int(left.Seconds())%60)
	}
	sb.WriteString(theme.Title.Render(header) + "\n\n")
	sb.WriteString(q.Question + "\n\n")
	chosen, answered := m.selected[q.ID]
	for i, opt := range q.Options {
		line := fmt.Sprintf("  %d. %s", i+1, opt)
		if answered && chosen == i {
			line = theme.Hot.Render("▸" + line[1:])
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("数字键选择  ←/→ 切换题目  enter 交卷  esc 稍后再做"))
	return sb.String()
}

func (m Model) renderResult(r lessondto.QuizResult) string {
	var sb strings.Builder
	score := theme.Good
	if r.Score < 60 {
		score = theme.Bad
	}
	sb.WriteString(theme.Title.Render("测验结果") + "\n\n")
	sb.WriteString(score.Render(fmt.Sprintf("%d 分", r.Score)) +
		fmt.Sprintf("   答对 %d/%d   用时 %d:%02d\n\n", r.CorrectCount, r.Total, r.TimeTaken/60, r.TimeTaken%60))

	for i, a := range r.Answers {
		mark := theme.Good.Render("✓")
		if !a.IsCorrect {
			mark = theme.Bad.Render("✗")
		}
		line := fmt.Sprintf("%s 第 %d 题", mark, i+1)
		if m.quiz != nil && i < len(m.quiz.Questions) && m.quiz.Questions[i].Explanation != "" && !a.IsCorrect {
			line += theme.Muted.Render("  " + m.quiz.Questions[i].Explanation)
		}
		sb.WriteString(line + "\n")
	}
	if len(r.WeakPoints) > 0 {
		sb.WriteString("\n" + theme.Hot.Render("需要加强的知识点") + theme.Muted.Render("  enter 回到视频复习") + "\n")
		for i, id := range r.WeakPoints {
			cursor := "  "
			if i == m.weak {
				cursor = "> "
			}
			title := m.markers[id]
			if title == "" {
				title = id
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(theme.Lavender).Render(cursor+title) + "\n")
		}
	}
	return sb.String()
}
