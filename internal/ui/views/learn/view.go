package learn

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	coursedto "huixue/internal/modules/course/dto"
	lessondto "huixue/internal/modules/lesson/dto"
	"huixue/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SendMsg is emitted when the learner submits a chat message.
type SendMsg struct{ Text string }

// ClickAnchorMsg is emitted when the learner opens a highlighted passage.
type ClickAnchorMsg struct{ ID string }

// ─── model ───────────────────────────────────────────────────────────────────

type anchorRow struct {
	id      string
	content string
}

// Model renders the active learning view beside the tutor chat.
type Model struct {
	course   coursedto.Course
	snap     lessondto.Snapshot
	chat     viewport.Model
	stage    viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	cursor   int
	width    int
	height   int
}

func New(course coursedto.Course) Model {
	ti := textinput.New()
	ti.Placeholder = "输入你的回答…"
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		course:  course,
		chat:    viewport.New(0, 0),
		stage:   viewport.New(0, 0),
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// SetSnapshot replaces the rendered session state.
func (m *Model) SetSnapshot(s lessondto.Snapshot) {
	grew := len(s.Messages) != len(m.snap.Messages)
	viewChanged := s.ActiveView != m.snap.ActiveView
	m.snap = s
	if viewChanged {
		m.cursor = 0
		m.stage.GotoTop()
	}
	if n := len(m.anchors()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.chat.SetContent(m.renderChat())
	m.stage.SetContent(m.renderStage())
	if grew {
		m.chat.GotoBottom()
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.snap.Loading {
				return m, nil
			}
			m.input.SetValue("")
			return m, func() tea.Msg { return SendMsg{Text: text} }
		case "alt+up":
			if m.cursor > 0 {
				m.cursor--
				m.stage.SetContent(m.renderStage())
			}
			return m, nil
		case "alt+down":
			if m.cursor < len(m.anchors())-1 {
				m.cursor++
				m.stage.SetContent(m.renderStage())
			}
			return m, nil
		case "alt+enter":
			rows := m.anchors()
			if m.cursor < len(rows) {
				id := rows[m.cursor].id
				return m, func() tea.Msg { return ClickAnchorMsg{ID: id} }
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		case "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.stage, cmd = m.stage.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	stageW := m.width * 55 / 100
	chatW := m.width - stageW

	stagePane := theme.Pane.Width(stageW - 4).Height(m.height - 4).
		Render(m.stageHeader() + "\n" + m.stage.View())

	prompt := m.input.View()
	if m.snap.Loading {
		prompt = m.spinner.View() + theme.Muted.Render(" 老师正在思考…")
	}
	chatPane := theme.PaneActive.Width(chatW - 4).Height(m.height - 4).
		Render(theme.Title.Render("AI 助教") + "\n" + m.chat.View() + "\n" + prompt)

	return lipgloss.JoinHorizontal(lipgloss.Top, stagePane, chatPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	stageW := m.width * 55 / 100
	chatW := m.width - stageW
	m.stage.Width = stageW - 6
	m.stage.Height = max(1, m.height-8)
	m.chat.Width = chatW - 6
	m.chat.Height = max(1, m.height-9)
	m.input.Width = chatW - 10
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.stage.Width),
	); err == nil {
		m.renderer = r
	}
	m.chat.SetContent(m.renderChat())
	m.stage.SetContent(m.renderStage())
}

func (m Model) stageHeader() string {
	tabs := []struct{ key, label string }{{"video", "视频学习"}, {"article", "文章精读"}, {"question", "题目精讲"}}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.label
		if containsString(m.snap.CompletedStages, t.key) {
			label += " ✓"
		}
		if t.key == m.snap.ActiveView {
			parts = append(parts, theme.Hot.Render(label))
		} else {
			parts = append(parts, theme.Muted.Render(label))
		}
	}
	return strings.Join(parts, theme.Muted.Render(" │ ")) +
		theme.Muted.Render(fmt.Sprintf("   总进度 %d%%", m.snap.OverallPercent))
}

func (m Model) renderStage() string {
	switch m.snap.ActiveView {
	case "article":
		return m.renderArticle()
	case "question":
		return m.renderQuestions()
	default:
		return m.renderVideo()
	}
}

func (m Model) renderVideo() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(m.course.Title) + "\n\n")

	state := "⏸ 已暂停"
	if m.snap.Playing {
		state = "▶ 播放中"
	}
	sb.WriteString(fmt.Sprintf("%s  %s / %s\n", state, clockTime(m.snap.Position), clockTime(m.course.Duration)))
	sb.WriteString(progressBar(m.snap.Position, m.course.Duration, m.course.Markers, m.snap.CompletedMarkers, max(10, m.stage.Width-2)) + "\n\n")

	sb.WriteString(theme.Title.Render(fmt.Sprintf("知识点 %d/%d", len(m.snap.CompletedMarkers), m.snap.MarkerTotal)) + "\n")
	for _, mk := range m.course.Markers {
		mark := "○"
		style := theme.Muted
		switch {
		case containsString(m.snap.CompletedMarkers, mk.ID):
			mark, style = "●", lipgloss.NewStyle().Foreground(theme.Green)
		case mk.ID == m.snap.CurrentMarker:
			mark, style = "◉", theme.Hot
		}
		sb.WriteString(style.Render(fmt.Sprintf(" %s %s  %s", mark, clockTime(mk.Time), mk.Title)) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("ctrl+o 播放/暂停  ctrl+k 跳过知识点"))
	return sb.String()
}

func (m Model) renderArticle() string {
	a := m.course.Article
	if a == nil {
		return theme.Muted.Render("本课没有精读文章")
	}
	body := a.Content
	if m.renderer != nil {
		if out, err := m.renderer.Render("# " + a.Title + "\n\n" + a.Content); err == nil {
			body = out
		}
	}
	return body + "\n" + m.renderAnchorList(m.snap.ArticleAnchorsDone)
}

func (m Model) renderQuestions() string {
	if len(m.course.Questions) == 0 {
		return theme.Muted.Render("本课没有精讲题目")
	}
	var sb strings.Builder
	for i, q := range m.course.Questions {
		sb.WriteString(theme.Title.Render(fmt.Sprintf("%d. %s", i+1, firstNonEmpty(q.Title, q.Type))) + "\n")
		sb.WriteString(q.Stem + "\n")
		for _, o := range q.Options {
			sb.WriteString(fmt.Sprintf("  %s. %s\n", o.Label, o.Content))
		}
		sb.WriteString("\n")
	}
	return sb.String() + m.renderAnchorList(m.snap.QuestionAnchorsDone)
}

func (m Model) renderAnchorList(done []string) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("重点标注") + theme.Muted.Render("  alt+↑/↓ 选择  alt+enter 讲解") + "\n")
	for i, row := range m.anchors() {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		style := theme.Muted
		switch {
		case containsString(done, row.id):
			style = lipgloss.NewStyle().Foreground(theme.Green)
		case row.id == m.snap.CurrentAnchor:
			style = theme.Hot
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(theme.Lavender)
		}
		sb.WriteString(style.Render(cursor+"「"+row.content+"」") + "\n")
	}
	return sb.String()
}

func (m Model) anchors() []anchorRow {
	var rows []anchorRow
	switch m.snap.ActiveView {
	case "article":
		if m.course.Article != nil {
			for _, a := range m.course.Article.Anchors {
				rows = append(rows, anchorRow{id: a.ID, content: a.Content})
			}
		}
	case "question":
		for _, q := range m.course.Questions {
			for _, a := range q.Anchors {
				rows = append(rows, anchorRow{id: a.ID, content: a.Content})
			}
		}
	}
	return rows
}

func (m Model) renderChat() string {
	var sb strings.Builder
	for _, msg := range m.snap.Messages {
		if msg.Role == "user" {
			sb.WriteString(theme.UserBubble.Render("你: "+msg.Content) + "\n\n")
			continue
		}
		sb.WriteString(theme.TutorBubble.Render(msg.Content) + "\n")
		if len(msg.FollowUps) > 0 {
			sb.WriteString(theme.Muted.Render("  试试问: "+strings.Join(msg.FollowUps, " / ")) + "\n")
		}
		sb.WriteString("\n")
	}
	if t := m.snap.PendingTransition; t != nil {
		sb.WriteString(theme.Hot.Render(t.Title) + "\n" + t.Message + "\n")
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("ctrl+y 进入%s  ctrl+n 直接进入（跳过引导）", t.NextName)) + "\n")
	}
	return lipgloss.NewStyle().Width(max(10, m.chat.Width)).Render(sb.String())
}

func progressBar(pos, duration float64, markers []coursedto.Marker, done []string, width int) string {
	if duration <= 0 {
		return strings.Repeat("─", width)
	}
	cells := []rune(strings.Repeat("─", width))
	filled := int(pos / duration * float64(width))
	for i := 0; i < filled && i < width; i++ {
		cells[i] = '━'
	}
	for _, mk := range markers {
		i := int(mk.Time / duration * float64(width-1))
		if i < 0 || i >= width {
			continue
		}
		if containsString(done, mk.ID) {
			cells[i] = '●'
		} else {
			cells[i] = '◆'
		}
	}
	return lipgloss.NewStyle().Foreground(theme.Sapphire).Render(string(cells))
}

func clockTime(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
