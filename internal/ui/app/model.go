package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	coursedto "huixue/internal/modules/course/dto"
	lessondto "huixue/internal/modules/lesson/dto"
	lessonin "huixue/internal/modules/lesson/port/in"
	progressdto "huixue/internal/modules/progress/dto"
	tutordto "huixue/internal/modules/tutor/dto"
	apperrors "huixue/internal/platform/errors"
	"huixue/internal/ui/components"
	"huixue/internal/ui/theme"
	cardsview "huixue/internal/ui/views/cards"
	learnview "huixue/internal/ui/views/learn"
	quizview "huixue/internal/ui/views/quiz"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type cardExporter interface {
	ExportCards(ctx context.Context, courseID, courseTitle string) (progressdto.ExportCardsOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabLearn tabID = iota
	tabCards
	tabQuiz
	tabCount
)

var tabLabels = [tabCount]string{"学习", "知识卡片", "课后测验"}

// TickInterval drives simulated playback and delayed effects.
const TickInterval = 100 * time.Millisecond

// ─── async messages ──────────────────────────────────────────────────────────

type tickMsg time.Time

type replyMsg struct {
	reply tutordto.Reply
	err   error
}

type exportedMsg struct {
	out progressdto.ExportCardsOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Play    key.Binding
	Skip    key.Binding
	Confirm key.Binding
	Direct  key.Binding
	Views   key.Binding
	Send    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "切换页面")),
		Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "帮助")),
		Palette: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "命令")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "退出")),
		Play:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "播放/暂停")),
		Skip:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "跳过知识点")),
		Confirm: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "进入下一阶段")),
		Direct:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "跳过引导")),
		Views:   key.NewBinding(key.WithKeys("alt+1", "alt+2", "alt+3"), key.WithHelp("alt+1/2/3", "视频/文章/题目")),
		Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "发送")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Play, k.Skip},
		{k.Confirm, k.Direct, k.Views},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the lesson session and routes
// input to it; sub-views only render snapshots and emit intent messages.
type Model struct {
	session lessonin.Session
	cards   cardExporter
	course  coursedto.Course
	now     func() time.Time

	learnView learnview.Model
	cardsView cardsview.Model
	quizView  quizview.Model

	activeTab      tabID
	keys           keyMap
	help           help.Model
	showHelp       bool
	palette        components.Palette
	snap           lessondto.Snapshot
	celebrationSeq int
	banner         string
	bannerUntil    time.Time
	status         string
	width          int
	height         int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel expects a session that has already been started.
func NewModel(course coursedto.Course, session lessonin.Session, cards cardExporter) Model {
	m := Model{
		session:   session,
		cards:     cards,
		course:    course,
		now:       time.Now,
		learnView: learnview.New(course),
		cardsView: cardsview.New(),
		quizView:  quizview.New(course),
		activeTab: tabLearn,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "准备就绪",
	}
	m.refresh()
	m.celebrationSeq = m.snap.CelebrationSeq
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.learnView.Init(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tickMsg); !ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tickMsg:
		m.session.AdvanceVideo(TickInterval)
		m.session.Tick()
		cmds = append(cmds, m.refresh(), tick())
		if m.quizView.Expired() {
			cmds = append(cmds, m.submitQuiz(m.quizView.Selections(), "时间到，已自动交卷"))
		}
		return m, tea.Batch(cmds...)

	case replyMsg:
		m.session.FinishAnswer(msg.reply, msg.err)
		if msg.err != nil {
			m.status = "老师暂时不在线: " + msg.err.Error()
		}
		return m, m.refresh()

	case exportedMsg:
		if msg.err != nil {
			m.status = "导出失败: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("已导出 %d 张卡片到 %s", msg.out.Count, msg.out.Path)
		}
		return m, nil

	case learnview.SendMsg:
		return m, m.sendCmd(msg.Text)

	case learnview.ClickAnchorMsg:
		m.report(m.session.ClickAnchor(msg.ID))
		return m, m.refresh()

	case cardsview.ReviewMsg:
		if m.report(m.session.ReviewCard(msg.ID)) {
			m.activeTab = tabLearn
		}
		return m, m.refresh()

	case quizview.StartMsg:
		if m.report(m.session.StartQuiz()) {
			m.status = "测验开始"
		}
		return m, m.refresh()

	case quizview.SubmitMsg:
		return m, m.submitQuiz(msg.Selected, "")

	case quizview.CloseMsg:
		m.session.CloseQuiz()
		m.activeTab = tabLearn
		return m, m.refresh()

	case quizview.ReviewMsg:
		if m.report(m.session.ReviewFromQuiz(msg.MarkerID)) {
			m.activeTab = tabLearn
		}
		return m, m.refresh()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "准备就绪"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "f1" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.cardsView.Filtering() && m.activeTab == tabCards {
			break
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "f1":
			m.showHelp = true
			return m, nil
		case "ctrl+p":
			return m, m.palette.Open()
		case "ctrl+o":
			if m.snap.Playing {
				m.session.Pause()
			} else {
				m.session.Play()
			}
			return m, m.refresh()
		case "ctrl+k":
			m.report(m.session.SkipMarker())
			return m, m.refresh()
		case "ctrl+y", "ctrl+n":
			m.report(m.session.ConfirmTransition(msg.String() == "ctrl+n"))
			m.activeTab = tabLearn
			return m, m.refresh()
		case "alt+1", "alt+2", "alt+3":
			view := [...]string{"video", "article", "question"}[msg.String()[4]-'1']
			m.report(m.session.ChangeView(view))
			m.activeTab = tabLearn
			return m, m.refresh()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabLearn:
		m.learnView, tabCmd = m.learnView.Update(msg)
	case tabCards:
		m.cardsView, tabCmd = m.cardsView.Update(msg)
	case tabQuiz:
		m.quizView, tabCmd = m.quizView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		switch m.activeTab {
		case tabLearn:
			content = m.learnView.View()
		case tabCards:
			content = m.cardsView.View()
		case tabQuiz:
			content = m.quizView.View()
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		switch i {
		case tabCards:
			label += fmt.Sprintf(" %d", len(m.snap.Cards))
		case tabQuiz:
			if m.snap.QuizAvailable {
				label += " •"
			}
		}
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	bar := "慧学  " + strings.Join(parts, theme.Muted.Render(" │ ")) + "   " + theme.Title.Render(m.course.Title)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.banner != "" && m.now().Before(m.bannerUntil) {
		left = theme.Celebrate.Render(m.banner) + "  " + left
	}
	right := theme.Muted.Render("f1:帮助  tab:切换  ctrl+p:命令  ctrl+c:退出")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch parts[0] {
	case "play":
		m.session.Play()
	case "pause":
		m.session.Pause()
	case "skip":
		m.report(m.session.SkipMarker())
	case "view":
		m.report(m.session.ChangeView(arg))
		m.activeTab = tabLearn
	case "anchor":
		m.report(m.session.ClickAnchor(arg))
	case "confirm":
		m.report(m.session.ConfirmTransition(arg == "skip"))
	case "quiz":
		m.activeTab = tabQuiz
	case "review":
		if m.report(m.session.ReviewFromQuiz(arg)) {
			m.activeTab = tabLearn
		}
	case "card":
		if m.report(m.session.ReviewCard(arg)) {
			m.activeTab = tabLearn
		}
	case "export":
		return m, m.exportCmd()
	case "reset":
		m.session.Reset(context.Background())
		m.status = "学习进度已重置"
	default:
		m.status = "未知命令: " + parts[0]
	}
	return m, m.refresh()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// refresh pushes a fresh snapshot into every sub-view.
func (m *Model) refresh() tea.Cmd {
	now := m.now()
	m.snap = m.session.Snapshot()
	m.learnView.SetSnapshot(m.snap)
	m.quizView.SetState(m.snap, now)
	if m.snap.CelebrationSeq > m.celebrationSeq {
		m.celebrationSeq = m.snap.CelebrationSeq
		switch m.snap.Celebration {
		case "full":
			m.banner, m.bannerUntil = "🏆 太棒了！测验成绩优秀！", now.Add(4*time.Second)
		default:
			m.banner, m.bannerUntil = "🎉 答对了！", now.Add(2*time.Second)
		}
	}
	return m.cardsView.SetCards(m.snap.Cards)
}

// report shows err in the status bar and reports whether the call succeeded.
func (m *Model) report(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, apperrors.ErrTurnInFlight):
		m.status = "老师正在回复，请稍候"
	case errors.Is(err, apperrors.ErrQuizUnavailable):
		m.status = "测验暂不可用"
	case errors.Is(err, apperrors.ErrNoPendingDecision):
		m.status = "当前没有待进入的阶段"
	default:
		m.status = err.Error()
	}
	return false
}

func (m *Model) submitQuiz(selected map[string]int, note string) tea.Cmd {
	res, err := m.session.SubmitQuiz(selected)
	if m.report(err) {
		m.status = fmt.Sprintf("测验得分 %d（%d/%d）", res.Score, res.CorrectCount, res.Total)
		if note != "" {
			m.status = note + "，" + m.status
		}
		m.activeTab = tabQuiz
	}
	return m.refresh()
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.learnView, _ = m.learnView.Update(sz)
	m.cardsView, _ = m.cardsView.Update(sz)
	m.quizView, _ = m.quizView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

// sendCmd records the learner's message now and runs the tutor request off
// the UI goroutine; its reply re-enters Update as a replyMsg.
func (m *Model) sendCmd(text string) tea.Cmd {
	run, err := m.session.BeginAnswer(text)
	if !m.report(err) {
		return nil
	}
	refresh := m.refresh()
	return tea.Batch(refresh, func() tea.Msg {
		reply, err := run(context.Background())
		return replyMsg{reply: reply, err: err}
	})
}

func (m Model) exportCmd() tea.Cmd {
	courseID, title := m.course.ID, m.course.Title
	return func() tea.Msg {
		if m.cards == nil {
			return exportedMsg{err: fmt.Errorf("card export is not configured")}
		}
		out, err := m.cards.ExportCards(context.Background(), courseID, title)
		return exportedMsg{out: out, err: err}
	}
}
