package cards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	lessondto "huixue/internal/modules/lesson/dto"
	"huixue/internal/ui/theme"
)

// ReviewMsg asks the tutor to revisit a collected card.
type ReviewMsg struct{ ID string }

var typeLabels = map[string]string{
	"important":  "重点",
	"grammar":    "易错",
	"vocabulary": "概念",
	"reading":    "拓展",
}

type cardItem struct {
	card lessondto.Card
}

func (i cardItem) Title() string { return i.card.Content }
func (i cardItem) Description() string {
	label := typeLabels[i.card.Type]
	if label == "" {
		label = i.card.Type
	}
	return label
}
func (i cardItem) FilterValue() string { return i.card.Content }

// Model lists the knowledge cards collected in this lesson.
type Model struct {
	list    list.Model
	preview viewport.Model
	count   int
	width   int
	height  int
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "知识卡片"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{list: l, preview: vp}
}

// SetCards refreshes the list when the deck has grown. Cards are never
// edited, so the length is enough to detect a change.
func (m *Model) SetCards(cards []lessondto.Card) tea.Cmd {
	if len(cards) == m.count {
		return nil
	}
	m.count = len(cards)
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = cardItem{card: c}
	}
	cmd := m.list.SetItems(items)
	m.preview.SetContent(m.renderDetail())
	return cmd
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listW := m.width * 4 / 10
		m.list.SetSize(listW, m.height)
		m.preview.Width = m.width - listW - 4
		m.preview.Height = m.height - 4
	case tea.KeyMsg:
		if msg.String() == "enter" && !m.Filtering() {
			if item, ok := m.list.SelectedItem().(cardItem); ok {
				id := item.card.ID
				return m, func() tea.Msg { return ReviewMsg{ID: id} }
			}
		}
	}
	var cmd tea.Cmd
	prev := m.list.Index()
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != prev {
		m.preview.SetContent(m.renderDetail())
	}
	return m, cmd
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detail := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detail)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(cardItem)
	if !ok {
		return theme.Muted.Render("还没有收集到知识卡片。答对知识点后会自动收藏。")
	}
	c := item.card
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(c.Content) + "  " + theme.Muted.Render(item.Description()) + "\n\n")
	if c.Phonetic != "" {
		sb.WriteString(theme.Muted.Render(c.Phonetic) + "\n")
	}
	sb.WriteString(c.Translation + "\n")
	if c.ExampleInText != "" && c.ExampleInText != c.Translation {
		sb.WriteString("\n" + theme.Muted.Render("讲解: ") + c.ExampleInText + "\n")
	}
	for i, ex := range c.ExampleOther {
		sb.WriteString(fmt.Sprintf("%s %s\n", theme.Muted.Render(fmt.Sprintf("例%d:", i+1)), ex))
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: 让老师带你复习"))
	return sb.String()
}
