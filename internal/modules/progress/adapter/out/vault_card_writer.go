package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"huixue/internal/modules/progress/domain"
	progressout "huixue/internal/modules/progress/port/out"
	"huixue/internal/platform/markdown"
	"huixue/internal/platform/slug"
)

var cardsBlock = markdown.Block{Name: "cards"}

// VaultCardWriter renders a course's knowledge cards as a markdown note.
// Re-exporting refreshes the generated block and frontmatter and keeps any
// notes the learner wrote around them.
type VaultCardWriter struct {
	dir string
}

func NewVaultCardWriter(dir string) progressout.CardWriter {
	return &VaultCardWriter{dir: dir}
}

type cardNoteMeta struct {
	SchemaVersion int      `yaml:"schema_version"`
	CourseID      string   `yaml:"course_id"`
	Title         string   `yaml:"title"`
	Cards         int      `yaml:"cards"`
	Completed     []string `yaml:"completed_markers"`
	QuizScore     *int     `yaml:"quiz_score,omitempty"`
	ExportedAt    string   `yaml:"exported_at"`
	Tags          []string `yaml:"tags"`
}

func (w *VaultCardWriter) Write(_ context.Context, deck domain.CardDeck) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cards dir: %w", err)
	}
	path := filepath.Join(w.dir, slug.Make(deck.Title)+"-cards.md")

	body := fmt.Sprintf("# %s\n", deck.Title)
	if existing, err := os.ReadFile(path); err == nil {
		if prior, err := markdown.Split(string(existing), nil); err == nil {
			body = prior
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read card note: %w", err)
	}

	meta := cardNoteMeta{
		SchemaVersion: domain.SchemaVersion,
		CourseID:      deck.CourseID,
		Title:         deck.Title,
		Cards:         len(deck.Points),
		Completed:     deck.Completed,
		QuizScore:     deck.QuizScore,
		ExportedAt:    deck.ExportedAt.Format("2006-01-02T15:04:05Z07:00"),
		Tags:          []string{"huixue", "knowledge-cards"},
	}
	rendered, err := markdown.Render(meta, cardsBlock.Replace(body, renderCards(deck.Points)))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write card note: %w", err)
	}
	return path, nil
}

func renderCards(points []domain.KnowledgePoint) string {
	if len(points) == 0 {
		return "_No cards collected yet._"
	}
	var b strings.Builder
	for i, kp := range points {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", kp.Content)
		fmt.Fprintf(&b, "- type: %s\n", kp.Type)
		if kp.Phonetic != "" {
			fmt.Fprintf(&b, "- phonetic: %s\n", kp.Phonetic)
		}
		if kp.Translation != "" {
			fmt.Fprintf(&b, "- meaning: %s\n", oneLine(kp.Translation))
		}
		if kp.ExampleInText != "" && kp.ExampleInText != kp.Translation {
			fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(strings.TrimSpace(kp.ExampleInText), "\n", "\n> "))
		}
		for _, ex := range kp.ExampleOther {
			fmt.Fprintf(&b, "- example: %s\n", oneLine(ex))
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
