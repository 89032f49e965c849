package out

import (
	"context"
	"fmt"
	"os"
	"strings"

	"huixue/internal/modules/course/domain"
	courseout "huixue/internal/modules/course/port/out"
	"huixue/internal/platform/markdown"
)

type MarkdownArticleReader struct{}

func NewMarkdownArticleReader() courseout.ArticleReader {
	return &MarkdownArticleReader{}
}

type articleMeta struct {
	Anchors []domain.Anchor `yaml:"anchors"`
}

// Read returns the note body; anchors may be declared in its frontmatter.
func (r *MarkdownArticleReader) Read(_ context.Context, path string) (courseout.ArticleText, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return courseout.ArticleText{}, fmt.Errorf("read markdown: %w", err)
	}
	var meta articleMeta
	body, err := markdown.Split(string(b), &meta)
	if err != nil {
		return courseout.ArticleText{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return courseout.ArticleText{Body: strings.TrimSpace(body), Anchors: meta.Anchors}, nil
}
