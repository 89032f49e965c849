package out

import (
	"context"
	"fmt"
	"strings"

	"rsc.io/pdf"

	courseout "huixue/internal/modules/course/port/out"
)

type PDFArticleReader struct{}

func NewPDFArticleReader() courseout.ArticleReader {
	return &PDFArticleReader{}
}

// Read extracts the text of every page, one paragraph per page. PDFs carry
// no anchors.
func (r *PDFArticleReader) Read(ctx context.Context, path string) (courseout.ArticleText, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return courseout.ArticleText{}, fmt.Errorf("open pdf: %w", err)
	}
	pages := make([]string, 0, doc.NumPage())
	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return courseout.ArticleText{}, err
		}
		p := doc.Page(n)
		if p.V.IsNull() {
			continue
		}
		var parts []string
		for _, text := range p.Content().Text {
			if strings.TrimSpace(text.S) == "" {
				continue
			}
			parts = append(parts, text.S)
		}
		if len(parts) > 0 {
			pages = append(pages, strings.Join(parts, ""))
		}
	}
	return courseout.ArticleText{Body: strings.Join(pages, "\n\n")}, nil
}
