package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---\n"

// Split separates a leading YAML frontmatter block from the body and decodes
// it into meta. Content without frontmatter is returned unchanged and meta
// is left untouched.
func Split(content string, meta any) (string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fence) {
		return content, nil
	}
	rest := strings.TrimPrefix(content, fence)
	idx := strings.Index(rest, "\n"+fence)
	if idx < 0 {
		return "", fmt.Errorf("frontmatter: missing closing fence")
	}
	raw := rest[:idx]
	body := rest[idx+len("\n"+fence):]
	if meta != nil {
		if err := yaml.Unmarshal([]byte(raw), meta); err != nil {
			return "", fmt.Errorf("frontmatter: %w", err)
		}
	}
	return body, nil
}

// Render writes meta as frontmatter ahead of body.
func Render(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(body)
	return buf.String(), nil
}
