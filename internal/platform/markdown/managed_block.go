package markdown

import "strings"

// Block is a generated region of a note delimited by HTML comments, so a
// re-export can refresh it while leaving the learner's own notes alone.
type Block struct {
	Name string
}

func (b Block) start() string { return "<!-- huixue:" + b.Name + ":start -->" }
func (b Block) end() string   { return "<!-- huixue:" + b.Name + ":end -->" }

// Replace swaps the block's content in body, appending the block when the
// body does not contain it yet.
func (b Block) Replace(body, generated string) string {
	start, end := b.start(), b.end()
	block := start + "\n" + strings.TrimRight(generated, "\n") + "\n" + end

	i := strings.Index(body, start)
	j := strings.Index(body, end)
	if i >= 0 && j > i {
		return body[:i] + block + body[j+len(end):]
	}
	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Extract returns the current content of the block.
func (b Block) Extract(body string) (string, bool) {
	start, end := b.start(), b.end()
	i := strings.Index(body, start)
	j := strings.Index(body, end)
	if i < 0 || j <= i {
		return "", false
	}
	return strings.Trim(body[i+len(start):j], "\n"), true
}
