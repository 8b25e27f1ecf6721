package webhook

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	emailMarkdown     goldmark.Markdown
	emailMarkdownOnce sync.Once
)

func getEmailMarkdown() goldmark.Markdown {
	emailMarkdownOnce.Do(func() {
		emailMarkdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return emailMarkdown
}

// RenderEmailHTML превращает markdown-текст письма в HTML.
// Сырой HTML во входных данных экранируется (goldmark по умолчанию не пропускает его).
func RenderEmailHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := getEmailMarkdown().Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render email markdown: %w", err)
	}
	return buf.String(), nil
}
