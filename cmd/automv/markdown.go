package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

const markdownWidth = 100

// renderMarkdown styles storyboard and character text for a terminal. Output
// that is not a terminal gets the markdown unchanged.
func renderMarkdown(content string, out io.Writer) string {
	if strings.TrimSpace(content) == "" || !shouldColorize(out) {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
