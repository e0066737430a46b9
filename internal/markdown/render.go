// Package markdown renders model responses for the terminal viewport.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer handles markdown rendering with syntax highlighting.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
}

// NewRenderer creates a renderer wrapping at the given width.
func NewRenderer(width int) (*Renderer, error) {
	r := &Renderer{}
	if err := r.SetWidth(width); err != nil {
		return nil, err
	}
	return r, nil
}

// SetWidth rebuilds the underlying renderer for a new wrap width.
func (r *Renderer) SetWidth(width int) error {
	if width < 1 {
		width = 1
	}
	if r.glamour != nil && r.width == width {
		return nil
	}
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return err
	}
	r.glamour = gr
	r.width = width
	return nil
}

// Render renders markdown content. On failure the raw content is returned:
// a rendering hiccup must never hide a response.
func (r *Renderer) Render(content string) string {
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
