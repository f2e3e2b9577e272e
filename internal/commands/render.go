package commands

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer is an interface for rendering markdown content
type Renderer interface {
	Render(in string) (string, error)
}

// PlainTextRenderer returns content as-is without formatting.
type PlainTextRenderer struct{}

// Render returns the input unchanged
func (p *PlainTextRenderer) Render(in string) (string, error) {
	return in, nil
}

// IsTTY returns true if stdout is connected to a terminal
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInputTTY returns true if stdin is connected to a terminal
func IsInputTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func baseStyle() ansi.StyleConfig {
	style := styles.LightStyleConfig
	if termenv.HasDarkBackground() {
		style = styles.DarkStyleConfig
	}
	style.Document.BlockPrefix = ""
	return style
}

func asciiStyle() ansi.StyleConfig {
	style := styles.ASCIIStyleConfig
	style.Document.BlockPrefix = ""
	style.Document.Margin = nil
	return style
}

// NewRenderer returns a styled glamour renderer on a terminal and an ASCII
// one otherwise, falling back to plain text if glamour cannot be set up.
func NewRenderer() Renderer {
	style := asciiStyle()
	if IsTTY() {
		style = baseStyle()
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return &PlainTextRenderer{}
	}
	return renderer
}
