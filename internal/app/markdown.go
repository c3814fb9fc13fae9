package app

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// markdownRenderer renders the help reference.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// helpCache keeps the rendered help between frames. The model is copied on
// every update, so it is shared through a pointer.
type helpCache struct {
	width int
	out   string
}

// newMarkdownRenderer uses a fixed style path instead of glamour's auto
// style, which queries the terminal and leaks the reply into the input.
// "auto" is resolved once through termenv before the program starts.
func newMarkdownRenderer(width int, style string) (*markdownRenderer, error) {
	switch style {
	case "":
		style = "dark"
	case "auto":
		style = "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &markdownRenderer{renderer: r, width: width}, nil
}

func (r *markdownRenderer) Render(md string) (string, error) {
	return r.renderer.Render(md)
}
