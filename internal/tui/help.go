package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# easel

## Mouse

| Action | Effect |
|---|---|
| click | select the topmost element under the pointer |
| drag | move the selected element |
| drag a corner | resize rectangles, text and images |
| click empty space | clear the selection |

## Keys

| Key | Action |
|---|---|
| r / c | add a rectangle / circle |
| t | add text |
| i | add an image from a URL or a local file |
| enter | edit the properties of the selection (x=10 r=40 text=...) |
| f | change the color of the selection |
| tab | change the kind of the selection; images ask for a source |
| h j k l, arrows | nudge the selection (shift for 10x) |
| x, delete | delete the selection |
| esc | clear the selection |
| u / ctrl+r | undo / redo |
| s | save under a name |
| e / p | export PDF / PNG to the save directory |
| y | copy the canvas id |
| q | quit |

Press **esc** or **?** to close this help.
`

var (
	helpMu        sync.Mutex
	helpRenderers = map[int]*glamour.TermRenderer{}
)

// renderHelp renders the key reference for the terminal width. A fixed style
// avoids terminal background queries.
func renderHelp(width int) string {
	if width < 20 {
		width = 80
	}
	helpMu.Lock()
	defer helpMu.Unlock()
	r := helpRenderers[width]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return helpMarkdown
		}
		helpRenderers[width] = r
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
