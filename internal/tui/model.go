// Package tui is the terminal editor. It hosts the canvas surface, feeds it
// mouse events and draws its raster with half-block characters.
package tui

import (
	"context"
	"io"
	"log"
	"strings"

	"easel/internal/config"
	"easel/internal/element"
	"easel/internal/history"
	"easel/internal/imageload"
	"easel/internal/store"
	"easel/internal/surface"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// API is the part of the REST client the editor uses.
type API interface {
	Create(ctx context.Context, width, height float64) (string, error)
	Get(ctx context.Context, id string) (store.Canvas, error)
	Update(ctx context.Context, id string, c store.Canvas) (string, error)
	List(ctx context.Context) ([]store.Summary, error)
	Export(ctx context.Context, id string, w io.Writer) error
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Mode int

const (
	ModeLoading Mode = iota
	ModePicker
	ModeEdit
	ModePrompt
	ModeHelp
	ModeConfirmQuit
)

type promptKind int

const (
	promptSave promptKind = iota
	promptText
	promptImage
	promptColor
	promptProps
	promptCanvasSize
)

// size offered for a new canvas
const (
	defaultCanvasWidth  = 600
	defaultCanvasHeight = 400
)

type Options struct {
	Config   *config.Config
	API      API
	Loader   imageload.Loader
	CanvasID string
}

type Model struct {
	width  int
	height int
	mode   Mode

	api    API
	config *config.Config
	loader imageload.Loader

	doc         *document
	surface     *surface.Surface
	history     *history.History
	completions chan func()
	dragging    bool

	picker     picker
	input      textinput.Model
	prompt     promptKind
	promptFrom Mode
	// imageTarget is the element an image prompt fills in, or NoSelection
	// to add a new one.
	imageTarget int

	helpView string

	initialID      string
	successMessage string
	errorMessage   string
}

func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = imageload.FetchLoader{}
	}

	input := textinput.New()
	input.CharLimit = 512
	input.Width = 48

	return Model{
		mode:        ModeLoading,
		api:         opts.API,
		config:      cfg,
		loader:      loader,
		history:     history.New(history.DefaultDepth),
		completions: make(chan func(), 64),
		picker:      newPicker(),
		input:       input,
		imageTarget: surface.NoSelection,
		initialID:   opts.CanvasID,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForCompletion(m.completions)}
	if m.initialID != "" {
		cmds = append(cmds, loadCanvas(m.api, m.initialID))
	} else {
		cmds = append(cmds, listCanvases(m.api))
	}
	return tea.Batch(cmds...)
}

func (m Model) Mode() Mode { return m.mode }

// open replaces the current document and rebuilds the surface around it.
func (m *Model) open(c store.Canvas) {
	if m.surface != nil {
		m.surface.Close()
	}
	m.doc = newDocument(c)
	m.history.Reset()

	ch := m.completions
	hist := m.history
	s := surface.New(m.doc, m.doc,
		surface.WithLoader(m.loader),
		surface.WithScheduler(func(fn func()) { ch <- fn }),
	)
	s.OnChange = func(kind surface.ChangeKind, before, after []element.Element) {
		t := history.ActionMove
		if kind == surface.ChangeResize {
			t = history.ActionResize
		}
		hist.Record(t, before, after)
	}
	s.Resize(int(c.Width), int(c.Height))
	m.surface = s
	m.mode = ModeEdit
	log.Printf("[INFO] opened canvas %s (%gx%g, %d elements)", c.ID, c.Width, c.Height, len(c.Elements))
}

// canvasRows is the terminal height left for the raster.
func (m Model) canvasRows() int {
	return max(m.height-1, 1)
}

func (m Model) scale() float64 {
	if m.doc == nil {
		return 1
	}
	return fitScale(m.doc.width, m.doc.height, m.width, m.canvasRows())
}

// toCanvas maps terminal cell (cx, cy) to a canvas point.
func (m Model) toCanvas(cx, cy int) element.Point {
	s := m.scale()
	return element.Point{X: float64(cx) * s, Y: float64(cy) * 2 * s}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.mode == ModeHelp {
			m.helpView = renderHelp(m.width)
		}
		return m, nil

	case completionMsg:
		msg.fn()
		return m, waitForCompletion(m.completions)

	case canvasesMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		}
		m.picker.setItems(msg.list)
		m.mode = ModePicker
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			if m.doc == nil {
				m.mode = ModePicker
			}
			return m, nil
		}
		return m, loadCanvas(m.api, msg.id)

	case canvasLoadedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			if m.doc == nil {
				m.mode = ModePicker
			}
			return m, nil
		}
		m.open(msg.canvas)
		m.errorMessage = ""
		m.successMessage = "Opened " + msg.canvas.Name
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.errorMessage = "Save failed: " + msg.err.Error()
			return m, nil
		}
		m.doc.name = msg.name
		m.doc.dirty = false
		m.errorMessage = ""
		m.successMessage = "Saved " + msg.name
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.errorMessage = "Export failed: " + msg.err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.successMessage = "Exported to " + msg.path
		if msg.stale {
			m.errorMessage = "Exported the saved version to " + msg.path + "; unsaved changes are not included (s to save)"
		}
		return m, nil

	case uploadedMsg:
		if msg.err != nil {
			m.errorMessage = "Upload failed: " + msg.err.Error()
			return m, nil
		}
		if m.doc == nil {
			return m, nil
		}
		m.placeImage(msg.target, msg.url)
		return m, nil

	case tea.MouseMsg:
		if m.mode == ModeEdit {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModePicker:
			return m.updatePicker(msg)
		case ModePrompt:
			return m.updatePrompt(msg)
		case ModeHelp:
			switch msg.String() {
			case "esc", "q", "?":
				m.mode = ModeEdit
			}
			return m, nil
		case ModeConfirmQuit:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			default:
				m.mode = ModeEdit
				m.successMessage = ""
			}
			return m, nil
		case ModeEdit:
			return m.updateEdit(msg)
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.surface == nil {
		return
	}
	p := m.toCanvas(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.dragging = true
		m.surface.PointerDown(p)
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		m.surface.PointerMove(p)
	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.surface.PointerUp(p)
	}
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	promptStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3b82f6")).
			Padding(0, 1)
)

func (m Model) View() string {
	switch m.mode {
	case ModeLoading:
		return "Loading..."
	case ModePicker:
		return m.picker.view(m.width, m.height, m.errorMessage)
	case ModePrompt:
		if m.promptFrom == ModePicker {
			return m.picker.view(m.width, m.height-3, m.errorMessage) + "\n" +
				promptStyle.Render(m.promptTitle()+" "+m.input.View())
		}
	case ModeHelp:
		return m.helpView
	}

	var b strings.Builder
	if m.surface != nil {
		b.WriteString(rasterize(m.surface.Image(), m.width, m.canvasRows(), m.scale()))
	}
	b.WriteString("\n")

	switch m.mode {
	case ModePrompt:
		b.WriteString(promptStyle.Render(m.promptTitle() + " " + m.input.View()))
	case ModeConfirmQuit:
		b.WriteString(errorStyle.Render("Unsaved changes. Quit anyway? (y/n)"))
	default:
		b.WriteString(m.statusLine())
	}
	return b.String()
}

func (m Model) promptTitle() string {
	switch m.prompt {
	case promptSave:
		return "Canvas name:"
	case promptText:
		return "Text:"
	case promptImage:
		return "Image URL or file:"
	case promptColor:
		return "Color:"
	case promptProps:
		return "Properties:"
	case promptCanvasSize:
		return "Canvas size (WxH):"
	}
	return ""
}

func (m Model) statusLine() string {
	if m.doc == nil {
		return ""
	}
	parts := []string{titleStyle.Render(m.doc.name)}
	if m.doc.dirty {
		parts[0] += "*"
	}
	if _, el, ok := m.doc.selected(); ok {
		parts = append(parts, string(el.Kind()))
	}
	switch {
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render(m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	default:
		parts = append(parts, statusStyle.Render("? for help"))
	}
	var hints []string
	if m.history.CanUndo() {
		hints = append(hints, "u undo")
	}
	if m.history.CanRedo() {
		hints = append(hints, "ctrl+r redo")
	}
	if len(hints) > 0 {
		parts = append(parts, statusStyle.Render(strings.Join(hints, ", ")))
	}
	return strings.Join(parts, statusStyle.Render(" • "))
}
