package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/explorer"
	"github.com/matzehuels/deptree/pkg/metadata"
	"github.com/matzehuels/deptree/pkg/render"
	"github.com/matzehuels/deptree/pkg/tree"
)

const (
	headerRows  = 1
	footerRows  = 1
	panelWidth  = 36
	panStep     = 40.0
	wheelFactor = 1.1
)

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var tf treeFlags

	cmd := &cobra.Command{
		Use:   "explore [tree.json]",
		Short: "Explore a dependency tree in the terminal",
		Long: `Explore a dependency tree in the terminal.

Click a package to expand or collapse it and show its details. Drag to pan,
scroll to zoom around the pointer. Press ? for all key bindings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], tf)
		},
	}
	tf.register(cmd)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, tf treeFlags) error {
	ex, err := c.openExplorer(input, tf, explorer.WithLogger(log.New(io.Discard)))
	if err != nil {
		return err
	}
	defer ex.Close()

	lookup, closeLookup, err := c.openLookup(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	defer closeLookup()

	cv := render.NewCanvas()
	cv.CellWidth, cv.CellHeight = c.config().Explore.CellWidth, c.config().Explore.CellHeight

	m := newExploreModel(ctx, ex, cv, lookup)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer: %w", err)
	}

	if fm, ok := final.(exploreModel); ok && fm.selected != "" {
		printInfo("Last selected %s", StyleHighlight.Render(fm.selected))
	}
	return nil
}

// =============================================================================
// Key Bindings
// =============================================================================

type exploreKeys struct {
	Up, Down, Left, Right key.Binding
	ZoomIn, ZoomOut       key.Binding
	Reset, Fit            key.Binding
	Toggle                key.Binding
	ExpandAll, Collapse   key.Binding
	Help, Quit            key.Binding
}

func defaultExploreKeys() exploreKeys {
	return exploreKeys{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
		Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "toggle selected")),
		ExpandAll: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		Collapse:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k exploreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Fit, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k exploreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Fit},
		{k.Toggle, k.ExpandAll, k.Collapse},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// exploreModel - Interactive tree explorer
// =============================================================================

// Panel styles
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	panelLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(15)
	panelValueStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// detailsMsg carries the metadata panel of a selected package.
type detailsMsg struct {
	id     string
	fields []metadata.Field
	err    error
}

// frameMsg asks the model to draw a frame the throttle held back.
type frameMsg struct{}

// canvasFrame paces canvas rasterization. It is shared by every copy of the
// model and only touched from bubbletea's update loop.
type canvasFrame struct {
	throttle  *render.Throttle
	frame     render.Frame
	scheduled bool
}

type exploreModel struct {
	ctx    context.Context
	ex     *explorer.Explorer
	canvas *render.Canvas
	frames *canvasFrame
	lookup metadata.Lookup
	keys   exploreKeys
	help   help.Model

	width, height int
	centered      bool

	selected   string
	details    []metadata.Field
	detailsErr error
}

func newExploreModel(ctx context.Context, ex *explorer.Explorer, cv *render.Canvas, lookup metadata.Lookup) exploreModel {
	f := &canvasFrame{}
	f.throttle = render.NewThrottle(render.DefaultFrameInterval, func() {
		_ = ex.Render(cv, f.frame)
	})
	return exploreModel{
		ctx:    ctx,
		ex:     ex,
		canvas: cv,
		frames: f,
		lookup: lookup,
		keys:   defaultExploreKeys(),
		help:   help.New(),
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

// Update applies msg and then asks for a canvas redraw. Redraws are throttled
// to one per frame interval; a held-back redraw comes back as a frameMsg.
func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if !m.centered {
			m.centerRoot()
			m.centered = true
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m = m.handleKey(msg)

	case tea.MouseMsg:
		m, cmd = m.handleMouse(msg)

	case detailsMsg:
		if msg.id == m.selected {
			m.details, m.detailsErr = msg.fields, msg.err
		}

	case frameMsg:
		m.frames.scheduled = false
		m.frames.frame = m.currentFrame()
		m.frames.throttle.Flush()
		return m, m.scheduleFrame()
	}
	return m, tea.Batch(cmd, m.requestFrame())
}

// requestFrame redraws the canvas now or schedules the redraw for the end of
// the current frame interval.
func (m exploreModel) requestFrame() tea.Cmd {
	if m.width == 0 {
		return nil
	}
	m.frames.frame = m.currentFrame()
	m.frames.throttle.Request()
	return m.scheduleFrame()
}

func (m exploreModel) scheduleFrame() tea.Cmd {
	f := m.frames
	if !f.throttle.Pending() || f.scheduled {
		return nil
	}
	f.scheduled = true
	return tea.Tick(f.throttle.Due(), func(time.Time) tea.Msg { return frameMsg{} })
}

// currentFrame describes the canvas area and highlight for the next draw.
func (m exploreModel) currentFrame() render.Frame {
	w, h := m.canvas.ScreenSize(m.canvasSize())
	return render.Frame{Width: w, Height: h, Selected: m.selected}
}

func (m exploreModel) handleKey(msg tea.KeyMsg) exploreModel {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.ex.Pan(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.ex.Pan(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.ex.Pan(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.ex.Pan(-panStep, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.ex.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.ex.ZoomOut()
	case key.Matches(msg, m.keys.Reset):
		m.ex.ResetView()
	case key.Matches(msg, m.keys.Fit):
		w, h := m.canvas.ScreenSize(m.canvasSize())
		m.ex.Fit(w, h)
	case key.Matches(msg, m.keys.Toggle):
		if m.selected != "" {
			m.ex.Toggle(m.selected)
		}
	case key.Matches(msg, m.keys.ExpandAll):
		m.ex.ExpandAll()
	case key.Matches(msg, m.keys.Collapse):
		m.ex.CollapseAll()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m
}

// handleMouse feeds mouse events into the explorer's gesture handling. The
// explorer decides whether a press/release pair is a click or a drag.
func (m exploreModel) handleMouse(msg tea.MouseMsg) (exploreModel, tea.Cmd) {
	sx, sy, inside := m.screenPoint(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		v := m.ex.Viewport()
		m.ex.ZoomAt(v.Zoom*wheelFactor, sx, sy)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		v := m.ex.Viewport()
		m.ex.ZoomAt(v.Zoom/wheelFactor, sx, sy)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.ex.PointerDown(sx, sy)
	case msg.Action == tea.MouseActionMotion:
		m.ex.PointerMove(sx, sy)
	case msg.Action == tea.MouseActionRelease:
		m.ex.PointerUp(sx, sy)
		return m.syncSelection()
	}
	return m, nil
}

// syncSelection picks up a selection made by a click and starts loading its
// details.
func (m exploreModel) syncSelection() (exploreModel, tea.Cmd) {
	id := m.ex.Selection()
	if id == "" || id == m.selected {
		return m, nil
	}
	m.selected = id
	m.details, m.detailsErr = nil, nil
	node, ok := m.ex.Tree().Node(id)
	if !ok {
		return m, nil
	}
	return m, loadDetails(m.ctx, m.lookup, node)
}

func loadDetails(ctx context.Context, lookup metadata.Lookup, node *tree.Node) tea.Cmd {
	return func() tea.Msg {
		fields, err := metadata.Panel(ctx, lookup, node)
		return detailsMsg{id: node.ID, fields: fields, err: err}
	}
}

// centerRoot pans so the root sits in the horizontal middle of the canvas.
func (m *exploreModel) centerRoot() {
	res := m.ex.Layout()
	if len(res.Nodes) == 0 {
		return
	}
	w, _ := m.canvas.ScreenSize(m.canvasSize())
	v := m.ex.Viewport()
	m.ex.SetPan(w/2-res.Nodes[0].X*v.Zoom, v.PanY)
}

func (m exploreModel) showPanel() bool {
	return m.selected != "" && m.width >= 2*panelWidth
}

// canvasSize returns the drawing area in cells.
func (m exploreModel) canvasSize() (int, int) {
	cols := m.width
	if m.showPanel() {
		cols -= panelWidth
	}
	return max(0, cols), max(0, m.height-headerRows-footerRows)
}

// screenPoint converts a terminal cell to canvas screen coordinates.
func (m exploreModel) screenPoint(x, y int) (float64, float64, bool) {
	cols, rows := m.canvasSize()
	col, row := x, y-headerRows
	sx, sy := m.canvas.ScreenPoint(col, row)
	return sx, sy, col >= 0 && col < cols && row >= 0 && row < rows
}

func (m exploreModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	_, rows := m.canvasSize()
	body := m.canvas.View()
	if m.showPanel() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.panelView(rows))
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m exploreModel) headerView() string {
	res := m.ex.Layout()
	parts := []string{
		StyleTitle.Render(appName),
		StyleValue.Render(m.ex.Tree().Root().Label()),
		StyleDim.Render(fmt.Sprintf("%d of %d packages", len(res.Nodes), m.ex.Tree().Len())),
		StyleDim.Render(fmt.Sprintf("zoom %d%%", m.ex.Viewport().Percent())),
	}
	if n := len(res.Warnings); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%s %d cycles cut", iconWarning, n)))
	}
	return strings.Join(parts, StyleDim.Render("  ·  "))
}

func (m exploreModel) panelView(rows int) string {
	var b strings.Builder
	node, _ := m.ex.Tree().Node(m.selected)
	if node != nil {
		b.WriteString(panelTitleStyle.Render(node.Label()))
	}
	for _, f := range m.details {
		b.WriteString("\n")
		b.WriteString(panelLabelStyle.Render(f.Label) + panelValueStyle.Render(f.Value))
	}
	if m.detailsErr != nil {
		b.WriteString("\n\n")
		b.WriteString(StyleWarning.Render("details unavailable"))
	}
	return panelStyle.
		Width(panelWidth - 2).
		MaxHeight(max(rows, 3)).
		Render(b.String())
}
