package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/raycast"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// Terminal cells are mapped to nominal pixels so that the click threshold
// keeps its meaning: any drag across a cell boundary exceeds it.
const (
	cellPxX = 8
	cellPxY = 16

	gridTop  = 3 // title, toolbar and a blank line precede the grid
	gridLeft = 2
)

var (
	tuiHelpStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tuiEmptyStyle   = lipgloss.NewStyle().Foreground(colorDim)
	tuiCursorStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	tuiGroundStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	tuiPieceStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	tuiNoTargetText = lipgloss.NewStyle().Foreground(colorGray).Render("no target")
)

// =============================================================================
// BuilderModel - Interactive top-down builder
// =============================================================================

type frameMsg time.Time

type savedMsg struct {
	where string
	err   error
}

// saveFunc persists pieces and describes where they went.
type saveFunc func(build.Pieces) (string, error)

// cell is the top surface seen from above at one grid cell.
type cell struct {
	color catalog.Color
	top   float64
	set   bool
}

// BuilderModel is the bubbletea model for the terminal builder. It is the
// single owner of its controller: every read and write happens in Update.
type BuilderModel struct {
	ctrl     *controller.Controller
	extent   int
	interval time.Duration
	save     saveFunc

	cursorX, cursorZ int
	pointerOn        bool
	primaryDown      bool
	status           string
	quitting         bool
}

// NewBuilderModel creates a builder over ctrl showing extent×extent cells
// around the origin. save may be nil, in which case ctrl+s is disabled.
func NewBuilderModel(ctrl *controller.Controller, extent, frameRate int, save saveFunc) BuilderModel {
	if frameRate <= 0 {
		frameRate = 30
	}
	return BuilderModel{
		ctrl:      ctrl,
		extent:    extent,
		interval:  time.Second / time.Duration(frameRate),
		save:      save,
		cursorX:   extent / 2,
		cursorZ:   extent / 2,
		pointerOn: true,
	}
}

func (m BuilderModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m BuilderModel) nextFrame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// world returns the centre of grid cell (i, j).
func (m BuilderModel) world(i, j int) (x, z float64) {
	half := float64(m.extent) / 2
	return float64(i) - half + 0.5, float64(j) - half + 0.5
}

// hit casts straight down through the cursor.
func (m BuilderModel) hit() snap.Hit {
	if !m.pointerOn {
		return snap.NoHit()
	}
	x, z := m.world(m.cursorX, m.cursorZ)
	return raycast.At(x, z, m.ctrl.Live())
}

func (m BuilderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.ctrl.Tick(m.hit())
		if m.quitting {
			return m, nil
		}
		return m, m.nextFrame()

	case savedMsg:
		if msg.err != nil {
			m.status = styleIconError.Render(iconError) + " " + msg.err.Error()
		} else {
			m.status = styleIconSuccess.Render(iconSuccess) + " saved to " + msg.where
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m BuilderModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursorZ = max(m.cursorZ-1, 0)
	case "down", "j":
		m.cursorZ = min(m.cursorZ+1, m.extent-1)
	case "left", "h":
		m.cursorX = max(m.cursorX-1, 0)
	case "right", "l":
		m.cursorX = min(m.cursorX+1, m.extent-1)
	case "r":
		m.ctrl.Rotate()
	case "ctrl+z", "u":
		if !m.ctrl.Undo() {
			m.status = "nothing to undo"
		}
	case "ctrl+y":
		if !m.ctrl.Redo() {
			m.status = "nothing to redo"
		}
	case "enter", " ":
		m.pointerOn = true
		if cm, ok := m.ctrl.Place(m.hit()); ok {
			m.status = fmt.Sprintf("placed %s on %s", cm.Piece.Type, cm.Contact)
		}
	case "x", "delete", "backspace":
		if h := m.hit(); h.Kind == snap.HitPiece && m.ctrl.Remove(h.PieceID) {
			m.status = "removed " + shortID(h.PieceID)
		}
	case "tab":
		m.ctrl.CycleType()
	case "c":
		m.ctrl.CycleColor()
	case "ctrl+s":
		if m.save == nil {
			m.status = "no save target (pass a file or --name)"
			return m, nil
		}
		pieces, save := m.ctrl.Pieces(), m.save
		return m, func() tea.Msg {
			where, err := save(pieces)
			return savedMsg{where: where, err: err}
		}
	}
	m.ctrl.Tick(m.hit())
	return m, nil
}

// handleMouse maps terminal cells onto the grid. Left press and release go
// through the controller's click gesture so drags do not place; any other
// button cancels a pending gesture.
func (m BuilderModel) handleMouse(msg tea.MouseMsg) BuilderModel {
	i, j := (msg.X-gridLeft)/2, msg.Y-gridTop
	inside := msg.X >= gridLeft && i < m.extent && j >= 0 && j < m.extent
	if inside {
		m.cursorX, m.cursorZ = i, j
	}
	m.pointerOn = inside
	px, py := float64(msg.X*cellPxX), float64(msg.Y*cellPxY)
	m.ctrl.Tick(m.hit())

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.Press(px, py)
		m.primaryDown = true
	case msg.Action == tea.MouseActionPress && !tea.MouseEvent(msg).IsWheel():
		m.ctrl.CancelPress()
		m.primaryDown = false
		if msg.Button == tea.MouseButtonRight {
			if h := m.hit(); h.Kind == snap.HitPiece && m.ctrl.Remove(h.PieceID) {
				m.status = "removed " + shortID(h.PieceID)
			}
		}
	case msg.Action == tea.MouseActionRelease:
		// X10 terminals report releases without a button.
		primary := msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone
		if !m.primaryDown || !primary {
			m.ctrl.CancelPress()
			m.primaryDown = false
			break
		}
		m.primaryDown = false
		if cm, ok := m.ctrl.Release(px, py, !inside); ok {
			m.status = fmt.Sprintf("placed %s on %s", cm.Piece.Type, cm.Contact)
		}
	}
	return m
}

// =============================================================================
// Rendering
// =============================================================================

// surface computes the top cell map of the live build.
func (m BuilderModel) surface() [][]cell {
	grid := make([][]cell, m.extent)
	for j := range grid {
		grid[j] = make([]cell, m.extent)
	}
	for _, p := range m.ctrl.Live() {
		b, ok := snap.PieceBox(p)
		if !ok {
			continue
		}
		for j := range m.extent {
			for i := range m.extent {
				x, z := m.world(i, j)
				if !b.Contains(x, z) {
					continue
				}
				if c := &grid[j][i]; !c.set || b.MaxY > c.top {
					*c = cell{color: p.Color, top: b.MaxY, set: true}
				}
			}
		}
	}
	return grid
}

func (m BuilderModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Brickyard"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d pieces", len(m.ctrl.Live()))))
	b.WriteString("\n")
	b.WriteString(m.toolbar())
	b.WriteString("\n\n")

	cand, hasCand := m.ctrl.Candidate()
	active := m.ctrl.ActiveColor()
	previewStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(active)))
	grid := m.surface()

	for j := range m.extent {
		b.WriteString(strings.Repeat(" ", gridLeft))
		for i := range m.extent {
			x, z := m.world(i, j)
			c := grid[j][i]
			switch {
			case i == m.cursorX && j == m.cursorZ && m.pointerOn:
				b.WriteString(tuiCursorStyle.Render("[]"))
			case hasCand && cand.Footprint.Contains(x, z):
				b.WriteString(previewStyle.Render("▒▒"))
			case c.set:
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(string(c.color))).Render(iconSwatch))
			default:
				b.WriteString(tuiEmptyStyle.Render("· "))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + m.contactCue(cand, hasCand))
	if m.status != "" {
		b.WriteString(StyleDim.Render("  ·  ") + m.status)
	}
	b.WriteString("\n")
	b.WriteString(tuiHelpStyle.Render("  ←↑↓→ move  ⏎ place  r rotate  x remove  tab piece  c colour  u undo  ^y redo  ^s save  q quit"))
	return b.String()
}

func (m BuilderModel) toolbar() string {
	t := m.ctrl.ActiveType()
	d := catalog.MustLookup(t)
	undo, redo := StyleDim.Render("undo"), StyleDim.Render("redo")
	if m.ctrl.CanUndo() {
		undo = StyleValue.Render("undo")
	}
	if m.ctrl.CanRedo() {
		redo = StyleValue.Render("redo")
	}
	deg := int(math.Round(m.ctrl.Yaw()*180/math.Pi)) % 360
	return fmt.Sprintf("%s %s  %s %s  %s %d°  %s %s",
		StyleDim.Render("piece"), StyleHighlight.Render(d.Label()),
		swatch(m.ctrl.ActiveColor()), m.ctrl.ActiveColor().Name(),
		StyleDim.Render("yaw"), deg,
		undo, redo)
}

// contactCue tells the user what the candidate would rest on.
func (m BuilderModel) contactCue(cand snap.Candidate, ok bool) string {
	if !ok {
		return tuiNoTargetText
	}
	y := cand.Position[1]
	switch controller.ContactAt(y) {
	case controller.ContactGround:
		return tuiGroundStyle.Render("▼ ground")
	default:
		ids := make([]string, len(cand.RestingOn))
		for i, id := range cand.RestingOn {
			ids[i] = shortID(id)
		}
		return tuiPieceStyle.Render(fmt.Sprintf("▼ on %s at y=%.2f", strings.Join(ids, ", "), y))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
