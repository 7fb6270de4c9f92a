// Package controller turns pointer and keyboard input into build mutations.
//
// A [Controller] is driven by its owner once per frame: [Controller.Tick]
// takes the current pointer hit and recomputes the candidate placement.
// Primary-button press and release events commit the candidate when the
// gesture was a click rather than a camera drag. Every mutation of the build
// goes through the history manager, so each one is undoable.
//
// The controller is not safe for concurrent use. Exactly one goroutine (the
// terminal UI update loop or a session loop) owns it.
package controller

import (
	"math"

	"github.com/google/uuid"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/history"
	"github.com/matzehuels/brickyard/pkg/observability"
	"github.com/matzehuels/brickyard/pkg/snap"
)

const (
	// DefaultClickThreshold is the largest press-to-release pointer travel,
	// in pixels, still treated as a click.
	DefaultClickThreshold = 5.0

	// GroundContactThreshold is the highest elevation classified as resting
	// on the baseplate.
	GroundContactThreshold = 0.25

	quarterTurn = math.Pi / 2
)

// Contact classifies what a committed piece landed on.
type Contact int

const (
	ContactGround Contact = iota
	ContactPiece
)

// String returns "ground" or "piece".
func (c Contact) String() string {
	if c == ContactPiece {
		return "piece"
	}
	return "ground"
}

// ContactAt classifies a resting elevation.
func ContactAt(y float64) Contact {
	if y <= GroundContactThreshold {
		return ContactGround
	}
	return ContactPiece
}

// Commit describes a piece that was just added to the build.
type Commit struct {
	Piece   build.Piece
	Contact Contact
}

// Listener is notified once per committed piece.
type Listener interface {
	OnCommit(Commit)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Commit)

// OnCommit calls f.
func (f ListenerFunc) OnCommit(c Commit) { f(c) }

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	// ClickThreshold overrides DefaultClickThreshold.
	ClickThreshold float64
	// NewID generates piece ids. Defaults to random UUIDs.
	NewID func() string
	// Engine overrides the snapping engine.
	Engine *snap.Engine
}

type point struct{ x, y float64 }

// Controller owns the placement interaction for one build.
type Controller struct {
	history   *history.Manager
	engine    *snap.Engine
	threshold float64
	newID     func() string
	listeners []Listener

	yaw       float64
	hit       snap.Hit
	candidate snap.Candidate
	hasCand   bool
	press     *point
}

// New returns a controller editing state. A nil state starts an empty build.
func New(state *build.State, opts Options) *Controller {
	if state == nil {
		state = build.NewState()
	}
	c := &Controller{
		history:   history.New(state),
		engine:    opts.Engine,
		threshold: opts.ClickThreshold,
		newID:     opts.NewID,
		hit:       snap.NoHit(),
	}
	if c.engine == nil {
		c.engine = snap.NewEngine()
	}
	if c.threshold <= 0 {
		c.threshold = DefaultClickThreshold
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// AddListener registers l for commit notifications.
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Tick recomputes the candidate for the pointer hit of this frame.
func (c *Controller) Tick(hit snap.Hit) {
	c.hit = hit
	c.refresh()
}

func (c *Controller) refresh() {
	st := c.history.State()
	c.candidate, c.hasCand = c.engine.Snap(c.hit, st.ActiveType(), c.yaw, st.View())
}

// Candidate returns the current candidate placement, if any.
func (c *Controller) Candidate() (snap.Candidate, bool) {
	return c.candidate, c.hasCand
}

// Yaw returns the rotation applied to the next piece, in [0, 2π).
func (c *Controller) Yaw() float64 { return c.yaw }

// Rotate turns the next piece a quarter turn. It does not touch history.
func (c *Controller) Rotate() {
	k := math.Mod(math.Round(c.yaw/quarterTurn)+1, 4)
	c.yaw = k * quarterTurn
	c.refresh()
}

// Press records the pixel position of a primary-button press.
func (c *Controller) Press(x, y float64) {
	c.press = &point{x, y}
}

// CancelPress forgets a recorded press, so the next release cannot commit.
// Surfaces call it when another button interrupts the gesture.
func (c *Controller) CancelPress() {
	c.press = nil
}

// Release ends a primary-button gesture at (x, y). The candidate is
// committed when one exists, the release is not over interface chrome, a
// press was recorded and the pointer travelled no further than the click
// threshold.
func (c *Controller) Release(x, y float64, overUI bool) (Commit, bool) {
	p := c.press
	c.press = nil
	if p == nil || overUI || !c.hasCand {
		return Commit{}, false
	}
	if math.Hypot(x-p.x, y-p.y) > c.threshold {
		return Commit{}, false
	}
	return c.commit()
}

// Place commits the candidate for hit directly, bypassing the click
// gesture. It is used by scripted placement.
func (c *Controller) Place(hit snap.Hit) (Commit, bool) {
	c.Tick(hit)
	if !c.hasCand {
		return Commit{}, false
	}
	return c.commit()
}

func (c *Controller) commit() (Commit, bool) {
	st := c.history.State()
	p := build.Piece{
		ID:       c.newID(),
		Type:     st.ActiveType(),
		Position: c.candidate.Position,
		Rotation: [3]float64{0, c.yaw, 0},
		Color:    st.ActiveColor(),
	}
	applied := c.history.RecordAndApply(st.View().With(p))
	observability.Engine().OnHistory("commit", applied)
	if !applied {
		return Commit{}, false
	}

	cm := Commit{Piece: p, Contact: ContactAt(p.Y())}
	observability.Engine().OnCommit(string(p.Type), cm.Contact.String(), st.Len())
	for _, l := range c.listeners {
		l.OnCommit(cm)
	}
	c.refresh()
	return cm, true
}

// Remove deletes the piece with the given id. It returns false if no such
// piece exists.
func (c *Controller) Remove(id string) bool {
	return c.mutate("remove", c.history.State().View().Without(id))
}

// Clear removes every piece. Clearing an empty build is a no-op.
func (c *Controller) Clear() bool {
	return c.mutate("clear", build.Pieces{})
}

// Import replaces the build with pieces. Importing the current build is a
// no-op.
func (c *Controller) Import(pieces build.Pieces) bool {
	ok := c.mutate("import", pieces)
	observability.Engine().OnImport(len(pieces), nil)
	return ok
}

func (c *Controller) mutate(op string, next build.Pieces) bool {
	applied := c.history.RecordAndApply(next)
	observability.Engine().OnHistory(op, applied)
	if applied {
		c.refresh()
	}
	return applied
}

// Undo restores the previous build.
func (c *Controller) Undo() bool {
	ok := c.history.Undo()
	observability.Engine().OnHistory("undo", ok)
	if ok {
		c.refresh()
	}
	return ok
}

// Redo reapplies the most recently undone change.
func (c *Controller) Redo() bool {
	ok := c.history.Redo()
	observability.Engine().OnHistory("redo", ok)
	if ok {
		c.refresh()
	}
	return ok
}

// CanUndo reports whether Undo would change the build.
func (c *Controller) CanUndo() bool { return c.history.CanUndo() }

// CanRedo reports whether Redo would change the build.
func (c *Controller) CanRedo() bool { return c.history.CanRedo() }

// Pieces returns a copy of the live build.
func (c *Controller) Pieces() build.Pieces { return c.history.State().Pieces() }

// Live returns the live build without copying. The slice is replaced, never
// modified, by later mutations, but callers must not modify it.
func (c *Controller) Live() build.Pieces { return c.history.State().View() }

// ActiveType returns the piece type used for the next commit.
func (c *Controller) ActiveType() catalog.Type { return c.history.State().ActiveType() }

// ActiveColor returns the colour used for the next commit.
func (c *Controller) ActiveColor() catalog.Color { return c.history.State().ActiveColor() }

// SetActiveType selects the piece type and refreshes the candidate.
func (c *Controller) SetActiveType(t catalog.Type) error {
	if err := c.history.State().SetActiveType(t); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// SetActiveColor selects the colour for the next commit.
func (c *Controller) SetActiveColor(col catalog.Color) error {
	return c.history.State().SetActiveColor(col)
}

// CycleType selects the next piece type in catalog order.
func (c *Controller) CycleType() catalog.Type {
	t := catalog.Next(c.ActiveType())
	_ = c.SetActiveType(t)
	return t
}

// CycleColor selects the next palette colour.
func (c *Controller) CycleColor() catalog.Color {
	col := catalog.NextColor(c.ActiveColor())
	_ = c.SetActiveColor(col)
	return col
}
