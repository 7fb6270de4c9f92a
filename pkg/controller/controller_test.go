package controller

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/errors"
	"github.com/matzehuels/brickyard/pkg/snap"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

func newController() *Controller {
	return New(nil, Options{NewID: sequentialIDs()})
}

func ground(x, z float64) snap.Hit {
	return snap.GroundHit(mgl64.Vec3{x, snap.GroundElevation, z})
}

func click(c *Controller) (Commit, bool) {
	c.Press(100, 100)
	return c.Release(100, 100, false)
}

func TestCommitOnClick(t *testing.T) {
	c := newController()
	if err := c.SetActiveType(catalog.Type1x2); err != nil {
		t.Fatal(err)
	}
	c.Tick(ground(2.3, 5.9))

	cm, ok := click(c)
	if !ok {
		t.Fatal("Release() ok = false, want true")
	}
	want := build.Piece{
		ID:       "p1",
		Type:     catalog.Type1x2,
		Position: [3]float64{2.5, 0.2, 6.0},
		Color:    catalog.DefaultColor,
	}
	if cm.Piece != want {
		t.Errorf("Release() piece = %+v, want %+v", cm.Piece, want)
	}
	if cm.Contact != ContactGround {
		t.Errorf("Release() contact = %v, want ground", cm.Contact)
	}
	if got := c.Pieces(); len(got) != 1 || got[0] != want {
		t.Errorf("Pieces() = %+v, want [%+v]", got, want)
	}
	if !c.CanUndo() || c.CanRedo() {
		t.Errorf("CanUndo/CanRedo = %v/%v, want true/false", c.CanUndo(), c.CanRedo())
	}
}

func TestReleaseRejections(t *testing.T) {
	tests := []struct {
		name   string
		hit    snap.Hit
		press  bool
		dx, dy float64
		overUI bool
		want   bool
	}{
		{"click", ground(0, 0), true, 0, 0, false, true},
		{"jitter within threshold", ground(0, 0), true, 3, 4, false, true},
		{"drag beyond threshold", ground(0, 0), true, 4, 4, false, false},
		{"over interface", ground(0, 0), true, 0, 0, true, false},
		{"no press", ground(0, 0), false, 0, 0, false, false},
		{"no candidate", snap.NoHit(), true, 0, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController()
			c.Tick(tt.hit)
			if tt.press {
				c.Press(10, 10)
			}
			_, ok := c.Release(10+tt.dx, 10+tt.dy, tt.overUI)
			if ok != tt.want {
				t.Errorf("Release() ok = %v, want %v", ok, tt.want)
			}
			if n := len(c.Pieces()); (n == 1) != tt.want {
				t.Errorf("len(Pieces()) = %d after Release() = %v", n, ok)
			}
		})
	}
}

func TestPressIsConsumed(t *testing.T) {
	c := newController()
	c.Tick(ground(0, 0))
	if _, ok := click(c); !ok {
		t.Fatal("first click did not commit")
	}
	if _, ok := c.Release(100, 100, false); ok {
		t.Error("Release() without a new Press() committed")
	}
}

func TestCancelPress(t *testing.T) {
	c := newController()
	c.Tick(ground(0, 0))
	c.Press(100, 100)
	c.CancelPress()
	if _, ok := c.Release(100, 100, false); ok {
		t.Error("Release() after CancelPress() committed")
	}
	if n := len(c.Pieces()); n != 0 {
		t.Errorf("len(Pieces()) = %d, want 0", n)
	}
}

func TestContactClassification(t *testing.T) {
	c := newController()
	c.Tick(ground(0.1, 0.1))
	first, _ := click(c)

	if err := c.SetActiveType(catalog.TypePlate1x1); err != nil {
		t.Fatal(err)
	}
	c.Tick(snap.PieceHit(first.Piece.ID, mgl64.Vec3{0.3, 1.2, 0.4}))
	second, ok := click(c)
	if !ok {
		t.Fatal("second click did not commit")
	}

	if first.Contact != ContactGround {
		t.Errorf("first contact = %v, want ground", first.Contact)
	}
	if second.Contact != ContactPiece {
		t.Errorf("second contact = %v, want piece", second.Contact)
	}
	if math.Abs(second.Piece.Y()-1.2) > 1e-9 {
		t.Errorf("second y = %v, want 1.2", second.Piece.Y())
	}
}

func TestContactAt(t *testing.T) {
	tests := []struct {
		y    float64
		want Contact
	}{
		{0.2, ContactGround},
		{0.25, ContactGround},
		{0.53, ContactPiece},
		{1.2, ContactPiece},
	}
	for _, tt := range tests {
		if got := ContactAt(tt.y); got != tt.want {
			t.Errorf("ContactAt(%v) = %v, want %v", tt.y, got, tt.want)
		}
	}
}

func TestRotate(t *testing.T) {
	c := newController()
	if err := c.SetActiveType(catalog.Type1x2); err != nil {
		t.Fatal(err)
	}
	c.Tick(ground(2.3, 5.9))

	c.Rotate()
	if math.Abs(c.Yaw()-math.Pi/2) > 1e-12 {
		t.Errorf("Yaw() = %v, want pi/2", c.Yaw())
	}
	cand, ok := c.Candidate()
	if !ok || cand.Position[0] != 2 || cand.Position[2] != 5.5 {
		t.Errorf("Candidate() after Rotate() = %v, %v, want x=2 z=5.5", cand.Position, ok)
	}

	for range 3 {
		c.Rotate()
	}
	if c.Yaw() != 0 {
		t.Errorf("Yaw() after four rotations = %v, want 0", c.Yaw())
	}
	if c.CanUndo() {
		t.Error("Rotate() recorded history")
	}
}

func TestRotationIsPersisted(t *testing.T) {
	c := newController()
	c.Rotate()
	c.Tick(ground(0, 0))
	cm, ok := click(c)
	if !ok {
		t.Fatal("click did not commit")
	}
	if cm.Piece.Rotation != [3]float64{0, math.Pi / 2, 0} {
		t.Errorf("Rotation = %v, want [0 pi/2 0]", cm.Piece.Rotation)
	}
}

func TestListenerNotifiedOnce(t *testing.T) {
	c := newController()
	var got []Commit
	c.AddListener(ListenerFunc(func(cm Commit) { got = append(got, cm) }))

	c.Tick(ground(0, 0))
	click(c)
	c.Tick(snap.NoHit())
	click(c)

	if len(got) != 1 {
		t.Fatalf("listener called %d times, want 1", len(got))
	}
	if got[0].Piece.ID != "p1" {
		t.Errorf("listener piece id = %q, want p1", got[0].Piece.ID)
	}
}

func TestMutationsThroughHistory(t *testing.T) {
	c := newController()
	c.Tick(ground(-5, -5))
	click(c)
	c.Tick(ground(5, 5))
	click(c)

	if c.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}
	if !c.Remove("p1") {
		t.Fatal("Remove(p1) = false, want true")
	}
	if got := c.Pieces(); len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("Pieces() after Remove = %v", got)
	}

	if !c.Clear() {
		t.Fatal("Clear() = false, want true")
	}
	if c.Clear() {
		t.Error("Clear() on empty build = true, want false")
	}

	if !c.Undo() || len(c.Pieces()) != 1 {
		t.Errorf("Undo() after Clear restored %d pieces, want 1", len(c.Pieces()))
	}
	if !c.Undo() || len(c.Pieces()) != 2 {
		t.Errorf("Undo() after Remove restored %d pieces, want 2", len(c.Pieces()))
	}
	if !c.Redo() || len(c.Pieces()) != 1 {
		t.Errorf("Redo() = %d pieces, want 1", len(c.Pieces()))
	}
}

func TestCommitInvalidatesRedo(t *testing.T) {
	c := newController()
	c.Tick(ground(0, 0))
	click(c)
	c.Undo()
	if !c.CanRedo() {
		t.Fatal("CanRedo() = false after Undo()")
	}

	c.Tick(ground(4, 4))
	click(c)
	if c.Redo() {
		t.Error("Redo() after commit = true, want false")
	}
	if got := c.Pieces(); len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("Pieces() = %v, want only p2", got)
	}
}

func TestImport(t *testing.T) {
	c := newController()
	imported := build.Pieces{
		{ID: "a", Type: catalog.Type2x2, Position: [3]float64{0, 0.2, 0}, Color: catalog.Blue},
	}
	if !c.Import(imported) {
		t.Fatal("Import() = false, want true")
	}
	if c.Import(imported) {
		t.Error("Import() of the current build = true, want false")
	}
	imported[0].Color = catalog.Green
	if c.Pieces()[0].Color != catalog.Blue {
		t.Error("Import() aliased the caller's slice")
	}
	if !c.Undo() || len(c.Pieces()) != 0 {
		t.Error("Undo() did not revert the import")
	}
}

func TestToolSelection(t *testing.T) {
	c := newController()
	if err := c.SetActiveType("9x9"); !errors.Is(err, errors.ErrCodeInvalidPieceType) {
		t.Errorf("SetActiveType(9x9) error = %v, want %s", err, errors.ErrCodeInvalidPieceType)
	}
	if err := c.SetActiveColor("#123456"); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("SetActiveColor(#123456) error = %v, want %s", err, errors.ErrCodeInvalidColor)
	}
	if got := c.CycleType(); got != catalog.Next(catalog.DefaultType) {
		t.Errorf("CycleType() = %v, want %v", got, catalog.Next(catalog.DefaultType))
	}
	if got := c.CycleColor(); got != catalog.Blue {
		t.Errorf("CycleColor() = %v, want %v", got, catalog.Blue)
	}

	c.Tick(ground(0, 0))
	cm, _ := click(c)
	if cm.Piece.Type != c.ActiveType() || cm.Piece.Color != catalog.Blue {
		t.Errorf("committed %s/%s, want %s/%s", cm.Piece.Type, cm.Piece.Color, c.ActiveType(), catalog.Blue)
	}
}

func TestSnapshot(t *testing.T) {
	c := newController()
	v := c.Snapshot()
	if v.Preview != nil || v.Count != 0 || v.CanUndo || v.CanRedo {
		t.Errorf("Snapshot() of fresh controller = %+v", v)
	}

	c.Tick(ground(0, 0))
	click(c)
	v = c.Snapshot()
	if v.Preview == nil {
		t.Fatal("Snapshot().Preview = nil, want candidate")
	}
	if v.Preview.Contact != "piece" {
		t.Errorf("Preview.Contact = %q, want piece (stacked on the new brick)", v.Preview.Contact)
	}
	if v.Count != 1 || !v.CanUndo {
		t.Errorf("Snapshot() = %+v, want one piece and undo", v)
	}

	v.Pieces[0].ID = "mutated"
	if c.Pieces()[0].ID != "p1" {
		t.Error("Snapshot() pieces alias the live build")
	}
}

func TestDefaultIDsAreUUIDs(t *testing.T) {
	c := New(nil, Options{})
	c.Tick(ground(0, 0))
	cm, _ := click(c)
	if len(cm.Piece.ID) != 36 {
		t.Errorf("default id = %q, want a UUID", cm.Piece.ID)
	}
}
