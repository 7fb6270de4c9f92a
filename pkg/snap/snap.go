package snap

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/geom"
	"github.com/matzehuels/brickyard/pkg/observability"
)

const (
	// GroundElevation is the top surface of the baseplate.
	GroundElevation = 0.2

	// Epsilon shrinks footprint overlap tests so touching edges and float
	// noise do not count as overlap.
	Epsilon = 0.05

	// rotationThreshold is how close (radians) a yaw must be to a multiple of
	// pi to count as unrotated.
	rotationThreshold = 0.1

	// heightTolerance decides when two elevations are the same surface.
	heightTolerance = 1e-6
)

// HitKind tags the result of a ray intersection.
type HitKind int

const (
	// HitNone means the pointer is not over any recognised surface.
	HitNone HitKind = iota
	// HitGround means the ray hit the baseplate.
	HitGround
	// HitPiece means the ray hit a placed piece.
	HitPiece
)

// String returns "none", "ground" or "piece".
func (k HitKind) String() string {
	switch k {
	case HitGround:
		return "ground"
	case HitPiece:
		return "piece"
	}
	return "none"
}

// Hit is the tagged result produced by the ray-intersection collaborator.
// Point is only meaningful when Kind is not HitNone; PieceID only for HitPiece.
type Hit struct {
	Kind    HitKind
	Point   mgl64.Vec3
	PieceID string
}

// NoHit returns a miss.
func NoHit() Hit { return Hit{Kind: HitNone} }

// GroundHit returns a baseplate hit at p.
func GroundHit(p mgl64.Vec3) Hit { return Hit{Kind: HitGround, Point: p} }

// PieceHit returns a hit on the piece with the given id at p.
func PieceHit(id string, p mgl64.Vec3) Hit { return Hit{Kind: HitPiece, Point: p, PieceID: id} }

// Candidate is a discrete placement for the active piece.
type Candidate struct {
	Type      catalog.Type
	Position  [3]float64
	Yaw       float64
	Footprint geom.Rect
	// RestingOn lists the ids of the pieces whose top surface the candidate
	// sits on. It is empty when the candidate rests on the ground.
	RestingOn []string
	// Source is the kind of surface the pointer was over.
	Source HitKind
}

// IsRotated reports whether yaw is an odd quarter turn, i.e. whether the
// footprint's width and depth swap. Yaws within a small threshold of a
// multiple of pi count as unrotated.
func IsRotated(yaw float64) bool {
	r := math.Abs(math.Mod(yaw, math.Pi))
	return r > rotationThreshold && r < math.Pi-rotationThreshold
}

// EffectiveFootprint returns the footprint extents of d after applying yaw.
func EffectiveFootprint(d catalog.Descriptor, yaw float64) (width, depth int) {
	if IsRotated(yaw) {
		return d.Depth, d.Width
	}
	return d.Width, d.Depth
}

// SnapAxis snaps coordinate p for a footprint of the given extent along the
// same axis. Odd extents snap to floor(p)+0.5 and even extents to the nearest
// integer, halves rounding up.
func SnapAxis(p float64, extent int) float64 {
	if extent%2 != 0 {
		return math.Floor(p) + 0.5
	}
	return math.Floor(p + 0.5)
}

// Footprint returns the horizontal rectangle a piece of type t occupies when
// centred on (x, z) with the given yaw.
func Footprint(t catalog.Type, x, z, yaw float64) (geom.Rect, bool) {
	d, ok := catalog.Lookup(t)
	if !ok {
		return geom.Rect{}, false
	}
	w, dp := EffectiveFootprint(d, yaw)
	return FootprintAt(x, z, w, dp), true
}

// FootprintAt returns the rectangle of a w×d footprint centred on (cx, cz).
func FootprintAt(cx, cz float64, w, d int) geom.Rect {
	return geom.RectAt(cx, cz, float64(w), float64(d))
}

// PieceFootprint returns the footprint of a placed piece.
func PieceFootprint(p build.Piece) (geom.Rect, bool) {
	return Footprint(p.Type, p.X(), p.Z(), p.Yaw())
}

// PieceBox returns the box a placed piece occupies.
func PieceBox(p build.Piece) (geom.Box, bool) {
	r, ok := PieceFootprint(p)
	if !ok {
		return geom.Box{}, false
	}
	return geom.Box{Rect: r, MinY: p.Y(), MaxY: Top(p)}, true
}

// Top returns the elevation of the top surface of p.
func Top(p build.Piece) float64 {
	d, ok := catalog.Lookup(p.Type)
	if !ok {
		return p.Y()
	}
	return p.Y() + d.HeightUnits()
}

// Engine computes candidate placements. The zero value is not usable; use
// NewEngine.
type Engine struct {
	ground  float64
	epsilon float64
}

// NewEngine returns an engine using [GroundElevation] and [Epsilon].
func NewEngine() *Engine {
	return &Engine{ground: GroundElevation, epsilon: Epsilon}
}

// Ground returns the ground elevation used by the engine.
func (e *Engine) Ground() float64 { return e.ground }

// RestingHeight returns the elevation a footprint settles at among pieces,
// and the ids of the pieces providing that surface.
func (e *Engine) RestingHeight(fp geom.Rect, pieces build.Pieces) (float64, []string) {
	highest := e.ground
	var support []string
	for _, p := range pieces {
		pr, ok := PieceFootprint(p)
		if !ok || !fp.Overlaps(pr, e.epsilon) {
			continue
		}
		top := Top(p)
		switch {
		case top > highest+heightTolerance:
			highest = top
			support = append(support[:0], p.ID)
		case math.Abs(top-highest) <= heightTolerance && len(support) > 0:
			support = append(support, p.ID)
		}
	}
	return highest, support
}

// Snap computes the candidate placement of a piece of type t with the given
// yaw for hit. It returns false when hit is a miss or t is unknown.
func (e *Engine) Snap(hit Hit, t catalog.Type, yaw float64, pieces build.Pieces) (Candidate, bool) {
	start := time.Now()
	if hit.Kind == HitNone {
		observability.Engine().OnSnap(hit.Kind.String(), 0, false, time.Since(start))
		return Candidate{}, false
	}
	d, ok := catalog.Lookup(t)
	if !ok {
		observability.Engine().OnSnap(hit.Kind.String(), 0, false, time.Since(start))
		return Candidate{}, false
	}

	w, dp := EffectiveFootprint(d, yaw)
	x := SnapAxis(hit.Point.X(), w)
	z := SnapAxis(hit.Point.Z(), dp)
	fp := FootprintAt(x, z, w, dp)
	y, support := e.RestingHeight(fp, pieces)
	observability.Engine().OnSnap(hit.Kind.String(), len(pieces), true, time.Since(start))

	return Candidate{
		Type:      t,
		Position:  [3]float64{x, y, z},
		Yaw:       yaw,
		Footprint: fp,
		RestingOn: support,
		Source:    hit.Kind,
	}, true
}
