// Package geom provides the axis-aligned shapes used for footprint and
// vertical resolution.
//
// A [Rect] is a footprint projected onto the horizontal XZ plane. A [Box]
// extends a footprint with a vertical span and is what ray casts hit.
package geom

import "github.com/go-gl/mathgl/mgl64"

// Rect is an axis-aligned rectangle on the horizontal plane, in grid units.
type Rect struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// RectAt returns the rectangle of size w×d centred on (cx, cz).
func RectAt(cx, cz, w, d float64) Rect {
	return Rect{
		MinX: cx - w/2,
		MaxX: cx + w/2,
		MinZ: cz - d/2,
		MaxZ: cz + d/2,
	}
}

// Width returns the span along X.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Depth returns the span along Z.
func (r Rect) Depth() float64 { return r.MaxZ - r.MinZ }

// CenterX returns the X coordinate of the centre.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }

// CenterZ returns the Z coordinate of the centre.
func (r Rect) CenterZ() float64 { return (r.MinZ + r.MaxZ) / 2 }

// Overlaps reports whether r and o share interior area on both axes.
// Each interval test is strict and shrunk by eps, so rectangles that only
// touch along an edge, or overlap by less than eps, do not overlap.
func (r Rect) Overlaps(o Rect, eps float64) bool {
	return r.MinX < o.MaxX-eps && r.MaxX > o.MinX+eps &&
		r.MinZ < o.MaxZ-eps && r.MaxZ > o.MinZ+eps
}

// Contains reports whether (x, z) lies inside r, edges included.
func (r Rect) Contains(x, z float64) bool {
	return x >= r.MinX && x <= r.MaxX && z >= r.MinZ && z <= r.MaxZ
}

// Box is an axis-aligned box: a footprint with a vertical span.
type Box struct {
	Rect
	MinY, MaxY float64
}

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Min returns the lower corner.
func (b Box) Min() mgl64.Vec3 { return mgl64.Vec3{b.MinX, b.MinY, b.MinZ} }

// Max returns the upper corner.
func (b Box) Max() mgl64.Vec3 { return mgl64.Vec3{b.MaxX, b.MaxY, b.MaxZ} }
