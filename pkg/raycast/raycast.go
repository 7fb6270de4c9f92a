// Package raycast turns a pointer position into a [snap.Hit].
//
// Pointer positions are normalized device coordinates: X and Y in [-1, 1],
// origin at the centre of the viewport, Y pointing up. A [Caster] intersects
// the pointer ray with the baseplate and with the box of every placed piece
// and reports the nearest surface.
//
// Two casters are provided. [Perspective] mirrors the orbit camera of a 3D
// view; [TopDown] looks straight down and backs the terminal builder.
package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/geom"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// NDC is a pointer position in normalized device coordinates.
type NDC struct {
	X, Y float64
}

// Caster computes what surface lies under the pointer.
type Caster interface {
	Cast(ndc NDC, pieces build.Pieces) snap.Hit
}

// Ray is a half line with a unit direction.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Baseplate returns the ground box: BaseplateSize square, centred on the
// origin, from y=0 up to the ground elevation.
func Baseplate() geom.Box {
	half := float64(catalog.BaseplateSize) / 2
	return geom.Box{
		Rect: geom.Rect{MinX: -half, MaxX: half, MinZ: -half, MaxZ: half},
		MinY: 0,
		MaxY: snap.GroundElevation,
	}
}

// IntersectBox returns the distance along r to the first point of b using
// the slab method. A ray starting inside b reports its exit distance.
func IntersectBox(r Ray, b geom.Box) (float64, bool) {
	lo, hi := b.Min(), b.Max()
	tmin, tmax := math.Inf(-1), math.Inf(1)

	for i := range 3 {
		o, d := r.Origin[i], r.Dir[i]
		if math.Abs(d) < 1e-12 {
			if o < lo[i] || o > hi[i] {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo[i]-o)/d, (hi[i]-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmax < tmin {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin >= 0 {
		return tmin, true
	}
	return tmax, true
}

// Intersect returns the nearest surface hit by r. Pieces win ties with the
// baseplate.
func Intersect(r Ray, pieces build.Pieces) snap.Hit {
	best := math.Inf(1)
	hit := snap.NoHit()

	for _, p := range pieces {
		b, ok := snap.PieceBox(p)
		if !ok {
			continue
		}
		if t, ok := IntersectBox(r, b); ok && t < best {
			best = t
			hit = snap.PieceHit(p.ID, r.At(t))
		}
	}
	if t, ok := IntersectBox(r, Baseplate()); ok && t < best {
		hit = snap.GroundHit(r.At(t))
	}
	return hit
}
