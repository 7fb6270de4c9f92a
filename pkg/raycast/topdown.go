package raycast

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// TopDown is an orthographic camera looking straight down at the origin.
// Screen up is -Z and screen right is +X.
type TopDown struct {
	// Size is the world extent covered by the viewport on each axis.
	Size float64
}

// NewTopDown returns a caster whose viewport covers the baseplate.
func NewTopDown() *TopDown {
	return &TopDown{Size: catalog.BaseplateSize}
}

// World converts ndc to world X and Z.
func (c *TopDown) World(ndc NDC) (x, z float64) {
	half := c.Size / 2
	return ndc.X * half, -ndc.Y * half
}

// Cast implements Caster.
func (c *TopDown) Cast(ndc NDC, pieces build.Pieces) snap.Hit {
	x, z := c.World(ndc)
	return At(x, z, pieces)
}

// At returns the surface seen from above at world (x, z): the highest
// piece covering the point, else the baseplate, else nothing.
func At(x, z float64, pieces build.Pieces) snap.Hit {
	var (
		top   float64
		id    string
		found bool
	)
	for _, p := range pieces {
		b, ok := snap.PieceBox(p)
		if !ok || !b.Contains(x, z) {
			continue
		}
		if !found || b.MaxY > top {
			top, id, found = b.MaxY, p.ID, true
		}
	}
	if found {
		return snap.PieceHit(id, mgl64.Vec3{x, top, z})
	}
	if Baseplate().Contains(x, z) {
		return snap.GroundHit(mgl64.Vec3{x, snap.GroundElevation, z})
	}
	return snap.NoHit()
}
