package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// Default camera placement of the 3D view.
var (
	DefaultEye    = mgl64.Vec3{15, 15, 15}
	DefaultTarget = mgl64.Vec3{0, 0, 0}
	DefaultFovY   = 45.0
)

// Perspective casts rays from a pinhole camera.
type Perspective struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	FovY   float64 // Vertical field of view in degrees
	Aspect float64 // Viewport width / height
}

// NewPerspective returns the default camera for a viewport of the given
// aspect ratio.
func NewPerspective(aspect float64) *Perspective {
	return &Perspective{
		Eye:    DefaultEye,
		Target: DefaultTarget,
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   DefaultFovY,
		Aspect: aspect,
	}
}

// Ray returns the world-space ray through ndc.
func (c *Perspective) Ray(ndc NDC) Ray {
	forward := c.Target.Sub(c.Eye).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	tanHalf := math.Tan(mgl64.DegToRad(c.FovY) / 2)

	dir := forward.
		Add(right.Mul(ndc.X * tanHalf * aspect)).
		Add(up.Mul(ndc.Y * tanHalf)).
		Normalize()
	return Ray{Origin: c.Eye, Dir: dir}
}

// Cast implements Caster.
func (c *Perspective) Cast(ndc NDC, pieces build.Pieces) snap.Hit {
	return Intersect(c.Ray(ndc), pieces)
}
