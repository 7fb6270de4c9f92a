// Package catalog defines the static piece catalog and colour palette.
//
// Every piece type maps to an immutable [Descriptor] giving its footprint in
// grid units (studs), its height class and a shape category. The shape only
// matters to renderers; placement logic looks at the footprint and height.
//
// # Dimensions
//
// A brick is [BrickHeight] units tall and a plate [PlateHeight] units, so three
// stacked plates are roughly one brick. Footprints are given before rotation:
// Width runs along local X and Depth along local Z.
//
//	d, ok := catalog.Lookup(catalog.Type2x4)
//	// d.Width == 2, d.Depth == 4, d.Height == catalog.Brick
package catalog

import (
	"fmt"
	"slices"

	"github.com/matzehuels/brickyard/pkg/errors"
)

// Vertical extents of the two height classes, in grid units.
const (
	BrickHeight = 1.0
	PlateHeight = 0.33
)

// BaseplateSize is the edge length of the square ground baseplate in grid units.
// The baseplate is centred on the origin.
const BaseplateSize = 32

// HeightClass selects the vertical extent of a piece.
type HeightClass int

const (
	// Brick is a full-height piece.
	Brick HeightClass = iota
	// Plate is a thin piece, one third of a brick.
	Plate
)

// Units returns the vertical extent of the height class.
func (h HeightClass) Units() float64 {
	if h == Plate {
		return PlateHeight
	}
	return BrickHeight
}

// String returns "brick" or "plate".
func (h HeightClass) String() string {
	if h == Plate {
		return "plate"
	}
	return "brick"
}

// Shape is the visual shape category of a piece. It never affects the footprint.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCylinder Shape = "cylinder"
	ShapeSlope    Shape = "slope"
	ShapeArch     Shape = "arch"
)

// Type identifies a catalog entry. Its string form is the persisted value.
type Type string

// Catalog piece types.
const (
	Type1x1 Type = "1x1"
	Type1x2 Type = "1x2"
	Type1x3 Type = "1x3"
	Type1x4 Type = "1x4"
	Type2x2 Type = "2x2"
	Type2x3 Type = "2x3"
	Type2x4 Type = "2x4"

	TypePlate1x1 Type = "plate-1x1"
	TypePlate1x2 Type = "plate-1x2"
	TypePlate1x4 Type = "plate-1x4"
	TypePlate2x2 Type = "plate-2x2"
	TypePlate2x4 Type = "plate-2x4"

	TypeSlope1x2 Type = "slope-1x2"
	TypeCylinder Type = "cylinder"
	TypeArch     Type = "arch"
)

// DefaultType is the piece selected when a session starts.
const DefaultType = Type2x4

// Descriptor describes one piece type.
type Descriptor struct {
	Width  int         // Grid units along local X
	Depth  int         // Grid units along local Z
	Height HeightClass // Plate or Brick
	Shape  Shape       // Rendering hint only
}

// HeightUnits returns the vertical extent of the piece.
func (d Descriptor) HeightUnits() float64 { return d.Height.Units() }

// Label returns a short palette label such as "2x4" or "1x2 slope".
func (d Descriptor) Label() string {
	base := fmt.Sprintf("%dx%d", d.Width, d.Depth)
	switch {
	case d.Height == Plate:
		return base + " plate"
	case d.Shape != ShapeBox:
		return base + " " + string(d.Shape)
	}
	return base
}

var descriptors = map[Type]Descriptor{
	Type1x1: {Width: 1, Depth: 1, Height: Brick, Shape: ShapeBox},
	Type1x2: {Width: 1, Depth: 2, Height: Brick, Shape: ShapeBox},
	Type1x3: {Width: 1, Depth: 3, Height: Brick, Shape: ShapeBox},
	Type1x4: {Width: 1, Depth: 4, Height: Brick, Shape: ShapeBox},

	Type2x2: {Width: 2, Depth: 2, Height: Brick, Shape: ShapeBox},
	Type2x3: {Width: 2, Depth: 3, Height: Brick, Shape: ShapeBox},
	Type2x4: {Width: 2, Depth: 4, Height: Brick, Shape: ShapeBox},

	TypePlate1x1: {Width: 1, Depth: 1, Height: Plate, Shape: ShapeBox},
	TypePlate1x2: {Width: 1, Depth: 2, Height: Plate, Shape: ShapeBox},
	TypePlate1x4: {Width: 1, Depth: 4, Height: Plate, Shape: ShapeBox},
	TypePlate2x2: {Width: 2, Depth: 2, Height: Plate, Shape: ShapeBox},
	TypePlate2x4: {Width: 2, Depth: 4, Height: Plate, Shape: ShapeBox},

	TypeSlope1x2: {Width: 1, Depth: 2, Height: Brick, Shape: ShapeSlope},
	TypeCylinder: {Width: 1, Depth: 1, Height: Brick, Shape: ShapeCylinder},
	TypeArch:     {Width: 1, Depth: 4, Height: Brick, Shape: ShapeArch},
}

// Palette groups, in display order.
var (
	Bricks  = []Type{Type1x1, Type1x2, Type1x3, Type1x4, Type2x2, Type2x3, Type2x4}
	Plates  = []Type{TypePlate1x1, TypePlate1x2, TypePlate1x4, TypePlate2x2, TypePlate2x4}
	Special = []Type{TypeSlope1x2, TypeCylinder, TypeArch}
)

// All returns every piece type in display order.
func All() []Type {
	return slices.Concat(Bricks, Plates, Special)
}

// Lookup returns the descriptor for t.
func Lookup(t Type) (Descriptor, bool) {
	d, ok := descriptors[t]
	return d, ok
}

// MustLookup is like Lookup but panics on an unknown type.
// It is meant for types that were already validated.
func MustLookup(t Type) Descriptor {
	d, ok := descriptors[t]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown piece type %q", t))
	}
	return d
}

// ParseType validates s as a piece type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := descriptors[t]; !ok {
		return "", errors.New(errors.ErrCodeInvalidPieceType, "unknown piece type: %q", s)
	}
	return t, nil
}

// Next returns the type after t in display order, wrapping around.
// Unknown types yield the first entry.
func Next(t Type) Type {
	all := All()
	i := slices.Index(all, t)
	return all[(i+1)%len(all)]
}
