// Package build holds the build data model: placed pieces, the ordered piece
// collection and the live build state with its active tool selection.
//
// The package owns storage only. Placement rules live in package snap and
// every mutation of a live build goes through package history.
package build

import (
	"slices"

	"github.com/matzehuels/brickyard/pkg/catalog"
)

// Piece is one committed block.
//
// Position holds the grid-snapped centre on X and Z and the elevation of the
// surface the piece rests on in Y. Rotation holds Euler angles in radians;
// only the yaw (Rotation[1]) is ever non-zero.
type Piece struct {
	ID       string        `json:"id"`
	Type     catalog.Type  `json:"type"`
	Position [3]float64    `json:"position"`
	Rotation [3]float64    `json:"rotation"`
	Color    catalog.Color `json:"color"`
}

// X returns the centre X coordinate.
func (p Piece) X() float64 { return p.Position[0] }

// Y returns the base elevation.
func (p Piece) Y() float64 { return p.Position[1] }

// Z returns the centre Z coordinate.
func (p Piece) Z() float64 { return p.Position[2] }

// Yaw returns the rotation about the vertical axis in radians.
func (p Piece) Yaw() float64 { return p.Rotation[1] }

// Pieces is an insertion-ordered piece collection. Order carries no placement
// meaning; it only fixes iteration and rendering order.
type Pieces []Piece

// Clone returns an independent copy. The result is never nil.
func (ps Pieces) Clone() Pieces {
	out := make(Pieces, len(ps))
	copy(out, ps)
	return out
}

// Equal reports whether ps and o hold the same pieces in the same order.
// A nil and an empty collection are equal.
func (ps Pieces) Equal(o Pieces) bool {
	return slices.Equal(ps, o)
}

// Index returns the position of the piece with the given id, or -1.
func (ps Pieces) Index(id string) int {
	return slices.IndexFunc(ps, func(p Piece) bool { return p.ID == id })
}

// Find returns the piece with the given id.
func (ps Pieces) Find(id string) (Piece, bool) {
	if i := ps.Index(id); i >= 0 {
		return ps[i], true
	}
	return Piece{}, false
}

// With returns a new collection with p appended. ps is not modified.
func (ps Pieces) With(p Piece) Pieces {
	out := make(Pieces, len(ps), len(ps)+1)
	copy(out, ps)
	return append(out, p)
}

// Without returns a new collection lacking the piece with the given id.
// ps is not modified. If no piece matches, the result equals ps.
func (ps Pieces) Without(id string) Pieces {
	out := make(Pieces, 0, len(ps))
	for _, p := range ps {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
