package snap

import (
	"math"
	"slices"

	"github.com/matzehuels/brickyard/pkg/build"
)

// Ground is the node id used for the baseplate in a [SupportGraph].
const Ground = "ground"

// Edge says that Below carries Above: their footprints overlap and the top
// of Below is the base of Above.
type Edge struct {
	Below string
	Above string
}

// SupportGraph describes which pieces rest on which. Pieces sitting on the
// baseplate have an edge from [Ground].
//
// Placement never re-settles pieces, so removing a carrier leaves the pieces
// above it floating. Those are legal; the graph only reports them.
type SupportGraph struct {
	Pieces build.Pieces
	Edges  []Edge
	// Floating lists, in build order, the pieces that have no chain of
	// support down to the ground.
	Floating []string
}

// Analyze builds the support graph of pieces. It is quadratic in the number
// of pieces and intended for inspection, not per-frame use.
func (e *Engine) Analyze(pieces build.Pieces) SupportGraph {
	g := SupportGraph{Pieces: pieces.Clone()}
	above := make(map[string][]string)

	for _, p := range pieces {
		if math.Abs(p.Y()-e.ground) <= heightTolerance {
			g.Edges = append(g.Edges, Edge{Below: Ground, Above: p.ID})
			above[Ground] = append(above[Ground], p.ID)
			continue
		}
		fp, ok := PieceFootprint(p)
		if !ok {
			continue
		}
		for _, q := range pieces {
			if q.ID == p.ID || math.Abs(Top(q)-p.Y()) > heightTolerance {
				continue
			}
			qr, ok := PieceFootprint(q)
			if !ok || !fp.Overlaps(qr, e.epsilon) {
				continue
			}
			g.Edges = append(g.Edges, Edge{Below: q.ID, Above: p.ID})
			above[q.ID] = append(above[q.ID], p.ID)
		}
	}

	grounded := map[string]bool{Ground: true}
	queue := []string{Ground}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range above[id] {
			if !grounded[next] {
				grounded[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, p := range pieces {
		if !grounded[p.ID] {
			g.Floating = append(g.Floating, p.ID)
		}
	}
	return g
}

// Supports returns the ids directly carrying the piece id.
func (g SupportGraph) Supports(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.Above == id {
			out = append(out, e.Below)
		}
	}
	return out
}

// IsFloating reports whether id lacks a chain of support to the ground.
func (g SupportGraph) IsFloating(id string) bool {
	return slices.Contains(g.Floating, id)
}

// MaxElevation returns the highest top surface in the build, or the ground
// elevation for an empty build.
func MaxElevation(pieces build.Pieces) float64 {
	top := GroundElevation
	for _, p := range pieces {
		top = max(top, Top(p))
	}
	return top
}
