package controller

import (
	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// Preview is the candidate as presented to a renderer.
type Preview struct {
	Type     catalog.Type  `json:"type"`
	Position [3]float64    `json:"position"`
	Rotation [3]float64    `json:"rotation"`
	Color    catalog.Color `json:"color"`
	Contact  string        `json:"contact"`
	Source   string        `json:"source"`
}

// View is a read-only snapshot of everything a renderer or toolbar needs.
type View struct {
	Pieces      build.Pieces  `json:"pieces"`
	Preview     *Preview      `json:"preview,omitempty"`
	Yaw         float64       `json:"yaw"`
	ActiveType  catalog.Type  `json:"activeType"`
	ActiveColor catalog.Color `json:"activeColor"`
	Count       int           `json:"count"`
	CanUndo     bool          `json:"canUndo"`
	CanRedo     bool          `json:"canRedo"`
}

// Snapshot returns the current view. The pieces are a copy.
func (c *Controller) Snapshot() View {
	st := c.history.State()
	v := View{
		Pieces:      st.Pieces(),
		Yaw:         c.yaw,
		ActiveType:  st.ActiveType(),
		ActiveColor: st.ActiveColor(),
		Count:       st.Len(),
		CanUndo:     c.history.CanUndo(),
		CanRedo:     c.history.CanRedo(),
	}
	if cand, ok := c.Candidate(); ok {
		v.Preview = previewOf(cand, st.ActiveColor())
	}
	return v
}

func previewOf(cand snap.Candidate, col catalog.Color) *Preview {
	return &Preview{
		Type:     cand.Type,
		Position: cand.Position,
		Rotation: [3]float64{0, cand.Yaw, 0},
		Color:    col,
		Contact:  ContactAt(cand.Position[1]).String(),
		Source:   cand.Source.String(),
	}
}

// Equal reports whether v and o would render identically.
func (v View) Equal(o View) bool {
	if v.Yaw != o.Yaw || v.ActiveType != o.ActiveType || v.ActiveColor != o.ActiveColor ||
		v.Count != o.Count || v.CanUndo != o.CanUndo || v.CanRedo != o.CanRedo {
		return false
	}
	if (v.Preview == nil) != (o.Preview == nil) {
		return false
	}
	if v.Preview != nil && *v.Preview != *o.Preview {
		return false
	}
	return v.Pieces.Equal(o.Pieces)
}
