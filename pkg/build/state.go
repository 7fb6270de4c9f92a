package build

import (
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/errors"
)

// State is the live build: the placed pieces plus the active tool selection.
//
// State is not safe for concurrent use. A single owner (the placement
// controller, or the session loop that wraps it) reads and writes it.
type State struct {
	pieces      Pieces
	activeType  catalog.Type
	activeColor catalog.Color
}

// NewState returns an empty build with the catalog defaults selected.
func NewState() *State {
	return &State{
		pieces:      Pieces{},
		activeType:  catalog.DefaultType,
		activeColor: catalog.DefaultColor,
	}
}

// Pieces returns a copy of the live collection.
func (s *State) Pieces() Pieces { return s.pieces.Clone() }

// View returns the live collection without copying. Callers must not modify
// the returned slice; it is replaced, never mutated, by Swap.
func (s *State) View() Pieces { return s.pieces }

// Len returns the number of placed pieces.
func (s *State) Len() int { return len(s.pieces) }

// Swap installs next as the live collection and returns the previous one.
// It performs no copying and records no history; use history.Manager for
// user-visible mutations.
func (s *State) Swap(next Pieces) Pieces {
	if next == nil {
		next = Pieces{}
	}
	prev := s.pieces
	s.pieces = next
	return prev
}

// ActiveType returns the piece type used for the next commit.
func (s *State) ActiveType() catalog.Type { return s.activeType }

// SetActiveType selects the piece type used for the next commit.
func (s *State) SetActiveType(t catalog.Type) error {
	if _, ok := catalog.Lookup(t); !ok {
		return errors.New(errors.ErrCodeInvalidPieceType, "unknown piece type: %q", t)
	}
	s.activeType = t
	return nil
}

// ActiveColor returns the colour used for the next commit.
func (s *State) ActiveColor() catalog.Color { return s.activeColor }

// SetActiveColor selects the colour used for the next commit.
func (s *State) SetActiveColor(c catalog.Color) error {
	if !c.Valid() {
		return errors.New(errors.ErrCodeInvalidColor, "color %q is not in the palette", c)
	}
	s.activeColor = c
	return nil
}
