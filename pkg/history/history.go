// Package history implements linear undo/redo over whole-collection
// mutations of a build.
//
// A [Manager] keeps two stacks of snapshots: past (older to newer) and future.
// Every mutation goes through [Manager.RecordAndApply], which pushes the
// current collection onto past and discards future, so the timeline never
// branches. Undo and redo move the live collection between the stacks.
//
// Snapshots are independent copies taken when they are pushed; nothing held
// by the manager aliases the live collection.
//
// A Manager is not safe for concurrent use.
package history

import "github.com/matzehuels/brickyard/pkg/build"

// Manager records build mutations for undo and redo.
type Manager struct {
	state  *build.State
	past   []build.Pieces
	future []build.Pieces
}

// New returns a manager with empty history over state.
func New(state *build.State) *Manager {
	return &Manager{state: state}
}

// State returns the managed build state.
func (m *Manager) State() *build.State { return m.state }

// RecordAndApply replaces the live collection with next and records the
// previous collection for undo. Any redo history is discarded.
//
// If next equals the live collection nothing is recorded and false is
// returned: history only grows on an actual change.
func (m *Manager) RecordAndApply(next build.Pieces) bool {
	cur := m.state.View()
	if cur.Equal(next) {
		return false
	}
	m.past = append(m.past, cur.Clone())
	m.future = nil
	m.state.Swap(next.Clone())
	return true
}

// Undo restores the most recent past snapshot. It returns false, changing
// nothing, when there is nothing to undo.
func (m *Manager) Undo() bool {
	prev, ok := pop(&m.past)
	if !ok {
		return false
	}
	m.future = append(m.future, m.state.View().Clone())
	m.state.Swap(prev)
	return true
}

// Redo restores the most recently undone snapshot. It returns false,
// changing nothing, when there is nothing to redo.
func (m *Manager) Redo() bool {
	next, ok := pop(&m.future)
	if !ok {
		return false
	}
	m.past = append(m.past, m.state.View().Clone())
	m.state.Swap(next)
	return true
}

// CanUndo reports whether Undo would change the build.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether Redo would change the build.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Depth returns the number of undo and redo snapshots.
func (m *Manager) Depth() (past, future int) { return len(m.past), len(m.future) }

// Snapshots returns copies of both stacks, oldest first.
func (m *Manager) Snapshots() (past, future []build.Pieces) {
	return cloneAll(m.past), cloneAll(m.future)
}

func pop(stack *[]build.Pieces) (build.Pieces, bool) {
	s := *stack
	if len(s) == 0 {
		return nil, false
	}
	top := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return top, true
}

func cloneAll(stack []build.Pieces) []build.Pieces {
	out := make([]build.Pieces, len(stack))
	for i, ps := range stack {
		out[i] = ps.Clone()
	}
	return out
}
