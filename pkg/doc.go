// Package pkg holds the Brickyard libraries.
//
// # Overview
//
// Brickyard is a grid-snapping block builder: a pointer over a baseplate or an
// existing structure produces a preview piece that snaps to the grid and to
// the correct stacking height, and a click commits it to a build with linear
// undo and redo. The packages are layered, leaves first:
//
//  1. [catalog] - piece types, footprints, heights and the colour palette
//  2. [geom] - footprint rectangles and boxes
//  3. [build] - pieces, piece collections and the live build state
//  4. [history] - undo/redo over whole-build snapshots
//  5. [snap] - pointer hit to candidate placement, support analysis
//  6. [raycast] - pointer position to hit, for perspective and top-down views
//  7. [controller] - per-frame placement interaction and commits
//  8. [session] - single-goroutine owner of a controller for concurrent surfaces
//
// Supporting packages: [io] (JSON build files), [library] (named build
// storage), [config], [observability], [errors] and [buildinfo].
//
// # Data flow
//
//	pointer (NDC)
//	     ↓
//	[raycast] Caster ──reads── pieces
//	     ↓ Hit
//	[snap] Engine ──reads── pieces, catalog
//	     ↓ Candidate
//	[controller] ──commit──▶ [history] ──▶ [build] State
//	     ↓
//	View (renderers, toolbars, WebSocket frames)
//
// # Quick Start
//
//	ctrl := controller.New(nil, controller.Options{})
//	cam := raycast.NewPerspective(16.0 / 9)
//
//	// every frame
//	ctrl.Tick(cam.Cast(raycast.NDC{X: 0.1, Y: -0.2}, ctrl.Live()))
//
//	// on mouse down / up
//	ctrl.Press(640, 360)
//	if commit, ok := ctrl.Release(641, 360, false); ok {
//	    fmt.Println("placed", commit.Piece.ID, "on", commit.Contact)
//	}
//
//	ctrl.Undo()
package pkg
