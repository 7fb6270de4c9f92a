// Package snap converts a continuous pointer hit into a discrete placement.
//
// # Horizontal snapping
//
// Each axis is snapped independently from the effective footprint extent
// along it. An odd extent puts the centre on a half unit (floor(p)+0.5) and
// an even extent on a whole unit (round(p)), so the edges of every piece land
// on integer grid lines regardless of its width.
//
// The effective footprint swaps the catalog width and depth when the yaw is
// an odd quarter turn. Only the parity of the quarter turn matters.
//
// # Vertical resolution
//
// The resting elevation starts at [GroundElevation] and is raised to the top
// of every existing piece whose footprint overlaps the candidate's by more
// than [Epsilon] on both axes. Pieces that merely share an edge do not force
// stacking. Because the candidate always sits on the highest overlapping
// surface it can never interpenetrate, so there is no rejected outcome: a
// hit always produces a candidate and a miss never does.
//
// # Cost
//
// [Engine.Snap] scans every placed piece. It is meant to be called once per
// frame; the scan is the scalability ceiling for very large builds.
package snap
