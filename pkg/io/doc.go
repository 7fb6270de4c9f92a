// Package io reads and writes builds as JSON piece records.
//
// # Format
//
// A build is a top-level JSON array of piece records:
//
//	[
//	  {
//	    "id": "0b9f6c1e-3f4a-4d0b-9d43-8f3f0b8e5a11",
//	    "type": "2x4",
//	    "position": [0, 0.2, 0],
//	    "rotation": [0, 1.5707963267948966, 0],
//	    "color": "#E3000B"
//	  }
//	]
//
// Every field is required. type must name a catalog entry, position and
// rotation hold exactly three numbers and color is a "#RRGGBB" string. Ids
// must be unique within a build.
//
// # Import
//
// [ReadJSON] validates the document against an embedded JSON Schema before
// decoding it. Any problem, including a top-level value that is not an array,
// yields an error with code [errors.ErrCodeInvalidBuild]; no partial build is
// ever returned, so callers can leave their state untouched.
//
//	pieces, err := io.ImportJSON("castle.json")
//	if err != nil {
//	    return err // live build unchanged
//	}
//	ctrl.Import(pieces)
//
// # Compression
//
// [ImportJSON] and [ExportJSON] transparently use zstd framing for paths
// ending in ".zst".
//
// [errors.ErrCodeInvalidBuild]: github.com/matzehuels/brickyard/pkg/errors.ErrCodeInvalidBuild
package io
