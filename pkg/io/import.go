package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/errors"
)

// ReadJSON decodes a build from r.
//
// The document is validated against [Schema] before decoding. ReadJSON
// returns an [errors.ErrCodeInvalidBuild] error if the JSON is malformed,
// the top-level value is not an array, a record misses a field or carries a
// wrong type, a type or colour is outside the catalog, or two records share
// an id. ReadJSON does not close r.
func ReadJSON(r io.Reader) (build.Pieces, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "read build")
	}
	return Unmarshal(data)
}

// Unmarshal decodes a build from data. See [ReadJSON].
func Unmarshal(data []byte) (build.Pieces, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "malformed JSON")
	}
	if _, ok := doc.([]any); !ok {
		return nil, errors.New(errors.ErrCodeInvalidBuild, "build must be a JSON array of pieces")
	}
	if err := Schema().Validate(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "build does not match schema")
	}

	var pieces build.Pieces
	if err := json.Unmarshal(data, &pieces); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuild, err, "decode pieces")
	}

	seen := make(map[string]bool, len(pieces))
	for i, p := range pieces {
		if seen[p.ID] {
			return nil, errors.New(errors.ErrCodeInvalidBuild, "piece %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	if pieces == nil {
		pieces = build.Pieces{}
	}
	return pieces, nil
}

// ImportJSON reads the build file at path. Paths ending in ".zst" are
// zstd-decompressed first.
func ImportJSON(path string) (build.Pieces, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "build file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if !IsCompressed(path) {
		return ReadJSON(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	return ReadJSON(dec)
}

// IsCompressed reports whether path names a zstd-compressed build.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// Decompress inflates a zstd frame.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
