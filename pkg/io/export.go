package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/brickyard/pkg/build"
)

// WriteJSON encodes pieces as an indented JSON array and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(pieces build.Pieces, w io.Writer) error {
	if pieces == nil {
		pieces = build.Pieces{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pieces); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the compact JSON encoding of pieces. Equal builds always
// encode to the same bytes.
func Marshal(pieces build.Pieces) ([]byte, error) {
	if pieces == nil {
		pieces = build.Pieces{}
	}
	return json.Marshal(pieces)
}

// ExportJSON writes pieces to a file at path, zstd-compressed when the path
// ends in ".zst".
func ExportJSON(pieces build.Pieces, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeAndClose(f, pieces, IsCompressed(path)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeAndClose encodes pieces to wc, through a zstd frame when compress is
// set, and closes wc. A close failure is reported when the write succeeded.
func writeAndClose(wc io.WriteCloser, pieces build.Pieces, compress bool) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	if !compress {
		return WriteJSON(pieces, wc)
	}
	enc, err := zstd.NewWriter(wc, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := WriteJSON(pieces, enc); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Compress wraps data in a zstd frame.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
