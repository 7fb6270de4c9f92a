package snap

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/brickyard/pkg/catalog"
)

// DOTOptions configures support graph rendering.
type DOTOptions struct {
	// Detailed adds the position of each piece to its label.
	Detailed bool
}

// ToDOT converts a support graph to Graphviz DOT format, ground at the
// bottom. Nodes are filled with the piece colour; floating pieces get a
// dashed outline.
func ToDOT(g SupportGraph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [label=\"baseplate\", shape=rect, fillcolor=\"#A0A5A9\"];\n", Ground)

	for _, p := range g.Pieces {
		label := fmt.Sprintf("%s\n%s", shortID(p.ID), p.Type)
		if opts.Detailed {
			label += fmt.Sprintf("\n(%.1f, %.2f, %.1f)", p.X(), p.Y(), p.Z())
		}
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			fmt.Sprintf("fillcolor=%q", string(p.Color)),
			fmt.Sprintf("fontcolor=%q", fontColor(p.Color)),
		}
		if g.IsFloating(p.ID) {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Below, e.Above)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fontColor(c catalog.Color) string {
	switch c {
	case catalog.Black, catalog.Blue, catalog.Green, catalog.Purple,
		catalog.Brown, catalog.DarkGray, catalog.Red, catalog.Teal:
		return "white"
	}
	return "black"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
