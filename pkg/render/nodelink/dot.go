package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphedit/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// UsePositions pins each node at its canvas position. When false the
	// dot engine chooses a layered layout.
	UsePositions bool
}

// pointsPerUnit converts canvas pixels to Graphviz points.
const pointsPerUnit = 0.75

// ToDOT converts a graph to Graphviz DOT format.
// Selected nodes and edges are drawn with a heavier outline.
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"#1e1e1e\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=\"#2d2d2d\", color=\"#555555\", fontcolor=\"#e0e0e0\", fontsize=14, width=1.2, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#888888\", fontcolor=\"#e0e0e0\", fontsize=12];\n")
	if opts.UsePositions {
		buf.WriteString("  splines=line;\n")
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}
	if n.Data.Label == "" {
		attrs = append(attrs, "fontcolor=\"#888888\"")
	}
	if n.Selected {
		attrs = append(attrs, "penwidth=3", "color=\"#4a9eff\"")
	}
	if opts.UsePositions {
		// Canvas y grows downwards, Graphviz y upwards.
		x := n.Position.X * pointsPerUnit
		y := -n.Position.Y * pointsPerUnit
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y)))
	}
	return attrs
}

func edgeAttrs(e graph.Edge) []string {
	attrs := []string{fmt.Sprintf("id=%q", e.ID), fmt.Sprintf("label=%q", e.Label)}
	if e.SourceHandle != "" {
		attrs = append(attrs, "tailport="+port(e.SourceHandle))
	}
	if e.TargetHandle != "" {
		attrs = append(attrs, "headport="+port(e.TargetHandle))
	}
	if e.Selected {
		attrs = append(attrs, "penwidth=3", "color=\"#4a9eff\"")
	}
	return attrs
}

// port maps a handle id to a Graphviz compass point.
func port(handle string) string {
	switch strings.TrimSuffix(handle, "-source") {
	case graph.HandleTop:
		return "n"
	case graph.HandleBottom:
		return "s"
	case graph.HandleLeft:
		return "w"
	case graph.HandleRight:
		return "e"
	}
	return "c"
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz. With UsePositions the
// neato engine honours the pinned coordinates.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if opts.UsePositions {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render is a shortcut for ToDOT followed by RenderSVG.
func Render(ctx context.Context, g graph.Graph, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(g, opts), opts)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
