// Package nodelink renders editor graphs as node-link diagrams.
//
// # Overview
//
// This package produces static previews of a graph using Graphviz: circular
// nodes carrying their labels, connected by labelled arrows. It is used by
// the render command and the server's SVG preview.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{UsePositions: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{UsePositions: true})
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - UsePositions: pin nodes to their canvas coordinates (neato layout)
//     instead of letting Graphviz rank them top to bottom
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
