// Package render provides static previews of editor graphs.
//
// The [nodelink] subpackage converts a graph to Graphviz DOT and renders it
// to SVG in-process:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//
// [nodelink]: github.com/matzehuels/graphedit/pkg/render/nodelink
package render
