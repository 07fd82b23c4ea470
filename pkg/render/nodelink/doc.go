// Package nodelink draws safe trees as node-link diagrams.
//
// # Overview
//
// A safe tree is acyclic, but its reference markers still describe the
// sharing in the original value graph. This package draws the tree with
// Graphviz and turns every "refTo^<path>" marker back into a dashed edge,
// which makes cycles visible at a glance.
//
// # Usage
//
//	res, _ := safetree.Build(v, 4)
//	dot := nodelink.ToDOT(res.Tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
