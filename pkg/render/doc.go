// Package render converts rendered diagrams between output formats.
//
// [ToPDF] and [ToPNG] convert SVG produced by the [nodelink] subpackage using
// the external rsvg-convert tool (from librsvg):
//
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/safetree/pkg/render/nodelink
package render
