package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/render"
	"github.com/matzehuels/safetree/pkg/safetree"
)

const defaultMaxValueLen = 32

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed lists the scalar properties of each composite in its label.
	// When false, only the path segment is shown.
	Detailed bool

	// MaxValueLen truncates scalar values in detailed labels. Zero means 32.
	MaxValueLen int
}

type dotNode struct {
	id    string
	title string
	lines []string
	attrs []string
}

type dotEdge struct {
	from, to string
	label    string
	attrs    []string
}

type refEdge struct {
	from   string
	target string
	label  string
}

// diagram collects the nodes and edges of a safe tree in one pass.
type diagram struct {
	opts  Options
	nodes []*dotNode
	edges []dotEdge
	refs  []refEdge
	ids   map[string]string
}

// ToDOT converts a safe tree (the Tree of a safetree.Result) to Graphviz DOT.
//
// Every object, array and error becomes a node, linked to its parent by an
// edge labeled with the property name or index. A reference marker becomes
// a dashed edge to the node rendered at the marker's path; a depth marker
// becomes a dashed leaf. Strings that merely look like markers are drawn the
// same way.
func ToDOT(tree any, opts Options) string {
	if opts.MaxValueLen <= 0 {
		opts.MaxValueLen = defaultMaxValueLen
	}
	d := &diagram{opts: opts, ids: make(map[string]string)}
	if root := d.composite("", "(root)", tree); root == nil {
		n := d.add("", "(root)", "shape=plaintext")
		n.lines = append(n.lines, d.value(tree))
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range d.nodes {
		label := strings.Join(append([]string{n.title}, n.lines...), "\n")
		attrs := append([]string{fmt.Sprintf("label=%q", label)}, n.attrs...)
		fmt.Fprintf(&buf, "  %s [%s];\n", n.id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.edges {
		attrs := append([]string{fmt.Sprintf("label=%q", e.label)}, e.attrs...)
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", e.from, e.to, strings.Join(attrs, ", "))
	}
	for _, r := range d.refs {
		to, ok := d.ids[r.target]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%q, style=dashed, color=grey40, constraint=false];\n", r.from, to, r.label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (d *diagram) add(path, title string, attrs ...string) *dotNode {
	n := &dotNode{id: "n" + strconv.Itoa(len(d.nodes)), title: title, attrs: attrs}
	d.nodes = append(d.nodes, n)
	d.ids[path] = n.id
	return n
}

// composite adds the node for v when v is an object, array or error and
// returns it; scalars and markers yield nil.
func (d *diagram) composite(path, title string, v any) *dotNode {
	switch t := v.(type) {
	case *safetree.Object:
		n := d.add(path, title)
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			d.child(n, path+"."+k, k, child)
		}
		return n
	case []any:
		n := d.add(path, title+" ["+strconv.Itoa(len(t))+"]")
		for i, child := range t {
			seg := "[" + strconv.Itoa(i) + "]"
			d.child(n, path+seg, seg, child)
		}
		return n
	case *safetree.ErrorNode:
		n := d.add(path, title, "fillcolor=mistyrose")
		n.lines = append(n.lines, "error: "+d.truncate(t.Message))
		return n
	}
	return nil
}

func (d *diagram) child(parent *dotNode, path, seg string, v any) {
	if n := d.composite(path, seg, v); n != nil {
		d.edges = append(d.edges, dotEdge{from: parent.id, to: n.id, label: seg})
		return
	}

	if s, ok := v.(string); ok {
		if target, isRef := strings.CutPrefix(s, safetree.MarkerRefPrefix); isRef {
			d.refs = append(d.refs, refEdge{from: parent.id, target: target, label: seg})
			return
		}
		if s == safetree.MarkerMaxDepth {
			leaf := d.add(path, seg, "style=\"rounded,dashed\"", "fontcolor=grey40")
			leaf.lines = append(leaf.lines, "…")
			d.edges = append(d.edges, dotEdge{from: parent.id, to: leaf.id, label: seg, attrs: []string{"style=dashed"}})
			return
		}
	}

	if d.opts.Detailed {
		parent.lines = append(parent.lines, seg+": "+d.value(v))
	}
}

func (d *diagram) value(v any) string {
	if v == nil {
		return "null"
	}
	return d.truncate(fmt.Sprint(v))
}

func (d *diagram) truncate(s string) string {
	r := []rune(s)
	if len(r) > d.opts.MaxValueLen {
		return string(r[:d.opts.MaxValueLen]) + "…"
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg element with one
// whose viewBox starts at the origin and whose size is unitless.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given
// scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
