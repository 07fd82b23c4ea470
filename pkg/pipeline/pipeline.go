// Package pipeline runs the decode → convert → output steps shared by the
// CLI and the HTTP API.
//
// By centralizing this logic, both entry points validate options the same
// way, key the cache the same way, and produce byte-identical output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Format: io.FormatYAML, MaxDepth: 4}
//	out, err := runner.Stringify(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Line)
//
// Every method returns whether the result came from the cache.
package pipeline

import (
	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/safetree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth is the depth used when Options.MaxDepth is unset.
	DefaultMaxDepth = safetree.DefaultMaxDepth

	// MaxMaxDepth caps requested depths. Deeper trees defeat the point of a
	// one-line rendering.
	MaxMaxDepth = 32

	// DefaultMaxNodes bounds the size of a single rendering.
	DefaultMaxNodes = 10000
)

// Graph output formats.
const (
	GraphSVG = "svg"
	GraphDOT = "dot"
	GraphPDF = "pdf"
	GraphPNG = "png"
)

// ValidGraphFormats is the set of supported diagram formats.
var ValidGraphFormats = map[string]bool{
	GraphSVG: true,
	GraphDOT: true,
	GraphPDF: true,
	GraphPNG: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. The zero value of every field except
// Format and Needle selects its default.
type Options struct {
	// Format is the syntax of the input document.
	Format io.Format `json:"format"`

	// MaxDepth bounds the safe tree. Unset (zero) means DefaultMaxDepth;
	// ExplicitDepth makes zero mean zero.
	MaxDepth      int  `json:"max_depth,omitempty"`
	ExplicitDepth bool `json:"-"`

	// MaxNodes caps the number of tree nodes. Zero means DefaultMaxNodes.
	MaxNodes int `json:"max_nodes,omitempty"`

	// Needle is the text Locate searches for.
	Needle string `json:"needle,omitempty"`

	// GraphFormat is the diagram output format. Empty means svg.
	GraphFormat string `json:"graph_format,omitempty"`

	// Detailed lists scalar properties in diagram nodes.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh skips cache lookups (results are still stored).
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults fills unset fields and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = io.FormatJSON
	}
	format, err := io.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = format
	if o.MaxDepth == 0 && !o.ExplicitDepth {
		o.MaxDepth = DefaultMaxDepth
	}
	if err := errors.ValidateMaxDepth(o.MaxDepth); err != nil {
		return err
	}
	if o.MaxDepth > MaxMaxDepth {
		return errors.New(errors.ErrCodeInvalidDepth, "max depth must be <= %d, got %d", MaxMaxDepth, o.MaxDepth)
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max nodes must be >= 0, got %d", o.MaxNodes)
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.GraphFormat == "" {
		o.GraphFormat = GraphSVG
	}
	return ValidateGraphFormat(o.GraphFormat)
}

// ValidateGraphFormat checks a diagram format name (case-sensitive).
func ValidateGraphFormat(format string) error {
	if !ValidGraphFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q (want svg, dot, pdf or png)", format)
	}
	return nil
}
