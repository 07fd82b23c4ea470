// Package pkg provides the libraries behind safetree, a converter from
// cyclic in-memory values to bounded, acyclic trees that encode as one
// JSON log line.
//
// # Overview
//
// A value handed to a logger can point back at itself, carry errors and
// callbacks, or nest deep enough to flood centralized log storage. The pkg
// directory is organized around that conversion:
//
//  1. [safetree] - The conversion core (Build, Stringify, Locate, Value)
//  2. [pipeline] - Orchestration (decode → convert → output) shared by CLI and API
//  3. [cache] - Result caching (file, redis, null) and cache keys
//  4. [io] - Document decoding (JSON, YAML, TOML) and tree encoding
//  5. [render] - Diagram output (Graphviz node-link, PDF/PNG conversion)
//  6. [sink] - Log record shipping (stdout, files, MongoDB)
//
// # Architecture
//
// The typical data flow:
//
//	JSON/YAML/TOML document
//	         ↓
//	    [io] package (decode to a Go value)
//	         ↓
//	    [safetree] package (bounded breadth-first conversion)
//	         ↓
//	    one-line JSON, node-link diagram, or shipped record
//
// # Quick Start
//
// Render a live value for a log line:
//
//	import "github.com/matzehuels/safetree/pkg/safetree"
//
//	line, err := safetree.Stringify(req, safetree.DefaultMaxDepth)
//	if err != nil {
//	    return err
//	}
//	logger.Info("request", "req", json.RawMessage(line))
//
// Or let the logger do it:
//
//	logger.Warn("handler failed", "req", safetree.Value(req))
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every layer, with HTTP status mapping.
//
// [observability] - No-op hooks for conversion, cache and HTTP metrics.
//
// [buildinfo] - Version information set via ldflags.
//
// [safetree]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/safetree
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/render
// [sink]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/sink
// [errors]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/safetree/pkg/buildinfo
package pkg
