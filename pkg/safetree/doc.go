// Package safetree turns arbitrary Go value graphs into bounded, acyclic
// trees that encoding/json renders into exactly one log line.
//
// # Overview
//
// Logging a live runtime value is risky: a struct may point back at itself,
// hold an error or a callback, or nest deep enough to flood centralized log
// storage where every line becomes a searchable record. [Build] walks the
// value breadth first and produces a fresh tree that shares nothing with
// the input:
//
//   - scalars are copied by value
//   - functions render as "[Function: <name> propnames: ...]"
//   - errors render as {"message": ..., "stack": ...}
//   - a value reached a second time renders as "refTo^<path>", where path is
//     the (shortest) path it was first rendered at
//   - a composite first reached at the depth bound renders as "maxdepth"
//
// # Quick Start
//
//	type node struct {
//	    Name string
//	    Next *node
//	}
//	n := &node{Name: "loop"}
//	n.Next = n
//
//	line, _ := safetree.Stringify(n, safetree.DefaultMaxDepth)
//	// {"Name":"loop","Next":"refTo^"}
//
// # Paths
//
// Paths are built from ".field" and "[index]" segments starting at the
// root, which has the empty path. They appear in reference markers and in
// the result of [Locate]:
//
//	paths, _ := safetree.Locate(cfg, "secret")
//	// [".Backends[2].Auth.Token"]
//
// # Identity
//
// Pointers and interfaces are transparent. A map, a non-empty slice, or a
// struct/array reached through a pointer has an identity; the same identity
// seen twice is rendered once. Values copied into interfaces or map entries
// have none and are rendered every time they are met.
//
// # Objects
//
// Maps render with their keys sorted. Structs render their exported fields
// in declaration order, named by their json tag when present. A struct that
// exposes no fields (time.Time, big.Int) is asked for its json.Marshaler,
// encoding.TextMarshaler or fmt.Stringer view instead.
//
// # Logging
//
// [Value] wraps a value for charmbracelet/log or any other logger that
// prints fmt.Stringer or json.Marshaler values:
//
//	logger.Warn("handler failed", "req", safetree.Value(req))
//
// # Concurrency
//
// Every call owns its queue, identity tables and output; concurrent calls
// are safe as long as no goroutine mutates the input during a call.
package safetree
