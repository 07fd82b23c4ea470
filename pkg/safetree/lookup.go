package safetree

import (
	"strconv"
	"strings"
)

// Lookup returns the safe tree node at path, a path as produced in
// reference markers and Matches. Property names may themselves contain '.'
// or '['; Lookup prefers the longest name that leaves a well-formed rest.
func (r *Result) Lookup(path string) (any, bool) {
	return lookup(r.Tree, path)
}

func lookup(node any, path string) (any, bool) {
	if path == "" {
		return node, true
	}
	switch n := node.(type) {
	case *Object:
		if path[0] != '.' {
			return nil, false
		}
		rest := path[1:]
		for _, k := range longestFirst(n.keys, rest) {
			if v, ok := lookup(n.vals[k], rest[len(k):]); ok {
				return v, true
			}
		}
		return nil, false
	case []any:
		if path[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(path, ']')
		if end < 0 {
			return nil, false
		}
		i, err := strconv.Atoi(path[1:end])
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return lookup(n[i], path[end+1:])
	}
	return nil, false
}

// longestFirst returns the keys that prefix rest at a segment boundary,
// longest first.
func longestFirst(keys []string, rest string) []string {
	var out []string
	for _, k := range keys {
		if !strings.HasPrefix(rest, k) {
			continue
		}
		if tail := rest[len(k):]; tail == "" || tail[0] == '.' || tail[0] == '[' {
			out = append(out, k)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
