package safetree

import (
	"encoding/json"
	"strconv"

	"github.com/matzehuels/safetree/pkg/errors"
)

// Stringify renders root as a single line of JSON by way of its safe tree.
// Every multi-line source (stacks, deep nesting) is pruned before encoding,
// so one call yields exactly one line.
func Stringify(root any, maxDepth int, opts ...Option) (string, error) {
	res, err := Build(root, maxDepth, opts...)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(res.Tree)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode safe tree")
	}
	return string(data), nil
}

// String is Stringify at DefaultMaxDepth. It cannot fail; should encoding
// ever break, the error text is returned as a JSON string.
func String(root any) string {
	s, err := Stringify(root, DefaultMaxDepth)
	if err != nil {
		return strconv.Quote(err.Error())
	}
	return s
}

// Locate returns the paths, in breadth-first order, of every scalar within
// LocateMaxDepth of root whose string form contains needle. It is meant for
// finding where a known value lives in an unfamiliar structure. Any needle
// is accepted; an empty one matches nothing.
func Locate(root any, needle string, opts ...Option) ([]string, error) {
	res, err := Build(root, LocateMaxDepth, append(opts[:len(opts):len(opts)], WithNeedle(needle))...)
	if err != nil {
		return nil, err
	}
	if res.Matches == nil {
		return []string{}, nil
	}
	return res.Matches, nil
}

// SafeValue defers the safe rendering of a value until it is printed.
// Loggers call String; JSON encoders call MarshalJSON.
type SafeValue struct {
	v any
}

// Value wraps v for logging:
//
//	logger.Info("request failed", "req", safetree.Value(req))
func Value(v any) SafeValue {
	return SafeValue{v: v}
}

// String implements fmt.Stringer.
func (s SafeValue) String() string {
	return String(s.v)
}

// MarshalJSON implements json.Marshaler.
func (s SafeValue) MarshalJSON() ([]byte, error) {
	return []byte(String(s.v)), nil
}
