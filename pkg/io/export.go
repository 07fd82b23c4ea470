package io

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/safetree/pkg/errors"
)

// Encode writes a safe tree to w. JSON output is a single line followed by
// a newline. YAML output goes through the JSON form, which YAML parses as a
// node tree, so property order carries over.
func Encode(w io.Writer, tree any, format Format) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode safe tree")
	}

	switch format {
	case FormatJSON:
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "convert safe tree to yaml")
		}
		clearStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeUnsupported, "cannot encode safe trees as %s", format)
}

// clearStyle drops the flow and quoting styles the JSON source gives every
// node so the YAML comes out in block style. The resolved tag is pinned
// first, so strings such as "1" stay quoted.
func clearStyle(n *yaml.Node) {
	n.Tag = n.ShortTag()
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
