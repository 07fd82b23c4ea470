package cache

import "time"

// Key namespaces. The namespace is the first key segment and doubles as the
// key type reported to observability hooks.
const (
	NamespaceRender = "render"
	NamespaceLocate = "locate"
	NamespaceGraph  = "graph"
)

// RenderKeyOpts lists everything besides the document that shapes a
// stringified safe tree.
type RenderKeyOpts struct {
	MaxDepth int `json:"max_depth"`
	MaxNodes int `json:"max_nodes,omitempty"`
}

// LocateKeyOpts lists everything besides the document that shapes a locate
// result.
type LocateKeyOpts struct {
	Needle   string `json:"needle"`
	MaxNodes int    `json:"max_nodes,omitempty"`
}

// GraphKeyOpts lists everything besides the document that shapes a rendered
// node-link graph.
type GraphKeyOpts struct {
	MaxDepth int    `json:"max_depth"`
	MaxNodes int    `json:"max_nodes,omitempty"`
	Format   string `json:"format"`
}

// Keyer derives cache keys. docHash is the [Hash] of the raw input document.
type Keyer interface {
	RenderKey(docHash string, opts RenderKeyOpts) string
	LocateKey(docHash string, opts LocateKeyOpts) string
	GraphKey(docHash string, opts GraphKeyOpts) string
}

// DefaultKeyer hashes the document hash and options into
// "<namespace>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey(NamespaceRender, docHash, opts)
}

func (DefaultKeyer) LocateKey(docHash string, opts LocateKeyOpts) string {
	return hashKey(NamespaceLocate, docHash, opts)
}

func (DefaultKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	return hashKey(NamespaceGraph, docHash, opts)
}

// Default entry lifetimes. Results depend only on the document bytes and the
// options in the key, so they stay valid until the space is needed.
const (
	TTLRender = 24 * time.Hour
	TTLLocate = 24 * time.Hour
	TTLGraph  = 7 * 24 * time.Hour
)
