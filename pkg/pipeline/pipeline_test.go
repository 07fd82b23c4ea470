package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/safetree/pkg/cache"
	"github.com/matzehuels/safetree/pkg/errors"
	stio "github.com/matzehuels/safetree/pkg/io"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(fc, nil, log.New(io.Discard))
}

func TestValidateGraphFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateGraphFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateGraphFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	want := Options{Format: stio.FormatJSON, MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes, GraphFormat: GraphSVG}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	explicit := Options{Format: "yml", ExplicitDepth: true}
	if err := explicit.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if explicit.MaxDepth != 0 || explicit.Format != stio.FormatYAML {
		t.Errorf("explicit zero depth / yml alias not honored: %+v", explicit)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative depth", Options{MaxDepth: -1}, errors.ErrCodeInvalidDepth},
		{"depth too large", Options{MaxDepth: MaxMaxDepth + 1}, errors.ErrCodeInvalidDepth},
		{"negative nodes", Options{MaxNodes: -5}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Format: "xml"}, errors.ErrCodeInvalidFormat},
		{"bad graph format", Options{GraphFormat: "gif"}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

const aliasYAML = `
base: &base
  name: first
copy: *base
b: [1, 2]
`

func TestRunnerStringify(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	doc := []byte(`{"b":{"c":{"d":1}},"a":"x"}`)

	out, err := r.Stringify(ctx, doc, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Stringify() error: %v", err)
	}
	if want := `{"a":"x","b":{"c":"maxdepth"}}`; out.Line != want {
		t.Errorf("Line = %s, want %s", out.Line, want)
	}
	if out.CacheHit {
		t.Error("first run should miss the cache")
	}

	again, err := r.Stringify(ctx, doc, Options{MaxDepth: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || again.Line != out.Line {
		t.Errorf("second run: hit=%v line=%s", again.CacheHit, again.Line)
	}

	fresh, _ := r.Stringify(ctx, doc, Options{MaxDepth: 2, Refresh: true})
	if fresh.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	deeper, _ := r.Stringify(ctx, doc, Options{MaxDepth: 3})
	if deeper.CacheHit {
		t.Error("a different depth must not reuse the cached line")
	}
}

func TestRunnerStringifyYAML(t *testing.T) {
	r := newTestRunner(t)
	out, err := r.Stringify(context.Background(), []byte(aliasYAML), Options{Format: stio.FormatYAML})
	if err != nil {
		t.Fatalf("Stringify() error: %v", err)
	}
	// aliases decode to separate copies, so no reference marker appears
	if want := `{"b":[1,2],"base":{"name":"first"},"copy":{"name":"first"}}`; out.Line != want {
		t.Errorf("Line = %s, want %s", out.Line, want)
	}
}

func TestRunnerLocate(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	doc := []byte(`{"svc":{"endpoints":["http://a","http://secret-b"]},"token":"secret-t"}`)

	out, err := r.Locate(ctx, doc, Options{Needle: "secret"})
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if diff := cmp.Diff([]string{".token", ".svc.endpoints[1]"}, out.Paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	cached, err := r.Locate(ctx, doc, Options{Needle: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !cached.CacheHit || !cmp.Equal(out.Paths, cached.Paths) {
		t.Errorf("cached result differs: %+v", cached)
	}

	if _, err := r.Locate(ctx, doc, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty needle error = %v", err)
	}
}

func TestRunnerGraphDOT(t *testing.T) {
	r := newTestRunner(t)
	out, err := r.Graph(context.Background(), []byte(`{"a":{"b":[1]}}`), Options{GraphFormat: GraphDOT})
	if err != nil {
		t.Fatalf("Graph() error: %v", err)
	}
	if !strings.HasPrefix(string(out.Data), "digraph G {") {
		t.Errorf("not DOT: %.40s", out.Data)
	}
}

func TestRunnerDecodeError(t *testing.T) {
	r := NewRunner(nil, nil, log.New(io.Discard))
	_, err := r.Stringify(context.Background(), []byte(`{`), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

type failingCache struct{ cache.NullCache }

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, cache.ErrBackend
}

func TestRunnerSurvivesCacheOutage(t *testing.T) {
	r := NewRunner(failingCache{}, nil, log.New(io.Discard))
	out, err := r.Stringify(context.Background(), []byte(`[1]`), Options{})
	if err != nil {
		t.Fatalf("a cache outage should not fail the run: %v", err)
	}
	if out.Line != `[1]` {
		t.Errorf("Line = %s", out.Line)
	}
}

type ttlCache struct {
	cache.NullCache
	ttls []time.Duration
}

func (c *ttlCache) Set(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
	c.ttls = append(c.ttls, ttl)
	return nil
}

func TestRunnerTTLOverride(t *testing.T) {
	c := &ttlCache{}
	r := NewRunner(c, nil, log.New(io.Discard))
	ctx := context.Background()

	if _, err := r.Stringify(ctx, []byte(`[1]`), Options{}); err != nil {
		t.Fatal(err)
	}
	r.TTL = time.Minute
	if _, err := r.Stringify(ctx, []byte(`[2]`), Options{}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]time.Duration{cache.TTLRender, time.Minute}, c.ttls); diff != "" {
		t.Errorf("ttls mismatch (-want +got):\n%s", diff)
	}
}
