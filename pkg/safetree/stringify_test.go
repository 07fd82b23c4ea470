package safetree

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		needle string
		want   []string
	}{
		{"mutual references", newScenario(), "x", []string{".x"}},
		{"numbers match by text", map[string]any{"port": 8080, "name": "svc"}, "80", []string{".port"}},
		{"breadth first order", map[string]any{
			"a": map[string]any{"deep": "key-1"},
			"b": "key-2",
			"c": []any{"key-3"},
		}, "key", []string{".b", ".a.deep", ".c[0]"}},
		{"no match", map[string]any{"a": "b"}, "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.input, tt.needle)
			if err != nil {
				t.Fatalf("Locate() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Locate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocateSearchesDeeperThanDefault(t *testing.T) {
	v := map[string]any{"l1": map[string]any{"l2": map[string]any{"l3": map[string]any{"l4": "needle"}}}}

	got, err := Locate(v, "needle")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{".l1.l2.l3.l4"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateAcceptsAnyNeedle(t *testing.T) {
	long := strings.Repeat("x", 300)
	input := map[string]any{"k": "a\tb", "nul": "a\x00b", "long": long + "!"}

	tests := []struct {
		name   string
		needle string
		want   []string
	}{
		{"tab", "\t", []string{".k"}},
		{"nul byte", "\x00", []string{".nul"}},
		{"longer than a flag value", long, []string{".long"}},
		{"empty matches nothing", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(input, tt.needle)
			if err != nil {
				t.Fatalf("Locate(%q) error: %v", tt.needle, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Locate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocateDoesNotMutateOptions(t *testing.T) {
	opts := make([]Option, 1, 4)
	opts[0] = WithMaxNodes(0)
	if _, err := Locate(map[string]any{"a": "b"}, "b", opts...); err != nil {
		t.Fatal(err)
	}
	if spare := opts[:2]; spare[1] != nil {
		t.Error("Locate wrote into the caller's option slice")
	}
}

func TestString(t *testing.T) {
	if got := String(newScenario()); got != `{"x":"x","six":6,"b":{"a":"refTo^","y":"y","w1":{"w2":"maxdepth"}}}` {
		t.Errorf("String() = %s", got)
	}
}

func TestValue(t *testing.T) {
	a := newScenario()

	if got := fmt.Sprint(Value(a)); got != String(a) {
		t.Errorf("fmt.Sprint(Value) = %s, want %s", got, String(a))
	}

	data, err := json.Marshal(map[string]any{"req": Value(a)})
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	want := `{"req":{"x":"x","six":6,"b":{"a":"refTo^","y":"y","w1":{"w2":"maxdepth"}}}}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}
}

func TestObjectOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", 1)
	o.Set("a", 2)
	o.Set("z", 3)

	if diff := cmp.Diff([]string{"z", "a"}, o.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"z":3,"a":2}` {
		t.Errorf("MarshalJSON() = %s", data)
	}
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2", o.Len())
	}
}

func TestResultLookup(t *testing.T) {
	res, err := Build(map[string]any{
		"a.b":  "dotted",
		"a":    map[string]any{"b": "nested"},
		"list": []any{"zero", map[string]any{"k": "v"}},
	}, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{".a.b", "dotted", true},
		{".list[0]", "zero", true},
		{".list[1].k", "v", true},
		{".list[2]", nil, false},
		{".missing", nil, false},
		{"[0]", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := res.Lookup(tt.path)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}

	if root, ok := res.Lookup(""); !ok || root != res.Tree {
		t.Error(`Lookup("") should return the root`)
	}
}
