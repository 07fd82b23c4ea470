package safetree

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func sampleHandler() string { return "ok" }

type describedFunc func() string

func (describedFunc) Describe() string { return "described" }
func (describedFunc) Run()             {}

func TestRenderFunc(t *testing.T) {
	const pkg = "github.com/matzehuels/safetree/pkg/safetree."

	tests := []struct {
		name string
		fn   any
		want string
	}{
		{"plain", sampleHandler, "[Function: " + pkg + "sampleHandler propnames:]"},
		{"named type with methods", describedFunc(sampleHandler), "[Function: " + pkg + "sampleHandler propnames: Describe Run]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degraded := renderFunc(reflect.ValueOf(tt.fn))
			if degraded {
				t.Error("renderFunc() reported degraded output")
			}
			if got != tt.want {
				t.Errorf("renderFunc() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringifyHandlerFunc(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	s := mustStringify(t, map[string]any{"h": h}, 2)
	if !strings.HasPrefix(s, `{"h":"[Function: `) || !strings.HasSuffix(s, ` propnames: ServeHTTP]"}`) {
		t.Errorf("got %s", s)
	}
}

// stackErr prints a multi-line trace under %+v, the way pkg/errors style
// errors do.
type stackErr struct {
	msg   string
	trace string
}

func (e *stackErr) Error() string { return e.msg }

func (e *stackErr) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		io.WriteString(f, e.msg+"\n"+e.trace)
		return
	}
	io.WriteString(f, e.msg)
}

func TestRenderError(t *testing.T) {
	long := strings.Repeat("frame\n", 100)

	tests := []struct {
		name      string
		err       error
		wantStack string
	}{
		{"no trace", fmt.Errorf("plain"), "pruned"},
		{"short trace", &stackErr{"boom", "main.go:10\nrun.go:20"}, "main.go:10\nrun.go:20"},
		{"long trace", &stackErr{"boom", long}, long[:DefaultStackLimit] + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := renderError(tt.err, DefaultStackLimit)
			if node.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", node.Message, tt.err.Error())
			}
			if node.Stack != tt.wantStack {
				t.Errorf("Stack = %q, want %q", node.Stack, tt.wantStack)
			}
		})
	}
}

func TestPruneStack(t *testing.T) {
	tests := []struct {
		name  string
		full  string
		limit int
		want  string
	}{
		{"single line", "message", 10, "pruned"},
		{"empty rest", "message\n", 10, ""},
		{"exact limit", "m\n12345", 5, "12345"},
		{"over limit", "m\n123456", 5, "12345..."},
		{"runes not bytes", "m\nééééé", 3, "ééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pruneStack(tt.full, tt.limit)
			if got != tt.want {
				t.Errorf("pruneStack(%q, %d) = %q, want %q", tt.full, tt.limit, got, tt.want)
			}
			if n := utf8.RuneCountInString(got); n > tt.limit+3 {
				t.Errorf("pruned stack has %d runes, limit %d", n, tt.limit)
			}
		})
	}
}

func TestStackLimitOption(t *testing.T) {
	err := &stackErr{"boom", "abcdefgh"}
	s := mustStringify(t, err, 1, WithStackLimit(4))
	if want := `{"message":"boom","stack":"abcd..."}`; s != want {
		t.Errorf("got %s, want %s", s, want)
	}
}

func TestClassify(t *testing.T) {
	var nilErr error
	x := 1

	tests := []struct {
		name  string
		input any
		want  class
	}{
		{"nil", nil, classNull},
		{"nil error", nilErr, classNull},
		{"pointer to int", &x, classScalar},
		{"string", "s", classScalar},
		{"bytes", []byte("b"), classScalar},
		{"func", sampleHandler, classCallable},
		{"error", fmt.Errorf("e"), classError},
		{"slice", []int{1}, classArray},
		{"array", [2]int{}, classArray},
		{"map", map[int]int{}, classObject},
		{"struct", struct{}{}, classObject},
		{"chan", make(chan int), classUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classify(reflect.ValueOf(tt.input))
			if got != tt.want {
				t.Errorf("classify(%T) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdentityOf(t *testing.T) {
	s := []int{1, 2, 3}
	m := map[string]int{}

	id1, ok1 := identityOf(reflect.ValueOf(s))
	id2, ok2 := identityOf(reflect.ValueOf(s[:2]))
	if !ok1 || !ok2 {
		t.Fatal("non-empty slices should have an identity")
	}
	if id1 == id2 {
		t.Error("a shorter view of the same array is a different value")
	}

	if _, ok := identityOf(reflect.ValueOf([]int{})); ok {
		t.Error("empty slices have no identity")
	}
	if _, ok := identityOf(reflect.ValueOf(struct{ A int }{})); ok {
		t.Error("unaddressable structs have no identity")
	}
	a, _ := identityOf(reflect.ValueOf(m))
	b, _ := identityOf(reflect.ValueOf(m))
	if a != b {
		t.Error("the same map should have the same identity")
	}
}

func TestMapKeysAreSorted(t *testing.T) {
	m := map[int]string{10: "ten", 2: "two", 1: "one"}
	if got := mustStringify(t, m, 1); got != `{"1":"one","10":"ten","2":"two"}` {
		t.Errorf("got %s", got)
	}
}
