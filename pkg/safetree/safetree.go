package safetree

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/observability"
)

// Sentinel strings that may appear in a safe tree.
const (
	// MarkerRefPrefix prefixes the first path of an already rendered value.
	MarkerRefPrefix = "refTo^"

	// MarkerMaxDepth replaces a composite that would exceed the depth bound.
	MarkerMaxDepth = "maxdepth"

	// MarkerInaccessible replaces a property whose read failed.
	MarkerInaccessible = "[field-not-accessible]"

	stackPruned = "pruned"
)

const (
	// DefaultMaxDepth is the depth used by Stringify callers that have no
	// better bound, and by String and Value.
	DefaultMaxDepth = 3

	// LocateMaxDepth is the depth Locate searches to.
	LocateMaxDepth = 8

	// DefaultStackLimit is how many characters of stack text an error keeps.
	DefaultStackLimit = 250
)

// Stats summarizes one conversion.
type Stats = observability.ConvertStats

// Result is the outcome of Build.
type Result struct {
	// Tree is the root of the safe tree. It is nil, a scalar, a sentinel
	// string, an *ErrorNode, a []any or an *Object.
	Tree any

	// Matches lists, in discovery order, the paths of scalars containing
	// the needle. It is nil unless WithNeedle was given a non-empty needle.
	Matches []string

	Stats Stats
}

// task is one pending assignment: render src and store it under key in
// the destination container.
type task struct {
	path  string
	obj   *Object
	arr   []any
	key   string
	index int
	src   reflect.Value
	depth int
}

// walker holds the mutable state of one Build call.
type walker struct {
	maxDepth int
	opts     options
	queue    []task
	nodes    map[identity]any
	paths    map[identity]string
	matches  []string
	stats    Stats

	// placed is set once the current task's slot has been written.
	placed bool
}

// Build converts root into a safe tree: an acyclic, depth-bounded copy that
// encoding/json can always render.
//
// The traversal is breadth first, so the path recorded for a value seen
// more than once is a shortest one. Every later encounter of that value
// renders as MarkerRefPrefix followed by that path. Composites first reached
// at depth maxDepth render as MarkerMaxDepth. root is only read.
//
// Build returns an error only for an invalid maxDepth or option; anomalies
// met during the traversal degrade to sentinel values.
func Build(root any, maxDepth int, opts ...Option) (*Result, error) {
	if err := errors.ValidateMaxDepth(maxDepth); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	hooks := observability.Convert()
	hooks.OnConvertStart(maxDepth)
	start := time.Now()

	w := &walker{
		maxDepth: maxDepth,
		opts:     o,
		nodes:    make(map[identity]any),
		paths:    make(map[identity]string),
	}
	if o.needle != "" {
		w.matches = []string{}
	}

	holder := make([]any, 1)
	w.enqueue(task{arr: holder, src: reflect.ValueOf(root)})
	w.loop()

	w.stats.Matches = len(w.matches)
	res := &Result{Tree: holder[0], Matches: w.matches, Stats: w.stats}

	clear(w.nodes)
	clear(w.paths)

	elapsed := time.Since(start)
	hooks.OnConvertComplete(res.Stats, elapsed)
	o.logger.Debug("converted value graph",
		"nodes", res.Stats.Nodes, "refs", res.Stats.References,
		"truncated", res.Stats.Truncated, "elapsed", elapsed)
	return res, nil
}

func (w *walker) enqueue(t task) {
	w.queue = append(w.queue, t)
}

// loop drains the queue in FIFO order.
func (w *walker) loop() {
	for len(w.queue) > 0 {
		t := w.queue[0]
		w.queue[0] = task{}
		w.queue = w.queue[1:]
		w.visit(t)
	}
}

func (w *walker) put(t task, v any) {
	if t.obj != nil {
		t.obj.Set(t.key, v)
	} else {
		t.arr[t.index] = v
	}
	w.stats.Nodes++
	w.placed = true
}

// recoverVisit degrades a task whose rendering panicked. A slot that was
// already written keeps its node and is not counted again.
func (w *walker) recoverVisit(t task, cause any) {
	w.inaccessible(t.path, cause)
	if !w.placed {
		w.put(t, MarkerInaccessible)
	}
}

// visit renders one task according to its source value's classification.
func (w *walker) visit(t task) {
	w.placed = false
	defer func() {
		if r := recover(); r != nil {
			w.recoverVisit(t, r)
		}
	}()

	cls, v := classify(t.src)
	switch cls {
	case classScalar:
		w.visitScalar(t, v)
	case classCallable:
		s, degraded := renderFunc(v)
		if degraded {
			w.opts.logger.Warn("cannot list function properties", "path", t.path, "func", funcName(v))
		}
		w.put(t, s)
	case classNull:
		w.put(t, nil)
	case classError:
		w.visitError(t, v)
	case classArray, classObject:
		w.visitComposite(t, cls, v)
	default:
		w.stats.Unclassified++
		kind := v.Kind().String()
		w.opts.logger.Warn("skipping unclassifiable value", "path", t.path, "kind", kind)
		observability.Convert().OnUnclassified(t.path, kind)
	}
}

func (w *walker) visitScalar(t task, v reflect.Value) {
	val, text := scalarValue(v)
	w.put(t, val)
	if w.opts.needle != "" && strings.Contains(text, w.opts.needle) {
		w.matches = append(w.matches, t.path)
	}
}

func (w *walker) visitError(t task, v reflect.Value) {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	id, hasID := identityOf(v)
	if hasID && w.reference(t, id) {
		return
	}
	node := renderError(v.Interface().(error), w.opts.stackLimit)
	if hasID {
		w.register(id, node, t.path)
	}
	w.put(t, node)
}

func (w *walker) visitComposite(t task, cls class, v reflect.Value) {
	id, hasID := identityOf(v)
	if hasID && w.reference(t, id) {
		return
	}
	if t.depth >= w.maxDepth || w.budgetSpent() {
		w.stats.Truncated++
		w.put(t, MarkerMaxDepth)
		return
	}
	if cls == classArray {
		w.expandArray(t, v, id, hasID)
	} else {
		w.expandObject(t, v, id, hasID)
	}
}

// reference writes a reference marker when id was rendered before.
func (w *walker) reference(t task, id identity) bool {
	if _, seen := w.nodes[id]; !seen {
		return false
	}
	w.stats.References++
	w.put(t, MarkerRefPrefix+w.paths[id])
	return true
}

func (w *walker) register(id identity, node any, path string) {
	w.nodes[id] = node
	w.paths[id] = path
}

func (w *walker) budgetSpent() bool {
	return w.opts.maxNodes > 0 && w.stats.Nodes >= w.opts.maxNodes
}

func (w *walker) expandArray(t task, v reflect.Value, id identity, hasID bool) {
	n := v.Len()
	arr := make([]any, n)
	if hasID {
		w.register(id, arr, t.path)
	}
	w.put(t, arr)
	for i := 0; i < n; i++ {
		w.enqueue(task{
			path:  t.path + "[" + strconv.Itoa(i) + "]",
			arr:   arr,
			index: i,
			src:   v.Index(i),
			depth: t.depth + 1,
		})
	}
}

func (w *walker) expandObject(t task, v reflect.Value, id identity, hasID bool) {
	props := properties(v)
	if len(props) == 0 {
		if view, ok := bridge(v); ok {
			m, isObj := view.(map[string]any)
			if !isObj {
				w.visit(task{path: t.path, obj: t.obj, arr: t.arr, key: t.key, index: t.index,
					src: reflect.ValueOf(view), depth: t.depth})
				return
			}
			props = mapProperties(reflect.ValueOf(m))
		}
	}

	obj := NewObject()
	if hasID {
		w.register(id, obj, t.path)
	}
	w.put(t, obj)
	for _, p := range props {
		path := t.path + "." + p.name
		if p.failed {
			w.inaccessible(path, nil)
		}
		w.enqueue(task{
			path:  path,
			obj:   obj,
			key:   p.name,
			src:   p.value,
			depth: t.depth + 1,
		})
	}
}

func (w *walker) inaccessible(path string, cause any) {
	w.stats.Inaccessible++
	w.opts.logger.Warn("field not accessible", "path", path, "cause", cause)
	observability.Convert().OnFieldInaccessible(path)
}
