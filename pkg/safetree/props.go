package safetree

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// prop is one named property of a generic object. failed marks a property
// whose read panicked; its value is then the field-not-accessible sentinel.
type prop struct {
	name   string
	value  reflect.Value
	failed bool
}

// properties enumerates the own properties of a map or struct.
func properties(v reflect.Value) []prop {
	switch v.Kind() {
	case reflect.Map:
		return mapProperties(v)
	case reflect.Struct:
		return structProperties(v)
	}
	return nil
}

// mapProperties returns the entries of a map sorted by their key's string
// form, since Go maps have no enumeration order of their own.
func mapProperties(v reflect.Value) []prop {
	keys := v.MapKeys()
	props := make([]prop, 0, len(keys))
	for _, k := range keys {
		val, failed := readProp(func() reflect.Value { return v.MapIndex(k) })
		props = append(props, prop{name: keyString(k), value: val, failed: failed})
	}
	slices.SortStableFunc(props, func(a, b prop) int {
		return strings.Compare(a.name, b.name)
	})
	return props
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return fmt.Sprint(k)
}

// structProperties returns the fields encoding/json would write, in its
// order and under its names. Untagged embedded structs have their exported
// fields promoted, even when the embedded type itself is unexported. A nil
// embedded pointer contributes nothing.
func structProperties(v reflect.Value) []prop {
	var fields []structField
	collectFields(v.Type(), nil, map[reflect.Type]bool{}, &fields)

	var props []prop
	for _, f := range dominantFields(fields) {
		val, failed := readProp(func() reflect.Value { return fieldByIndex(v, f.index) })
		if !val.IsValid() {
			continue
		}
		props = append(props, prop{name: f.name, value: val, failed: failed})
	}
	return props
}

type structField struct {
	name   string
	index  []int
	tagged bool
}

func collectFields(t reflect.Type, index []int, visiting map[reflect.Type]bool, out *[]structField) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if sf.Anonymous {
			if !sf.IsExported() && ft.Kind() != reflect.Struct {
				continue
			}
		} else if !sf.IsExported() {
			continue
		}
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		idx := append(slices.Clip(index), i)
		tagged := hasTagName(sf)

		if sf.Anonymous && !tagged && ft.Kind() == reflect.Struct {
			if !visiting[ft] {
				visiting[ft] = true
				collectFields(ft, idx, visiting, out)
				delete(visiting, ft)
			}
			continue
		}
		*out = append(*out, structField{name: name, index: idx, tagged: tagged})
	}
}

func hasTagName(sf reflect.StructField) bool {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return name != ""
}

// dominantFields applies encoding/json's rule for repeated names: the
// shallowest field wins, a tagged one breaks a tie at that depth, and an
// unbroken tie hides the name entirely.
func dominantFields(fields []structField) []structField {
	byName := make(map[string][]structField)
	for _, f := range fields {
		byName[f.name] = append(byName[f.name], f)
	}
	var out []structField
	for _, f := range fields {
		if winner, ok := dominant(byName[f.name]); ok && slices.Equal(winner.index, f.index) {
			out = append(out, f)
		}
	}
	return out
}

func dominant(fields []structField) (structField, bool) {
	if len(fields) == 1 {
		return fields[0], true
	}
	depth := len(fields[0].index)
	for _, f := range fields[1:] {
		depth = min(depth, len(f.index))
	}
	var shallow []structField
	for _, f := range fields {
		if len(f.index) == depth {
			shallow = append(shallow, f)
		}
	}
	if len(shallow) == 1 {
		return shallow[0], true
	}
	var tagged []structField
	for _, f := range shallow {
		if f.tagged {
			tagged = append(tagged, f)
		}
	}
	if len(tagged) == 1 {
		return tagged[0], true
	}
	return structField{}, false
}

// fieldByIndex is reflect.Value.FieldByIndex without the panic on a nil
// embedded pointer; such a field reads as the zero Value.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func fieldName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name, true
	}
	name, _, _ := strings.Cut(tag, ",")
	if tag == "-" {
		return "", false
	}
	if name == "" {
		return f.Name, true
	}
	return name, true
}

func readProp(read func() reflect.Value) (v reflect.Value, failed bool) {
	defer func() {
		if recover() != nil {
			v, failed = reflect.ValueOf(MarkerInaccessible), true
		}
	}()
	return read(), false
}

// bridge asks a value without enumerable properties for its serializable
// view. The hooks are tried in order: json.Marshaler, encoding.TextMarshaler,
// fmt.Stringer. A JSON view is decoded back into plain values.
func bridge(v reflect.Value) (view any, ok bool) {
	defer func() {
		if recover() != nil {
			view, ok = nil, false
		}
	}()

	iface, ok := hookTarget(v)
	if !ok {
		return nil, false
	}

	switch h := iface.(type) {
	case json.Marshaler:
		data, err := h.MarshalJSON()
		if err != nil {
			return nil, false
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	case encoding.TextMarshaler:
		text, err := h.MarshalText()
		if err != nil {
			return nil, false
		}
		return string(text), true
	case fmt.Stringer:
		return h.String(), true
	}
	return nil, false
}

// hookTarget returns v (or its address, for pointer-receiver methods) as an
// interface value when it implements one of the bridging hooks.
func hookTarget(v reflect.Value) (any, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	if implementsHook(v.Type()) {
		return v.Interface(), true
	}
	if v.CanAddr() && implementsHook(reflect.PointerTo(v.Type())) {
		return v.Addr().Interface(), true
	}
	return nil, false
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

func implementsHook(t reflect.Type) bool {
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) || t.Implements(stringerType)
}
