package safetree

import (
	"encoding/json"
	"reflect"
)

// class is the closed set of value classifications. The builder evaluates
// them in the order declared here.
type class int

const (
	classScalar class = iota
	classCallable
	classNull
	classError
	classArray
	classObject
	classUnclassified
)

func (c class) String() string {
	switch c {
	case classScalar:
		return "scalar"
	case classCallable:
		return "callable"
	case classNull:
		return "null"
	case classError:
		return "error"
	case classArray:
		return "array"
	case classObject:
		return "object"
	default:
		return "unclassified"
	}
}

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	rawJSONType = reflect.TypeOf(json.RawMessage(nil))
)

// classify strips interfaces and pointers from v and reports what the
// remaining value is. The returned value is the one to render.
func classify(v reflect.Value) (class, reflect.Value) {
	for {
		if !v.IsValid() {
			return classNull, v
		}
		if isNilable(v.Kind()) && v.IsNil() {
			return classNull, v
		}
		if v.CanInterface() && v.Type().Implements(errorType) {
			return classError, v
		}

		switch v.Kind() {
		case reflect.Interface, reflect.Pointer:
			v = v.Elem()
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
			reflect.String:
			return classScalar, v
		case reflect.Func:
			return classCallable, v
		case reflect.Slice:
			if isBytes(v.Type()) {
				return classScalar, v
			}
			return classArray, v
		case reflect.Array:
			return classArray, v
		case reflect.Map, reflect.Struct:
			return classObject, v
		default:
			return classUnclassified, v
		}
	}
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func isBytes(t reflect.Type) bool {
	return t == rawJSONType || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8)
}

// identity is the run-scoped key of a referenceable value. Values reached
// by copy have no identity and are never deduplicated.
type identity struct {
	ptr uintptr
	len int
	typ reflect.Type
}

// identityOf reports the identity of a composite or error value.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Map:
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		// every empty slice may share the runtime's zero-size base address
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), len: v.Len(), typ: v.Type()}, true
	case reflect.Pointer:
		// pointer-typed errors: key on the pointee so *T and the T it
		// addresses collapse to one identity
		return identity{ptr: v.Pointer(), typ: v.Type().Elem()}, true
	case reflect.Struct, reflect.Array:
		if v.CanAddr() {
			return identity{ptr: v.UnsafeAddr(), typ: v.Type()}, true
		}
	}
	return identity{}, false
}
