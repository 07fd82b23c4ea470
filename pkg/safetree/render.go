package safetree

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"
)

var jsonNumberType = reflect.TypeOf(json.Number(""))

// scalarValue converts a scalar to the value written into the tree and the
// string form the needle is matched against. Named types are reduced to
// their base kind so their marshalers never run on output.
func scalarValue(v reflect.Value) (any, string) {
	switch v.Kind() {
	case reflect.Bool:
		b := v.Bool()
		return b, strconv.FormatBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		return i, strconv.FormatInt(i, 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		return u, strconv.FormatUint(u, 10)
	case reflect.Float32, reflect.Float64:
		return floatValue(v.Float(), v.Type().Bits())
	case reflect.Complex64, reflect.Complex128:
		s := strconv.FormatComplex(v.Complex(), 'g', -1, v.Type().Bits())
		return s, s
	case reflect.String:
		s := v.String()
		if v.Type() == jsonNumberType && isJSONNumber(s) {
			return json.Number(s), s
		}
		return s, s
	case reflect.Slice:
		b := v.Bytes()
		if utf8.Valid(b) {
			return string(b), string(b)
		}
		s := base64.StdEncoding.EncodeToString(b)
		return s, s
	}
	return nil, ""
}

// floatValue keeps finite floats as numbers. encoding/json rejects NaN and
// the infinities, so those become strings.
func floatValue(f float64, bits int) (any, string) {
	switch {
	case math.IsNaN(f):
		return "NaN", "NaN"
	case math.IsInf(f, 1):
		return "+Inf", "+Inf"
	case math.IsInf(f, -1):
		return "-Inf", "-Inf"
	}
	if bits == 32 {
		return float32(f), strconv.FormatFloat(f, 'g', -1, 32)
	}
	return f, strconv.FormatFloat(f, 'g', -1, 64)
}

// isJSONNumber reports whether s is a number literal encoding/json will
// write verbatim. strconv accepts Inf, NaN and hex forms that it rejects.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && !isDigit(s[0])) || !isDigit(s[len(s)-1]) {
		return false
	}
	return json.Valid([]byte(s))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// funcName returns the runtime name of a function value, or "" when the
// runtime cannot resolve it.
func funcName(v reflect.Value) string {
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}
	return ""
}

// renderFunc renders a function as "[Function: <name> propnames: <names>]".
// The property names of a Go function are the methods of its named type
// (http.HandlerFunc has ServeHTTP); plain funcs have none.
func renderFunc(v reflect.Value) (s string, degraded bool) {
	name := funcName(v)
	defer func() {
		if r := recover(); r != nil {
			s, degraded = "[Function: "+name+"]", true
		}
	}()

	var names strings.Builder
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		names.WriteByte(' ')
		names.WriteString(t.Method(i).Name)
	}
	return "[Function: " + name + " propnames:" + names.String() + "]", false
}

// renderError renders err as {message, stack}. The stack text is the
// error's "%+v" form with its first line (the message) removed.
func renderError(err error, limit int) *ErrorNode {
	return &ErrorNode{
		Message: err.Error(),
		Stack:   pruneStack(stackText(err), limit),
	}
}

func stackText(err error) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return fmt.Sprintf("%+v", err)
}

// pruneStack drops everything up to and including the first line break and
// keeps at most limit runes of the rest, marking truncation with "...".
func pruneStack(full string, limit int) string {
	idx := strings.IndexByte(full, '\n')
	if idx < 0 {
		return stackPruned
	}
	rest := []rune(full[idx+1:])
	if len(rest) > limit {
		return string(rest[:limit]) + "..."
	}
	return string(rest)
}
