// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Diagnostic value formatting.
//
// Renders an effect as name(payload1, payload2, ...) for the taxonomy
// messages. The walk is cycle-safe, bounds its depth, and orders map keys
// deterministically so a given value always renders the same way.

const inspectMaxDepth = 5

// formatEffect renders an effect as label(payloads...).
func formatEffect(e *Effect) string {
	return e.name.Label() + "(" + formatPayloads(e.payloads) + ")"
}

// formatPayloads renders an argument list, comma separated.
func formatPayloads(payloads []any) string {
	var b strings.Builder
	for i, p := range payloads {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(&b, reflect.ValueOf(p), nil, 0)
	}
	return b.String()
}

// formatValue renders an arbitrary value for diagnostics.
func formatValue(v any) string {
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(v), nil, 0)
	return b.String()
}

func writeValue(b *strings.Builder, v reflect.Value, seen map[uintptr]bool, depth int) {
	if !v.IsValid() {
		b.WriteString("nil")
		return
	}
	if depth > inspectMaxDepth {
		b.WriteString("...")
		return
	}
	if v.Kind() != reflect.String && v.CanInterface() {
		switch iv := v.Interface().(type) {
		case error:
			b.WriteString(iv.Error())
			return
		case fmt.Stringer:
			b.WriteString(iv.String())
			return
		}
	}
	switch v.Kind() {
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		fmt.Fprintf(b, "%v", v.Interface())
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		writeValue(b, v.Elem(), seen, depth)
	case reflect.Pointer:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		if seen == nil {
			seen = make(map[uintptr]bool)
		}
		if seen[v.Pointer()] {
			b.WriteString("<cycle>")
			return
		}
		seen[v.Pointer()] = true
		b.WriteString("&")
		writeValue(b, v.Elem(), seen, depth)
		delete(seen, v.Pointer())
	case reflect.Slice:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		if seen == nil {
			seen = make(map[uintptr]bool)
		}
		if seen[v.Pointer()] {
			b.WriteString("<cycle>")
			return
		}
		seen[v.Pointer()] = true
		writeSeq(b, v, seen, depth)
		delete(seen, v.Pointer())
	case reflect.Array:
		writeSeq(b, v, seen, depth)
	case reflect.Map:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		if seen == nil {
			seen = make(map[uintptr]bool)
		}
		if seen[v.Pointer()] {
			b.WriteString("<cycle>")
			return
		}
		seen[v.Pointer()] = true
		writeMap(b, v, seen, depth)
		delete(seen, v.Pointer())
	case reflect.Struct:
		writeStruct(b, v, seen, depth)
	case reflect.Func:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		b.WriteString("func")
	case reflect.Chan:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		b.WriteString("chan")
	default:
		fmt.Fprintf(b, "%v", v)
	}
}

func writeSeq(b *strings.Builder, v reflect.Value, seen map[uintptr]bool, depth int) {
	b.WriteString("[")
	for i := range v.Len() {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, v.Index(i), seen, depth+1)
	}
	b.WriteString("]")
}

func writeMap(b *strings.Builder, v reflect.Value, seen map[uintptr]bool, depth int) {
	type entry struct{ key, value string }
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb, vb strings.Builder
		if k := iter.Key(); k.Kind() == reflect.String {
			kb.WriteString(k.String())
		} else {
			writeValue(&kb, k, seen, depth+1)
		}
		writeValue(&vb, iter.Value(), seen, depth+1)
		entries = append(entries, entry{key: kb.String(), value: vb.String()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	b.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.key)
		b.WriteString(": ")
		b.WriteString(e.value)
	}
	b.WriteString("}")
}

func writeStruct(b *strings.Builder, v reflect.Value, seen map[uintptr]bool, depth int) {
	t := v.Type()
	b.WriteString(t.Name())
	b.WriteString("{")
	first := true
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(f.Name)
		b.WriteString(": ")
		writeValue(b, v.Field(i), seen, depth+1)
	}
	b.WriteString("}")
}
