package decoder

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

var timeType = reflect.TypeOf(time.Time{})

// Fields iterates over the exported fields of the struct v, naming each one
// after its tagName tag, or its Go name when untagged. A "-" tag skips the
// field and "omitempty" skips nil pointers, maps, slices and interfaces.
func Fields(v reflect.Value, tagName string) iter.Seq2[string, reflect.Value] {
	return func(yield func(string, reflect.Value) bool) {
		typ := v.Type()
		for n := range typ.NumField() {
			field := typ.Field(n)
			if field.PkgPath != "" {
				continue
			}
			name := field.Name
			var flags []string
			if tag, ok := field.Tag.Lookup(tagName); ok {
				if tag == "-" {
					continue
				}
				flags = strings.Split(tag, ",")
				if flags[0] != "" {
					name = flags[0]
				}
				flags = flags[1:]
			}
			value := v.Field(n)
			if slices.Contains(flags, "omitempty") && isNilable(value.Kind()) && value.IsNil() {
				continue
			}
			if !yield(name, value) {
				return
			}
		}
	}
}

// IsTime reports whether v holds a [time.Time], which is stored as a value and
// never walked as a struct.
func IsTime(v reflect.Value) bool {
	return v.Kind() == reflect.Struct && v.Type() == timeType
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// structToRow turns a struct into a row. Nested structs, directly or behind
// a pointer, become rows as well; other values are kept as they are.
func (d *Decoder) structToRow(v reflect.Value) domain.Row {
	row := make(domain.Row, v.NumField())
	for name, value := range Fields(v, d.tagName) {
		row[name] = d.fieldValue(value)
	}
	return row
}

func (d *Decoder) fieldValue(v reflect.Value) any {
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct && !IsTime(v.Elem()) {
		return d.structToRow(v.Elem())
	}
	if v.Kind() == reflect.Struct && !IsTime(v) {
		return d.structToRow(v)
	}
	return v.Interface()
}
