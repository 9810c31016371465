package memstore

import (
	"strings"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// normalize returns a deep copy of v in which every map with string keys and
// every struct is a map[string]any and every slice or array is a []any, so
// that stored values never alias caller memory and the matcher sees a single
// representation.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		res := make(map[string]any, len(t))
		for k, val := range t {
			res[k] = normalize(val)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, val := range t {
			res[n] = normalize(val)
		}
		return res
	case []byte:
		return append([]byte(nil), t...)
	case string, bool, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t
	}

	rv := reflect.ValueNoEscapeOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		res := make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			if k.Kind() != reflect.String {
				return v
			}
			res[k.String()] = normalize(rv.MapIndex(k).Interface())
		}
		return res
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		res := make([]any, rv.Len())
		for n := range rv.Len() {
			res[n] = normalize(rv.Index(n).Interface())
		}
		return res
	case reflect.Struct:
		return normalizeStruct(rv)
	default:
		return v
	}
}

// normalizeStruct turns the exported fields of a struct into a document,
// named as the default decoder names them.
func normalizeStruct(rv reflect.Value) map[string]any {
	res := make(map[string]any, rv.NumField())
	for name, value := range decoder.Fields(rv, decoder.TagName) {
		res[name] = normalize(value.Interface())
	}
	return res
}

// isZeroID reports whether id should be replaced by a generated one: nil or
// the zero value of its type, such as an empty string.
func isZeroID(id any) bool {
	if id == nil {
		return true
	}
	return reflect.ValueNoEscapeOf(id).IsZero()
}

// cloneRow deep copies a stored document.
func cloneRow(row domain.Row) domain.Row {
	if row == nil {
		return nil
	}
	return normalize(row).(map[string]any)
}

// normalizeFilter gives filter values the representation stored documents
// have, so a []string or a pointer matches what was inserted from them.
func normalizeFilter(filter domain.Filter) domain.Filter {
	if filter == nil {
		return nil
	}
	return normalize(filter).(map[string]any)
}

// checkFields rejects field names the store reserves. Nested documents are
// checked as well.
func checkFields(v any) error {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if strings.HasPrefix(k, "$") {
				return domain.ErrFieldName{Field: k, Reason: "cannot begin with the $ character"}
			}
			if strings.Contains(k, ".") {
				return domain.ErrFieldName{Field: k, Reason: "cannot contain a ."}
			}
			if err := checkFields(val); err != nil {
				return err
			}
		}
	case []any:
		for _, val := range t {
			if err := checkFields(val); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkPath validates every segment of a dot-separated update key.
func checkPath(path string) error {
	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return domain.ErrFieldName{Field: path, Reason: "cannot have empty segments"}
		}
		if strings.HasPrefix(part, "$") {
			return domain.ErrFieldName{Field: path, Reason: "cannot begin with the $ character"}
		}
	}
	return nil
}

// getField resolves a dot-separated path. A missing path resolves to nil.
func getField(row domain.Row, path string) any {
	var cur any = row
	for part := range strings.SplitSeq(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}
	return cur
}

// setField assigns value at a dot-separated path, creating intermediate
// documents and replacing non-document values found on the way.
func setField(row domain.Row, path string, value any) {
	parts := strings.Split(path, ".")
	cur := row
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
