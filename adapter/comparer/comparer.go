// Package comparer contains the default [domain.Comparer] implementation.
//
// Values of different kinds are ordered by kind first: nil, numbers, strings,
// booleans, times, arrays and finally objects. Values of the same kind are
// compared naturally; numbers of any Go numeric type are compared by value.
package comparer

import (
	"cmp"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

type kind int

const (
	kindNil kind = iota
	kindNumber
	kindString
	kindBool
	kindTime
	kindArray
	kindObject
	kindUnknown
)

// Comparer implements [domain.Comparer].
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a any, b any) (int, error) {
	ka, kb := c.kindOf(a), c.kindOf(b)
	if ka == kindUnknown || kb == kindUnknown {
		return 0, domain.ErrCannotCompare{A: a, B: b}
	}
	if ka != kb {
		return cmp.Compare(ka, kb), nil
	}

	switch ka {
	case kindNil:
		return 0, nil
	case kindNumber:
		x, _ := c.asNumber(a)
		y, _ := c.asNumber(b)
		return x.Cmp(y), nil
	case kindString:
		return cmp.Compare(a.(string), b.(string)), nil
	case kindBool:
		return c.compareBool(a.(bool), b.(bool)), nil
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time)), nil
	case kindArray:
		return c.compareArray(a.([]any), b.([]any))
	default:
		return c.compareObject(a.(map[string]any), b.(map[string]any))
	}
}

// Comparable implements [domain.Comparer]. Only numbers, strings and times can
// be ordered by range operators.
func (c *Comparer) Comparable(a any, b any) bool {
	ka := c.kindOf(a)
	if ka != c.kindOf(b) {
		return false
	}
	return ka == kindNumber || ka == kindString || ka == kindTime
}

func (c *Comparer) kindOf(v any) kind {
	if v == nil {
		return kindNil
	}
	if _, ok := c.asNumber(v); ok {
		return kindNumber
	}
	switch v.(type) {
	case string:
		return kindString
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	case []any:
		return kindArray
	case map[string]any:
		return kindObject
	default:
		return kindUnknown
	}
}

func (c *Comparer) compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil || comp != 0 {
			return comp, err
		}
	}
	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

// compareObject walks both objects in key order, comparing values of the
// shared positions first and falling back to the key names themselves.
func (c *Comparer) compareObject(a, b map[string]any) (int, error) {
	aKeys := c.sortedKeys(a)
	bKeys := c.sortedKeys(b)

	for i := range min(len(aKeys), len(bKeys)) {
		comp, err := c.Compare(a[aKeys[i]], b[bKeys[i]])
		if err != nil || comp != 0 {
			return comp, err
		}
	}

	if comp := cmp.Compare(len(aKeys), len(bKeys)); comp != 0 {
		return comp, nil
	}

	return slices.Compare(aKeys, bKeys), nil
}

func (c *Comparer) sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// asNumber uses big.Float to safely compare float64 and int64 without
// precision loss.
func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		if math.IsNaN(float64(n)) {
			return nil, false
		}
		r.SetFloat64(float64(n))
	case float64:
		if math.IsNaN(n) {
			return nil, false
		}
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}
