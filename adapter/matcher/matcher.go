// Package matcher contains the default [domain.Matcher] implementation.
//
// Filters follow the store-native shape produced by the query builders:
// {"field": value} for equality and {"field": {"$op": value}} for operators.
// Dotted field names address nested objects.
package matcher

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

type oper func(values []any, defined bool, arg any) (bool, error)

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer  domain.Comparer
	compFuncs map[string]oper
}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(m)
	}
	m.compFuncs = map[string]oper{
		"$gt":     m.rangeOp(func(c int) bool { return c > 0 }),
		"$gte":    m.rangeOp(func(c int) bool { return c >= 0 }),
		"$lt":     m.rangeOp(func(c int) bool { return c < 0 }),
		"$lte":    m.rangeOp(func(c int) bool { return c <= 0 }),
		"$ne":     m.ne,
		"$in":     m.in,
		"$nin":    m.nin,
		"$exists": m.exists,
	}
	return m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(row domain.Row, filter domain.Filter) (bool, error) {
	for field, cond := range filter {
		var matches bool
		var err error
		switch field {
		case "$and":
			matches, err = m.logical(row, cond, true)
		case "$or":
			matches, err = m.logical(row, cond, false)
		default:
			if strings.HasPrefix(field, "$") {
				return false, domain.ErrUnknownOperator{Operator: field}
			}
			matches, err = m.matchField(row, field, cond)
		}
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) logical(row domain.Row, cond any, all bool) (bool, error) {
	filters, err := m.asFilterList(cond)
	if err != nil {
		return false, err
	}
	for _, f := range filters {
		matches, err := m.Match(row, f)
		if err != nil {
			return false, err
		}
		if matches != all {
			return matches, nil
		}
	}
	return all, nil
}

func (m *Matcher) asFilterList(cond any) ([]domain.Filter, error) {
	switch t := cond.(type) {
	case []domain.Filter:
		return t, nil
	case []any:
		res := make([]domain.Filter, len(t))
		for n, v := range t {
			f, ok := v.(domain.Filter)
			if !ok {
				return nil, fmt.Errorf("logical operator expects filters, got %T", v)
			}
			res[n] = f
		}
		return res, nil
	default:
		return nil, fmt.Errorf("logical operator expects a list, got %T", cond)
	}
}

func (m *Matcher) matchField(row domain.Row, field string, cond any) (bool, error) {
	value, defined := m.getField(row, field)
	values := m.expand(value, defined)

	ops, isOps, err := m.operators(cond)
	if err != nil {
		return false, err
	}
	if !isOps {
		return m.in(values, defined, []any{cond})
	}

	for op, arg := range ops {
		matches, err := m.compFuncs[op](values, defined, arg)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

// operators reports whether cond is an operator document. Mixing operators
// and plain keys is rejected.
func (m *Matcher) operators(cond any) (map[string]any, bool, error) {
	doc, ok := cond.(map[string]any)
	if !ok || len(doc) == 0 {
		return nil, false, nil
	}
	dollar := 0
	for k := range doc {
		if strings.HasPrefix(k, "$") {
			if _, known := m.compFuncs[k]; !known {
				return nil, false, domain.ErrUnknownOperator{Operator: k}
			}
			dollar++
		}
	}
	switch dollar {
	case 0:
		return nil, false, nil
	case len(doc):
		return doc, true, nil
	default:
		return nil, false, fmt.Errorf("cannot mix operators and fields in %v", doc)
	}
}

func (m *Matcher) getField(row domain.Row, field string) (any, bool) {
	var cur any = map[string]any(row)
	for part := range strings.SplitSeq(field, ".") {
		doc, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = doc[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// expand returns the candidate values of a field: the value itself and, for
// arrays, each of its elements.
func (m *Matcher) expand(value any, defined bool) []any {
	if !defined {
		return []any{nil}
	}
	arr, ok := value.([]any)
	if !ok {
		return []any{value}
	}
	res := make([]any, 0, len(arr)+1)
	res = append(res, value)
	return append(res, arr...)
}

func (m *Matcher) equal(a, b any) bool {
	comp, err := m.comparer.Compare(a, b)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return comp == 0
}

func (m *Matcher) rangeOp(accept func(int) bool) oper {
	return func(values []any, defined bool, arg any) (bool, error) {
		if !defined {
			return false, nil
		}
		for _, v := range values {
			if !m.comparer.Comparable(v, arg) {
				continue
			}
			comp, err := m.comparer.Compare(v, arg)
			if err != nil {
				return false, err
			}
			if accept(comp) {
				return true, nil
			}
		}
		return false, nil
	}
}

func (m *Matcher) in(values []any, _ bool, arg any) (bool, error) {
	list, ok := arg.([]any)
	if !ok {
		return false, fmt.Errorf("$in operator called with a non-array %T", arg)
	}
	for _, v := range values {
		for _, candidate := range list {
			if m.equal(v, candidate) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Matcher) nin(values []any, defined bool, arg any) (bool, error) {
	if _, ok := arg.([]any); !ok {
		return false, fmt.Errorf("$nin operator called with a non-array %T", arg)
	}
	matches, err := m.in(values, defined, arg)
	return !matches, err
}

func (m *Matcher) ne(values []any, defined bool, arg any) (bool, error) {
	matches, err := m.in(values, defined, []any{arg})
	return !matches, err
}

func (m *Matcher) exists(_ []any, defined bool, arg any) (bool, error) {
	want, ok := arg.(bool)
	if !ok {
		return false, fmt.Errorf("$exists operator called with a non-boolean %T", arg)
	}
	return defined == want, nil
}
