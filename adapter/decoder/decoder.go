// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// TagName is the struct tag read when decoding rows into structs and structs
// into rows.
const TagName = "doc"

// Decoder implements [domain.Decoder].
type Decoder struct {
	tagName string
}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder(options ...Option) domain.Decoder {
	d := Decoder{tagName: TagName}
	for _, option := range options {
		option(&d)
	}
	return &d
}

// Decode implements [domain.Decoder].
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}
	if value.IsNil() {
		return domain.ErrTargetNil
	}

	if d.isNil(source) {
		return nil
	}

	if row, ok := target.(*domain.Row); ok {
		src := reflect.ValueNoEscapeOf(source)
		for src.Kind() == reflect.Ptr {
			src = src.Elem()
		}
		if src.Kind() == reflect.Struct && !IsTime(src) {
			*row = d.structToRow(src)
			return nil
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: d.tagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

func (d *Decoder) isNil(source any) bool {
	if source == nil {
		return true
	}
	v := reflect.ValueNoEscapeOf(source)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
