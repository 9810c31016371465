// Package index contains the default [domain.Index] implementation: a unique
// index over the "_id" field kept in an AVL tree.
package index

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

// IDField is the field every stored document is keyed by.
const IDField = domain.IDField

// Index implements [domain.Index].
type Index struct {
	// Exported to allow testing. Should not be a problem because Index is
	// used as interface.
	Tree        bst.BST[any, domain.Row]
	comparer    domain.Comparer
	bstComparer bst.Comparer[any, domain.Row]
}

// NewIndex returns a new implementation of [domain.Index].
func NewIndex(options ...Option) domain.Index {
	i := Index{comparer: comparer.NewComparer()}
	for _, option := range options {
		option(&i)
	}
	i.bstComparer = &bstComparer{comparer: i.comparer}
	i.Tree = avl.NewBST(true, 8, i.bstComparer)
	return &i
}

// Insert implements [domain.Index].
func (i *Index) Insert(ctx context.Context, docs ...domain.Row) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var err error
	inserted := make([]domain.Row, 0, len(docs))
	for _, d := range docs {
		if err = i.Tree.Insert(d[IDField], d); err != nil {
			if e := new(bst.ErrUniqueViolated); errors.As(err, e) {
				err = fmt.Errorf("%w: %w", domain.ErrConstraintViolated, err)
			}
			break
		}
		inserted = append(inserted, d)
	}
	if err == nil {
		return nil
	}

	errs := []error{err}
	for _, d := range inserted {
		if delErr := i.Tree.Delete(d[IDField], &d); delErr != nil {
			errs = append(errs, delErr)
		}
	}
	return errors.Join(errs...)
}

// Remove implements [domain.Index].
func (i *Index) Remove(ctx context.Context, docs ...domain.Row) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var errs []error
	for _, d := range docs {
		if err := i.Tree.Delete(d[IDField], &d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get implements [domain.Index].
func (i *Index) Get(id any) (domain.Row, error) {
	found, err := i.Tree.Search(id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, nil
	}
	values := found.Values()
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetAll implements [domain.Index].
func (i *Index) GetAll() iter.Seq[domain.Row] {
	return i.Tree.GetAll()
}

// Len implements [domain.Index].
func (i *Index) Len() int {
	return i.Tree.GetNumberOfKeys()
}

// Reset implements [domain.Index].
func (i *Index) Reset(ctx context.Context, docs ...domain.Row) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	i.Tree = avl.NewBST(true, 8, i.bstComparer)
	return i.Insert(ctx, docs...)
}
