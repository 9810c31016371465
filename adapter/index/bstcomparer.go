package index

import "github.com/vinicius-lino-figueiredo/doctable/domain"

// bstComparer orders tree keys with a [domain.Comparer]. Since the index is
// unique, two values stored under the same key are the same document when
// their ids match.
type bstComparer struct {
	comparer domain.Comparer
}

// CompareKeys implements bst.Comparer.
func (bc *bstComparer) CompareKeys(a any, b any) (int, error) {
	return bc.comparer.Compare(a, b)
}

// CompareValues implements bst.Comparer.
func (bc *bstComparer) CompareValues(a domain.Row, b domain.Row) (bool, error) {
	c, err := bc.comparer.Compare(a[IDField], b[IDField])
	if err != nil {
		return false, err
	}
	return c == 0, nil
}
