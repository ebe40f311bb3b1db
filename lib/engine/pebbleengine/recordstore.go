package pebbleengine

import (
	"github.com/cockroachdb/pebble"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

type recordStoreImpl struct {
	db     *pebble.DB
	ident  engine.Ident
	prefix engine.Prefix
}

func (r *recordStoreImpl) Get(_ engine.OperationContext, id string) ([]byte, bool) {
	v, closer, err := r.db.Get(recordKey(r.ident, r.prefix, id))
	if err != nil {
		return nil, false
	}
	out := append([]byte(nil), v...)
	closer.Close()
	return out, true
}

func (r *recordStoreImpl) Put(_ engine.OperationContext, id string, value []byte) error {
	return r.db.Set(recordKey(r.ident, r.prefix, id), value, pebble.Sync)
}

func (r *recordStoreImpl) Delete(_ engine.OperationContext, id string) error {
	return r.db.Delete(recordKey(r.ident, r.prefix, id), pebble.Sync)
}

func (r *recordStoreImpl) All(_ engine.OperationContext) func(yield func(id string, value []byte) bool) {
	lower := dataPrefix(r.ident, r.prefix)
	upper := prefixUpperBound(lower)
	return func(yield func(id string, value []byte) bool) {
		iter := r.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
		defer iter.Close()
		for iter.First(); iter.Valid(); iter.Next() {
			recID := string(iter.Key()[len(lower):])
			val := append([]byte(nil), iter.Value()...)
			if !yield(recID, val) {
				return
			}
		}
	}
}
