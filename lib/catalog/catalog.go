package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

// Catalog is the in-memory index over the persisted catalog record store,
// keyed by namespace. All reads are served from this index; writes go
// through to the backing RecordStore first and only update the index once
// the write succeeds.
type Catalog struct {
	store engine.RecordStore

	// directoryForIndexes is bootstrap's directoryForIndexes option, carried
	// here (not interpreted further) for whatever creates new collections -
	// that path is outside this package's scope.
	directoryForIndexes bool

	mu      sync.RWMutex
	entries map[engine.Namespace]engine.CollectionMetadata
}

// New wraps store (expected to be the record store opened at
// engine.CatalogIdent) with an empty index. Call Init before any other
// method.
func New(store engine.RecordStore, directoryForIndexes bool) *Catalog {
	return &Catalog{
		store:               store,
		directoryForIndexes: directoryForIndexes,
		entries:             make(map[engine.Namespace]engine.CollectionMetadata),
	}
}

// DirectoryForIndexes reports the directoryForIndexes option the catalog
// was constructed with.
func (c *Catalog) DirectoryForIndexes() bool {
	return c.directoryForIndexes
}

// Init reads every record currently in the catalog's record store and
// populates the in-memory index. It is idempotent but not incremental:
// calling it again replaces the index wholesale.
func (c *Catalog) Init(ctx engine.OperationContext) error {
	entries := make(map[engine.Namespace]engine.CollectionMetadata)

	var decodeErr error
	c.store.All(ctx)(func(id string, value []byte) bool {
		var md engine.CollectionMetadata
		if err := json.Unmarshal(value, &md); err != nil {
			decodeErr = fmt.Errorf("catalog: corrupt entry %q: %w", id, err)
			return false
		}
		entries[md.Namespace] = md
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Collections returns every namespace with a persisted entry, in
// unspecified order.
func (c *Catalog) Collections() []engine.Namespace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.Namespace, 0, len(c.entries))
	for ns := range c.entries {
		out = append(out, ns)
	}
	return out
}

// Idents returns every ident mentioned by any catalog entry: each
// collection ident plus every index ident on that collection. The catalog
// ident itself is never included.
func (c *Catalog) Idents() []engine.Ident {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.Ident, 0, len(c.entries))
	for _, md := range c.entries {
		out = append(out, md.Ident)
		for _, idx := range md.Indexes {
			out = append(out, idx.Ident)
		}
	}
	return out
}

// IsUserDataIdent reports whether id is anything other than the catalog's
// own ident. The catalog ident is the only non-user-data ident this module
// knows about; reconciliation uses this to tell apart orphaned user data,
// which is safe to drop, from the catalog's own bookkeeping ident, which is
// never touched.
func (c *Catalog) IsUserDataIdent(id engine.Ident) bool {
	return id != engine.CatalogIdent
}

// CollectionIdent returns the backend ident for ns, if a catalog entry
// exists for it.
func (c *Catalog) CollectionIdent(ns engine.Namespace) (engine.Ident, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[ns]
	if !ok {
		return "", false
	}
	return md.Ident, true
}

// IndexIdent returns the ident backing the named index on ns, if both the
// collection and the index exist in the catalog.
func (c *Catalog) IndexIdent(ns engine.Namespace, indexName string) (engine.Ident, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[ns]
	if !ok {
		return "", false
	}
	for _, idx := range md.Indexes {
		if idx.Name == indexName {
			return idx.Ident, true
		}
	}
	return "", false
}

// Metadata returns a value copy of ns's full catalog entry. Mutating the
// returned value never affects the catalog.
func (c *Catalog) Metadata(ns engine.Namespace) (engine.CollectionMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[ns]
	if !ok {
		return engine.CollectionMetadata{}, false
	}
	return md.Clone(), true
}

// MaxPrefix returns the largest CollectionMetadata.MaxPrefix across every
// entry, or engine.NotPrefixed if the catalog is empty.
func (c *Catalog) MaxPrefix() engine.Prefix {
	c.mu.RLock()
	defer c.mu.RUnlock()
	max := engine.NotPrefixed
	for _, md := range c.entries {
		if md.MaxPrefix > max {
			max = md.MaxPrefix
		}
	}
	return max
}

// Put writes md to the backing record store and, only on success, updates
// the in-memory index.
func (c *Catalog) Put(ctx engine.OperationContext, md engine.CollectionMetadata) error {
	buf, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("catalog: encode %q: %w", md.Namespace, err)
	}
	if err := c.store.Put(ctx, string(md.Namespace), buf); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[md.Namespace] = md
	c.mu.Unlock()
	return nil
}

// Remove deletes ns's entry from the backing record store and the index.
// Removing an absent namespace is not an error.
func (c *Catalog) Remove(ctx engine.OperationContext, ns engine.Namespace) error {
	if err := c.store.Delete(ctx, string(ns)); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.entries, ns)
	c.mu.Unlock()
	return nil
}
