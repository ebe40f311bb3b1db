package refhandle

import (
	"sync"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

// IdentResolver looks up the backend ident that backs a namespace.
type IdentResolver func(ns engine.Namespace) (engine.Ident, bool)

type handleImpl struct {
	name    string
	eng     engine.Engine
	resolve IdentResolver

	mu   sync.Mutex
	live map[engine.Namespace]engine.Ident
}

// NewFactory returns a HandleFactory producing Handles backed by eng that
// resolve namespace->ident via resolve.
func NewFactory(eng engine.Engine, resolve IdentResolver) engine.HandleFactory {
	return func(dbName string) engine.Handle {
		return &handleImpl{
			name:    dbName,
			eng:     eng,
			resolve: resolve,
			live:    make(map[engine.Namespace]engine.Ident),
		}
	}
}

func (h *handleImpl) Name() string { return h.name }

func (h *handleImpl) InitCollection(ctx engine.OperationContext, ns engine.Namespace, forRepair bool) error {
	id, ok := h.resolve(ns)
	if !ok {
		return engine.ErrIdentNotFound
	}
	if _, err := h.eng.GetGroupedRecordStore(ctx, id, engine.CollectionOptions{}, engine.NotPrefixed); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[ns] = id
	return nil
}

func (h *handleImpl) DropCollection(ctx engine.OperationContext, ns engine.Namespace) error {
	h.mu.Lock()
	id, ok := h.live[ns]
	h.mu.Unlock()
	if !ok {
		return engine.ErrIdentNotFound
	}
	if err := h.eng.DropIdent(ctx, id); err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.live, ns)
	h.mu.Unlock()
	return nil
}

func (h *handleImpl) ReinitCollectionAfterRepair(ctx engine.OperationContext, ns engine.Namespace) error {
	return h.InitCollection(ctx, ns, true)
}

func (h *handleImpl) CollectionNamespaces() []engine.Namespace {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]engine.Namespace, 0, len(h.live))
	for ns := range h.live {
		out = append(out, ns)
	}
	return out
}

func (h *handleImpl) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live) == 0
}
