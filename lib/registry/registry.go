package registry

import (
	"strings"
	"sync"

	"github.com/VictoriaMetrics/metrics"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

// Registry is the process-wide database-name -> Handle map. The zero value
// is not usable; construct with New.
type Registry struct {
	factory engine.HandleFactory

	mu  sync.Mutex
	dbs map[string]engine.Handle

	liveGauge *metrics.Gauge
}

// New constructs an empty registry that lazily creates Handles via factory.
// name namespaces the exported "<name>_live_databases" gauge so multiple
// registries in one process (e.g. in tests) don't collide in the default
// metrics set.
func New(name string, factory engine.HandleFactory) *Registry {
	r := &Registry{
		factory: factory,
		dbs:     make(map[string]engine.Handle),
	}
	// Metric names only allow [a-zA-Z0-9_:.]; any other character in name
	// (e.g. '-') is replaced with '_'.
	metricName := strings.Map(func(c rune) rune {
		if c == '_' || c == ':' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return c
		}
		return '_'
	}, name)
	r.liveGauge = metrics.GetOrCreateGauge(metricName+`_live_databases`, func() float64 {
		r.mu.Lock()
		defer r.mu.Unlock()
		return float64(len(r.dbs))
	})
	return r
}

// ListDatabases returns the names of every database whose Handle currently
// reports at least one live collection. A registry entry for an otherwise-
// empty database may exist (e.g. transiently, mid-bootstrap) and must never
// appear here.
func (r *Registry) ListDatabases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.dbs))
	for name, h := range r.dbs {
		if !h.IsEmpty() {
			out = append(out, name)
		}
	}
	return out
}

// GetOrCreate returns the Handle for name, creating and inserting one via
// the injected factory if absent. Creation is not staged as a rollback
// change: database existence, once observed, is treated as irreversible at
// this layer.
func (r *Registry) GetOrCreate(name string) engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.dbs[name]; ok {
		return h
	}
	h := r.factory(name)
	r.dbs[name] = h
	return h
}

// Get returns the Handle for name without creating one.
func (r *Registry) Get(name string) (engine.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.dbs[name]
	return h, ok
}

// RemoveHandle stages the removal of name's registry entry against ru: the
// entry is erased from the live map immediately (so it stops appearing in
// ListDatabases/GetOrCreate right away), but the removal is only permanent
// once the enclosing unit of work commits. On rollback, the exact same
// Handle object identity is reinstalled under name.
//
// RemoveHandle is meant to be called only by the drop-database path, and
// only for a name known to exist; calling it for an absent name is a no-op.
func (r *Registry) RemoveHandle(ru engine.RecoveryUnit, name string) {
	r.mu.Lock()
	h, ok := r.dbs[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.dbs, name)
	r.mu.Unlock()

	ru.RegisterChange(
		func() {
			// commit: the handle is already gone from the map, nothing left
			// to do besides letting it be garbage collected.
		},
		func() {
			r.mu.Lock()
			r.dbs[name] = h
			r.mu.Unlock()
		},
	)
}
