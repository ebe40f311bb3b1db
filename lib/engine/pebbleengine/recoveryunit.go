package pebbleengine

import (
	"sync"

	"github.com/ValentinKolb/catalogkv/lib/engine"
)

type changeCallback struct {
	commit   func()
	rollback func()
}

// recoveryUnitImpl mirrors memengine's nested-write-unit-of-work model: see
// memengine's recoveryUnitImpl for the rationale. Record writes here go
// straight to pebble (pebble.Sync per call), so what this type actually
// coordinates is RegisterChange bookkeeping, not the records themselves.
type recoveryUnitImpl struct {
	mu       sync.Mutex
	commitTS engine.Timestamp
	changes  []changeCallback
	depth    int
	aborted  bool
}

func (r *recoveryUnitImpl) GetCommitTimestamp() engine.Timestamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitTS
}

func (r *recoveryUnitImpl) SetCommitTimestamp(ts engine.Timestamp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitTS = ts
}

func (r *recoveryUnitImpl) ClearCommitTimestamp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitTS = engine.NullTimestamp
}

func (r *recoveryUnitImpl) RegisterChange(commit, rollback func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changeCallback{commit: commit, rollback: rollback})
}

func (r *recoveryUnitImpl) AbandonSnapshot() {}

func (r *recoveryUnitImpl) BeginUnitOfWork() engine.WriteUnitOfWork {
	r.mu.Lock()
	r.depth++
	r.mu.Unlock()
	return &wuowImpl{ru: r}
}

type wuowImpl struct {
	ru   *recoveryUnitImpl
	done bool
}

func (w *wuowImpl) Commit() error {
	w.finalize(false)
	return nil
}

func (w *wuowImpl) Abort() {
	w.finalize(true)
}

func (w *wuowImpl) finalize(abort bool) {
	if w.done {
		return
	}
	w.done = true

	w.ru.mu.Lock()
	if abort {
		w.ru.aborted = true
	}
	w.ru.depth--
	var toRun []changeCallback
	aborted := w.ru.aborted
	if w.ru.depth == 0 {
		toRun = w.ru.changes
		w.ru.changes = nil
		w.ru.aborted = false
	}
	w.ru.mu.Unlock()

	for _, c := range toRun {
		if aborted {
			if c.rollback != nil {
				c.rollback()
			}
		} else if c.commit != nil {
			c.commit()
		}
	}
}
