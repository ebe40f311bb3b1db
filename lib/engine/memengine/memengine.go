package memengine

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/catalogkv/lib/engine"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

type identState struct {
	opts    engine.CollectionOptions
	records *xsync.MapOf[string, []byte]
}

type engineImpl struct {
	mu     sync.Mutex
	idents map[engine.Ident]*identState

	inBackup bool

	stableTS      engine.Timestamp
	initialDataTS engine.Timestamp
	oldestTS      engine.Timestamp

	journalListener engine.JournalListener
}

// New creates a fresh, empty in-memory engine.
func New() engine.Engine {
	return &engineImpl{
		idents: make(map[engine.Ident]*identState),
	}
}

func recordKey(prefix engine.Prefix, id string) string {
	if prefix == engine.NotPrefixed {
		return id
	}
	var buf [24]byte
	n := len(buf)
	p := uint64(prefix)
	n--
	buf[n] = '/'
	if p == 0 {
		n--
		buf[n] = '0'
	} else {
		for p > 0 {
			n--
			buf[n] = byte('0' + p%10)
			p /= 10
		}
	}
	return string(buf[n:]) + id
}

func (e *engineImpl) HasIdent(_ engine.OperationContext, id engine.Ident) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.idents[id]
	return ok
}

func (e *engineImpl) RepairIdent(_ engine.OperationContext, id engine.Ident) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.idents[id]; !ok {
		return engine.ErrIdentNotFound
	}
	return nil
}

func (e *engineImpl) CreateGroupedRecordStore(_ engine.OperationContext, id engine.Ident, opts engine.CollectionOptions, _ engine.Prefix) error {
	if opts.Capped && opts.CappedSize <= 0 && opts.CappedDocs <= 0 {
		return fmt.Errorf("%w: capped collection requires a positive size or document limit", engine.ErrBadValue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.idents[id]; ok {
		return engine.ErrIdentExists
	}
	e.idents[id] = &identState{
		opts:    opts,
		records: xsync.NewMapOf[string, []byte](),
	}
	return nil
}

func (e *engineImpl) GetGroupedRecordStore(_ engine.OperationContext, id engine.Ident, _ engine.CollectionOptions, prefix engine.Prefix) (engine.RecordStore, error) {
	e.mu.Lock()
	st, ok := e.idents[id]
	e.mu.Unlock()
	if !ok {
		return nil, engine.ErrIdentNotFound
	}
	return &recordStoreImpl{ident: id, prefix: prefix, st: st}, nil
}

func (e *engineImpl) GetAllIdents(_ engine.OperationContext) []engine.Ident {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]engine.Ident, 0, len(e.idents))
	for id := range e.idents {
		out = append(out, id)
	}
	return out
}

func (e *engineImpl) DropIdent(_ engine.OperationContext, id engine.Ident) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.idents[id]; !ok {
		return engine.ErrIdentNotFound
	}
	delete(e.idents, id)
	return nil
}

func (e *engineImpl) NewRecoveryUnit() engine.RecoveryUnit {
	return &recoveryUnitImpl{}
}

func (e *engineImpl) FlushAllFiles(_ engine.OperationContext, _ bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.idents), nil
}

func (e *engineImpl) BeginBackup(_ engine.OperationContext) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inBackup {
		return engine.ErrAlreadyInBackup
	}
	e.inBackup = true
	return nil
}

func (e *engineImpl) EndBackup(_ engine.OperationContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inBackup = false
}

func (e *engineImpl) IsDurable() bool  { return false }
func (e *engineImpl) IsEphemeral() bool { return true }

func (e *engineImpl) GetSnapshotManager() engine.SnapshotManager { return nil }

func (e *engineImpl) SetJournalListener(l engine.JournalListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journalListener = l
}

func (e *engineImpl) SetStableTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stableTS = ts
}

func (e *engineImpl) SetInitialDataTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialDataTS = ts
}

func (e *engineImpl) SetOldestTimestamp(ts engine.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.oldestTS = ts
}

func (e *engineImpl) SupportsRecoverToStableTimestamp() bool { return false }
func (e *engineImpl) RecoverToStableTimestamp() error        { return engine.ErrUnsupported }
func (e *engineImpl) SupportsReadConcernSnapshot() bool      { return true }
func (e *engineImpl) ReplicationBatchIsComplete()            {}

func (e *engineImpl) SupportsDocLocking() bool     { return true }
func (e *engineImpl) SupportsDBLocking() bool      { return false }
func (e *engineImpl) SupportsDirectoryPerDB() bool  { return false }

func (e *engineImpl) CleanShutdown() {}

// --------------------------------------------------------------------------
// RecordStore
// --------------------------------------------------------------------------

type recordStoreImpl struct {
	ident  engine.Ident
	prefix engine.Prefix
	st     *identState
}

func (r *recordStoreImpl) Get(_ engine.OperationContext, id string) ([]byte, bool) {
	return r.st.records.Load(recordKey(r.prefix, id))
}

func (r *recordStoreImpl) Put(_ engine.OperationContext, id string, value []byte) error {
	cp := append([]byte(nil), value...)
	r.st.records.Store(recordKey(r.prefix, id), cp)
	return nil
}

func (r *recordStoreImpl) Delete(_ engine.OperationContext, id string) error {
	r.st.records.Delete(recordKey(r.prefix, id))
	return nil
}

func (r *recordStoreImpl) All(_ engine.OperationContext) func(yield func(id string, value []byte) bool) {
	prefixStr := ""
	if r.prefix != engine.NotPrefixed {
		prefixStr = recordKey(r.prefix, "")
	}
	return func(yield func(id string, value []byte) bool) {
		r.st.records.Range(func(key string, value []byte) bool {
			if len(prefixStr) > 0 && (len(key) < len(prefixStr) || key[:len(prefixStr)] != prefixStr) {
				return true
			}
			return yield(key[len(prefixStr):], value)
		})
	}
}

// --------------------------------------------------------------------------
// RecoveryUnit / WriteUnitOfWork
// --------------------------------------------------------------------------

type changeCallback struct {
	commit   func()
	rollback func()
}

type recoveryUnitImpl struct {
	mu       sync.Mutex
	commitTS engine.Timestamp
	changes  []changeCallback

	// depth counts currently-open, possibly-nested units of work. Registered
	// changes only finalize once depth returns to zero, matching a real
	// recovery unit's nested-transaction semantics: an inner WUOW's commit
	// is provisional until the outermost one resolves, and an abort at any
	// depth dooms the whole unit to roll back.
	depth   int
	aborted bool
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

// wuowImpl is one (possibly nested) scope of a recoveryUnitImpl. Only the
// outermost wuowImpl to finalize actually runs the registered callbacks;
// inner commits are provisional, and an abort at any depth dooms the whole
// unit to roll back once the outermost scope finalizes.
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
