package engine

import "context"

// OperationContext carries the plumbing this package's callers are
// expected to provide per operation: a cancellation context, the
// transaction's RecoveryUnit, and the logical clock used to timestamp
// replicated writes. The core never polls ctx.Done() itself - cancellation
// surfaces as an error from whatever backend call is in flight.
type OperationContext struct {
	Context      context.Context
	RecoveryUnit RecoveryUnit
	Clock        LogicalClock
}

// LogicalClock reports the current cluster time, used to choose a commit
// timestamp for timestamped collection drops. Implementations on
// standalone/master-slave deployments may always return NullTimestamp.
type LogicalClock interface {
	ClusterTime() Timestamp
}

// WriteUnitOfWork is a scoped write transaction: call Commit to make writes
// visible, or let it go out of scope (Abort, or simply drop it) to roll
// back.
type WriteUnitOfWork interface {
	Commit() error
	Abort()
}

// RecoveryUnit is the per-operation transaction handle: it owns a
// snapshot, any pending writes, and the commit-timestamp state for the
// writes it will produce.
type RecoveryUnit interface {
	GetCommitTimestamp() Timestamp
	SetCommitTimestamp(Timestamp)
	ClearCommitTimestamp()

	// RegisterChange enqueues a pair of callbacks invoked when the
	// enclosing WriteUnitOfWork finalizes: commit on success, rollback on
	// abort. Exactly one of the two ever runs per registration.
	RegisterChange(commit, rollback func())

	AbandonSnapshot()

	BeginUnitOfWork() WriteUnitOfWork
}

// RecordStore is a single grouped record store: an ordered byte-keyed
// container sharing physical storage with other stores at the same ident
// when given distinct, non-NotPrefixed prefixes.
type RecordStore interface {
	// Get returns the record for id, or ok=false if absent.
	Get(ctx OperationContext, id string) (value []byte, ok bool)
	// Put inserts or overwrites the record for id.
	Put(ctx OperationContext, id string, value []byte) error
	// Delete removes the record for id. Deleting an absent id is not an error.
	Delete(ctx OperationContext, id string) error
	// All iterates every (id, value) pair currently stored, in
	// unspecified order, within this record store's prefix.
	All(ctx OperationContext) iteratorFunc
}

// iteratorFunc is called once per stored record; returning false stops
// iteration early.
type iteratorFunc = func(yield func(id string, value []byte) bool)

// SnapshotManager is opaque to this layer; it is produced by Engine and
// handed back to callers unexamined.
type SnapshotManager interface{}

// JournalListener is opaque to this layer; SetJournalListener only stores
// the caller's listener for the backend to invoke on its own schedule.
type JournalListener interface{}

// Engine is the backend key-value storage engine this module coordinates.
// Its implementation (idents, record stores, indexes, snapshots,
// timestamps, backup, durability) is entirely out of scope for this
// module - see memengine and pebbleengine for reference implementations.
type Engine interface {
	HasIdent(ctx OperationContext, id Ident) bool
	// RepairIdent attempts to repair a possibly-corrupt ident in place.
	RepairIdent(ctx OperationContext, id Ident) error
	CreateGroupedRecordStore(ctx OperationContext, id Ident, opts CollectionOptions, prefix Prefix) error
	GetGroupedRecordStore(ctx OperationContext, id Ident, opts CollectionOptions, prefix Prefix) (RecordStore, error)
	// GetAllIdents returns every ident known to the engine, including the
	// catalog ident itself.
	GetAllIdents(ctx OperationContext) []Ident
	DropIdent(ctx OperationContext, id Ident) error

	NewRecoveryUnit() RecoveryUnit

	FlushAllFiles(ctx OperationContext, sync bool) (filesFlushed int, err error)

	BeginBackup(ctx OperationContext) error
	EndBackup(ctx OperationContext)

	IsDurable() bool
	IsEphemeral() bool

	GetSnapshotManager() SnapshotManager
	SetJournalListener(JournalListener)

	SetStableTimestamp(Timestamp)
	SetInitialDataTimestamp(Timestamp)
	SetOldestTimestamp(Timestamp)

	SupportsRecoverToStableTimestamp() bool
	RecoverToStableTimestamp() error
	SupportsReadConcernSnapshot() bool
	ReplicationBatchIsComplete()

	SupportsDocLocking() bool
	SupportsDBLocking() bool
	SupportsDirectoryPerDB() bool

	CleanShutdown()
}

// Handle opens and drops collections belonging to exactly one database. It
// is produced by a HandleFactory and owned exclusively by the registry
// that created it.
type Handle interface {
	InitCollection(ctx OperationContext, ns Namespace, forRepair bool) error
	DropCollection(ctx OperationContext, ns Namespace) error
	// CollectionNamespaces returns every namespace currently live in this
	// database, in unspecified order.
	CollectionNamespaces() []Namespace
	ReinitCollectionAfterRepair(ctx OperationContext, ns Namespace) error
	Name() string
	IsEmpty() bool
}

// HandleFactory constructs a Handle for a newly-discovered database name.
// Mirrors dKV's store.DBFactory: construction is abstracted from the
// registry so tests and production wiring can supply different
// implementations without touching registry logic.
type HandleFactory func(dbName string) Handle
