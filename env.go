package mdbxt

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Env is an open storage environment. It owns every transaction begun
// through it and the set of shared table handles promoted by committed
// transactions.
//
// An Env must be configured (SetMaxTables, SetGeometry) before Open and
// must not be used after Close.
type Env struct {
	engine *mdbx.Env
	log    *zap.Logger

	mu       sync.Mutex
	tables   map[string]*Table // shared handles, by table name
	path     string
	opened   bool
	closed   bool
	readonly bool

	registry *Registry
}

// NewEnv creates an unopened environment using the default serializer
// registry and no logging.
func NewEnv() (*Env, error) {
	return NewEnvWithLogger(nil)
}

// NewEnvWithLogger creates an unopened environment that logs lifecycle
// events through lg. A nil lg disables logging.
func NewEnvWithLogger(lg *zap.Logger) (*Env, error) {
	engine, err := mdbx.NewEnv(mdbx.Label("mdbxt"))
	if err != nil {
		return nil, fromEngine("create environment", err)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Env{
		engine:   engine,
		log:      lg,
		tables:   make(map[string]*Table),
		registry: DefaultRegistry,
	}, nil
}

// UseRegistry replaces the serializer registry consulted by the typed
// operations. Must be called before the first typed Put or Get.
func (e *Env) UseRegistry(r *Registry) {
	if r != nil {
		e.registry = r
	}
}

// Registry returns the serializer registry in use.
func (e *Env) Registry() *Registry {
	return e.registry
}

// SetMaxTables sets the maximum number of named tables. Valid only
// before Open.
func (e *Env) SetMaxTables(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errEnvClosed
	}
	if e.opened {
		return errEnvOpened
	}
	if n < 0 {
		return newError(KindInvalidArgument, "max tables must be non-negative")
	}
	if err := e.engine.SetOption(mdbx.OptMaxDB, uint64(n)); err != nil {
		return fromEngine("set max tables", err)
	}
	return nil
}

// SetMaxReaders sets the maximum number of reader slots. Valid only
// before Open.
func (e *Env) SetMaxReaders(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errEnvClosed
	}
	if e.opened {
		return errEnvOpened
	}
	if err := e.engine.SetOption(mdbx.OptMaxReaders, uint64(n)); err != nil {
		return fromEngine("set max readers", err)
	}
	return nil
}

// SetGeometry configures datafile size limits and page size. Valid only
// before Open. Use -1 for engine defaults.
func (e *Env) SetGeometry(sizeLower, sizeNow, sizeUpper, growthStep, shrinkThreshold int64, pageSize int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errEnvClosed
	}
	if e.opened {
		return errEnvOpened
	}
	if err := e.engine.SetGeometry(int(sizeLower), int(sizeNow), int(sizeUpper), int(growthStep), int(shrinkThreshold), pageSize); err != nil {
		return fromEngine("set geometry", err)
	}
	return nil
}

// Open opens or creates the backing store at path. With NoSubdir the
// path names the data file itself, otherwise it names a directory that
// must already exist. NoStickyThreads is always enabled; engine
// transactions would otherwise be pinned to OS threads, which does not
// survive Go's scheduler.
func (e *Env) Open(path string, flags uint, mode os.FileMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errEnvClosed
	}
	if e.opened {
		return errEnvOpened
	}

	readonly := flags&Readonly != 0
	if err := checkPath(path, flags); err != nil {
		return err
	}

	if err := e.engine.Open(path, flags|NoStickyThreads, mode); err != nil {
		return &Error{Kind: KindEnvironment, Code: engineCode(err), Message: "open " + path, Err: err}
	}
	e.path = path
	e.opened = true
	e.readonly = readonly
	e.log.Info("environment opened", zap.String("path", path), zap.Bool("readonly", readonly))
	return nil
}

// checkPath rejects unusable paths before the engine is invoked.
func checkPath(path string, flags uint) error {
	if path == "" {
		return newError(KindInvalidArgument, "path must not be empty")
	}
	dir := path
	if flags&NoSubdir != 0 {
		dir = filepath.Dir(path)
	}
	want := uint32(unix.R_OK | unix.W_OK)
	if flags&Readonly != 0 {
		want = unix.R_OK
	}
	if err := unix.Access(dir, want); err != nil {
		return &Error{Kind: KindEnvironment, Message: "inaccessible path " + dir, Err: err}
	}
	return nil
}

// Path returns the path the environment was opened at.
func (e *Env) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// ReadOnly reports whether the environment was opened read-only.
func (e *Env) ReadOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readonly
}

// Close releases the native handle and invalidates every shared table
// handle. Idempotent. All transactions must have ended; a live write
// transaction at Close is a caller bug the engine reports on its own.
func (e *Env) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	wasOpen := e.opened
	e.opened = false
	for _, t := range e.tables {
		t.invalidate()
	}
	e.tables = nil
	e.mu.Unlock()

	e.engine.Close()
	if wasOpen {
		e.log.Info("environment closed", zap.String("path", e.path))
	}
}

// Sync flushes buffered data to disk. With force the flush is
// synchronous and unconditional.
func (e *Env) Sync(force bool) error {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if !ok {
		return errEnvClosed
	}
	if err := e.engine.Sync(force, false); err != nil {
		return fromEngine("sync", err)
	}
	return nil
}

// Stat returns statistics for the environment's main tree. Entries
// counts the records of the unnamed root table, which for a store with
// named tables means one record per table.
func (e *Env) Stat() (*Stat, error) {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if !ok {
		return nil, errEnvClosed
	}
	st, err := e.engine.Stat()
	if err != nil {
		return nil, fromEngine("stat", err)
	}
	return &Stat{
		PageSize:      st.PSize,
		Depth:         st.Depth,
		BranchPages:   st.BranchPages,
		LeafPages:     st.LeafPages,
		OverflowPages: st.OverflowPages,
		Entries:       st.Entries,
	}, nil
}

// EnvInfo describes an environment's datafile and reader table.
type EnvInfo struct {
	MapSize    int64 // current datafile size in bytes
	LastPNO    int64 // number of the last used page
	LastTxnID  int64 // id of the last committed transaction
	MaxReaders uint  // reader slot limit
	NumReaders uint  // reader slots in use
	PageSize   uint  // page size in bytes
}

// Info returns information about the environment's current state.
func (e *Env) Info() (*EnvInfo, error) {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if !ok {
		return nil, errEnvClosed
	}
	info, err := e.engine.Info(nil)
	if err != nil {
		return nil, fromEngine("info", err)
	}
	return &EnvInfo{
		MapSize:    int64(info.MapSize),
		LastPNO:    int64(info.LastPNO),
		LastTxnID:  int64(info.LastTxnID),
		MaxReaders: uint(info.MaxReaders),
		NumReaders: uint(info.NumReaders),
		PageSize:   uint(info.PageSize),
	}, nil
}

// ReaderCheck clears reader slots held by dead processes and returns
// the number of slots cleared.
func (e *Env) ReaderCheck() (int, error) {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if !ok {
		return 0, errEnvClosed
	}
	n, err := e.engine.ReaderCheck()
	if err != nil {
		return 0, fromEngine("reader check", err)
	}
	if n > 0 {
		e.log.Warn("cleared stale reader slots", zap.Int("count", n))
	}
	return n, nil
}

// BeginTxn starts a transaction. TxnReadOnly begins a snapshot reader;
// the default begins the single read-write transaction, blocking until
// the writer slot is free. Every call returns a fresh Txn; transactions
// do not nest and cannot be reused after Commit or Abort.
//
// The Txn and everything derived from it (tables, cursors, values) must
// stay confined to one goroutine. Write transactions must additionally
// stay on one OS thread; Update handles that automatically.
func (e *Env) BeginTxn(flags uint) (*Txn, error) {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if !ok {
		return nil, errEnvClosed
	}
	engineTxn, err := e.engine.BeginTxn(nil, flags)
	if err != nil {
		return nil, fromEngine("begin transaction", err)
	}
	return &Txn{
		env:      e,
		engine:   engineTxn,
		state:    txnActive,
		readonly: flags&TxnReadOnly != 0,
	}, nil
}

// TxnOp is the callback type for View, Update, and RunTxn.
type TxnOp func(txn *Txn) error

// View runs fn in a read-only transaction. The transaction is committed
// when fn returns nil and aborted otherwise.
func (e *Env) View(fn TxnOp) error {
	return e.RunTxn(TxnReadOnly, fn)
}

// Update runs fn in a read-write transaction, locking the calling
// goroutine to its OS thread for the duration. The transaction is
// committed when fn returns nil and aborted otherwise.
func (e *Env) Update(fn TxnOp) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return e.RunTxn(TxnReadWrite, fn)
}

// UpdateLocked behaves like Update but assumes the calling goroutine is
// already locked to its thread.
func (e *Env) UpdateLocked(fn TxnOp) error {
	return e.RunTxn(TxnReadWrite, fn)
}

// RunTxn runs fn in a transaction begun with the given flags. The
// transaction is aborted on any error or panic in fn, so handles and
// the writer slot are released on all exit paths.
func (e *Env) RunTxn(flags uint, fn TxnOp) error {
	txn, err := e.BeginTxn(flags)
	if err != nil {
		return err
	}
	defer txn.Abort() // no-op after a successful commit
	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// sharedTable returns the promoted handle for name, if any.
func (e *Env) sharedTable(name string) *Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables[name]
}

// promoteTable publishes a handle opened by a committed transaction.
func (e *Env) promoteTable(t *Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if _, ok := e.tables[t.name]; !ok {
		e.tables[t.name] = t
	}
}

// forgetTable drops a shared handle, after a close or a drop.
func (e *Env) forgetTable(t *Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tables[t.name] == t {
		delete(e.tables, t.name)
	}
}

// closeDBI releases an engine handle for reuse by future opens.
func (e *Env) closeDBI(dbi mdbx.DBI) {
	e.mu.Lock()
	ok := e.opened && !e.closed
	e.mu.Unlock()
	if ok {
		e.engine.CloseDBI(dbi)
	}
}
