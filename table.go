package mdbxt

import (
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
	"go.uber.org/zap"
)

// tableState tracks the handle lifecycle.
type tableState uint8

const (
	tableOpen tableState = iota
	tableClosed
	tableInvalid // creating transaction aborted, or environment closed
)

// Table names a keyspace within an environment. A handle is private to
// the transaction that opened it until that transaction commits; after
// a successful commit it is shared across the environment and may be
// reused by later transactions. If the creating transaction aborts the
// handle is invalidated and must not be used again.
type Table struct {
	env   *Env
	name  string
	dbi   mdbx.DBI
	flags uint
	root  bool

	mu    sync.Mutex
	state tableState
	owner *Txn // nil once promoted to environment scope
}

// Name returns the table name; empty for the root table.
func (t *Table) Name() string {
	return t.name
}

// Flags returns the flags the table was opened with.
func (t *Table) Flags() uint {
	return t.flags
}

func (t *Table) isOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == tableOpen
}

func (t *Table) invalidate() {
	t.mu.Lock()
	t.state = tableInvalid
	t.mu.Unlock()
}

// Close releases the handle for reuse by future opens. Valid at most
// once; a second Close is an invalid-handle error. Closing a handle
// still private to a live transaction only detaches the wrapper — the
// engine reclaims the slot when the transaction ends.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.state != tableOpen {
		t.mu.Unlock()
		return errTableClosed
	}
	t.state = tableClosed
	shared := t.owner == nil
	t.mu.Unlock()

	if shared && !t.root {
		t.env.forgetTable(t)
		t.env.closeDBI(t.dbi)
	}
	return nil
}

// Drop deletes the table and all its contents. Requires an active
// read-write transaction; takes effect atomically with its commit.
func (t *Table) Drop(txn *Txn) error {
	return t.drop(txn, true)
}

// Empty deletes every entry but keeps the table definition.
func (t *Table) Empty(txn *Txn) error {
	return t.drop(txn, false)
}

func (t *Table) drop(txn *Txn, del bool) error {
	if err := txn.usable(t); err != nil {
		return err
	}
	if txn.readonly {
		return errTxnReadOnly
	}
	if err := txn.engine.Drop(t.dbi, del); err != nil {
		return fromEngine("drop table "+t.name, err)
	}
	if del {
		t.invalidate()
		t.env.forgetTable(t)
		t.env.log.Info("table dropped", zap.String("table", t.name))
	}
	return nil
}

// Stat describes a table's shape and size.
type Stat struct {
	PageSize      uint   // page size in bytes
	Depth         uint   // tree depth
	BranchPages   uint64 // number of branch pages
	LeafPages     uint64 // number of leaf pages
	OverflowPages uint64 // number of overflow pages
	Entries       uint64 // number of entries
}

// Stat returns statistics for the table as seen by txn's snapshot.
func (t *Table) Stat(txn *Txn) (*Stat, error) {
	if err := txn.usable(t); err != nil {
		return nil, err
	}
	st, err := txn.engine.StatDBI(t.dbi)
	if err != nil {
		return nil, fromEngine("stat table "+t.name, err)
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
