package mdbxt

import (
	"github.com/erigontech/mdbx-go/mdbx"
)

// txnState tracks the transaction lifecycle.
type txnState uint8

const (
	txnActive txnState = iota
	txnCommitted
	txnAborted
)

// Txn is a unit of atomicity. It owns the table handles and cursors
// created through it while Active; Commit promotes its table handles
// into the environment's shared scope, Abort invalidates them. No
// operation is valid once the transaction has ended.
type Txn struct {
	env      *Env
	engine   *mdbx.Txn
	state    txnState
	readonly bool

	tables  []*Table // handles opened by this transaction, pre-promotion
	cursors []*Cursor
}

func (txn *Txn) valid() bool {
	return txn != nil && txn.state == txnActive
}

// Env returns the owning environment.
func (txn *Txn) Env() *Env {
	return txn.env
}

// ID returns the engine's transaction identifier.
func (txn *Txn) ID() uint64 {
	if !txn.valid() {
		return 0
	}
	return txn.engine.ID()
}

// IsReadOnly reports whether the transaction is a snapshot reader.
func (txn *Txn) IsReadOnly() bool {
	return txn.readonly
}

// Commit makes every write in the transaction durable and publishes the
// table handles it opened into the environment scope. On engine failure
// the transaction is aborted: its writes are discarded and its handles
// invalidated.
func (txn *Txn) Commit() error {
	if !txn.valid() {
		return errTxnEnded
	}
	txn.closeAllCursors()
	if _, err := txn.engine.Commit(); err != nil {
		txn.state = txnAborted
		txn.invalidateTables()
		return fromEngine("commit", err)
	}
	txn.state = txnCommitted
	for _, t := range txn.tables {
		if t.isOpen() {
			t.owner = nil
			txn.env.promoteTable(t)
		}
	}
	txn.tables = nil
	return nil
}

// Abort discards all writes and invalidates every table handle and
// cursor opened within the transaction. Calling Abort on an ended
// transaction is a no-op so it can be deferred unconditionally.
func (txn *Txn) Abort() {
	if !txn.valid() {
		return
	}
	txn.closeAllCursors()
	txn.engine.Abort()
	txn.state = txnAborted
	txn.invalidateTables()
}

func (txn *Txn) invalidateTables() {
	for _, t := range txn.tables {
		t.invalidate()
	}
	txn.tables = nil
}

func (txn *Txn) closeAllCursors() {
	for _, c := range txn.cursors {
		// Read-only cursors stay allocated so the owner can Close or
		// Renew them; write cursors die with the transaction.
		if !txn.readonly {
			c.closeLocked()
		}
	}
	txn.cursors = nil
}

func (txn *Txn) removeCursor(c *Cursor) {
	for i, cur := range txn.cursors {
		if cur == c {
			txn.cursors = append(txn.cursors[:i], txn.cursors[i+1:]...)
			return
		}
	}
}

// OpenTable opens the named table. If a compatible shared handle
// already exists at the environment level it is reused; otherwise a new
// handle is opened, private to this transaction until it commits.
// Create requires a read-write transaction.
func (txn *Txn) OpenTable(name string, flags uint) (*Table, error) {
	if !txn.valid() {
		return nil, errTxnEnded
	}
	if shared := txn.env.sharedTable(name); shared != nil && shared.isOpen() {
		if shared.flags&tableFlagsMask != flags&tableFlagsMask {
			return nil, newErrorf(KindIncompatible, "table %q already open with flags %#x", name, shared.flags)
		}
		return shared, nil
	}
	if flags&Create != 0 && txn.readonly {
		return nil, errTxnReadOnly
	}
	dbi, err := txn.engine.OpenDBISimple(name, flags)
	if err != nil {
		return nil, fromEngine("open table "+name, err)
	}
	t := &Table{env: txn.env, name: name, dbi: dbi, flags: flags, owner: txn}
	txn.tables = append(txn.tables, t)
	return t, nil
}

// Root opens the unnamed root table.
func (txn *Txn) Root(flags uint) (*Table, error) {
	if !txn.valid() {
		return nil, errTxnEnded
	}
	dbi, err := txn.engine.OpenRoot(flags)
	if err != nil {
		return nil, fromEngine("open root table", err)
	}
	t := &Table{env: txn.env, dbi: dbi, flags: flags, owner: txn, root: true}
	txn.tables = append(txn.tables, t)
	return t, nil
}

// usable validates the txn/table pair ahead of an operation.
func (txn *Txn) usable(t *Table) error {
	if !txn.valid() {
		return errTxnEnded
	}
	if t == nil || !t.isOpen() {
		return errTableClosed
	}
	return nil
}

// Put stores a key-value pair. A nil key is rejected before the engine
// is called; an empty non-nil key is passed through, so integer-keyed
// tables surface the engine's bad-value-size status. The write is
// visible to this transaction immediately and to others after commit.
func (txn *Txn) Put(t *Table, key, val []byte, flags uint) error {
	if err := txn.usable(t); err != nil {
		return err
	}
	if txn.readonly {
		return errTxnReadOnly
	}
	if key == nil {
		return errNilKey
	}
	if err := txn.engine.Put(t.dbi, key, val, flags); err != nil {
		return fromEngine("put", err)
	}
	return nil
}

// PutReserve reserves space for a val of length n under key and returns
// the engine-owned buffer to fill in. The buffer follows the same
// lifetime rule as read views: it is writable only until the next
// mutating call on this transaction or until the transaction ends.
func (txn *Txn) PutReserve(t *Table, key []byte, n int, flags uint) ([]byte, error) {
	if err := txn.usable(t); err != nil {
		return nil, err
	}
	if txn.readonly {
		return nil, errTxnReadOnly
	}
	if key == nil {
		return nil, errNilKey
	}
	buf, err := txn.engine.PutReserve(t.dbi, key, n, flags)
	if err != nil {
		return nil, fromEngine("put reserve", err)
	}
	return buf, nil
}

// Get looks a key up and returns a transaction-bound view of the value.
// A miss is not an error: the returned Val reports Exists() == false.
func (txn *Txn) Get(t *Table, key []byte) (Val, error) {
	if err := txn.usable(t); err != nil {
		return Val{}, err
	}
	if key == nil {
		return Val{}, errNilKey
	}
	b, err := txn.engine.Get(t.dbi, key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Val{txn: txn}, nil
		}
		return Val{}, fromEngine("get", err)
	}
	return Val{b: b, txn: txn, found: true}, nil
}

// GetRaw is the error-returning variant of Get: a miss yields a
// not-found error, anything else a mapped engine error. The returned
// bytes borrow engine memory and are valid only until the next mutating
// call on this transaction or until the transaction ends.
func (txn *Txn) GetRaw(t *Table, key []byte) ([]byte, error) {
	if err := txn.usable(t); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errNilKey
	}
	b, err := txn.engine.Get(t.dbi, key)
	if err != nil {
		return nil, fromEngine("get", err)
	}
	return b, nil
}

// Del removes a key. It reports whether an entry existed: a missing key
// is a false return, not an error.
func (txn *Txn) Del(t *Table, key []byte) (bool, error) {
	if err := txn.usable(t); err != nil {
		return false, err
	}
	if txn.readonly {
		return false, errTxnReadOnly
	}
	if key == nil {
		return false, errNilKey
	}
	if err := txn.engine.Del(t.dbi, key, nil); err != nil {
		if mdbx.IsNotFound(err) {
			return false, nil
		}
		return false, fromEngine("del", err)
	}
	return true, nil
}

// DelDup removes one specific value of a DupSort key.
func (txn *Txn) DelDup(t *Table, key, val []byte) (bool, error) {
	if err := txn.usable(t); err != nil {
		return false, err
	}
	if txn.readonly {
		return false, errTxnReadOnly
	}
	if key == nil {
		return false, errNilKey
	}
	if err := txn.engine.Del(t.dbi, key, val); err != nil {
		if mdbx.IsNotFound(err) {
			return false, nil
		}
		return false, fromEngine("del", err)
	}
	return true, nil
}

// Integer-key variants. Keys are the machine's native byte layout of
// the fixed-width integer, matching what IntegerKey tables expect.

// PutU64 stores val under a native-order uint64 key.
func (txn *Txn) PutU64(t *Table, key uint64, val []byte, flags uint) error {
	var kb [8]byte
	putUint64Native(kb[:], key)
	return txn.Put(t, kb[:], val, flags)
}

// GetU64 looks up a native-order uint64 key.
func (txn *Txn) GetU64(t *Table, key uint64) (Val, error) {
	var kb [8]byte
	putUint64Native(kb[:], key)
	return txn.Get(t, kb[:])
}

// DelU64 removes a native-order uint64 key.
func (txn *Txn) DelU64(t *Table, key uint64) (bool, error) {
	var kb [8]byte
	putUint64Native(kb[:], key)
	return txn.Del(t, kb[:])
}

// PutU32 stores val under a native-order uint32 key.
func (txn *Txn) PutU32(t *Table, key uint32, val []byte, flags uint) error {
	var kb [4]byte
	putUint32Native(kb[:], key)
	return txn.Put(t, kb[:], val, flags)
}

// GetU32 looks up a native-order uint32 key.
func (txn *Txn) GetU32(t *Table, key uint32) (Val, error) {
	var kb [4]byte
	putUint32Native(kb[:], key)
	return txn.Get(t, kb[:])
}

// DelU32 removes a native-order uint32 key.
func (txn *Txn) DelU32(t *Table, key uint32) (bool, error) {
	var kb [4]byte
	putUint32Native(kb[:], key)
	return txn.Del(t, kb[:])
}

// OpenCursor opens a cursor over t, positioned before the first entry.
// The cursor cannot outlive this transaction; Close it before or
// immediately after the transaction ends.
func (txn *Txn) OpenCursor(t *Table) (*Cursor, error) {
	if err := txn.usable(t); err != nil {
		return nil, err
	}
	engineCur, err := txn.engine.OpenCursor(t.dbi)
	if err != nil {
		return nil, fromEngine("open cursor", err)
	}
	c := &Cursor{txn: txn, table: t, engine: engineCur}
	txn.cursors = append(txn.cursors, c)
	return c, nil
}
