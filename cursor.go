package mdbxt

import (
	"github.com/erigontech/mdbx-go/mdbx"
)

// Cursor navigates one table within one transaction. Its position is
// undefined until the first positioning operation. A cursor cannot
// outlive its transaction: every operation after the transaction ends
// fails fast with an invalid-handle error, and Close is mandatory.
type Cursor struct {
	txn    *Txn
	table  *Table
	engine *mdbx.Cursor
	closed bool
}

// Table returns the table the cursor iterates.
func (c *Cursor) Table() *Table {
	return c.table
}

func (c *Cursor) usable() error {
	if c == nil || c.closed {
		return errCursorClosed
	}
	if !c.txn.valid() {
		return errTxnEnded
	}
	return nil
}

// Close releases the cursor. Idempotent. Cursors belonging to a
// transaction that already ended were closed with it.
func (c *Cursor) Close() {
	if c == nil || c.closed {
		return
	}
	c.txn.removeCursor(c)
	c.closeLocked()
}

// closeLocked closes the engine cursor without touching the
// transaction's cursor list; the transaction teardown iterates it.
func (c *Cursor) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.engine.Close()
}

// get runs one positioning operation and wraps the result in
// transaction-bound views. Exhaustion and missed seeks are not errors:
// both returned Vals report Exists() == false.
func (c *Cursor) get(setKey, setVal []byte, op uint) (Val, Val, error) {
	if err := c.usable(); err != nil {
		return Val{}, Val{}, err
	}
	k, v, err := c.engine.Get(setKey, setVal, op)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Val{txn: c.txn}, Val{txn: c.txn}, nil
		}
		return Val{}, Val{}, fromEngine("cursor get", err)
	}
	return Val{b: k, txn: c.txn, found: true}, Val{b: v, txn: c.txn, found: true}, nil
}

// First positions at the first entry.
func (c *Cursor) First() (Val, Val, error) {
	return c.get(nil, nil, opFirst)
}

// Last positions at the last entry.
func (c *Cursor) Last() (Val, Val, error) {
	return c.get(nil, nil, opLast)
}

// Next moves forward one entry.
func (c *Cursor) Next() (Val, Val, error) {
	return c.get(nil, nil, opNext)
}

// Prev moves backward one entry.
func (c *Cursor) Prev() (Val, Val, error) {
	return c.get(nil, nil, opPrev)
}

// Current reads the entry at the current position.
func (c *Cursor) Current() (Val, Val, error) {
	return c.get(nil, nil, opGetCurrent)
}

// Seek positions at the exact key. A miss leaves the returned views
// with Exists() == false.
func (c *Cursor) Seek(key []byte) (Val, Val, error) {
	return c.get(key, nil, opSetKey)
}

// SeekRange positions at the first key greater than or equal to key.
func (c *Cursor) SeekRange(key []byte) (Val, Val, error) {
	return c.get(key, nil, opSetRange)
}

// SeekU64 positions at an exact native-order uint64 key.
func (c *Cursor) SeekU64(key uint64) (Val, Val, error) {
	var kb [8]byte
	putUint64Native(kb[:], key)
	return c.Seek(kb[:])
}

// NextDup moves to the next duplicate of the current key (DupSort).
func (c *Cursor) NextDup() (Val, Val, error) {
	return c.get(nil, nil, opNextDup)
}

// NextNoDup moves to the first value of the next key (DupSort).
func (c *Cursor) NextNoDup() (Val, Val, error) {
	return c.get(nil, nil, opNextNoDup)
}

// FirstDup positions at the first duplicate of the current key.
func (c *Cursor) FirstDup() (Val, Val, error) {
	return c.get(nil, nil, opFirstDup)
}

// Get runs a raw engine positioning op against the cursor. Missed
// positions surface as not-found errors here; the typed movement
// methods absorb them instead.
func (c *Cursor) Get(setKey, setVal []byte, op uint) ([]byte, []byte, error) {
	if err := c.usable(); err != nil {
		return nil, nil, err
	}
	k, v, err := c.engine.Get(setKey, setVal, op)
	if err != nil {
		return nil, nil, fromEngine("cursor get", err)
	}
	return k, v, nil
}

// Put stores a key-value pair through the cursor.
func (c *Cursor) Put(key, val []byte, flags uint) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.txn.readonly {
		return errTxnReadOnly
	}
	if key == nil {
		return errNilKey
	}
	if err := c.engine.Put(key, val, flags); err != nil {
		return fromEngine("cursor put", err)
	}
	return nil
}

// Del removes the entry at the current position. AllDups removes every
// duplicate of the current key.
func (c *Cursor) Del(flags uint) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.txn.readonly {
		return errTxnReadOnly
	}
	if err := c.engine.Del(flags); err != nil {
		return fromEngine("cursor del", err)
	}
	return nil
}

// Count returns the number of duplicates at the current position.
func (c *Cursor) Count() (uint64, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	n, err := c.engine.Count()
	if err != nil {
		return 0, fromEngine("cursor count", err)
	}
	return n, nil
}

// Renew rebinds a cursor from an ended read-only transaction onto a new
// active read-only transaction on the same environment. Renewal is an
// engine capability of read-only cursors only.
func (c *Cursor) Renew(txn *Txn) error {
	if c == nil || c.closed {
		return errCursorClosed
	}
	if !txn.valid() {
		return errTxnEnded
	}
	if !txn.readonly {
		return newError(KindIncompatible, "cursor renewal requires a read-only transaction")
	}
	if txn.env != c.txn.env {
		return newError(KindIncompatible, "cursor renewal across environments")
	}
	if err := c.engine.Renew(txn.engine); err != nil {
		return fromEngine("cursor renew", err)
	}
	c.txn.removeCursor(c)
	c.txn = txn
	txn.cursors = append(txn.cursors, c)
	return nil
}
