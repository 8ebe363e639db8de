// Package mdbxt is a typed transactional client layer over libmdbx.
//
// The engine (github.com/erigontech/mdbx-go) supplies ordered key-value
// storage with MVCC snapshots: one read-write transaction at a time and
// any number of concurrent snapshot readers. This package layers four
// disciplines on top of it:
//
//   - Handle lifecycle. Environments own transactions; transactions own
//     the table handles and cursors opened through them. A table handle
//     is private to its creating transaction until that transaction
//     commits, after which it is shared environment-wide; an abort
//     invalidates it. Operations on ended or closed handles fail fast
//     with an invalid-handle error instead of touching freed memory.
//
//   - Zero-copy reads. Get and cursor operations return a Val, a view
//     of engine-owned memory valid only until the next mutating call on
//     the same transaction or until the transaction ends. Copy out with
//     Val.Copy or Val.String before then; Val.Bytes refuses to hand out
//     memory once the transaction has ended.
//
//   - Typed access. PutTyped and GetTyped dispatch through a serializer
//     registry. Byte slices, strings, booleans, and fixed-width
//     integers are built in; everything else is registered explicitly,
//     and a lookup miss is reported as a programming error.
//
//   - Error taxonomy. A missing key is never an error on the soft
//     paths: Get yields a Val with Exists() == false and Del reports
//     false. Every other engine status propagates as an *Error carrying
//     the original numeric code, split into recoverable kinds
//     (key-exists, bad value size) and engine faults.
//
// Basic usage:
//
//	env, err := mdbxt.NewEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := env.SetMaxTables(10); err != nil {
//	    log.Fatal(err)
//	}
//	if err := env.Open("/path/to/db", mdbxt.NoSubdir, 0644); err != nil {
//	    log.Fatal(err)
//	}
//	defer env.Close()
//
//	err = env.Update(func(txn *mdbxt.Txn) error {
//	    t, err := txn.OpenTable("users", mdbxt.Create)
//	    if err != nil {
//	        return err
//	    }
//	    return txn.Put(t, []byte("alice"), []byte("admin"), 0)
//	})
//
// A transaction and everything derived from it must stay on a single
// goroutine. Write transactions must additionally stay on one OS
// thread; Update locks the thread for you, BeginTxn callers are on
// their own. Failing to end a write transaction blocks the writer slot
// for the whole environment, so prefer the managed View/Update forms,
// or defer txn.Abort() immediately after BeginTxn.
package mdbxt
