package mdbxt

// Environment flags. Values match libmdbx and are passed to the engine
// unchanged.
const (
	// EnvDefaults is the default (durable) mode
	EnvDefaults uint = 0

	// NoSubdir means the path is a filename, not a directory
	NoSubdir uint = 0x00004000

	// Readonly opens the environment in read-only mode
	Readonly uint = 0x00020000

	// Exclusive opens in exclusive/monopolistic mode
	Exclusive uint = 0x00400000

	// Accede uses the existing mode if opened by other processes
	Accede uint = 0x40000000

	// WriteMap maps data with write permission (faster, riskier)
	WriteMap uint = 0x00080000

	// NoStickyThreads allows transactions to move between threads.
	// Always enabled by Open; required for Go's scheduler.
	NoStickyThreads uint = 0x00200000

	// NoReadAhead disables OS readahead
	NoReadAhead uint = 0x00800000

	// NoMemInit skips zeroing malloc'd memory
	NoMemInit uint = 0x01000000

	// LifoReclaim uses LIFO policy for GC reclamation
	LifoReclaim uint = 0x04000000

	// NoMetaSync skips meta page sync after commit
	NoMetaSync uint = 0x00040000

	// SafeNoSync skips sync but keeps steady commits
	SafeNoSync uint = 0x00010000

	// UtterlyNoSync skips all syncs (dangerous)
	UtterlyNoSync = SafeNoSync | NoMetaSync

	// Durable is an alias for EnvDefaults
	Durable = EnvDefaults

	// NoTLS is an alias for NoStickyThreads
	NoTLS = NoStickyThreads
)

// Transaction flags.
const (
	// TxnReadWrite is the default read-write transaction
	TxnReadWrite uint = 0

	// TxnReadOnly begins a read-only transaction observing a stable
	// snapshot as of Begin
	TxnReadOnly uint = 0x20000

	// TxnTry attempts a non-blocking write transaction
	TxnTry uint = 0x10000000
)

// Table flags.
const (
	// TableDefaults uses default comparison and features
	TableDefaults uint = 0

	// ReverseKey uses reverse string comparison for keys
	ReverseKey uint = 0x02

	// DupSort allows multiple values per key (sorted)
	DupSort uint = 0x04

	// IntegerKey uses fixed-width integer keys in native byte order
	IntegerKey uint = 0x08

	// DupFixed uses fixed-size values in DupSort tables
	DupFixed uint = 0x10

	// IntegerDup uses fixed-size integer values in DupSort tables
	IntegerDup uint = 0x20

	// ReverseDup uses reverse comparison for values
	ReverseDup uint = 0x40

	// Create creates the table if it doesn't exist. Requires a
	// read-write transaction.
	Create uint = 0x40000
)

// tableFlagsMask covers the persistent table flags that must match when
// a shared handle is reused.
const tableFlagsMask = ReverseKey | DupSort | IntegerKey | DupFixed | IntegerDup | ReverseDup

// Put flags.
const (
	// Upsert is the default insert-or-update mode
	Upsert uint = 0

	// NoOverwrite fails with a key-exists error if the key is present
	NoOverwrite uint = 0x10

	// NoDupData fails if the exact key-value pair exists (DupSort)
	NoDupData uint = 0x20

	// Current overwrites the item at the cursor position
	Current uint = 0x40

	// AllDups replaces all duplicates for the key
	AllDups uint = 0x80

	// Reserve reserves space without copying data; pair with
	// Txn.PutReserve
	Reserve uint = 0x10000

	// Append assumes the key sorts after every existing key
	Append uint = 0x20000

	// AppendDup assumes duplicate data is being appended
	AppendDup uint = 0x40000
)

// Cursor operation codes, in engine order.
const (
	opFirst uint = iota
	opFirstDup
	opGetBoth
	opGetBothRange
	opGetCurrent
	opGetMultiple
	opLast
	opLastDup
	opNext
	opNextDup
	opNextMultiple
	opNextNoDup
	opPrev
	opPrevDup
	opPrevNoDup
	opSet
	opSetKey
	opSetRange
)
