package mdbxt

// Val is a view of a value in engine-owned memory. The memory belongs
// to the owning transaction's snapshot and stays valid only until the
// next mutating call on that transaction or until the transaction ends,
// whichever comes first. Copy out (Copy, String, CopyTo) before either
// event; Bytes fails fast once the transaction has ended rather than
// returning stale memory.
//
// The zero Val reports Exists() == false and represents a miss.
type Val struct {
	b     []byte
	txn   *Txn
	found bool
}

// Exists reports whether the lookup matched a key. A present but empty
// value still reports true.
func (v Val) Exists() bool {
	return v.found
}

// Len returns the value length in bytes, zero for a miss.
func (v Val) Len() int {
	return len(v.b)
}

func (v Val) usable() error {
	if v.txn != nil && !v.txn.valid() {
		return errTxnEnded
	}
	return nil
}

// Bytes returns the borrowed engine memory. Nil for a miss. The slice
// must not be retained past the owning transaction; after the
// transaction ends Bytes returns an invalid-handle error.
func (v Val) Bytes() ([]byte, error) {
	if err := v.usable(); err != nil {
		return nil, err
	}
	if !v.found {
		return nil, nil
	}
	return v.b, nil
}

// Copy returns a caller-owned copy of the value, nil for a miss.
func (v Val) Copy() ([]byte, error) {
	if err := v.usable(); err != nil {
		return nil, err
	}
	if !v.found {
		return nil, nil
	}
	out := make([]byte, len(v.b))
	copy(out, v.b)
	return out, nil
}

// CopyTo appends the value to dst and returns the extended slice.
func (v Val) CopyTo(dst []byte) ([]byte, error) {
	if err := v.usable(); err != nil {
		return nil, err
	}
	return append(dst, v.b...), nil
}

// String returns the value as a caller-owned string, empty for a miss.
func (v Val) String() (string, error) {
	if err := v.usable(); err != nil {
		return "", err
	}
	return string(v.b), nil
}

// Uint64 decodes the value as a native-order fixed-width uint64.
func (v Val) Uint64() (uint64, error) {
	if err := v.usable(); err != nil {
		return 0, err
	}
	if !v.found {
		return 0, newError(KindNotFound, "value not present")
	}
	if len(v.b) != 8 {
		return 0, newErrorf(KindBadValueSize, "value is %d bytes, want 8", len(v.b))
	}
	return getUint64Native(v.b), nil
}

// Uint32 decodes the value as a native-order fixed-width uint32.
func (v Val) Uint32() (uint32, error) {
	if err := v.usable(); err != nil {
		return 0, err
	}
	if !v.found {
		return 0, newError(KindNotFound, "value not present")
	}
	if len(v.b) != 4 {
		return 0, newErrorf(KindBadValueSize, "value is %d bytes, want 4", len(v.b))
	}
	return getUint32Native(v.b), nil
}
