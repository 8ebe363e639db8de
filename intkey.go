package mdbxt

import "encoding/binary"

// IntegerKey tables compare keys as fixed-width integers in the
// machine's byte order, so the codec must be native-endian rather than
// a portable serialization.

func putUint64Native(b []byte, v uint64) {
	binary.NativeEndian.PutUint64(b, v)
}

func getUint64Native(b []byte) uint64 {
	return binary.NativeEndian.Uint64(b)
}

func putUint32Native(b []byte, v uint32) {
	binary.NativeEndian.PutUint32(b, v)
}

func getUint32Native(b []byte) uint32 {
	return binary.NativeEndian.Uint32(b)
}

func putUint16Native(b []byte, v uint16) {
	binary.NativeEndian.PutUint16(b, v)
}

func getUint16Native(b []byte) uint16 {
	return binary.NativeEndian.Uint16(b)
}
