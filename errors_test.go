package mdbxt

import (
	"errors"
	"syscall"
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
)

func TestEngineCodeExtraction(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"bare errno", mdbx.Errno(CodeBadValSize), CodeBadValSize},
		{"op-wrapped errno", &mdbx.OpError{Op: "mdbx_put", Errno: mdbx.Errno(CodeBadValSize)}, CodeBadValSize},
		{"op-wrapped key exist", &mdbx.OpError{Op: "mdbx_put", Errno: mdbx.Errno(CodeKeyExist)}, CodeKeyExist},
		{"op-wrapped not found", &mdbx.OpError{Op: "mdbx_get", Errno: mdbx.Errno(CodeNotFound)}, CodeNotFound},
		{"op-wrapped os errno", &mdbx.OpError{Op: "mdbx_env_open", Errno: syscall.EACCES}, 0},
		{"foreign error", errors.New("boom"), 0},
		{"nil", nil, CodeSuccess},
	}
	for _, tc := range cases {
		if got := engineCode(tc.err); got != tc.code {
			t.Errorf("%s: engineCode = %d, want %d", tc.name, got, tc.code)
		}
	}
}

func TestFromEngineMapsWrappedCodes(t *testing.T) {
	badSize := fromEngine("put", &mdbx.OpError{Op: "mdbx_put", Errno: mdbx.Errno(CodeBadValSize)})
	if !IsBadValueSize(badSize) {
		t.Errorf("bad value size not classified: %v", badSize)
	}
	if Code(badSize) != CodeBadValSize {
		t.Errorf("Code = %d, want %d", Code(badSize), CodeBadValSize)
	}

	exist := fromEngine("put", &mdbx.OpError{Op: "mdbx_put", Errno: mdbx.Errno(CodeKeyExist)})
	if !IsKeyExist(exist) {
		t.Errorf("key exist not classified: %v", exist)
	}
	if Code(exist) != CodeKeyExist {
		t.Errorf("Code = %d, want %d", Code(exist), CodeKeyExist)
	}

	badDBI := fromEngine("get", &mdbx.OpError{Op: "mdbx_get", Errno: mdbx.Errno(CodeBadDBI)})
	if !IsInvalidHandle(badDBI) {
		t.Errorf("bad dbi not classified: %v", badDBI)
	}

	// An unrecognized status stays a generic engine fault but keeps
	// its code.
	full := fromEngine("put", &mdbx.OpError{Op: "mdbx_put", Errno: mdbx.Errno(CodeMapFull)})
	var e *Error
	if !errors.As(full, &e) || e.Kind != KindEngine {
		t.Errorf("map full: got %v, want engine kind", full)
	}
	if Code(full) != CodeMapFull {
		t.Errorf("Code = %d, want %d", Code(full), CodeMapFull)
	}
}
