package mdbxt

import (
	"encoding/json"
	"reflect"
	"sync"
)

// Serializer converts values of one type to and from raw bytes.
// Unmarshal receives borrowed engine memory and must return a value
// that owns its data.
type Serializer[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// SerializerFunc adapts a pair of functions into a Serializer.
type SerializerFunc[T any] struct {
	MarshalFunc   func(T) ([]byte, error)
	UnmarshalFunc func([]byte) (T, error)
}

func (s SerializerFunc[T]) Marshal(v T) ([]byte, error) {
	return s.MarshalFunc(v)
}

func (s SerializerFunc[T]) Unmarshal(b []byte) (T, error) {
	return s.UnmarshalFunc(b)
}

// Registry maps type identities to serializers. Registration is
// last-write-wins; a lookup miss is a programming error surfaced as a
// serializer-not-found error, never a data condition.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]any)}
}

// DefaultRegistry is consulted by environments that were not given an
// explicit registry. It ships with serializers for byte slices,
// strings, booleans, and fixed-width integers.
var DefaultRegistry = newBuiltinRegistry()

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register associates a serializer with T, replacing any previous
// registration for the type.
func Register[T any](r *Registry, s Serializer[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[typeOf[T]()] = s
}

// Lookup resolves the serializer registered for T.
func Lookup[T any](r *Registry) (Serializer[T], error) {
	r.mu.RLock()
	raw, ok := r.byType[typeOf[T]()]
	r.mu.RUnlock()
	if !ok {
		return nil, newErrorf(KindSerializer, "no serializer registered for %s", typeOf[T]())
	}
	return raw.(Serializer[T]), nil
}

// Built-in serializers. Integers use the machine's native byte layout
// at fixed width, so integer values double as IntegerKey table keys.

func bytesSerializer() Serializer[[]byte] {
	return SerializerFunc[[]byte]{
		MarshalFunc: func(b []byte) ([]byte, error) { return b, nil },
		UnmarshalFunc: func(b []byte) ([]byte, error) {
			out := make([]byte, len(b))
			copy(out, b)
			return out, nil
		},
	}
}

func stringSerializer() Serializer[string] {
	return SerializerFunc[string]{
		MarshalFunc:   func(s string) ([]byte, error) { return []byte(s), nil },
		UnmarshalFunc: func(b []byte) (string, error) { return string(b), nil },
	}
}

func boolSerializer() Serializer[bool] {
	return SerializerFunc[bool]{
		MarshalFunc: func(v bool) ([]byte, error) {
			if v {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		},
		UnmarshalFunc: func(b []byte) (bool, error) {
			if len(b) != 1 {
				return false, newErrorf(KindBadValueSize, "bool is %d bytes, want 1", len(b))
			}
			return b[0] != 0, nil
		},
	}
}

func fixedIntSerializer[T uint16 | uint32 | uint64 | int16 | int32 | int64](width int) Serializer[T] {
	return SerializerFunc[T]{
		MarshalFunc: func(v T) ([]byte, error) {
			b := make([]byte, width)
			switch width {
			case 2:
				putUint16Native(b, uint16(v))
			case 4:
				putUint32Native(b, uint32(v))
			default:
				putUint64Native(b, uint64(v))
			}
			return b, nil
		},
		UnmarshalFunc: func(b []byte) (T, error) {
			if len(b) != width {
				return 0, newErrorf(KindBadValueSize, "integer is %d bytes, want %d", len(b), width)
			}
			switch width {
			case 2:
				return T(getUint16Native(b)), nil
			case 4:
				return T(getUint32Native(b)), nil
			default:
				return T(getUint64Native(b)), nil
			}
		},
	}
}

// JSONSerializer serializes T through encoding/json, for struct types
// that have no hand-written codec.
func JSONSerializer[T any]() Serializer[T] {
	return SerializerFunc[T]{
		MarshalFunc: func(v T) ([]byte, error) { return json.Marshal(v) },
		UnmarshalFunc: func(b []byte) (T, error) {
			var out T
			err := json.Unmarshal(b, &out)
			return out, err
		},
	}
}

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	Register(r, bytesSerializer())
	Register(r, stringSerializer())
	Register(r, boolSerializer())
	Register(r, fixedIntSerializer[uint16](2))
	Register(r, fixedIntSerializer[uint32](4))
	Register(r, fixedIntSerializer[uint64](8))
	Register(r, fixedIntSerializer[int16](2))
	Register(r, fixedIntSerializer[int32](4))
	Register(r, fixedIntSerializer[int64](8))
	return r
}

func registryOf(txn *Txn) *Registry {
	if txn != nil && txn.env != nil && txn.env.registry != nil {
		return txn.env.registry
	}
	return DefaultRegistry
}

// PutTyped encodes key and val through the environment's registry and
// stores the pair.
func PutTyped[K, V any](txn *Txn, t *Table, key K, val V, flags uint) error {
	r := registryOf(txn)
	ks, err := Lookup[K](r)
	if err != nil {
		return err
	}
	vs, err := Lookup[V](r)
	if err != nil {
		return err
	}
	kb, err := ks.Marshal(key)
	if err != nil {
		return err
	}
	vb, err := vs.Marshal(val)
	if err != nil {
		return err
	}
	return txn.Put(t, kb, vb, flags)
}

// GetTyped looks up a typed key and decodes the value. A miss returns
// V's zero value with found == false and never invokes the decoder.
func GetTyped[K, V any](txn *Txn, t *Table, key K) (V, bool, error) {
	var zero V
	r := registryOf(txn)
	ks, err := Lookup[K](r)
	if err != nil {
		return zero, false, err
	}
	vs, err := Lookup[V](r)
	if err != nil {
		return zero, false, err
	}
	kb, err := ks.Marshal(key)
	if err != nil {
		return zero, false, err
	}
	v, err := txn.Get(t, kb)
	if err != nil {
		return zero, false, err
	}
	if !v.Exists() {
		return zero, false, nil
	}
	b, err := v.Bytes()
	if err != nil {
		return zero, false, err
	}
	out, err := vs.Unmarshal(b)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// DelTyped removes a typed key, reporting whether an entry existed.
func DelTyped[K any](txn *Txn, t *Table, key K) (bool, error) {
	ks, err := Lookup[K](registryOf(txn))
	if err != nil {
		return false, err
	}
	kb, err := ks.Marshal(key)
	if err != nil {
		return false, err
	}
	return txn.Del(t, kb)
}
