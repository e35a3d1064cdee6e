package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
)

// ErrNilData is returned when a descriptor is requested for absent data.
var ErrNilData = errors.New("descriptor data must not be nil")

// validator is implemented by source data that can be present but empty,
// such as a URL wrapping nothing.
type validator interface {
	Valid() bool
}

// Canonical is implemented by any value that can identify an image source.
//
// CanonicalString must return the same text for logically identical values.
type Canonical interface {
	CanonicalString() string
}

// Descriptor is an immutable (data, key) pair.
//
// The zero Descriptor has an empty key and is not valid; use New.
// Descriptors are not comparable: compare with Equal and index maps by Key.
type Descriptor[T Canonical] struct {
	_    [0]func()
	data T
	key  string
}

// New creates a descriptor for data, hashing its canonical form once.
//
// Returns ErrNilData if data is a nil interface, pointer, map, slice, func or
// chan, or if it reports itself invalid through a Valid method.
func New[T Canonical](data T) (Descriptor[T], error) {
	if isNil(data) {
		return Descriptor[T]{}, ErrNilData
	}
	if v, ok := any(data).(validator); ok && !v.Valid() {
		return Descriptor[T]{}, ErrNilData
	}
	return Descriptor[T]{data: data, key: Key(data.CanonicalString())}, nil
}

// MustNew is like New but panics on absent data.
func MustNew[T Canonical](data T) Descriptor[T] {
	d, err := New(data)
	if err != nil {
		panic(err)
	}
	return d
}

// Data returns the source data the descriptor was created from.
func (d Descriptor[T]) Data() T {
	return d.data
}

// Key returns the hex SHA-256 key of the data's canonical form.
func (d Descriptor[T]) Key() string {
	return d.key
}

// Equal reports whether both descriptors carry the same key.
func (d Descriptor[T]) Equal(other Descriptor[T]) bool {
	return d.key == other.key
}

// String returns a debugging representation.
func (d Descriptor[T]) String() string {
	if d.key == "" {
		return "DataDescriptor [invalid]"
	}
	return fmt.Sprintf("DataDescriptor [key: %s, data: %s]", d.key, d.data.CanonicalString())
}

// Key computes the descriptor key for a canonical string.
//
// Returns the full 64-character lowercase hex SHA-256 digest.
func Key(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// IsKey reports whether s has the shape of a descriptor key.
func IsKey(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
