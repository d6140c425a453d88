// Package share implements copy-only value transfer between contexts.
// A Handle owns an independent, type-tagged copy of a value's data over a
// closed set of shareable kinds; materializing it reconstructs an
// equivalent value in whichever context asks. Nothing in this package
// ever hands out a live reference across the isolation boundary.
package share

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrNotShareable = errors.New("value is not shareable")

// Kind tags the payload a handle carries.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Handle is a self-contained copy of a value's data, valid no matter
// which context is active and after the originating context is gone.
type Handle struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	s    string
	data []byte

	released atomic.Bool
}

// IsShareable reports whether a value's concrete type is on the
// allow-list of immutable, self-contained kinds. It never panics; any
// internal failure counts as not shareable.
func IsShareable(v interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := Capture(v)
	return err == nil
}

// Capture copies a value's data into a new handle. Containers and
// resource handles are rejected, not traversed.
func Capture(v interface{}) (*Handle, error) {
	switch val := v.(type) {
	case nil:
		return &Handle{kind: KindNone}, nil
	case bool:
		return &Handle{kind: KindBool, b: val}, nil
	case int:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case int8:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case int16:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case int32:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case int64:
		return &Handle{kind: KindInt, i: val}, nil
	case uint8:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case uint16:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case uint32:
		return &Handle{kind: KindInt, i: int64(val)}, nil
	case float32:
		return &Handle{kind: KindFloat, f: float64(val)}, nil
	case float64:
		return &Handle{kind: KindFloat, f: val}, nil
	case string:
		return &Handle{kind: KindString, s: val}, nil
	case []byte:
		data := make([]byte, len(val))
		copy(data, val)
		return &Handle{kind: KindBytes, data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotShareable, v)
	}
}

// Kind reports the handle's type tag.
func (h *Handle) Kind() Kind {
	return h.kind
}

// Materialize reconstructs an equivalent value. Byte payloads are cloned
// so the handle's copy stays independent. A released handle materializes
// as nil.
func (h *Handle) Materialize() interface{} {
	if h.released.Load() {
		return nil
	}
	switch h.kind {
	case KindBool:
		return h.b
	case KindInt:
		return h.i
	case KindFloat:
		return h.f
	case KindString:
		return h.s
	case KindBytes:
		data := make([]byte, len(h.data))
		copy(data, h.data)
		return data
	default:
		return nil
	}
}

// Release frees the captured data. It is idempotent and total: a second
// call is a no-op, and it cannot fault even if the originating context
// has already been torn down, in which case it degrades to this
// local-only clear.
func (h *Handle) Release() {
	if h.released.Swap(true) {
		return
	}
	h.s = ""
	h.data = nil
}
