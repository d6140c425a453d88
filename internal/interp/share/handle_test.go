package share

import (
	"bytes"
	"errors"
	"testing"
)

func TestIsShareable(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{name: "nil", value: nil, want: true},
		{name: "bool", value: true, want: true},
		{name: "int", value: 42, want: true},
		{name: "int64", value: int64(-7), want: true},
		{name: "float64", value: 3.14, want: true},
		{name: "string", value: "hello", want: true},
		{name: "bytes", value: []byte{1, 2, 3}, want: true},
		{name: "slice", value: []string{"a"}, want: false},
		{name: "map", value: map[string]int{"a": 1}, want: false},
		{name: "struct", value: struct{ X int }{1}, want: false},
		{name: "func", value: func() {}, want: false},
		{name: "channel", value: make(chan int), want: false},
		{name: "pointer", value: new(int), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsShareable(tt.value); got != tt.want {
				t.Errorf("IsShareable(%T) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCaptureMaterialize(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		wantKind Kind
		want     interface{}
	}{
		{name: "none", value: nil, wantKind: KindNone, want: nil},
		{name: "bool", value: true, wantKind: KindBool, want: true},
		{name: "int widened", value: 42, wantKind: KindInt, want: int64(42)},
		{name: "float", value: 2.5, wantKind: KindFloat, want: 2.5},
		{name: "string", value: "text", wantKind: KindString, want: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Capture(tt.value)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if h.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", h.Kind(), tt.wantKind)
			}
			if got := h.Materialize(); got != tt.want {
				t.Errorf("Materialize() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCaptureRejectsContainers(t *testing.T) {
	_, err := Capture([]int{1, 2})
	if !errors.Is(err, ErrNotShareable) {
		t.Errorf("Capture(slice) error = %v, want ErrNotShareable", err)
	}
}

func TestBytesCopiedBothWays(t *testing.T) {
	src := []byte("payload")
	h, err := Capture(src)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	// Mutating the source must not reach the handle's copy.
	src[0] = 'X'
	out := h.Materialize().([]byte)
	if !bytes.Equal(out, []byte("payload")) {
		t.Errorf("handle data affected by source mutation: %q", out)
	}

	// Mutating a materialized copy must not reach the handle either.
	out[1] = 'Y'
	again := h.Materialize().([]byte)
	if !bytes.Equal(again, []byte("payload")) {
		t.Errorf("handle data affected by materialized mutation: %q", again)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	h, err := Capture("data")
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	h.Release()
	h.Release() // second call must be a no-op

	if got := h.Materialize(); got != nil {
		t.Errorf("Materialize() after release = %v, want nil", got)
	}
}
