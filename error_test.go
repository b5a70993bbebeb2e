package vmem

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	kinds := map[ErrorKind]string{
		ErrUnmappedRegion:        "UnmappedRegion",
		ErrInvalidParameter:      "InvalidParameter",
		ErrInvalidMapping:        "InvalidMapping",
		ErrOutOfMemory:           "OutOfMemory",
		ErrAccessDenied:          "AccessDenied",
		ErrOverflow:              "Overflow",
		ErrUnsupportedProtection: "UnsupportedProtection",
		ErrProcfsInput:           "ProcfsInput",
		ErrSystemCall:            "SystemCall",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(kind), got, want)
		}
	}
	if got := ErrorKind(99).String(); got != "ErrorKind(99)" {
		t.Errorf("unknown kind rendered as %q", got)
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("native failure 42")
	err := newError(ErrSystemCall, "probe", 0x1000, 0x2000, cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("errors.As failed to find *Error")
	}
	if e.Kind != ErrSystemCall || e.Addr != 0x1000 || e.Len != 0x2000 {
		t.Errorf("unexpected error fields: %+v", e)
	}
	msg := err.Error()
	for _, part := range []string{"probe", "SystemCall", "0x1000", "native failure 42"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q is missing %q", msg, part)
		}
	}
}

func TestKindOf(t *testing.T) {
	inner := newError(ErrUnmappedRegion, "query", 0, 0, nil)
	wrapped := fmt.Errorf("surface context: %w", inner)

	if kind, ok := KindOf(wrapped); !ok || kind != ErrUnmappedRegion {
		t.Errorf("KindOf(wrapped) = (%v, %v)", kind, ok)
	}
	if _, ok := KindOf(errors.New("foreign")); ok {
		t.Error("KindOf matched a foreign error")
	}
	if !IsKind(inner, ErrUnmappedRegion) {
		t.Error("IsKind rejected its own kind")
	}
	if IsKind(inner, ErrOutOfMemory) {
		t.Error("IsKind accepted the wrong kind")
	}
}
