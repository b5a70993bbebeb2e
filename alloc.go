package vmem

import (
	"sync/atomic"
	"unsafe"
)

// Allocation owns a freshly mapped contiguous run of pages. It is a
// unique handle: the mapping lives until Free runs, and Free releases
// the entire originally allocated range exactly once. Partial release
// is not supported.
//
// Handles must not be copied; pass the pointer to transfer ownership.
type Allocation struct {
	base  uintptr
	size  uintptr
	prot  Protection
	freed uint32
}

// Alloc maps PageCeil(size) bytes of zero-initialized anonymous
// memory at an OS-chosen address with the requested protection.
//
// A zero size fails with ErrInvalidParameter; kernel refusal with
// ErrOutOfMemory. Requesting ProtWrite without ProtRead may be
// widened by the OS; the mapping's observed protection is whatever a
// subsequent Query reports.
func Alloc(size uintptr, prot Protection) (*Allocation, error) {
	return allocate("alloc", 0, size, prot)
}

// AllocAt maps PageCeil(size) bytes at the page floor of addr. The
// hint is best-effort: the OS may relocate the mapping (POSIX mmap
// without MAP_FIXED), and the handle's Base reports where it actually
// landed. A zero addr fails with ErrInvalidMapping.
func AllocAt(addr, size uintptr, prot Protection) (*Allocation, error) {
	if addr == 0 {
		return nil, newError(ErrInvalidMapping, "alloc at", addr, size, nil)
	}
	return allocate("alloc at", PageFloor(addr), size, prot)
}

func allocate(op string, hint, size uintptr, prot Protection) (*Allocation, error) {
	if size == 0 {
		return nil, newError(ErrInvalidParameter, op, hint, size, nil)
	}
	rounded, err := PageCeil(size)
	if err != nil {
		return nil, newError(ErrOverflow, op, hint, size, nil)
	}
	base, err := osAlloc(hint, rounded, prot)
	if err != nil {
		return nil, err
	}
	return &Allocation{base: base, size: rounded, prot: prot}, nil
}

// Base returns the page-aligned base address of the mapping.
func (a *Allocation) Base() uintptr {
	return a.base
}

// Len returns the mapping's size in bytes, always a multiple of the
// page size and at least the size requested at allocation.
func (a *Allocation) Len() uintptr {
	return a.size
}

// Ptr returns the mapping's base as a pointer.
func (a *Allocation) Ptr() unsafe.Pointer {
	return unsafe.Pointer(a.base)
}

// Bytes returns the mapping as a byte slice. Accessing it is only
// sound while the allocation is alive and its protection permits the
// access.
func (a *Allocation) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(a.base)), a.size)
}

// Protection returns the protection the mapping was requested with.
func (a *Allocation) Protection() Protection {
	return a.prot
}

// Free unmaps the entire range. It is idempotent; only the first
// call releases. Release failures cannot be surfaced and are
// swallowed, so Free never reports an error.
func (a *Allocation) Free() {
	if !atomic.CompareAndSwapUint32(&a.freed, 0, 1) {
		return
	}
	osFree(a.base, a.size)
}
