package vmem

import (
	"fmt"
	"unsafe"
)

// Region describes a maximal run of contiguous pages sharing
// identical attributes. Regions are immutable snapshots: the mapping
// they describe may change the moment another thread touches the
// address space.
//
// The base is page-aligned and the size is a positive multiple of the
// page size; base+size never wraps the address space.
type Region struct {
	base       uintptr
	size       uintptr
	protection Protection
	shared     bool
	guarded    bool
	committed  bool
}

// Base returns the page-aligned base address of the region.
func (r Region) Base() uintptr {
	return r.base
}

// Len returns the region size in bytes.
func (r Region) Len() uintptr {
	return r.size
}

// AsRange returns the region's half-open byte range [lo, hi).
func (r Region) AsRange() (lo, hi uintptr) {
	return r.base, r.base + r.size
}

// AsPtr returns the region's base as a pointer. Dereferencing it is
// only sound if the region's protection permits the access and the
// mapping still exists.
func (r Region) AsPtr() unsafe.Pointer {
	return unsafe.Pointer(r.base)
}

// Protection returns the access rights the region held when it was
// enumerated.
func (r Region) Protection() Protection {
	return r.protection
}

// IsShared reports whether the region is backed by a shared mapping.
func (r Region) IsShared() bool {
	return r.shared
}

// IsGuarded reports whether the platform marks the region's pages
// with page-guard semantics. Only Windows signals this; it is always
// false elsewhere.
func (r Region) IsGuarded() bool {
	return r.guarded
}

// IsCommitted reports whether the region is backed by commit charge.
// Reserved-but-uncommitted address space is a Windows distinction;
// regions are always committed on other platforms.
func (r Region) IsCommitted() bool {
	return r.committed
}

// Contains reports whether addr lies inside the region.
func (r Region) Contains(addr uintptr) bool {
	return addr >= r.base && addr-r.base < r.size
}

// String renders the region like a /proc/self/maps line.
func (r Region) String() string {
	flags := ""
	if r.shared {
		flags += " shared"
	}
	if r.guarded {
		flags += " guard"
	}
	if !r.committed {
		flags += " reserved"
	}
	return fmt.Sprintf("%#x-%#x %s%s", r.base, r.base+r.size, r.protection, flags)
}

// sameClass reports whether two regions carry identical
// characterization and may be coalesced when adjacent.
func (r Region) sameClass(other Region) bool {
	return r.protection == other.protection &&
		r.shared == other.shared &&
		r.guarded == other.guarded &&
		r.committed == other.committed
}
