package vmem

import "sync/atomic"

// Protect changes the protection of every page in
// [PageFloor(addr), PageCeil(addr+length)) to prot. The OS call is
// issued once over the whole range; atomicity across pages is not
// guaranteed.
func Protect(addr, length uintptr, prot Protection) error {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return err
	}
	return osProtect(base, size, prot)
}

// protSegment records the protection one stretch of pages held
// before ProtectWithGuard overwrote it.
type protSegment struct {
	base uintptr
	size uintptr
	prot Protection
}

// ProtectGuard owns the obligation to restore the per-page
// protections a range held before ProtectWithGuard changed them.
// Handles must not be copied; pass the pointer to transfer ownership.
type ProtectGuard struct {
	base     uintptr
	size     uintptr
	applied  Protection
	segments []protSegment
	released uint32
}

// ProtectWithGuard records the possibly heterogeneous per-page
// protections over [PageFloor(addr), PageCeil(addr+length)), then
// applies prot uniformly and returns a guard that restores the
// recorded state on Release.
//
// Capture fails with ErrUnmappedRegion if any page in the range is
// unmapped, including Windows address space that is reserved but not
// committed (protection cannot be restored onto uncommitted pages).
//
// The restore invariant holds provided no intervening call alters
// mappings in the range; behavior under intervening modification is
// unspecified but never corrupts the process.
func ProtectWithGuard(addr, length uintptr, prot Protection) (*ProtectGuard, error) {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return nil, err
	}
	regions, err := QueryRange(addr, length)
	if err != nil {
		return nil, err
	}
	end := base + size
	segments := make([]protSegment, 0, len(regions))
	for _, r := range regions {
		if !r.IsCommitted() {
			return nil, newError(ErrUnmappedRegion, "protect with guard", r.base, r.size, nil)
		}
		lo, hi := r.AsRange()
		if lo < base {
			lo = base
		}
		if hi > end {
			hi = end
		}
		segments = append(segments, protSegment{base: lo, size: hi - lo, prot: r.Protection()})
	}
	if err := osProtect(base, size, prot); err != nil {
		return nil, err
	}
	return &ProtectGuard{base: base, size: size, applied: prot, segments: segments}, nil
}

// Base returns the page-aligned base of the guarded range.
func (g *ProtectGuard) Base() uintptr {
	return g.base
}

// Len returns the guarded range's size in bytes.
func (g *ProtectGuard) Len() uintptr {
	return g.size
}

// Release re-applies the recorded protections in capture order.
// Segments whose prior protection equals the applied one are
// skipped. Release is idempotent and best-effort: restoration
// failures cannot be surfaced and are swallowed.
func (g *ProtectGuard) Release() {
	if !atomic.CompareAndSwapUint32(&g.released, 0, 1) {
		return
	}
	for _, seg := range g.segments {
		if seg.prot == g.applied {
			continue
		}
		_ = osProtect(seg.base, seg.size, seg.prot)
	}
}
