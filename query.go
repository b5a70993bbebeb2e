package vmem

// regionSource is the per-OS enumeration backend. Each platform file
// provides openRegionSource; the iterator layer on top owns
// coalescing and the traversal bounds.
//
// next returns the mapped region containing addr or, failing that,
// the nearest mapped region above it, with its true page-aligned
// extents. ok is false when nothing is mapped at or beyond addr.
type regionSource interface {
	next(addr uintptr) (r Region, ok bool, err error)
	close()
}

// RegionIter is a lazy, forward-only, non-restartable iterator over
// the regions intersecting a queried range. Unmapped gaps are
// skipped; adjacent regions with identical characterization are
// coalesced into one.
//
// The iterator follows the bufio.Scanner shape:
//
//	it := vmem.QueryIter(addr, length)
//	defer it.Close()
//	for it.Next() {
//		r := it.Region()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
//
// The sequence is not a snapshot. If another thread maps or unmaps
// while iterating, the iterator stays sound but may skip entries or
// return stale ones.
type RegionIter struct {
	src        regionSource
	cursor     uintptr
	end        uintptr
	cur        Region
	pending    Region
	hasPending bool
	err        error
	done       bool
}

// QueryIter returns an iterator over the regions intersecting
// [PageFloor(addr), PageCeil(addr+length)). Argument validation
// errors surface on the first Next.
func QueryIter(addr, length uintptr) *RegionIter {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return &RegionIter{err: err, done: true}
	}
	src, err := openRegionSource()
	if err != nil {
		return &RegionIter{err: err, done: true}
	}
	return &RegionIter{src: src, cursor: base, end: base + size}
}

// Next advances to the next region. It returns false when the range
// is exhausted or a step failed; Err distinguishes the two.
func (it *RegionIter) Next() bool {
	if it.done {
		return false
	}
	for {
		// The last region may extend past the queried end; once the
		// pending run reaches it there is nothing left to merge.
		if it.hasPending && it.pending.base+it.pending.size >= it.end {
			return it.emitPending()
		}
		r, ok, err := it.src.next(it.cursor)
		if err != nil {
			it.fail(err)
			return false
		}
		if !ok || r.base >= it.end {
			if it.hasPending {
				return it.emitPending()
			}
			it.stop()
			return false
		}
		if r.base+r.size <= it.cursor {
			it.fail(newError(ErrSystemCall, "region enumeration stalled", it.cursor, 0, nil))
			return false
		}
		it.cursor = r.base + r.size
		if !it.hasPending {
			it.pending, it.hasPending = r, true
			continue
		}
		if it.pending.base+it.pending.size == r.base && it.pending.sameClass(r) {
			it.pending.size += r.size
			continue
		}
		it.cur = it.pending
		it.pending = r
		return true
	}
}

// Region returns the region produced by the last successful Next.
func (it *RegionIter) Region() Region {
	return it.cur
}

// Err returns the error that terminated iteration, if any.
func (it *RegionIter) Err() error {
	return it.err
}

// Close releases the iterator's OS resources. It is idempotent and
// safe to call at any point; a fully consumed iterator has already
// closed itself.
func (it *RegionIter) Close() {
	it.stop()
}

func (it *RegionIter) emitPending() bool {
	it.cur = it.pending
	it.hasPending = false
	it.stop()
	return true
}

func (it *RegionIter) fail(err error) {
	it.err = err
	it.hasPending = false
	it.stop()
}

func (it *RegionIter) stop() {
	it.done = true
	if it.src != nil {
		it.src.close()
		it.src = nil
	}
}

// Query returns the region containing the page of addr. It fails
// with ErrUnmappedRegion when that page is not mapped.
func Query(addr uintptr) (Region, error) {
	it := QueryIter(addr, 1)
	defer it.Close()
	if it.Next() {
		return it.Region(), nil
	}
	if err := it.Err(); err != nil {
		return Region{}, err
	}
	return Region{}, newError(ErrUnmappedRegion, "query", addr, 0, nil)
}

// QueryRange eagerly collects the regions covering
// [PageFloor(addr), PageCeil(addr+length)). Unlike QueryIter it
// demands full coverage: any unmapped page inside the range fails
// with ErrUnmappedRegion. The returned regions have strictly
// increasing bases; the first may begin before addr's page floor and
// the last may end past the range's page ceiling.
func QueryRange(addr, length uintptr) ([]Region, error) {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return nil, err
	}
	it := QueryIter(addr, length)
	defer it.Close()
	var regions []Region
	cursor := base
	for it.Next() {
		r := it.Region()
		if r.base > cursor {
			return nil, newError(ErrUnmappedRegion, "query range", cursor, base+size-cursor, nil)
		}
		cursor = r.base + r.size
		regions = append(regions, r)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	if len(regions) == 0 || cursor < base+size {
		return nil, newError(ErrUnmappedRegion, "query range", cursor, base+size-cursor, nil)
	}
	return regions, nil
}
