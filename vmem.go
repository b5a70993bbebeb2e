// Package vmem provides a uniform API over the operating system's
// page-level memory primitives: querying, allocating, protecting and
// locking pages of the calling process's address space.
//
// Every operation is expressed in terms of regions. A region is a
// maximal run of contiguous pages that share identical attributes
// (protection, sharing, guard and commit status). The per-OS data
// sources differ wildly — VirtualQuery on Windows, /proc/self/maps on
// Linux, mach_vm_region_recurse on Darwin, sysctl vmmap interfaces on
// the BSDs, /proc/self/xmap on illumos — and this package translates
// each of them into the same region stream.
//
// Operations that take an address/length pair normalize it to page
// boundaries first: the base is rounded down and the end rounded up,
// so the affected range is always [PageFloor(addr), PageCeil(addr+len)).
//
// The library is synchronous and re-entrant. Concurrent calls from
// multiple goroutines are sound, but they are not linearizable against
// each other or against mappings modified by other code: an enumerated
// snapshot can go stale the moment another thread maps or unmaps.
package vmem
