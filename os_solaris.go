//go:build solaris || illumos

package vmem

import (
	"os"
	"unsafe"
)

// MA_* mapping flags from sys/procfs.h.
const (
	maExec   = 0x01
	maWrite  = 0x02
	maRead   = 0x04
	maShared = 0x08
	maAnon   = 0x40
	maIsm    = 0x80
	maShm    = 0x200
)

// prXMap mirrors prxmap_t, the fixed-size binary record format of
// /proc/self/xmap on illumos and Solaris.
type prXMap struct {
	Vaddr       uint64
	Size        uint64
	Mapname     [64]byte
	Offset      int64
	Mflags      int32
	Pagesize    int32
	Shmid       int32
	pad         int32
	Dev         uint64
	Ino         uint64
	Rss         uint64
	Anon        uint64
	Locked      uint64
	Pad         uint64
	HatPagesize uint64
	Filler      [7]uint64
}

// xmapSource walks a snapshot of the /proc/self/xmap records taken
// when the iteration started.
type xmapSource struct {
	entries []Region
	idx     int
}

func openRegionSource() (regionSource, error) {
	buf, err := os.ReadFile("/proc/self/xmap")
	if err != nil {
		return nil, newError(ErrProcfsInput, "open xmap", 0, 0, err)
	}
	src := &xmapSource{}
	step := unsafe.Sizeof(prXMap{})
	for off := uintptr(0); off+step <= uintptr(len(buf)); off += step {
		entry := (*prXMap)(unsafe.Pointer(&buf[off]))
		if entry.Size == 0 {
			continue
		}
		var prot Protection
		if entry.Mflags&maRead != 0 {
			prot |= ProtRead
		}
		if entry.Mflags&maWrite != 0 {
			prot |= ProtWrite
		}
		if entry.Mflags&maExec != 0 {
			prot |= ProtExec
		}
		src.entries = append(src.entries, Region{
			base:       uintptr(entry.Vaddr),
			size:       uintptr(entry.Size),
			protection: prot,
			shared:     entry.Mflags&(maShared|maIsm|maShm) != 0,
			committed:  true,
		})
	}
	return src, nil
}

func (s *xmapSource) close() {}

func (s *xmapSource) next(addr uintptr) (Region, bool, error) {
	for s.idx < len(s.entries) {
		r := s.entries[s.idx]
		if r.base+r.size > addr {
			return r, true, nil
		}
		s.idx++
	}
	return Region{}, false, nil
}
