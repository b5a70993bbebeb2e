//go:build freebsd

package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// kinfo_vmentry constants from sys/user.h.
const (
	kvmeTypeNone      = 0
	kvmeTypeDefault   = 1
	kvmeTypeVnode     = 2
	kvmeTypeSwap      = 3
	kvmeTypeDevice    = 4
	kvmeTypePhys      = 5
	kvmeTypeDead      = 6
	kvmeTypeSG        = 7
	kvmeTypeMgtDevice = 8

	kvmeProtRead  = 1
	kvmeProtWrite = 2
	kvmeProtExec  = 4

	kvmeFlagCOW = 1
)

// kinfoVmentryHeader is the leading, fixed part of kinfo_vmentry.
// Records in the sysctl buffer are variable-length; kve_structsize
// gives each record's true extent.
type kinfoVmentryHeader struct {
	Structsize      int32
	Type            int32
	Start           uint64
	End             uint64
	Offset          uint64
	VnFileid        uint64
	VnFsid          uint32
	Flags           int32
	Resident        int32
	PrivateResident int32
	Protection      int32
	RefCount        int32
	ShadowCount     int32
}

// vmmapSource walks a snapshot of the kern.proc.vmmap entries taken
// when the iteration started.
type vmmapSource struct {
	entries []Region
	idx     int
}

func openRegionSource() (regionSource, error) {
	buf, err := unix.SysctlRaw("kern.proc.vmmap", os.Getpid())
	if err != nil {
		return nil, newError(ErrSystemCall, "kern.proc.vmmap", 0, 0, err)
	}
	src := &vmmapSource{}
	for off := 0; off+int(unsafe.Sizeof(kinfoVmentryHeader{})) <= len(buf); {
		entry := (*kinfoVmentryHeader)(unsafe.Pointer(&buf[off]))
		if entry.Structsize <= 0 {
			break
		}
		if entry.Type != kvmeTypeNone && entry.Type != kvmeTypeDead {
			var prot Protection
			if entry.Protection&kvmeProtRead != 0 {
				prot |= ProtRead
			}
			if entry.Protection&kvmeProtWrite != 0 {
				prot |= ProtWrite
			}
			if entry.Protection&kvmeProtExec != 0 {
				prot |= ProtExec
			}
			shared := false
			switch entry.Type {
			case kvmeTypeVnode, kvmeTypeDevice, kvmeTypePhys, kvmeTypeSG, kvmeTypeMgtDevice:
				shared = entry.Flags&kvmeFlagCOW == 0
			}
			src.entries = append(src.entries, Region{
				base:       uintptr(entry.Start),
				size:       uintptr(entry.End - entry.Start),
				protection: prot,
				shared:     shared,
				committed:  true,
			})
		}
		off += int(entry.Structsize)
	}
	return src, nil
}

func (s *vmmapSource) close() {}

func (s *vmmapSource) next(addr uintptr) (Region, bool, error) {
	for s.idx < len(s.entries) {
		r := s.entries[s.idx]
		if r.base+r.size > addr {
			return r, true, nil
		}
		s.idx++
	}
	return Region{}, false, nil
}
