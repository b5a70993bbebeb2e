//go:build netbsd

package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sysctl path to the process map: {CTL_VM, VM_PROC, VM_PROC_MAP,
// pid, sizeof(struct kinfo_vmentry)}.
const (
	ctlVM     = 2
	vmProc    = 16
	vmProcMap = 1
)

// kinfo_vmentry constants from sys/sysctl.h.
const (
	kvmeTypeNone   = 0
	kvmeTypeObject = 1
	kvmeTypeVnode  = 2
	kvmeTypeKern   = 3
	kvmeTypeDevice = 4
	kvmeTypeAnon   = 5

	kvmeProtRead  = 1
	kvmeProtWrite = 2
	kvmeProtExec  = 4

	kvmeFlagCOW = 1
)

// kinfoVmentry mirrors the fixed part of struct kinfo_vmentry; the
// trailing kve_path buffer is part of the record but never decoded.
type kinfoVmentry struct {
	Start         uint64
	End           uint64
	Offset        uint64
	Type          uint32
	Flags         uint32
	Count         uint32
	WiredCount    uint32
	Advice        uint32
	Attributes    uint32
	Protection    uint32
	MaxProtection uint32
	RefCount      uint32
	Inheritance   uint32
	VnFileid      uint64
	VnSize        uint64
	VnFsid        uint64
	VnRdev        uint64
	VnType        uint32
	VnMode        uint32
	Path          [1024]byte
}

// vmmapSource walks a snapshot of the VM_PROC_MAP entries taken when
// the iteration started.
type vmmapSource struct {
	entries []Region
	idx     int
}

func openRegionSource() (regionSource, error) {
	step := unsafe.Sizeof(kinfoVmentry{})
	mib := [5]int32{ctlVM, vmProc, vmProcMap, int32(os.Getpid()), int32(step)}
	var needed uintptr
	if err := rawSysctl(mib[:], nil, &needed); err != nil {
		return nil, newError(ErrSystemCall, "vm.proc.map", 0, 0, err)
	}
	if needed == 0 {
		return &vmmapSource{}, nil
	}
	buf := make([]byte, needed)
	if err := rawSysctl(mib[:], unsafe.Pointer(&buf[0]), &needed); err != nil {
		return nil, newError(ErrSystemCall, "vm.proc.map", 0, 0, err)
	}
	src := &vmmapSource{}
	for off := uintptr(0); off+step <= needed; off += step {
		entry := (*kinfoVmentry)(unsafe.Pointer(&buf[off]))
		if entry.End <= entry.Start || entry.Type == kvmeTypeNone {
			continue
		}
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
		case kvmeTypeVnode, kvmeTypeDevice:
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

func rawSysctl(mib []int32, old unsafe.Pointer, oldlen *uintptr) error {
	_, _, errno := unix.Syscall6(unix.SYS___SYSCTL,
		uintptr(unsafe.Pointer(&mib[0])), uintptr(len(mib)),
		uintptr(old), uintptr(unsafe.Pointer(oldlen)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
