//go:build openbsd

package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sysctl path to the process map from sys/sysctl.h.
const (
	ctlKern       = 1  // CTL_KERN
	kernProcVmmap = 80 // KERN_PROC_VMMAP
)

// UVM entry types from uvm/uvm_extern.h.
const (
	uvmEtObj         = 0x01
	uvmEtSubmap      = 0x02
	uvmEtCopyOnWrite = 0x04
)

// kinfoVmentry mirrors struct kinfo_vmentry from sys/sysctl.h.
type kinfoVmentry struct {
	Start         uint64
	End           uint64
	Guard         uint64
	Fspace        uint64
	FspaceAugment uint64
	Offset        uint64
	WiredCount    int32
	Etype         int32
	Protection    int32
	MaxProtection int32
	Advice        int32
	Inheritance   int32
	Flags         uint8
	pad           [7]byte
}

// vmmapSource walks a snapshot of the KERN_PROC_VMMAP entries taken
// when the iteration started, fetched with the usual two-call
// pattern: size probe, then fill.
type vmmapSource struct {
	entries []Region
	idx     int
}

func openRegionSource() (regionSource, error) {
	mib := [3]int32{ctlKern, kernProcVmmap, int32(os.Getpid())}
	var needed uintptr
	if err := rawSysctl(mib[:], nil, &needed); err != nil {
		return nil, newError(ErrSystemCall, "kern.proc.vmmap", 0, 0, err)
	}
	if needed == 0 {
		return &vmmapSource{}, nil
	}
	buf := make([]byte, needed)
	if err := rawSysctl(mib[:], unsafe.Pointer(&buf[0]), &needed); err != nil {
		return nil, newError(ErrSystemCall, "kern.proc.vmmap", 0, 0, err)
	}
	src := &vmmapSource{}
	step := unsafe.Sizeof(kinfoVmentry{})
	for off := uintptr(0); off+step <= needed; off += step {
		entry := (*kinfoVmentry)(unsafe.Pointer(&buf[off]))
		if entry.End <= entry.Start || entry.Etype&uvmEtSubmap != 0 {
			continue
		}
		var prot Protection
		if entry.Protection&unix.PROT_READ != 0 {
			prot |= ProtRead
		}
		if entry.Protection&unix.PROT_WRITE != 0 {
			prot |= ProtWrite
		}
		if entry.Protection&unix.PROT_EXEC != 0 {
			prot |= ProtExec
		}
		src.entries = append(src.entries, Region{
			base:       uintptr(entry.Start),
			size:       uintptr(entry.End - entry.Start),
			protection: prot,
			shared:     entry.Etype&uvmEtObj != 0 && entry.Etype&uvmEtCopyOnWrite == 0,
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
