//go:build windows

package vmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// Memory state and type codes not exported by x/sys/windows.
const (
	memFree   = 0x10000
	memMapped = 0x40000
	memImage  = 0x1000000
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo = kernel32.NewProc("GetSystemInfo")
)

// systemInfo mirrors SYSTEM_INFO.
type systemInfo struct {
	ProcessorArchitecture     uint16
	reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

func osPageSize() uintptr {
	var si systemInfo
	_, _, _ = procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	return uintptr(si.PageSize)
}

func osAlloc(hint, size uintptr, prot Protection) (uintptr, error) {
	const kind = windows.MEM_COMMIT | windows.MEM_RESERVE
	base, err := windows.VirtualAlloc(hint, size, kind, prot.native())
	if err != nil && hint != 0 {
		// The hint is best-effort; fall back to an OS-chosen base the
		// way POSIX mmap relocates a taken hint.
		base, err = windows.VirtualAlloc(0, size, kind, prot.native())
	}
	if err != nil {
		op := "alloc"
		if hint != 0 {
			op = "alloc at"
		}
		switch err {
		case windows.ERROR_NOT_ENOUGH_MEMORY, windows.ERROR_COMMITMENT_LIMIT:
			return 0, newError(ErrOutOfMemory, op, hint, size, err)
		case windows.ERROR_INVALID_ADDRESS:
			return 0, newError(ErrInvalidMapping, op, hint, size, err)
		case windows.ERROR_INVALID_PARAMETER:
			return 0, newError(ErrInvalidParameter, op, hint, size, err)
		case windows.ERROR_ACCESS_DENIED:
			return 0, newError(ErrAccessDenied, op, hint, size, err)
		default:
			return 0, newError(ErrSystemCall, op, hint, size, err)
		}
	}
	return base, nil
}

func osFree(base, size uintptr) {
	// MEM_RELEASE frees the whole reservation and demands size 0.
	_ = windows.VirtualFree(base, 0, windows.MEM_RELEASE)
}

func osProtect(base, size uintptr, prot Protection) error {
	var old uint32
	err := windows.VirtualProtect(base, size, prot.native(), &old)
	if err == nil {
		return nil
	}
	switch err {
	case windows.ERROR_INVALID_ADDRESS:
		return newError(ErrUnmappedRegion, "protect", base, size, err)
	case windows.ERROR_INVALID_PARAMETER:
		return newError(ErrInvalidParameter, "protect", base, size, err)
	case windows.ERROR_ACCESS_DENIED:
		return newError(ErrAccessDenied, "protect", base, size, err)
	default:
		return newError(ErrSystemCall, "protect", base, size, err)
	}
}

func osLock(base, size uintptr) error {
	err := windows.VirtualLock(base, size)
	if err == nil {
		return nil
	}
	switch err {
	case windows.ERROR_NOT_ENOUGH_MEMORY, windows.ERROR_COMMITMENT_LIMIT, windows.ERROR_WORKING_SET_QUOTA:
		return newError(ErrOutOfMemory, "lock", base, size, err)
	case windows.ERROR_ACCESS_DENIED:
		return newError(ErrAccessDenied, "lock", base, size, err)
	case windows.ERROR_INVALID_ADDRESS:
		return newError(ErrUnmappedRegion, "lock", base, size, err)
	default:
		return newError(ErrSystemCall, "lock", base, size, err)
	}
}

func osUnlock(base, size uintptr) error {
	if err := windows.VirtualUnlock(base, size); err != nil {
		return newError(ErrSystemCall, "unlock", base, size, err)
	}
	return nil
}

// virtualQuerySource walks the address space with repeated
// VirtualQuery calls. It carries no state: the kernel hands back the
// containing region for any probe address.
type virtualQuerySource struct{}

func openRegionSource() (regionSource, error) {
	return virtualQuerySource{}, nil
}

func (virtualQuerySource) close() {}

func (virtualQuerySource) next(addr uintptr) (Region, bool, error) {
	for {
		var info windows.MemoryBasicInformation
		if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
			// Probing past the highest user address fails; the walk
			// is over.
			return Region{}, false, nil
		}
		if info.State == memFree {
			next := info.BaseAddress + info.RegionSize
			if next <= addr {
				return Region{}, false, nil
			}
			addr = next
			continue
		}
		committed := info.State == windows.MEM_COMMIT
		r := Region{
			base: info.BaseAddress,
			size: info.RegionSize,
			// Section-backed pages are shared mappings whether they
			// come from a mapped file or a loaded image.
			shared:    info.Type == memMapped || info.Type == memImage,
			committed: committed,
		}
		if committed {
			r.protection = protectionFromNative(info.Protect)
			r.guarded = info.Protect&pageGuard != 0
		}
		return r, true, nil
	}
}
