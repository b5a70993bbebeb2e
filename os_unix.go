//go:build unix

package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func osPageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// rangeBytes views a raw page range as a byte slice so it can feed
// the x/sys wrappers, which all take slices.
func rangeBytes(base, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
}

func osAlloc(hint, size uintptr, prot Protection) (uintptr, error) {
	flags := unix.MAP_PRIVATE | unix.MAP_ANON | platformMapFlags(prot)
	ptr, err := unix.MmapPtr(-1, 0, unsafe.Pointer(hint), size, prot.native(), flags)
	if err != nil {
		op := "alloc"
		if hint != 0 {
			op = "alloc at"
		}
		switch err {
		case unix.ENOMEM, unix.EAGAIN:
			return 0, newError(ErrOutOfMemory, op, hint, size, err)
		case unix.EINVAL:
			if hint != 0 {
				return 0, newError(ErrInvalidMapping, op, hint, size, err)
			}
			return 0, newError(ErrInvalidParameter, op, hint, size, err)
		case unix.EACCES, unix.EPERM:
			return 0, newError(ErrAccessDenied, op, hint, size, err)
		default:
			return 0, newError(ErrSystemCall, op, hint, size, err)
		}
	}
	return uintptr(ptr), nil
}

func osFree(base, size uintptr) {
	_ = unix.MunmapPtr(unsafe.Pointer(base), size)
}

func osProtect(base, size uintptr, prot Protection) error {
	err := unix.Mprotect(rangeBytes(base, size), prot.native())
	if err == nil {
		return nil
	}
	switch err {
	case unix.ENOMEM:
		// POSIX reports unmapped pages in the range as ENOMEM.
		return newError(ErrUnmappedRegion, "protect", base, size, err)
	case unix.EACCES, unix.EPERM:
		return newError(ErrAccessDenied, "protect", base, size, err)
	case unix.EINVAL:
		return newError(ErrInvalidParameter, "protect", base, size, err)
	default:
		return newError(ErrSystemCall, "protect", base, size, err)
	}
}

func osLock(base, size uintptr) error {
	err := unix.Mlock(rangeBytes(base, size))
	if err == nil {
		return nil
	}
	switch err {
	case unix.ENOMEM, unix.EAGAIN:
		// ENOMEM covers both RLIMIT_MEMLOCK and unmapped pages; the
		// kernel does not let us tell them apart.
		return newError(ErrOutOfMemory, "lock", base, size, err)
	case unix.EPERM, unix.EACCES:
		return newError(ErrAccessDenied, "lock", base, size, err)
	case unix.EINVAL:
		return newError(ErrInvalidParameter, "lock", base, size, err)
	default:
		return newError(ErrSystemCall, "lock", base, size, err)
	}
}

func osUnlock(base, size uintptr) error {
	if err := unix.Munlock(rangeBytes(base, size)); err != nil {
		return newError(ErrSystemCall, "unlock", base, size, err)
	}
	return nil
}
