//go:build linux || android || darwin || ios || freebsd || openbsd || netbsd

package vmem

import "golang.org/x/sys/unix"

// isResident reports whether every page of the normalized range is
// currently resident in physical memory. Best-effort: residency can
// change underfoot.
func isResident(addr, length uintptr) (bool, error) {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return false, err
	}
	vec := make([]byte, size/PageSize())
	if err := unix.Mincore(rangeBytes(base, size), vec); err != nil {
		return false, newError(ErrSystemCall, "mincore", base, size, err)
	}
	for _, v := range vec {
		if v&1 == 0 {
			return false, nil
		}
	}
	return true, nil
}
