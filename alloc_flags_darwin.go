//go:build darwin || ios

package vmem

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// platformMapFlags adds MAP_JIT on Apple silicon whenever the
// requested protection includes read, write and execute together; a
// write+execute request without read does not get the flag. Without
// MAP_JIT the kernel rejects rwx pages outright on arm64.
func platformMapFlags(prot Protection) int {
	if runtime.GOARCH == "arm64" && prot.Contains(ProtReadWriteExec) {
		return unix.MAP_JIT
	}
	return 0
}
