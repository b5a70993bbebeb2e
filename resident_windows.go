//go:build windows

package vmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	psapi                 = windows.NewLazySystemDLL("psapi.dll")
	procQueryWorkingSetEx = psapi.NewProc("QueryWorkingSetEx")
)

// psapiWorkingSetExInformation mirrors PSAPI_WORKING_SET_EX_INFORMATION;
// bit 0 of the attribute block is the Valid flag.
type psapiWorkingSetExInformation struct {
	VirtualAddress    uintptr
	VirtualAttributes uintptr
}

// isResident reports whether every page of the normalized range is
// in the process working set. Best-effort: residency can change
// underfoot.
func isResident(addr, length uintptr) (bool, error) {
	base, size, err := pageRange(addr, length)
	if err != nil {
		return false, err
	}
	pages := size / PageSize()
	info := make([]psapiWorkingSetExInformation, pages)
	for i := range info {
		info[i].VirtualAddress = base + uintptr(i)*PageSize()
	}
	handle := windows.CurrentProcess()
	r1, _, callErr := procQueryWorkingSetEx.Call(uintptr(handle),
		uintptr(unsafe.Pointer(&info[0])),
		uintptr(len(info))*unsafe.Sizeof(info[0]))
	if r1 == 0 {
		return false, newError(ErrSystemCall, "QueryWorkingSetEx", base, size, callErr)
	}
	for i := range info {
		if info[i].VirtualAttributes&1 == 0 {
			return false, nil
		}
	}
	return true, nil
}
