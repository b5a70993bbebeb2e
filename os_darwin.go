//go:build darwin || ios

package vmem

/*
#include <mach/mach.h>
#include <mach/mach_vm.h>
#include <mach/vm_region.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// machRegionSource enumerates regions with mach_vm_region_recurse.
// The call is stateless: it returns the region containing or
// following any probe address, so the source carries no cursor of
// its own.
type machRegionSource struct{}

func openRegionSource() (regionSource, error) {
	return machRegionSource{}, nil
}

func (machRegionSource) close() {}

func (machRegionSource) next(addr uintptr) (Region, bool, error) {
	address := C.mach_vm_address_t(addr)
	size := C.mach_vm_size_t(0)
	depth := C.natural_t(0)
	var info C.vm_region_submap_info_data_64_t
	for {
		// VM_REGION_SUBMAP_INFO_COUNT_64 expands to a sizeof cast cgo
		// cannot evaluate; the count is the info size in ints.
		count := C.mach_msg_type_number_t(unsafe.Sizeof(info) / 4)
		kr := C.mach_vm_region_recurse(C.mach_port_t(C.mach_task_self_),
			&address, &size, &depth,
			C.vm_region_recurse_info_t(unsafe.Pointer(&info)), &count)
		if kr == C.KERN_INVALID_ADDRESS {
			return Region{}, false, nil
		}
		if kr != C.KERN_SUCCESS {
			return Region{}, false, newError(ErrSystemCall, "mach_vm_region_recurse",
				addr, 0, fmt.Errorf("kern_return_t %d", int(kr)))
		}
		// A submap entry spans nested mappings; descend until the
		// leaf that actually describes the pages.
		if info.is_submap != 0 {
			depth++
			continue
		}
		shared := false
		switch info.share_mode {
		case C.SM_SHARED, C.SM_TRUESHARED, C.SM_SHARED_ALIASED:
			shared = true
		}
		return Region{
			base:       uintptr(address),
			size:       uintptr(size),
			protection: protectionFromNative(int(info.protection)),
			shared:     shared,
			committed:  true,
		}, true, nil
	}
}
