//go:build windows

package vmem

// Windows page protection constants. The PAGE_* values are selection
// codes rather than a bitset, so they live here as plain numbers; the
// modifier bits (guard, cache) genuinely OR on top.
const (
	pageNoAccess         = 0x01
	pageReadOnly         = 0x02
	pageReadWrite        = 0x04
	pageWriteCopy        = 0x08
	pageExecute          = 0x10
	pageExecuteRead      = 0x20
	pageExecuteReadWrite = 0x40
	pageExecuteWriteCopy = 0x80
	pageGuard            = 0x100
	pageNoCache          = 0x200
	pageWriteCombine     = 0x400
)

// native selects the least upper bound PAGE_* code for the requested
// bits. Windows cannot express write-only or write+execute pages, so
// those widen to their readable forms. Bits retained through
// ProtectionFromBitsRetain cannot ride along in a selection code and
// are filtered here.
func (p Protection) native() uint32 {
	switch p & protCanonical {
	case ProtNone:
		return pageNoAccess
	case ProtRead:
		return pageReadOnly
	case ProtWrite, ProtReadWrite:
		return pageReadWrite
	case ProtExec:
		return pageExecute
	case ProtReadExec:
		return pageExecuteRead
	default:
		return pageExecuteReadWrite
	}
}

// protectionFromNative decodes a PAGE_* selection code, ignoring the
// guard and cache modifier bits. Copy-on-write codes report as
// writable: that is what the pages grant to this process.
func protectionFromNative(native uint32) Protection {
	switch native &^ (pageGuard | pageNoCache | pageWriteCombine) {
	case pageReadOnly:
		return ProtRead
	case pageReadWrite, pageWriteCopy:
		return ProtReadWrite
	case pageExecute:
		return ProtExec
	case pageExecuteRead:
		return ProtReadExec
	case pageExecuteReadWrite, pageExecuteWriteCopy:
		return ProtReadWriteExec
	default:
		return ProtNone
	}
}
