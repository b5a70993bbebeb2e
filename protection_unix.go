//go:build unix

package vmem

import "golang.org/x/sys/unix"

// native encodes the bitset as PROT_* bits. The canonical bits map
// onto PROT_READ/PROT_WRITE/PROT_EXEC; bits retained through
// ProtectionFromBitsRetain pass through unchanged, since POSIX
// protection really is a bitset and platform extensions (PROT_GROWSDOWN
// and friends) are plausibly valid there.
func (p Protection) native() int {
	prot := int(p.Bits() &^ uint32(protCanonical))
	if p&ProtRead != 0 {
		prot |= unix.PROT_READ
	}
	if p&ProtWrite != 0 {
		prot |= unix.PROT_WRITE
	}
	if p&ProtExec != 0 {
		prot |= unix.PROT_EXEC
	}
	return prot
}

// protectionFromNative decodes PROT_* bits as reported by the OS.
func protectionFromNative(native int) Protection {
	var p Protection
	if native&unix.PROT_READ != 0 {
		p |= ProtRead
	}
	if native&unix.PROT_WRITE != 0 {
		p |= ProtWrite
	}
	if native&unix.PROT_EXEC != 0 {
		p |= ProtExec
	}
	return p
}
