//go:build linux || android

package vmem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// procMapsSource enumerates regions by scanning /proc/self/maps. The
// file is a forward-only text stream sorted by address, which matches
// the iterator's monotonic cursor exactly: each next call consumes
// lines until one ends past the probe address.
type procMapsSource struct {
	file *os.File
	scan *bufio.Scanner
}

func openRegionSource() (regionSource, error) {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return nil, newError(ErrProcfsInput, "open maps", 0, 0, err)
	}
	return &procMapsSource{file: f, scan: bufio.NewScanner(f)}, nil
}

func (s *procMapsSource) close() {
	_ = s.file.Close()
}

func (s *procMapsSource) next(addr uintptr) (Region, bool, error) {
	for s.scan.Scan() {
		line := s.scan.Text()
		if line == "" {
			continue
		}
		r, err := parseMapsLine(line)
		if err != nil {
			return Region{}, false, err
		}
		if r.base+r.size <= addr {
			continue
		}
		return r, true, nil
	}
	if err := s.scan.Err(); err != nil {
		return Region{}, false, newError(ErrProcfsInput, "read maps", addr, 0, err)
	}
	return Region{}, false, nil
}

// parseMapsLine parses one line of the form
//
//	start-end perms offset dev inode [pathname]
//
// Addresses are bare hex without a 0x prefix, the pathname is
// optional, and columns are separated by arbitrary whitespace.
func parseMapsLine(line string) (Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Region{}, newError(ErrProcfsInput, "parse maps", 0, 0,
			fmt.Errorf("short line %q", line))
	}
	span, perms := fields[0], fields[1]
	dash := strings.IndexByte(span, '-')
	if dash < 0 {
		return Region{}, newError(ErrProcfsInput, "parse maps", 0, 0,
			fmt.Errorf("malformed range %q", span))
	}
	start, err := strconv.ParseUint(span[:dash], 16, 64)
	if err != nil {
		return Region{}, newError(ErrProcfsInput, "parse maps", 0, 0, err)
	}
	end, err := strconv.ParseUint(span[dash+1:], 16, 64)
	if err != nil || end <= start {
		return Region{}, newError(ErrProcfsInput, "parse maps", 0, 0,
			fmt.Errorf("malformed range %q", span))
	}
	if len(perms) < 4 {
		return Region{}, newError(ErrProcfsInput, "parse maps", 0, 0,
			fmt.Errorf("malformed perms %q", perms))
	}
	var prot Protection
	if perms[0] == 'r' {
		prot |= ProtRead
	}
	if perms[1] == 'w' {
		prot |= ProtWrite
	}
	if perms[2] == 'x' {
		prot |= ProtExec
	}
	return Region{
		base:       uintptr(start),
		size:       uintptr(end - start),
		protection: prot,
		shared:     perms[3] == 's',
		committed:  true,
	}, nil
}
