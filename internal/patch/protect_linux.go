// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package patch

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sqreen/go-dxvahook/internal/sqlib/sqerrors"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

var systemProtector Protector = mprotectProtector{mapsFile: "/proc/self/maps"}

// mprotectProtector adds the write permission to the pages of the range
// which do not already have it, with the protection they had read from the
// process memory map.
type mprotectProtector struct {
	mapsFile string
}

// mapping is a range of pages with the same protection.
type mapping struct {
	start, end uintptr
	prot       int
}

func (p mprotectProtector) Unprotect(addr, size uintptr) (restore func() error, err error) {
	pageSize := uintptr(os.Getpagesize())
	start := addr &^ (pageSize - 1)
	end := (addr + size + pageSize - 1) &^ (pageSize - 1)

	f, err := os.Open(p.mapsFile)
	if err != nil {
		return nil, sqerrors.Wrap(err, "could not read the process memory map")
	}
	defer f.Close()
	mappings, err := readMappings(f, start, end)
	if err != nil {
		return nil, err
	}

	var changed []mapping
	restoreChanged := func() error {
		var errs sqerrors.ErrorCollection
		for _, m := range changed {
			errs.Add(mprotect(m.start, m.end-m.start, m.prot))
		}
		return errs.ToError()
	}
	for _, m := range mappings {
		if m.prot&unix.PROT_WRITE != 0 {
			continue
		}
		if err := mprotect(m.start, m.end-m.start, m.prot|unix.PROT_WRITE); err != nil {
			if restoreErr := restoreChanged(); restoreErr != nil {
				return nil, sqerrors.Wrapf(restoreErr, "could not undo a partial protection change after error `%v`", err)
			}
			return nil, xerrors.Errorf("mprotect: %v: %w", err, ErrDenied)
		}
		changed = append(changed, m)
	}
	return restoreChanged, nil
}

// FlushInstructionCache does nothing: function words are data, and no
// instruction bytes are modified.
func (mprotectProtector) FlushInstructionCache(uintptr, uintptr) error { return nil }

func mprotect(addr, size uintptr, prot int) error {
	if _, _, errno := unix.Syscall(unix.SYS_MPROTECT, addr, size, uintptr(prot)); errno != 0 {
		return errno
	}
	return nil
}

// readMappings returns the parts of the memory map covering [start, end).
// Every page of the range must be mapped.
func readMappings(r io.Reader, start, end uintptr) ([]mapping, error) {
	var mappings []mapping
	next := start
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && next < end {
		// Format: `start-end perms offset dev inode path`
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		bounds := strings.SplitN(fields[0], "-", 2)
		if len(bounds) != 2 {
			return nil, sqerrors.Errorf("unexpected memory map line `%s`", scanner.Text())
		}
		lo, err := strconv.ParseUint(bounds[0], 16, 64)
		if err != nil {
			return nil, sqerrors.Wrapf(err, "unexpected memory map line `%s`", scanner.Text())
		}
		hi, err := strconv.ParseUint(bounds[1], 16, 64)
		if err != nil {
			return nil, sqerrors.Wrapf(err, "unexpected memory map line `%s`", scanner.Text())
		}
		m := mapping{start: uintptr(lo), end: uintptr(hi), prot: parsePerms(fields[1])}
		if m.end <= next {
			continue
		}
		if m.start > next {
			break
		}
		m.start = next
		if m.end > end {
			m.end = end
		}
		mappings = append(mappings, m)
		next = m.end
	}
	if err := scanner.Err(); err != nil {
		return nil, sqerrors.Wrap(err, "could not read the process memory map")
	}
	if next < end {
		return nil, xerrors.Errorf("address %#x is not mapped: %w", next, ErrDenied)
	}
	return mappings, nil
}

func parsePerms(perms string) (prot int) {
	for i, flag := range []int{unix.PROT_READ, unix.PROT_WRITE, unix.PROT_EXEC} {
		if i < len(perms) && perms[i] != '-' {
			prot |= flag
		}
	}
	return prot
}
