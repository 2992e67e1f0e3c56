// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package patch

import (
	"golang.org/x/sys/windows"
	"golang.org/x/xerrors"
)

var systemProtector Protector = virtualProtector{}

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

// virtualProtector makes tables writable with VirtualProtect. Tables of
// loaded modules are made copy-on-write, as the mapped image is shared among
// processes. Private memory does not support copy-on-write and is made
// read-write instead.
type virtualProtector struct{}

func (virtualProtector) Unprotect(addr, size uintptr) (restore func() error, err error) {
	var old uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_WRITECOPY, &old); err != nil {
		if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
			return nil, xerrors.Errorf("VirtualProtect: %v: %w", err, ErrDenied)
		}
	}
	return func() error {
		var unused uint32
		return windows.VirtualProtect(addr, size, old, &unused)
	}, nil
}

func (virtualProtector) FlushInstructionCache(addr, size uintptr) error {
	if err := procFlushInstructionCache.Find(); err != nil {
		return err
	}
	r, _, err := procFlushInstructionCache.Call(uintptr(windows.CurrentProcess()), addr, size)
	if r == 0 {
		return err
	}
	return nil
}
