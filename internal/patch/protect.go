// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package patch

// Protector changes the memory protection of dispatch tables around their
// mutation.
type Protector interface {
	// Unprotect makes the memory range writable and returns the function
	// restoring its prior protection. Nothing must have changed when an error
	// is returned.
	Unprotect(addr, size uintptr) (restore func() error, err error)
	// FlushInstructionCache invalidates the cached instructions of the memory
	// range.
	FlushInstructionCache(addr, size uintptr) error
}

// Writable is the protector of tables living in memory which is already
// writable. It does nothing.
var Writable Protector = writable{}

type writable struct{}

func (writable) Unprotect(uintptr, uintptr) (func() error, error) {
	return func() error { return nil }, nil
}

func (writable) FlushInstructionCache(uintptr, uintptr) error { return nil }

// System returns the protector of the host operating system.
func System() Protector { return systemProtector }
