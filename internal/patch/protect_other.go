// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

//go:build !linux && !windows
// +build !linux,!windows

package patch

import (
	"runtime"

	"golang.org/x/xerrors"
)

var systemProtector Protector = unsupportedProtector{}

// unsupportedProtector denies every protection change.
type unsupportedProtector struct{}

func (unsupportedProtector) Unprotect(uintptr, uintptr) (func() error, error) {
	return nil, xerrors.Errorf("memory protection changes are not supported on %s: %w", runtime.GOOS, ErrDenied)
}

func (unsupportedProtector) FlushInstructionCache(uintptr, uintptr) error { return nil }
