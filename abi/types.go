// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package abi declares the binary views of the objects handed over by the
// media pipeline. Every object starts with a pointer to its dispatch table, a
// struct of function slots in the interface's declared method order, shared
// by every instance of the same implementation. Field order is part of the
// contract: it must match the interface declaration slot for slot.
package abi

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GUID is the in-memory layout of a COM globally unique identifier.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// GUID_NULL is the zero GUID.
var GUID_NULL GUID

// MustParseGUID parses the canonical textual form of a GUID, with or without
// curly braces, and panics when it is invalid. It is meant for well-known
// identifiers.
func MustParseGUID(s string) GUID {
	g, err := ParseGUID(s)
	if err != nil {
		panic(err)
	}
	return g
}

// ParseGUID parses the canonical textual form of a GUID, with or without
// curly braces.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(strings.Trim(s, "{}"))
	if err != nil {
		return GUID{}, err
	}
	var g GUID
	g.Data1 = binary.BigEndian.Uint32(u[0:4])
	g.Data2 = binary.BigEndian.Uint16(u[4:6])
	g.Data3 = binary.BigEndian.Uint16(u[6:8])
	copy(g.Data4[:], u[8:16])
	return g, nil
}

// String returns the registry form of the GUID, ie. in upper case between
// curly braces.
func (g GUID) String() string {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], g.Data1)
	binary.BigEndian.PutUint16(u[4:6], g.Data2)
	binary.BigEndian.PutUint16(u[6:8], g.Data3)
	copy(u[8:16], g.Data4[:])
	return "{" + strings.ToUpper(u.String()) + "}"
}

// IsNull returns true for GUID_NULL.
func (g GUID) IsNull() bool { return g == GUID_NULL }

// HRESULT is a COM method result. Negative values, once read as signed, are
// failures.
type HRESULT uint32

const (
	S_OK                    HRESULT = 0x00000000
	S_FALSE                 HRESULT = 0x00000001
	E_NOINTERFACE           HRESULT = 0x80004002
	E_POINTER               HRESULT = 0x80004003
	E_FAIL                  HRESULT = 0x80004005
	E_INVALIDARG            HRESULT = 0x80070057
	VFW_E_TYPE_NOT_ACCEPTED HRESULT = 0x8004022A
)

func (hr HRESULT) Succeeded() bool { return int32(hr) >= 0 }
func (hr HRESULT) Failed() bool    { return int32(hr) < 0 }

func (hr HRESULT) String() string { return fmt.Sprintf("%08x", uint32(hr)) }

// ReferenceTime is a media time in 100-nanosecond units.
type ReferenceTime int64

// MediaType describes the format of a pin connection.
type MediaType struct {
	MajorType           GUID
	Subtype             GUID
	FixedSizeSamples    bool
	TemporalCompression bool
	SampleSize          uint32
	FormatType          GUID
	Format              []byte
}

// Method identifies a dispatch table slot by its position in the table.
type Method int

// Methods of IUnknown, the first three slots of every table.
const (
	QueryInterface Method = iota
	AddRef
	Release
)
