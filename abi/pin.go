// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package abi

import "unsafe"

// Pin is an IPin object.
type Pin struct {
	Vtbl *PinVtbl
}

// PinDirection of a pin.
type PinDirection int32

const (
	PINDIR_INPUT PinDirection = iota
	PINDIR_OUTPUT
)

// PinInfo is returned by QueryPinInfo. The filter reference it contains is
// owned by the caller and must be released.
type PinInfo struct {
	Filter    *Filter
	Direction PinDirection
	Name      string
}

// PinVtbl is the dispatch table of IPin.
type PinVtbl struct {
	QueryInterface           func(this *Pin, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef                   func(this *Pin) uint32
	Release                  func(this *Pin) uint32
	Connect                  func(this *Pin, receivePin *Pin, mt *MediaType) HRESULT
	ReceiveConnection        func(this *Pin, connector *Pin, mt *MediaType) HRESULT
	Disconnect               func(this *Pin) HRESULT
	ConnectedTo              func(this *Pin, pin **Pin) HRESULT
	ConnectionMediaType      func(this *Pin, mt *MediaType) HRESULT
	QueryPinInfo             func(this *Pin, info *PinInfo) HRESULT
	QueryDirection           func(this *Pin, dir *PinDirection) HRESULT
	QueryId                  func(this *Pin, id *string) HRESULT
	QueryAccept              func(this *Pin, mt *MediaType) HRESULT
	EnumMediaTypes           func(this *Pin, enum *unsafe.Pointer) HRESULT
	QueryInternalConnections func(this *Pin, pins []*Pin, n *uint32) HRESULT
	EndOfStream              func(this *Pin) HRESULT
	BeginFlush               func(this *Pin) HRESULT
	EndFlush                 func(this *Pin) HRESULT
	NewSegment               func(this *Pin, start, stop ReferenceTime, rate float64) HRESULT
}

// Methods of PinVtbl.
const (
	PinConnect Method = iota + Release + 1
	PinReceiveConnection
	PinDisconnect
	PinConnectedTo
	PinConnectionMediaType
	PinQueryPinInfo
	PinQueryDirection
	PinQueryId
	PinQueryAccept
	PinEnumMediaTypes
	PinQueryInternalConnections
	PinEndOfStream
	PinBeginFlush
	PinEndFlush
	PinNewSegment
)

// Filter is an IBaseFilter object, reduced to the slots this package calls.
type Filter struct {
	Vtbl *FilterVtbl
}

// FilterVtbl is the IUnknown and IPersist prefix of the IBaseFilter
// dispatch table.
type FilterVtbl struct {
	QueryInterface func(this *Filter, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef         func(this *Filter) uint32
	Release        func(this *Filter) uint32
	GetClassID     func(this *Filter, clsid *GUID) HRESULT
}

// MemInputPin is an IMemInputPin object.
type MemInputPin struct {
	Vtbl *MemInputPinVtbl
}

// AllocatorProperties of a sample allocator.
type AllocatorProperties struct {
	Buffers, BufferSize, Align, Prefix int32
}

// MemInputPinVtbl is the dispatch table of IMemInputPin.
type MemInputPinVtbl struct {
	QueryInterface           func(this *MemInputPin, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef                   func(this *MemInputPin) uint32
	Release                  func(this *MemInputPin) uint32
	GetAllocator             func(this *MemInputPin, allocator *unsafe.Pointer) HRESULT
	NotifyAllocator          func(this *MemInputPin, allocator unsafe.Pointer, readOnly bool) HRESULT
	GetAllocatorRequirements func(this *MemInputPin, props *AllocatorProperties) HRESULT
	Receive                  func(this *MemInputPin, sample *MediaSample) HRESULT
	ReceiveMultiple          func(this *MemInputPin, samples []*MediaSample, processed *int32) HRESULT
	ReceiveCanBlock          func(this *MemInputPin) HRESULT
}

// Methods of MemInputPinVtbl.
const (
	MemInputPinGetAllocator Method = iota + Release + 1
	MemInputPinNotifyAllocator
	MemInputPinGetAllocatorRequirements
	MemInputPinReceive
	MemInputPinReceiveMultiple
	MemInputPinReceiveCanBlock
)

// MediaSample is an IMediaSample object.
type MediaSample struct {
	Vtbl *MediaSampleVtbl
}

// MediaSampleVtbl is the dispatch table of IMediaSample, up to GetTime.
type MediaSampleVtbl struct {
	QueryInterface func(this *MediaSample, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef         func(this *MediaSample) uint32
	Release        func(this *MediaSample) uint32
	GetPointer     func(this *MediaSample, buffer *[]byte) HRESULT
	GetSize        func(this *MediaSample) int32
	GetTime        func(this *MediaSample, start, stop *ReferenceTime) HRESULT
}
