// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package abi

import "unsafe"

// DDPixelFormat is a DirectDraw surface pixel format.
type DDPixelFormat struct {
	Size            uint32
	Flags           uint32
	FourCC          uint32
	RGBBitCount     uint32
	RBitMask        uint32
	GBitMask        uint32
	BBitMask        uint32
	RGBAlphaBitMask uint32
}

// AMVAUncompDataInfo describes the uncompressed surfaces of an accelerator
// session.
type AMVAUncompDataInfo struct {
	UncompWidth       uint32
	UncompHeight      uint32
	UncompPixelFormat DDPixelFormat
}

type AMVAInternalMemInfo struct {
	ScratchMemAlloc uint32
}

// AMVACompBufferInfo describes one type of compressed buffer.
type AMVACompBufferInfo struct {
	NumCompBuffers  uint32
	WidthToCreate   uint32
	HeightToCreate  uint32
	BytesToAllocate uint32
	Caps            uint32
	PixelFormat     DDPixelFormat
}

type AMVABeginFrameInfo struct {
	DestSurfaceIndex uint32
	InputData        []byte
	OutputData       []byte
}

type AMVAEndFrameInfo struct {
	MiscData []byte
}

// AMVABufferInfo references a compressed buffer, previously acquired with
// GetBuffer, in an Execute call.
type AMVABufferInfo struct {
	TypeIndex   uint32
	BufferIndex uint32
	DataOffset  uint32
	DataSize    uint32
}

// VideoAccelerator is an IAMVideoAccelerator object (DXVA1).
type VideoAccelerator struct {
	Vtbl *VideoAcceleratorVtbl
}

// VideoAcceleratorVtbl is the dispatch table of IAMVideoAccelerator.
type VideoAcceleratorVtbl struct {
	QueryInterface            func(this *VideoAccelerator, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef                    func(this *VideoAccelerator) uint32
	Release                   func(this *VideoAccelerator) uint32
	GetVideoAcceleratorGUIDs  func(this *VideoAccelerator, numGuids *uint32, guids []GUID) HRESULT
	GetUncompFormatsSupported func(this *VideoAccelerator, guid *GUID, numFormats *uint32, formats []DDPixelFormat) HRESULT
	GetInternalMemInfo        func(this *VideoAccelerator, guid *GUID, info *AMVAUncompDataInfo, mem *AMVAInternalMemInfo) HRESULT
	GetCompBufferInfo         func(this *VideoAccelerator, guid *GUID, info *AMVAUncompDataInfo, numTypes *uint32, bufferInfo []AMVACompBufferInfo) HRESULT
	GetInternalCompBufferInfo func(this *VideoAccelerator, numTypes *uint32, bufferInfo []AMVACompBufferInfo) HRESULT
	BeginFrame                func(this *VideoAccelerator, info *AMVABeginFrameInfo) HRESULT
	EndFrame                  func(this *VideoAccelerator, info *AMVAEndFrameInfo) HRESULT
	GetBuffer                 func(this *VideoAccelerator, typeIndex, bufferIndex uint32, readOnly bool, buffer *[]byte, stride *int32) HRESULT
	ReleaseBuffer             func(this *VideoAccelerator, typeIndex, bufferIndex uint32) HRESULT
	Execute                   func(this *VideoAccelerator, function uint32, privateInput, privateOutput []byte, buffers []AMVABufferInfo) HRESULT
	QueryRenderStatus         func(this *VideoAccelerator, typeIndex, bufferIndex, flags uint32) HRESULT
	DisplayFrame              func(this *VideoAccelerator, flipToIndex uint32, sample *MediaSample) HRESULT
}

// Methods of VideoAcceleratorVtbl.
const (
	AcceleratorGetVideoAcceleratorGUIDs Method = iota + Release + 1
	AcceleratorGetUncompFormatsSupported
	AcceleratorGetInternalMemInfo
	AcceleratorGetCompBufferInfo
	AcceleratorGetInternalCompBufferInfo
	AcceleratorBeginFrame
	AcceleratorEndFrame
	AcceleratorGetBuffer
	AcceleratorReleaseBuffer
	AcceleratorExecute
	AcceleratorQueryRenderStatus
	AcceleratorDisplayFrame
)
