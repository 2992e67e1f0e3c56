// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package abi

import "unsafe"

// D3DFormat is a Direct3D 9 surface format, either an enumerated value or a
// FOURCC code.
type D3DFormat uint32

// MakeFourCC returns the FOURCC code of the given four characters.
func MakeFourCC(a, b, c, d byte) D3DFormat {
	return D3DFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Surface is an opaque IDirect3DSurface9 object.
type Surface struct {
	Handle uintptr
}

type Frequency struct {
	Numerator   uint32
	Denominator uint32
}

// VideoDesc is a DXVA2_VideoDesc.
type VideoDesc struct {
	SampleWidth        uint32
	SampleHeight       uint32
	SampleFormat       uint32
	Format             D3DFormat
	InputSampleFreq    Frequency
	OutputFrameFreq    Frequency
	UABProtectionLevel uint32
	Reserved           uint32
}

// ConfigPictureDecode is a DXVA2_ConfigPictureDecode.
type ConfigPictureDecode struct {
	GuidConfigBitstreamEncryption  GUID
	GuidConfigMBcontrolEncryption  GUID
	GuidConfigResidDiffEncryption  GUID
	ConfigBitstreamRaw             uint32
	ConfigMBcontrolRasterOrder     uint32
	ConfigResidDiffHost            uint32
	ConfigSpatialResid8            uint32
	ConfigResid8Subtraction        uint32
	ConfigSpatialHost8or9Clipping  uint32
	ConfigSpatialResidInterleaved  uint32
	ConfigIntraResidUnsigned       uint32
	ConfigResidDiffAccelerator     uint32
	ConfigHostInverseScan          uint32
	ConfigSpecificIDCT             uint32
	Config4GroupedCoefs            uint32
	ConfigMinRenderTargetBuffCount uint16
	ConfigDecoderSpecific          uint16
}

// DecodeBufferDesc is a DXVA2_DecodeBufferDesc.
type DecodeBufferDesc struct {
	CompressedBufferType uint32
	BufferIndex          uint32
	DataOffset           uint32
	DataSize             uint32
	FirstMBaddress       uint32
	NumMBsInBuffer       uint32
	Width                uint32
	Height               uint32
	Stride               uint32
	ReservedBits         uint32
	PVPState             uintptr
}

type DecodeExtensionData struct {
	Function          uint32
	PrivateInputData  []byte
	PrivateOutputData []byte
}

// DecodeExecuteParams is a DXVA2_DecodeExecuteParams.
type DecodeExecuteParams struct {
	CompressedBuffers []DecodeBufferDesc
	ExtensionData     *DecodeExtensionData
}

// DecoderService is an IDirectXVideoDecoderService object (DXVA2).
type DecoderService struct {
	Vtbl *DecoderServiceVtbl
}

// DecoderServiceVtbl is the dispatch table of IDirectXVideoDecoderService.
type DecoderServiceVtbl struct {
	QueryInterface           func(this *DecoderService, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef                   func(this *DecoderService) uint32
	Release                  func(this *DecoderService) uint32
	CreateSurface            func(this *DecoderService, width, height, backBuffers uint32, format D3DFormat, pool, usage, dxvaType uint32, surfaces []*Surface, sharedHandle *uintptr) HRESULT
	GetDecoderDeviceGuids    func(this *DecoderService, count *uint32, guids *[]GUID) HRESULT
	GetDecoderRenderTargets  func(this *DecoderService, guid *GUID, count *uint32, formats *[]D3DFormat) HRESULT
	GetDecoderConfigurations func(this *DecoderService, guid *GUID, desc *VideoDesc, reserved unsafe.Pointer, count *uint32, configs *[]ConfigPictureDecode) HRESULT
	CreateVideoDecoder       func(this *DecoderService, guid *GUID, desc *VideoDesc, config *ConfigPictureDecode, renderTargets []*Surface, decoder **VideoDecoder) HRESULT
}

// Methods of DecoderServiceVtbl.
const (
	DecoderServiceCreateSurface Method = iota + Release + 1
	DecoderServiceGetDecoderDeviceGuids
	DecoderServiceGetDecoderRenderTargets
	DecoderServiceGetDecoderConfigurations
	DecoderServiceCreateVideoDecoder
)

// VideoDecoder is an IDirectXVideoDecoder object.
type VideoDecoder struct {
	Vtbl *VideoDecoderVtbl
}

// VideoDecoderVtbl is the dispatch table of IDirectXVideoDecoder.
type VideoDecoderVtbl struct {
	QueryInterface         func(this *VideoDecoder, iid *GUID, object *unsafe.Pointer) HRESULT
	AddRef                 func(this *VideoDecoder) uint32
	Release                func(this *VideoDecoder) uint32
	GetVideoDecoderService func(this *VideoDecoder, service **DecoderService) HRESULT
	GetCreationParameters  func(this *VideoDecoder, guid *GUID, desc *VideoDesc, config *ConfigPictureDecode, renderTargets *[]*Surface) HRESULT
	GetBuffer              func(this *VideoDecoder, bufferType uint32, buffer *[]byte) HRESULT
	ReleaseBuffer          func(this *VideoDecoder, bufferType uint32) HRESULT
	BeginFrame             func(this *VideoDecoder, renderTarget *Surface, pvpData []byte) HRESULT
	EndFrame               func(this *VideoDecoder, handleComplete *uintptr) HRESULT
	Execute                func(this *VideoDecoder, params *DecodeExecuteParams) HRESULT
}

// Methods of VideoDecoderVtbl.
const (
	VideoDecoderGetVideoDecoderService Method = iota + Release + 1
	VideoDecoderGetCreationParameters
	VideoDecoderGetBuffer
	VideoDecoderReleaseBuffer
	VideoDecoderBeginFrame
	VideoDecoderEndFrame
	VideoDecoderExecute
)
