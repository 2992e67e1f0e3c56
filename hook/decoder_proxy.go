// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"unsafe"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/dxva"
	"github.com/sqreen/go-dxvahook/internal/sqlib/sqatomic"
)

// decoderProxy is a video decoder forwarding every call to the decoder it
// wraps, while logging the calls and the payloads of the compressed buffers.
// It owns the reference to the wrapped decoder it was created with, and
// releases it along with its own last reference.
type decoderProxy struct {
	// Value given to the pipeline. Its dispatch table is the proxy's own.
	decoder abi.VideoDecoder
	vtbl    abi.VideoDecoderVtbl

	inner       *abi.VideoDecoder
	mode        abi.GUID
	refs        sqatomic.AtomicInt32
	buffers     bufferTable
	interceptor *Interceptor
}

// newDecoderProxy returns a proxy holding one reference.
func newDecoderProxy(i *Interceptor, mode abi.GUID, inner *abi.VideoDecoder) *decoderProxy {
	p := &decoderProxy{
		inner:       inner,
		mode:        mode,
		interceptor: i,
	}
	p.refs.Store(1)
	p.vtbl = abi.VideoDecoderVtbl{
		QueryInterface:         p.queryInterface,
		AddRef:                 p.addRef,
		Release:                p.release,
		GetVideoDecoderService: p.getVideoDecoderService,
		GetCreationParameters:  p.getCreationParameters,
		GetBuffer:              p.getBuffer,
		ReleaseBuffer:          p.releaseBuffer,
		BeginFrame:             p.beginFrame,
		EndFrame:               p.endFrame,
		Execute:                p.execute,
	}
	p.decoder.Vtbl = &p.vtbl
	return p
}

func (p *decoderProxy) object() *abi.VideoDecoder { return &p.decoder }

func (p *decoderProxy) log(format string, v ...interface{}) {
	p.interceptor.diagnose(func() { p.interceptor.diag.Log(format, v...) })
}

func (p *decoderProxy) queryInterface(_ *abi.VideoDecoder, iid *abi.GUID, object *unsafe.Pointer) abi.HRESULT {
	if iid == nil || object == nil {
		return abi.E_POINTER
	}
	switch *iid {
	case abi.IID_IUnknown, abi.IID_IDirectXVideoDecoder:
		*object = unsafe.Pointer(&p.decoder)
		p.addRef(&p.decoder)
		return abi.S_OK
	default:
		*object = nil
		return abi.E_NOINTERFACE
	}
}

func (p *decoderProxy) addRef(*abi.VideoDecoder) uint32 {
	return uint32(p.refs.Increment())
}

func (p *decoderProxy) release(*abi.VideoDecoder) uint32 {
	refs, released := p.refs.DecrementIfPositive()
	if released && refs == 0 {
		p.inner.Vtbl.Release(p.inner)
		p.log("decoder proxy destroyed\n")
	}
	return uint32(refs)
}

func (p *decoderProxy) getVideoDecoderService(_ *abi.VideoDecoder, service **abi.DecoderService) abi.HRESULT {
	hr := p.inner.Vtbl.GetVideoDecoderService(p.inner, service)
	p.log("IDirectXVideoDecoder::GetVideoDecoderService  hr = %s\n", hr)
	return hr
}

func (p *decoderProxy) getCreationParameters(_ *abi.VideoDecoder, guid *abi.GUID, desc *abi.VideoDesc, config *abi.ConfigPictureDecode, renderTargets *[]*abi.Surface) abi.HRESULT {
	hr := p.inner.Vtbl.GetCreationParameters(p.inner, guid, desc, config, renderTargets)
	p.log("IDirectXVideoDecoder::GetCreationParameters hr = %s\n", hr)
	return hr
}

func (p *decoderProxy) getBuffer(_ *abi.VideoDecoder, bufferType uint32, buffer *[]byte) abi.HRESULT {
	hr := p.inner.Vtbl.GetBuffer(p.inner, bufferType, buffer)
	if buffer != nil && hr.Succeeded() {
		p.buffers.set(bufferType, *buffer)
	}
	return hr
}

func (p *decoderProxy) releaseBuffer(_ *abi.VideoDecoder, bufferType uint32) abi.HRESULT {
	return p.inner.Vtbl.ReleaseBuffer(p.inner, bufferType)
}

func (p *decoderProxy) beginFrame(_ *abi.VideoDecoder, renderTarget *abi.Surface, pvpData []byte) abi.HRESULT {
	hr := p.inner.Vtbl.BeginFrame(p.inner, renderTarget, pvpData)
	p.log("IDirectXVideoDecoder::BeginFrame pRenderTarget = %08x,  hr = %s", surfaceHandle(renderTarget), hr)
	return hr
}

func (p *decoderProxy) endFrame(_ *abi.VideoDecoder, handleComplete *uintptr) abi.HRESULT {
	hr := p.inner.Vtbl.EndFrame(p.inner, handleComplete)
	var handle uintptr
	if handleComplete != nil {
		handle = *handleComplete
	}
	p.log("IDirectXVideoDecoder::EndFrame  Handle=0x%08x  hr = %s\n", handle, hr)
	return hr
}

func (p *decoderProxy) execute(_ *abi.VideoDecoder, params *abi.DecodeExecuteParams) abi.HRESULT {
	if params != nil {
		p.interceptor.diagnose(func() { p.logExecute(params) })
	}
	hr := p.inner.Vtbl.Execute(p.inner, params)
	switch {
	case params == nil:
		p.log("IDirectXVideoDecoder::Execute  hr = %s", hr)
	case params.ExtensionData != nil:
		ext := params.ExtensionData
		p.log("IDirectXVideoDecoder::Execute  %d buffer, fct = %d  (in=%d, out=%d),  hr = %s",
			len(params.CompressedBuffers), ext.Function, len(ext.PrivateInputData), len(ext.PrivateOutputData), hr)
	default:
		p.log("IDirectXVideoDecoder::Execute  %d buffer, hr = %s", len(params.CompressedBuffers), hr)
	}
	return hr
}

// logExecute logs the descriptions of the compressed buffers and their
// payloads, according to the decode mode family.
func (p *decoderProxy) logExecute(params *abi.DecodeExecuteParams) {
	d := p.interceptor.diag
	h264 := dxva.IsH264Bitstream(p.mode)
	sliceInfos := dxva.IsVC1Bitstream(p.mode) || dxva.IsMPEG2Bitstream(p.mode)

	for n := range params.CompressedBuffers {
		desc := &params.CompressedBuffers[n]
		d.Log("%s", diag.DecodeBufferDescLine(desc))
		typ, size := desc.CompressedBufferType, desc.DataSize
		data := p.buffers.get(typ, desc.DataOffset, size)

		switch typ {
		case dxva.DXVA2PictureParametersBuffer:
			switch {
			case h264:
				if pp, ok := abi.DecodePicParamsH264(data); ok {
					d.PicParamsH264(pp)
				}
			case sliceInfos:
				if pp, ok := abi.DecodePictureParameters(data); ok {
					d.PictureParameters(pp)
				}
			}

		case dxva.DXVA2SliceControlBuffer:
			switch {
			case h264 && size%uint32(abi.SizeofSliceH264Long) == 0:
				d.SlicesH264Long(abi.DecodeSlicesH264Long(data, int(size)/abi.SizeofSliceH264Long))
			case h264 && size%uint32(abi.SizeofSliceH264Short) == 0:
				d.SlicesH264Short(abi.DecodeSlicesH264Short(data, int(size)/abi.SizeofSliceH264Short))
			case sliceInfos:
				d.SliceInfos(abi.DecodeSliceInfos(data, int(size)/abi.SizeofSliceInfo))
			}

		case dxva.DXVA2InverseQuantizationMatrixBuffer:
			d.DumpMatrix(data)

		case dxva.DXVA2BitStreamDataBuffer:
			d.Bitstream(int(size), data)
			d.DumpBitstream(data)
		}
	}
}
