// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"
	"unsafe"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/patch"
	"github.com/sqreen/go-dxvahook/internal/plog"
	"github.com/stretchr/testify/require"
)

func newTestInterceptor(t *testing.T, d diag.Logger, protector patch.Protector) (*Interceptor, *bytes.Buffer) {
	var output bytes.Buffer
	i, err := newInterceptor(plog.NewLogger(plog.Debug, &output), d, protector)
	require.NoError(t, err)
	return i, &output
}

// funcPC returns the code pointer of a function value, allowing to compare
// the function literals the slots hold.
func funcPC(f interface{}) uintptr {
	return reflect.ValueOf(f).Pointer()
}

type deniedProtector struct{}

func (deniedProtector) Unprotect(uintptr, uintptr) (func() error, error) {
	return nil, patch.ErrDenied
}

func (deniedProtector) FlushInstructionCache(uintptr, uintptr) error { return nil }

type pinCalls struct {
	newSegment, receiveConnection, disconnect int
}

func newPinVtbl(calls *pinCalls) *abi.PinVtbl {
	return &abi.PinVtbl{
		NewSegment: func(*abi.Pin, abi.ReferenceTime, abi.ReferenceTime, float64) abi.HRESULT {
			calls.newSegment++
			return abi.S_FALSE
		},
		ReceiveConnection: func(*abi.Pin, *abi.Pin, *abi.MediaType) abi.HRESULT {
			calls.receiveConnection++
			return abi.S_FALSE
		},
		Disconnect: func(*abi.Pin) abi.HRESULT {
			calls.disconnect++
			return abi.S_OK
		},
	}
}

// newConnector returns an output pin of a filter of the given class.
func newConnector(clsid abi.GUID, releases *int) *abi.Pin {
	filter := &abi.Filter{Vtbl: &abi.FilterVtbl{
		Release: func(*abi.Filter) uint32 {
			*releases++
			return 0
		},
		GetClassID: func(_ *abi.Filter, id *abi.GUID) abi.HRESULT {
			*id = clsid
			return abi.S_OK
		},
	}}
	return &abi.Pin{Vtbl: &abi.PinVtbl{
		QueryPinInfo: func(_ *abi.Pin, info *abi.PinInfo) abi.HRESULT {
			info.Filter = filter
			info.Direction = abi.PINDIR_OUTPUT
			return abi.S_OK
		},
	}}
}

func newSample(start abi.ReferenceTime, hr abi.HRESULT) *abi.MediaSample {
	return &abi.MediaSample{Vtbl: &abi.MediaSampleVtbl{
		GetTime: func(_ *abi.MediaSample, s, e *abi.ReferenceTime) abi.HRESULT {
			if hr.Succeeded() {
				*s, *e = start, start+1
			}
			return hr
		},
	}}
}

type fakeAccelerator struct {
	accelerator     abi.VideoAccelerator
	buffers         map[uint32][]byte
	getBufferResult abi.HRESULT
	calls           map[string]int
}

func newFakeAccelerator() *fakeAccelerator {
	a := &fakeAccelerator{
		buffers: make(map[uint32][]byte),
		calls:   make(map[string]int),
	}
	a.accelerator.Vtbl = &abi.VideoAcceleratorVtbl{
		GetVideoAcceleratorGUIDs: func(_ *abi.VideoAccelerator, n *uint32, guids []abi.GUID) abi.HRESULT {
			a.calls["GetVideoAcceleratorGUIDs"]++
			*n = uint32(copy(guids, []abi.GUID{abi.DXVA2_ModeH264_E, abi.DXVA2_ModeVC1_D}))
			return abi.S_OK
		},
		GetUncompFormatsSupported: func(_ *abi.VideoAccelerator, _ *abi.GUID, n *uint32, formats []abi.DDPixelFormat) abi.HRESULT {
			a.calls["GetUncompFormatsSupported"]++
			*n = uint32(copy(formats, []abi.DDPixelFormat{{Size: 32, FourCC: uint32(abi.MakeFourCC('N', 'V', '1', '2'))}}))
			return abi.S_OK
		},
		GetInternalMemInfo: func(*abi.VideoAccelerator, *abi.GUID, *abi.AMVAUncompDataInfo, *abi.AMVAInternalMemInfo) abi.HRESULT {
			a.calls["GetInternalMemInfo"]++
			return abi.S_OK
		},
		GetCompBufferInfo: func(*abi.VideoAccelerator, *abi.GUID, *abi.AMVAUncompDataInfo, *uint32, []abi.AMVACompBufferInfo) abi.HRESULT {
			a.calls["GetCompBufferInfo"]++
			return abi.S_OK
		},
		GetInternalCompBufferInfo: func(*abi.VideoAccelerator, *uint32, []abi.AMVACompBufferInfo) abi.HRESULT {
			a.calls["GetInternalCompBufferInfo"]++
			return abi.S_OK
		},
		BeginFrame: func(*abi.VideoAccelerator, *abi.AMVABeginFrameInfo) abi.HRESULT {
			a.calls["BeginFrame"]++
			return abi.S_OK
		},
		EndFrame: func(*abi.VideoAccelerator, *abi.AMVAEndFrameInfo) abi.HRESULT {
			a.calls["EndFrame"]++
			return abi.S_OK
		},
		GetBuffer: func(_ *abi.VideoAccelerator, typ, _ uint32, _ bool, buffer *[]byte, stride *int32) abi.HRESULT {
			a.calls["GetBuffer"]++
			*buffer = a.buffers[typ]
			*stride = 0
			return a.getBufferResult
		},
		ReleaseBuffer: func(*abi.VideoAccelerator, uint32, uint32) abi.HRESULT {
			a.calls["ReleaseBuffer"]++
			return abi.S_OK
		},
		Execute: func(_ *abi.VideoAccelerator, _ uint32, _, out []byte, _ []abi.AMVABufferInfo) abi.HRESULT {
			a.calls["Execute"]++
			if len(out) >= 4 {
				binary.LittleEndian.PutUint32(out, 5)
			}
			return abi.S_OK
		},
		QueryRenderStatus: func(*abi.VideoAccelerator, uint32, uint32, uint32) abi.HRESULT {
			a.calls["QueryRenderStatus"]++
			return abi.S_FALSE
		},
		DisplayFrame: func(*abi.VideoAccelerator, uint32, *abi.MediaSample) abi.HRESULT {
			a.calls["DisplayFrame"]++
			return abi.S_OK
		},
	}
	return a
}

type fakeDecoder struct {
	decoder         abi.VideoDecoder
	buffers         map[uint32][]byte
	getBufferResult abi.HRESULT
	releases        int
	executes        int
}

func newFakeDecoder() *fakeDecoder {
	d := &fakeDecoder{buffers: make(map[uint32][]byte)}
	d.decoder.Vtbl = &abi.VideoDecoderVtbl{
		QueryInterface: func(*abi.VideoDecoder, *abi.GUID, *unsafe.Pointer) abi.HRESULT { return abi.E_NOINTERFACE },
		AddRef:         func(*abi.VideoDecoder) uint32 { return 2 },
		Release: func(*abi.VideoDecoder) uint32 {
			d.releases++
			return 0
		},
		GetVideoDecoderService: func(*abi.VideoDecoder, **abi.DecoderService) abi.HRESULT { return abi.E_FAIL },
		GetCreationParameters: func(*abi.VideoDecoder, *abi.GUID, *abi.VideoDesc, *abi.ConfigPictureDecode, *[]*abi.Surface) abi.HRESULT {
			return abi.S_OK
		},
		GetBuffer: func(_ *abi.VideoDecoder, typ uint32, buffer *[]byte) abi.HRESULT {
			*buffer = d.buffers[typ]
			return d.getBufferResult
		},
		ReleaseBuffer: func(*abi.VideoDecoder, uint32) abi.HRESULT { return abi.S_OK },
		BeginFrame:    func(*abi.VideoDecoder, *abi.Surface, []byte) abi.HRESULT { return abi.S_OK },
		EndFrame:      func(*abi.VideoDecoder, *uintptr) abi.HRESULT { return abi.S_OK },
		Execute: func(*abi.VideoDecoder, *abi.DecodeExecuteParams) abi.HRESULT {
			d.executes++
			return abi.S_OK
		},
	}
	return d
}

type fakeDecoderService struct {
	service abi.DecoderService
	decoder *fakeDecoder
	result  abi.HRESULT
	creates int
}

func newFakeDecoderService() *fakeDecoderService {
	s := &fakeDecoderService{decoder: newFakeDecoder()}
	s.service.Vtbl = &abi.DecoderServiceVtbl{
		GetDecoderDeviceGuids: func(_ *abi.DecoderService, count *uint32, guids *[]abi.GUID) abi.HRESULT {
			*guids = []abi.GUID{abi.DXVA2_ModeH264_E, abi.DXVA2_ModeVC1_D}
			*count = 2
			return abi.S_OK
		},
		GetDecoderRenderTargets: func(*abi.DecoderService, *abi.GUID, *uint32, *[]abi.D3DFormat) abi.HRESULT { return abi.S_OK },
		GetDecoderConfigurations: func(_ *abi.DecoderService, _ *abi.GUID, _ *abi.VideoDesc, _ unsafe.Pointer, count *uint32, configs *[]abi.ConfigPictureDecode) abi.HRESULT {
			*configs = make([]abi.ConfigPictureDecode, 2)
			*count = 2
			return abi.S_OK
		},
		CreateVideoDecoder: func(_ *abi.DecoderService, _ *abi.GUID, _ *abi.VideoDesc, _ *abi.ConfigPictureDecode, _ []*abi.Surface, decoder **abi.VideoDecoder) abi.HRESULT {
			s.creates++
			if s.result.Failed() {
				return s.result
			}
			*decoder = &s.decoder.decoder
			return s.result
		},
	}
	return s
}

// encode returns the packed little-endian encoding of `v`.
func encode(t *testing.T, v interface{}) []byte {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	return buf.Bytes()
}
