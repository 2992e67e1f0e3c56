// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"fmt"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/dxva"
)

// InstallVideoAccelerator hooks the DXVA1 video accelerator to record the
// decode mode negotiated with GetCompBufferInfo. With diagnostics, every
// other method is also hooked to log its parameters.
func (i *Interceptor) InstallVideoAccelerator(accelerator *abi.VideoAccelerator) bool {
	if accelerator == nil || accelerator.Vtbl == nil {
		return false
	}
	i.state.ResetDecode()
	i.diagnose(i.diag.Reset)
	return i.install(i.accelerator, accelerator.Vtbl, func(original interface{}) interface{} {
		return i.bindAccelerator(original.(*abi.VideoAcceleratorVtbl))
	})
}

func (i *Interceptor) UninstallVideoAccelerator() { i.uninstall(i.accelerator) }

func (i *Interceptor) bindAccelerator(org *abi.VideoAcceleratorVtbl) *abi.VideoAcceleratorVtbl {
	vtbl := &abi.VideoAcceleratorVtbl{
		GetCompBufferInfo: func(this *abi.VideoAccelerator, guid *abi.GUID, info *abi.AMVAUncompDataInfo, numTypes *uint32, bufferInfo []abi.AMVACompBufferInfo) abi.HRESULT {
			i.diagnose(func() { i.diag.Log("\nGetCompBufferInfo") })
			if guid != nil {
				i.state.SetMode(*guid, dxva.Version1)
				i.diagnose(func() {
					i.diag.Log("[in] *pGuid = %s", *guid)
					if numTypes != nil {
						i.diag.Log("[in] *pdwNumTypesCompBuffers = %d", *numTypes)
					}
				})
			}
			hr := org.GetCompBufferInfo(this, guid, info, numTypes, bufferInfo)
			i.diagnose(func() { i.diag.Log("hr = %s", hr) })
			return hr
		},
	}
	if !i.diag.Enabled() {
		return vtbl
	}

	d := i.diag
	var buffers bufferTable

	vtbl.GetVideoAcceleratorGUIDs = func(this *abi.VideoAccelerator, numGuids *uint32, guids []abi.GUID) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nGetVideoAcceleratorGUIDs")
			if numGuids != nil {
				d.Log("[in] *pdwNumGuidsSupported = %d", *numGuids)
			}
		})
		hr := org.GetVideoAcceleratorGUIDs(this, numGuids, guids)
		i.diagnose(func() {
			d.Log("hr = %s", hr)
			if numGuids == nil {
				return
			}
			d.Log("[out] *pdwNumGuidsSupported = %d", *numGuids)
			for n, g := range guids[:boundedCount(numGuids, len(guids))] {
				d.Log("[out] pGuidsSupported[%d] = %s", n, g)
			}
		})
		return hr
	}

	vtbl.GetUncompFormatsSupported = func(this *abi.VideoAccelerator, guid *abi.GUID, numFormats *uint32, formats []abi.DDPixelFormat) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nGetUncompFormatsSupported")
			if guid != nil {
				d.Log("[in] *pGuid = %s", *guid)
			}
			if numFormats != nil {
				d.Log("[in] *pdwNumFormatsSupported = %d", *numFormats)
			}
		})
		hr := org.GetUncompFormatsSupported(this, guid, numFormats, formats)
		i.diagnose(func() {
			d.Log("hr = %s", hr)
			if numFormats == nil {
				return
			}
			d.Log("[out] *pdwNumFormatsSupported = %d", *numFormats)
			diag.Lines(d, diag.PixelFormatLines("[out] pFormatsSupported", formats[:boundedCount(numFormats, len(formats))]))
		})
		return hr
	}

	vtbl.GetInternalMemInfo = func(this *abi.VideoAccelerator, guid *abi.GUID, info *abi.AMVAUncompDataInfo, mem *abi.AMVAInternalMemInfo) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nGetInternalMemInfo")
			if info != nil {
				diag.Lines(d, diag.UncompDataInfoLines("[in] pamvaUncompDataInfo", []abi.AMVAUncompDataInfo{*info}))
			}
		})
		hr := org.GetInternalMemInfo(this, guid, info, mem)
		i.diagnose(func() { d.Log("hr = %s", hr) })
		return hr
	}

	vtbl.GetInternalCompBufferInfo = func(this *abi.VideoAccelerator, numTypes *uint32, bufferInfo []abi.AMVACompBufferInfo) abi.HRESULT {
		i.diagnose(func() { d.Log("\nGetInternalCompBufferInfo") })
		hr := org.GetInternalCompBufferInfo(this, numTypes, bufferInfo)
		i.diagnose(func() { d.Log("hr = %s", hr) })
		return hr
	}

	vtbl.BeginFrame = func(this *abi.VideoAccelerator, info *abi.AMVABeginFrameInfo) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nBeginFrame")
			if info == nil {
				return
			}
			d.Log("[in] amvaBeginFrameInfo->dwDestSurfaceIndex = %08x", info.DestSurfaceIndex)
			d.Log("[in] amvaBeginFrameInfo->dwSizeInputData = %08x", len(info.InputData))
			d.Log("[in] amvaBeginFrameInfo->dwSizeOutputData = %08x", len(info.OutputData))
			if len(info.InputData) == 4 {
				index, _ := firstDword(info.InputData)
				d.Log("[in] amvaBeginFrameInfo->pInputData => dwDestSurfaceIndex = %d ", index)
			}
		})
		hr := org.BeginFrame(this, info)
		i.diagnose(func() { d.Log("hr = %s", hr) })
		return hr
	}

	vtbl.EndFrame = func(this *abi.VideoAccelerator, info *abi.AMVAEndFrameInfo) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nEndFrame")
			if info == nil {
				return
			}
			d.Log("[in] pEndFrameInfo->dwSizeMiscData = %08x", len(info.MiscData))
			if b := info.MiscData; len(b) >= 4 {
				d.Log("[out] pEndFrameInfo->pMiscData = %02x %02x %02x %02x ", b[0], b[1], b[2], b[3])
			}
		})
		hr := org.EndFrame(this, info)
		i.diagnose(func() { d.Log("hr = %s", hr) })
		return hr
	}

	vtbl.GetBuffer = func(this *abi.VideoAccelerator, typeIndex, bufferIndex uint32, readOnly bool, buffer *[]byte, stride *int32) abi.HRESULT {
		hr := org.GetBuffer(this, typeIndex, bufferIndex, readOnly, buffer, stride)
		i.diagnose(func() {
			lines := []string{
				"\nGetBuffer",
				fmt.Sprintf("[in] dwTypeIndex = %08x", typeIndex),
				fmt.Sprintf("[in] dwBufferIndex = %08x", bufferIndex),
				fmt.Sprintf("[in] bReadOnly = %t", readOnly),
			}
			if stride != nil {
				lines = append(lines, fmt.Sprintf("[out] *lpStride = %08x", *stride))
			}
			diag.Lines(d, append(lines, fmt.Sprintf("hr = %s", hr)))
			if buffer != nil && hr.Succeeded() {
				buffers.set(typeIndex, *buffer)
			}
		})
		return hr
	}

	vtbl.ReleaseBuffer = func(this *abi.VideoAccelerator, typeIndex, bufferIndex uint32) abi.HRESULT {
		i.diagnose(func() {
			d.Log("\nReleaseBuffer")
			d.Log("[in] dwTypeIndex = %08x", typeIndex)
			d.Log("[in] dwBufferIndex = %08x", bufferIndex)
		})
		hr := org.ReleaseBuffer(this, typeIndex, bufferIndex)
		i.diagnose(func() { d.Log("hr = %s", hr) })
		return hr
	}

	vtbl.Execute = func(this *abi.VideoAccelerator, function uint32, privateInput, privateOutput []byte, bufferInfo []abi.AMVABufferInfo) abi.HRESULT {
		i.diagnose(func() { i.logAcceleratorExecute(&buffers, function, privateInput, privateOutput, bufferInfo) })
		hr := org.Execute(this, function, privateInput, privateOutput, bufferInfo)
		i.diagnose(func() {
			d.Log("hr = %s", hr)
			if function != dxva.ExecuteBufferDescriptions {
				return
			}
			if result, ok := firstDword(privateOutput); ok {
				d.Log("[out] *lpPrivateOutputData : Result = %08x", result)
			}
		})
		return hr
	}

	vtbl.QueryRenderStatus = func(this *abi.VideoAccelerator, typeIndex, bufferIndex, flags uint32) abi.HRESULT {
		hr := org.QueryRenderStatus(this, typeIndex, bufferIndex, flags)
		i.diagnose(func() { d.Log("\nQueryRenderStatus  Type=%d   Index=%d  hr = %s", typeIndex, bufferIndex, hr) })
		return hr
	}

	vtbl.DisplayFrame = func(this *abi.VideoAccelerator, flipToIndex uint32, sample *abi.MediaSample) abi.HRESULT {
		i.diagnose(func() { d.Log("\nEnter DisplayFrame  : %d", flipToIndex) })
		hr := org.DisplayFrame(this, flipToIndex, sample)
		i.diagnose(func() { d.Log("Leave DisplayFrame  : hr = %s", hr) })
		return hr
	}

	return vtbl
}

// logAcceleratorExecute logs the parameters of a DXVA1 Execute call and the
// payloads of the buffers it references.
func (i *Interceptor) logAcceleratorExecute(buffers *bufferTable, function uint32, in, out []byte, bufferInfo []abi.AMVABufferInfo) {
	d := i.diag
	d.Log("\nExecute")
	d.Log("[in] dwFunction = %08x", function)
	if len(in) > 0 {
		switch function {
		case dxva.ExecuteBufferDescriptions:
			diag.Lines(d, diag.BufferDescriptionLines(abi.DecodeBufferDescriptions(in, len(bufferInfo))))
		case dxva.ExecuteConfigPictureDecode, dxva.ExecuteConfigPictureProbe:
			if config, ok := abi.DecodeConfigPictureDecodeV1(in); ok {
				diag.Lines(d, diag.ConfigPictureDecodeV1Lines(config))
			}
		default:
			if len(in) >= 4 {
				d.Log("[in] lpPrivateInputData = %02x %02x %02x %02x ...", in[0], in[1], in[2], in[3])
			}
		}
	}
	d.Log("[in] cbPrivateInputData = %08x", len(in))
	d.Log("[in] cbPrivateOutputData = %08x", len(out))
	d.Log("[in] dwNumBuffers = %08x", len(bufferInfo))

	mode := i.state.Mode()
	for n, info := range bufferInfo {
		diag.Lines(d, []string{
			fmt.Sprintf("[in] pamvaBufferInfo, buffer description %d", n),
			fmt.Sprintf("[in] pamvaBufferInfo->dwTypeIndex = %08x", info.TypeIndex),
			fmt.Sprintf("[in] pamvaBufferInfo->dwBufferIndex = %08x", info.BufferIndex),
			fmt.Sprintf("[in] pamvaBufferInfo->dwDataOffset = %08x", info.DataOffset),
			fmt.Sprintf("[in] pamvaBufferInfo->dwDataSize = %08x", info.DataSize),
		})

		data := buffers.get(info.TypeIndex, info.DataOffset, info.DataSize)
		switch info.TypeIndex {
		case dxva.BufferPictureDecode:
			switch {
			case dxva.IsH264Bitstream(mode):
				if p, ok := abi.DecodePicParamsH264(data); ok {
					d.PicParamsH264(p)
				}
			case dxva.IsVC1Bitstream(mode):
				if p, ok := abi.DecodePictureParameters(data); ok {
					d.PictureParameters(p)
				}
			}
		case dxva.BufferSliceControl:
			if info.DataSize%uint32(abi.SizeofSliceH264Short) == 0 {
				count := int(info.DataSize) / abi.SizeofSliceH264Short
				diag.Lines(d, diag.SliceH264ShortLines(abi.DecodeSlicesH264Short(data, count)))
			}
		case dxva.BufferBitstreamData:
			d.Bitstream(int(info.DataSize), data)
			d.DumpBitstream(data)
		}
	}
}
