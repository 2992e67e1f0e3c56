// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"unsafe"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/dxva"
)

// InstallDecoderService hooks the DXVA2 decoder service to record the decode
// mode of the video decoders it creates. With diagnostics, the decoders of the
// bitstream modes are wrapped into a logging proxy.
func (i *Interceptor) InstallDecoderService(service *abi.DecoderService) bool {
	if service == nil || service.Vtbl == nil {
		return false
	}
	i.state.ResetDecode()
	i.diagnose(i.diag.Reset)
	return i.install(i.service, service.Vtbl, func(original interface{}) interface{} {
		return i.bindDecoderService(original.(*abi.DecoderServiceVtbl))
	})
}

func (i *Interceptor) UninstallDecoderService() { i.uninstall(i.service) }

func (i *Interceptor) bindDecoderService(org *abi.DecoderServiceVtbl) *abi.DecoderServiceVtbl {
	d := i.diag
	vtbl := &abi.DecoderServiceVtbl{
		CreateVideoDecoder: func(this *abi.DecoderService, guid *abi.GUID, desc *abi.VideoDesc, config *abi.ConfigPictureDecode, renderTargets []*abi.Surface, decoder **abi.VideoDecoder) abi.HRESULT {
			var mode abi.GUID
			if guid != nil {
				mode = *guid
			}
			i.state.SetMode(mode, dxva.Version2)
			i.diagnose(func() {
				d.Log("\n\n")
				if desc != nil {
					diag.Lines(d, diag.VideoDescLines(desc))
				}
				if config != nil {
					diag.Lines(d, diag.DXVA2ConfigLines(config))
				}
			})

			hr := org.CreateVideoDecoder(this, guid, desc, config, renderTargets, decoder)

			if hr.Failed() {
				i.state.ClearMode()
			} else {
				i.diagnose(func() {
					if decoder != nil && *decoder != nil && dxva.IsTraced(mode) {
						*decoder = newDecoderProxy(i, mode, *decoder).object()
					}
					for n, surface := range renderTargets {
						d.Log(" - Surf %d : %08x", n, surfaceHandle(surface))
					}
				})
			}

			i.logger.Debugf("DXVA Decoder : %s", i.state.ModeDescription())
			i.diagnose(func() {
				d.Log("IDirectXVideoDecoderService::CreateVideoDecoder  %s  (%d render targets) hr = %s", i.state.ModeDescription(), len(renderTargets), hr)
			})
			return hr
		},
	}
	if !d.Enabled() {
		return vtbl
	}

	vtbl.GetDecoderDeviceGuids = func(this *abi.DecoderService, count *uint32, guids *[]abi.GUID) abi.HRESULT {
		hr := org.GetDecoderDeviceGuids(this, count, guids)
		i.diagnose(func() {
			d.Log("IDirectXVideoDecoderService::GetDecoderDeviceGuids  hr = %s\n", hr)
			if hr.Failed() || guids == nil {
				return
			}
			for n, g := range (*guids)[:boundedCount(count, len(*guids))] {
				d.Log(" - Guid %d : %s  %s", n, g, dxva.ModeDescription(g))
			}
		})
		return hr
	}

	vtbl.GetDecoderConfigurations = func(this *abi.DecoderService, guid *abi.GUID, desc *abi.VideoDesc, reserved unsafe.Pointer, count *uint32, configs *[]abi.ConfigPictureDecode) abi.HRESULT {
		hr := org.GetDecoderConfigurations(this, guid, desc, reserved, count, configs)
		i.diagnose(func() {
			n := 0
			if configs != nil {
				n = boundedCount(count, len(*configs))
			}
			d.Log("IDirectXVideoDecoderService::GetDecoderConfigurations  %d configurations  hr = %s\n", n, hr)
		})
		return hr
	}

	return vtbl
}

func surfaceHandle(s *abi.Surface) uintptr {
	if s == nil {
		return 0
	}
	return s.Handle
}
