// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"github.com/sqreen/go-dxvahook/abi"
)

// InstallNewSegment hooks the NewSegment method of the pin to record the
// start time and rate of its segments. The dispatch table can be shared by
// other pins, whose calls are only forwarded.
func (i *Interceptor) InstallNewSegment(pin *abi.Pin) bool {
	if pin == nil || pin.Vtbl == nil {
		return false
	}
	i.state.ResetSegment()
	return i.install(i.segment, pin.Vtbl, func(original interface{}) interface{} {
		newSegment := original.(*abi.PinVtbl).NewSegment
		return &abi.PinVtbl{
			NewSegment: func(this *abi.Pin, start, stop abi.ReferenceTime, rate float64) abi.HRESULT {
				if this == pin {
					i.state.SetSegment(start, rate)
				}
				return newSegment(this, start, stop, rate)
			},
		}
	})
}

func (i *Interceptor) UninstallNewSegment() { i.uninstall(i.segment) }

// InstallReceiveConnection hooks the ReceiveConnection method of the pin to
// reject the P010 and P016 subtypes some system decoders mishandle, unless
// they are proposed by the LAV Video Decoder.
func (i *Interceptor) InstallReceiveConnection(pin *abi.Pin) bool {
	if pin == nil || pin.Vtbl == nil {
		return false
	}
	return i.install(i.connection, pin.Vtbl, func(original interface{}) interface{} {
		receiveConnection := original.(*abi.PinVtbl).ReceiveConnection
		return &abi.PinVtbl{
			ReceiveConnection: func(this *abi.Pin, connector *abi.Pin, mt *abi.MediaType) abi.HRESULT {
				if deniedMediaType(mt) && classID(connector) != abi.CLSID_LAVVideo {
					return abi.VFW_E_TYPE_NOT_ACCEPTED
				}
				return receiveConnection(this, connector, mt)
			},
		}
	})
}

func (i *Interceptor) UninstallReceiveConnection() { i.uninstall(i.connection) }

func deniedMediaType(mt *abi.MediaType) bool {
	return mt != nil && (mt.Subtype == abi.MEDIASUBTYPE_P010 || mt.Subtype == abi.MEDIASUBTYPE_P016)
}

// classID returns the class identifier of the filter owning the pin, or
// GUID_NULL when it cannot be queried.
func classID(pin *abi.Pin) (clsid abi.GUID) {
	if pin == nil || pin.Vtbl == nil || pin.Vtbl.QueryPinInfo == nil {
		return abi.GUID_NULL
	}
	var info abi.PinInfo
	if hr := pin.Vtbl.QueryPinInfo(pin, &info); hr.Failed() || info.Filter == nil || info.Filter.Vtbl == nil {
		return abi.GUID_NULL
	}
	filter := info.Filter
	if filter.Vtbl.Release != nil {
		defer filter.Vtbl.Release(filter)
	}
	if filter.Vtbl.GetClassID == nil {
		return abi.GUID_NULL
	}
	if hr := filter.Vtbl.GetClassID(filter, &clsid); hr.Failed() {
		return abi.GUID_NULL
	}
	return clsid
}

// InstallReceive hooks the Receive method of the memory input pin to record
// the start time of the samples.
func (i *Interceptor) InstallReceive(pin *abi.MemInputPin) bool {
	if pin == nil || pin.Vtbl == nil {
		return false
	}
	i.state.ResetSample()
	return i.install(i.receive, pin.Vtbl, func(original interface{}) interface{} {
		receive := original.(*abi.MemInputPinVtbl).Receive
		return &abi.MemInputPinVtbl{
			Receive: func(this *abi.MemInputPin, sample *abi.MediaSample) abi.HRESULT {
				if sample != nil && sample.Vtbl != nil && sample.Vtbl.GetTime != nil {
					var start, stop abi.ReferenceTime
					if sample.Vtbl.GetTime(sample, &start, &stop).Succeeded() {
						i.state.SetSampleStart(start)
					}
				}
				return receive(this, sample)
			},
		}
	})
}

func (i *Interceptor) UninstallReceive() { i.uninstall(i.receive) }
