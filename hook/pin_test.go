// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"testing"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/patch"
	"github.com/stretchr/testify/require"
)

func TestNewSegment(t *testing.T) {
	t.Run("nil pin", func(t *testing.T) {
		i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
		require.False(t, i.InstallNewSegment(nil))
		require.False(t, i.InstallNewSegment(&abi.Pin{}))
	})

	t.Run("hooked pin", func(t *testing.T) {
		i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
		var calls pinCalls
		vtbl := newPinVtbl(&calls)
		original := funcPC(vtbl.NewSegment)
		pin := &abi.Pin{Vtbl: vtbl}
		// Another pin of the same class shares the dispatch table.
		other := &abi.Pin{Vtbl: vtbl}

		require.True(t, i.InstallNewSegment(pin))
		require.Equal(t, abi.ReferenceTime(0), i.SegmentStart())
		require.Equal(t, 1.0, i.PlaybackRate())

		hr := pin.Vtbl.NewSegment(pin, 100, 200, 2)
		require.Equal(t, abi.S_FALSE, hr)
		require.Equal(t, 1, calls.newSegment)
		require.Equal(t, abi.ReferenceTime(100), i.SegmentStart())
		require.Equal(t, 2.0, i.PlaybackRate())

		hr = other.Vtbl.NewSegment(other, 300, 400, 0.5)
		require.Equal(t, abi.S_FALSE, hr)
		require.Equal(t, 2, calls.newSegment)
		require.Equal(t, abi.ReferenceTime(100), i.SegmentStart())
		require.Equal(t, 2.0, i.PlaybackRate())

		// Slots which are not hooked are left untouched.
		pin.Vtbl.Disconnect(pin)
		require.Equal(t, 1, calls.disconnect)

		i.UninstallNewSegment()
		require.Equal(t, original, funcPC(vtbl.NewSegment))
		pin.Vtbl.NewSegment(pin, 500, 600, 4)
		require.Equal(t, 3, calls.newSegment)
		require.Equal(t, abi.ReferenceTime(100), i.SegmentStart())
	})

	t.Run("reinstall", func(t *testing.T) {
		i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
		var calls pinCalls
		vtbl := newPinVtbl(&calls)
		original := funcPC(vtbl.NewSegment)
		pin := &abi.Pin{Vtbl: vtbl}

		require.True(t, i.InstallNewSegment(pin))
		pin.Vtbl.NewSegment(pin, 100, 200, 2)
		require.Equal(t, abi.ReferenceTime(100), i.SegmentStart())

		// Installing again resets the segment state and does not chain the
		// interception functions.
		require.True(t, i.InstallNewSegment(pin))
		require.Equal(t, abi.ReferenceTime(0), i.SegmentStart())
		require.Equal(t, 1.0, i.PlaybackRate())
		pin.Vtbl.NewSegment(pin, 300, 400, 3)
		require.Equal(t, 2, calls.newSegment)
		require.Equal(t, abi.ReferenceTime(300), i.SegmentStart())

		i.UninstallNewSegment()
		require.Equal(t, original, funcPC(vtbl.NewSegment))
		// Uninstalling twice is a no-op.
		i.UninstallNewSegment()
		require.Equal(t, original, funcPC(vtbl.NewSegment))
	})

	t.Run("another pin", func(t *testing.T) {
		i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
		var calls1, calls2 pinCalls
		vtbl1, vtbl2 := newPinVtbl(&calls1), newPinVtbl(&calls2)
		original1 := funcPC(vtbl1.NewSegment)
		pin1, pin2 := &abi.Pin{Vtbl: vtbl1}, &abi.Pin{Vtbl: vtbl2}

		require.True(t, i.InstallNewSegment(pin1))
		require.True(t, i.InstallNewSegment(pin2))
		// The first table was restored.
		require.Equal(t, original1, funcPC(vtbl1.NewSegment))

		pin1.Vtbl.NewSegment(pin1, 100, 200, 2)
		require.Equal(t, abi.ReferenceTime(0), i.SegmentStart())
		pin2.Vtbl.NewSegment(pin2, 300, 400, 3)
		require.Equal(t, abi.ReferenceTime(300), i.SegmentStart())
		require.Equal(t, 1, calls1.newSegment)
		require.Equal(t, 1, calls2.newSegment)
	})
}

func TestReceiveConnection(t *testing.T) {
	i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
	require.False(t, i.InstallReceiveConnection(nil))

	var calls pinCalls
	vtbl := newPinVtbl(&calls)
	original := funcPC(vtbl.ReceiveConnection)
	pin := &abi.Pin{Vtbl: vtbl}
	require.True(t, i.InstallReceiveConnection(pin))
	defer i.UninstallReceiveConnection()

	p010 := &abi.MediaType{Subtype: abi.MEDIASUBTYPE_P010}
	p016 := &abi.MediaType{Subtype: abi.MEDIASUBTYPE_P016}
	nv12 := &abi.MediaType{Subtype: abi.MEDIASUBTYPE_NV12}

	var releases int
	untrusted := newConnector(abi.MustParseGUID("{04FE9017-F873-410E-871E-AB91661A4EF7}"), &releases)
	lav := newConnector(abi.CLSID_LAVVideo, &releases)

	t.Run("denied subtype from another decoder", func(t *testing.T) {
		calls, releases = pinCalls{}, 0
		require.Equal(t, abi.VFW_E_TYPE_NOT_ACCEPTED, pin.Vtbl.ReceiveConnection(pin, untrusted, p010))
		require.Equal(t, abi.VFW_E_TYPE_NOT_ACCEPTED, pin.Vtbl.ReceiveConnection(pin, untrusted, p016))
		require.Equal(t, 0, calls.receiveConnection)
		// The filter references returned by QueryPinInfo are released.
		require.Equal(t, 2, releases)
	})

	t.Run("denied subtype from the trusted decoder", func(t *testing.T) {
		calls, releases = pinCalls{}, 0
		require.Equal(t, abi.S_FALSE, pin.Vtbl.ReceiveConnection(pin, lav, p010))
		require.Equal(t, 1, calls.receiveConnection)
		require.Equal(t, 1, releases)
	})

	t.Run("other subtype", func(t *testing.T) {
		calls = pinCalls{}
		require.Equal(t, abi.S_FALSE, pin.Vtbl.ReceiveConnection(pin, untrusted, nv12))
		require.Equal(t, 1, calls.receiveConnection)
	})

	t.Run("missing media type", func(t *testing.T) {
		calls = pinCalls{}
		require.Equal(t, abi.S_FALSE, pin.Vtbl.ReceiveConnection(pin, untrusted, nil))
		require.Equal(t, 1, calls.receiveConnection)
	})

	t.Run("unknown connector", func(t *testing.T) {
		calls = pinCalls{}
		require.Equal(t, abi.VFW_E_TYPE_NOT_ACCEPTED, pin.Vtbl.ReceiveConnection(pin, nil, p010))

		failing := &abi.Pin{Vtbl: &abi.PinVtbl{
			QueryPinInfo: func(*abi.Pin, *abi.PinInfo) abi.HRESULT { return abi.E_FAIL },
		}}
		require.Equal(t, abi.VFW_E_TYPE_NOT_ACCEPTED, pin.Vtbl.ReceiveConnection(pin, failing, p016))
		require.Equal(t, 0, calls.receiveConnection)
	})

	t.Run("uninstall", func(t *testing.T) {
		calls = pinCalls{}
		i.UninstallReceiveConnection()
		require.Equal(t, original, funcPC(vtbl.ReceiveConnection))
		require.Equal(t, abi.S_FALSE, pin.Vtbl.ReceiveConnection(pin, untrusted, p010))
		require.Equal(t, 1, calls.receiveConnection)
	})
}

func TestReceive(t *testing.T) {
	i, _ := newTestInterceptor(t, diag.Disabled(), patch.Writable)
	require.False(t, i.InstallReceive(nil))

	var received int
	vtbl := &abi.MemInputPinVtbl{
		Receive: func(*abi.MemInputPin, *abi.MediaSample) abi.HRESULT {
			received++
			return abi.S_OK
		},
	}
	original := funcPC(vtbl.Receive)
	pin := &abi.MemInputPin{Vtbl: vtbl}
	require.True(t, i.InstallReceive(pin))

	require.Equal(t, abi.S_OK, pin.Vtbl.Receive(pin, newSample(1234, abi.S_OK)))
	require.Equal(t, abi.ReferenceTime(1234), i.SampleStart())

	// Samples without time leave the last start time.
	require.Equal(t, abi.S_OK, pin.Vtbl.Receive(pin, newSample(42, abi.E_FAIL)))
	require.Equal(t, abi.ReferenceTime(1234), i.SampleStart())
	require.Equal(t, abi.S_OK, pin.Vtbl.Receive(pin, nil))
	require.Equal(t, 3, received)

	// Installing again resets the sample start time.
	require.True(t, i.InstallReceive(pin))
	require.Equal(t, abi.ReferenceTime(0), i.SampleStart())

	i.UninstallReceive()
	require.Equal(t, original, funcPC(vtbl.Receive))
	pin.Vtbl.Receive(pin, newSample(5678, abi.S_OK))
	require.Equal(t, abi.ReferenceTime(0), i.SampleStart())
	require.Equal(t, 4, received)
}
