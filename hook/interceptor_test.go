// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package hook

import (
	"os"
	"testing"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/dxva"
	"github.com/sqreen/go-dxvahook/internal/patch"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		i, err := New()
		require.NoError(t, err)
		require.NotNil(t, i)
		require.False(t, i.diag.Enabled())
		require.Equal(t, dxva.UnknownMode, i.LastDecodeModeDescription())
		require.Equal(t, "DXVA ", i.LastDecodeAPIVersionLabel())
		require.Equal(t, 1.0, i.PlaybackRate())
	})

	t.Run("diagnostics", func(t *testing.T) {
		os.Setenv("DXVAHOOK_DIAGNOSTICS", "1")
		defer os.Unsetenv("DXVAHOOK_DIAGNOSTICS")
		i, err := New()
		require.NoError(t, err)
		require.True(t, i.diag.Enabled())
	})

	t.Run("invalid configuration", func(t *testing.T) {
		os.Setenv("DXVAHOOK_MEMORY_PROTECTION", "copy-on-write")
		defer os.Unsetenv("DXVAHOOK_MEMORY_PROTECTION")
		i, err := New()
		require.Error(t, err)
		require.Nil(t, i)
	})
}

func TestInstallDenied(t *testing.T) {
	i, output := newTestInterceptor(t, diag.Disabled(), deniedProtector{})

	var calls pinCalls
	vtbl := newPinVtbl(&calls)
	original := funcPC(vtbl.NewSegment)
	pin := &abi.Pin{Vtbl: vtbl}
	require.False(t, i.InstallNewSegment(pin))
	require.False(t, i.InstallReceiveConnection(pin))
	require.Equal(t, original, funcPC(vtbl.NewSegment))
	require.Contains(t, output.String(), "memory protection change denied")

	fake := newFakeAccelerator()
	require.False(t, i.InstallVideoAccelerator(&fake.accelerator))
	service := newFakeDecoderService()
	require.False(t, i.InstallDecoderService(&service.service))

	// Uninstalling hooks which are not installed does nothing.
	output.Reset()
	i.UninstallAll()
	require.Empty(t, output.String())

	pin.Vtbl.NewSegment(pin, 100, 200, 2)
	require.Equal(t, 1, calls.newSegment)
	require.Equal(t, abi.ReferenceTime(0), i.SegmentStart())
}

func TestUninstallAll(t *testing.T) {
	i, output := newTestInterceptor(t, diag.Disabled(), patch.Writable)

	var calls pinCalls
	pinVtbl := newPinVtbl(&calls)
	pin := &abi.Pin{Vtbl: pinVtbl}
	inputVtbl := &abi.MemInputPinVtbl{
		Receive: func(*abi.MemInputPin, *abi.MediaSample) abi.HRESULT { return abi.S_OK },
	}
	input := &abi.MemInputPin{Vtbl: inputVtbl}
	accelerator := newFakeAccelerator()
	service := newFakeDecoderService()

	originals := []uintptr{
		funcPC(pinVtbl.NewSegment),
		funcPC(pinVtbl.ReceiveConnection),
		funcPC(inputVtbl.Receive),
		funcPC(accelerator.accelerator.Vtbl.GetCompBufferInfo),
		funcPC(service.service.Vtbl.CreateVideoDecoder),
	}
	current := func() []uintptr {
		return []uintptr{
			funcPC(pinVtbl.NewSegment),
			funcPC(pinVtbl.ReceiveConnection),
			funcPC(inputVtbl.Receive),
			funcPC(accelerator.accelerator.Vtbl.GetCompBufferInfo),
			funcPC(service.service.Vtbl.CreateVideoDecoder),
		}
	}

	// Both pin modules share the same dispatch table.
	require.True(t, i.InstallNewSegment(pin))
	require.True(t, i.InstallReceiveConnection(pin))
	require.True(t, i.InstallReceive(input))
	require.True(t, i.InstallVideoAccelerator(&accelerator.accelerator))
	require.True(t, i.InstallDecoderService(&service.service))
	for n, pc := range current() {
		require.NotEqual(t, originals[n], pc, n)
	}

	i.UninstallAll()
	require.Equal(t, originals, current())
	require.Contains(t, output.String(), "decoder service (*abi.DecoderServiceVtbl): restoring the table")
	require.Contains(t, output.String(), "segment timing (*abi.PinVtbl): restoring the table")
}

func TestResetObservationState(t *testing.T) {
	i, output := newTestInterceptor(t, diag.Disabled(), patch.Writable)
	var calls pinCalls
	pin := &abi.Pin{Vtbl: newPinVtbl(&calls)}
	require.True(t, i.InstallNewSegment(pin))
	defer i.UninstallNewSegment()
	pin.Vtbl.NewSegment(pin, 100, 200, 2)

	i.ResetObservationState()
	require.Equal(t, abi.ReferenceTime(0), i.SegmentStart())
	require.Equal(t, 1.0, i.PlaybackRate())
	require.Contains(t, output.String(), "observation state reset from {")
	require.Contains(t, output.String(), "SegmentStart:100")
}

func TestDiagnosticsResetBeforeInstall(t *testing.T) {
	accelerator := newFakeAccelerator()
	service := newFakeDecoderService()
	originalGetCompBufferInfo := funcPC(accelerator.accelerator.Vtbl.GetCompBufferInfo)
	originalCreateVideoDecoder := funcPC(service.service.Vtbl.CreateVideoDecoder)

	// Whether a table was already patched when the session files were reset.
	var patched []bool
	d := sessionLogger{
		Logger: diag.Disabled(),
		onReset: func() {
			patched = append(patched,
				funcPC(accelerator.accelerator.Vtbl.GetCompBufferInfo) != originalGetCompBufferInfo ||
					funcPC(service.service.Vtbl.CreateVideoDecoder) != originalCreateVideoDecoder)
		},
	}
	i, _ := newTestInterceptor(t, d, patch.Writable)

	require.True(t, i.InstallVideoAccelerator(&accelerator.accelerator))
	i.UninstallVideoAccelerator()
	require.True(t, i.InstallDecoderService(&service.service))
	i.UninstallDecoderService()
	require.Equal(t, []bool{false, false}, patched)
}

func TestDiagnosticsPanic(t *testing.T) {
	i, output := newTestInterceptor(t, panickingLogger{diag.Disabled()}, patch.Writable)
	fake := newFakeAccelerator()
	a := &fake.accelerator
	require.True(t, i.InstallVideoAccelerator(a))

	// The interception keeps working when diagnostics panic.
	guid := abi.DXVA2_ModeVC1_D
	var n uint32
	require.Equal(t, abi.S_OK, a.Vtbl.GetCompBufferInfo(a, &guid, nil, &n, nil))
	require.Equal(t, "VC-1 bitstream decoder", i.LastDecodeModeDescription())
	require.Equal(t, abi.S_OK, a.Vtbl.Execute(a, 0, nil, nil, nil))
	require.Equal(t, 1, fake.calls["Execute"])
	require.Contains(t, output.String(), "diagnostics")
}

// sessionLogger is an enabled diagnostic logger calling onReset when the
// session files are reset.
type sessionLogger struct {
	diag.Logger
	onReset func()
}

func (sessionLogger) Enabled() bool { return true }
func (l sessionLogger) Reset()      { l.onReset() }

// panickingLogger is an enabled diagnostic logger panicking when logging.
type panickingLogger struct {
	diag.Logger
}

func (panickingLogger) Enabled() bool              { return true }
func (panickingLogger) Log(string, ...interface{}) { panic("oops") }
func (panickingLogger) Reset()                     {}
func (panickingLogger) Bitstream(int, []byte)      {}
func (panickingLogger) DumpBitstream([]byte)       {}
