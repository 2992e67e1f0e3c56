// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package hook intercepts the calls of the accelerated video decoding
// negotiation of a media pipeline, through the dispatch tables of the pipeline
// objects it is given.
//
// An Interceptor owns five hook modules:
//
//   - the segment timing hook of a pin (NewSegment),
//   - the connection negotiation hook of a pin (ReceiveConnection), rejecting
//     the P010 and P016 subtypes unless proposed by the LAV Video Decoder,
//   - the buffered input hook of a memory input pin (Receive),
//   - the DXVA1 video accelerator hook (GetCompBufferInfo and, with
//     diagnostics, every other method),
//   - the DXVA2 decoder service hook (CreateVideoDecoder and, with
//     diagnostics, the decoder configuration methods).
//
// Interception functions record what they observe into the interceptor's
// observation state and forward to the original functions. Installing a
// module which is already installed first uninstalls it.
package hook

import (
	"os"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/config"
	"github.com/sqreen/go-dxvahook/internal/diag"
	"github.com/sqreen/go-dxvahook/internal/observe"
	"github.com/sqreen/go-dxvahook/internal/patch"
	"github.com/sqreen/go-dxvahook/internal/plog"
	"github.com/sqreen/go-dxvahook/internal/sqlib/sqerrors"
	"github.com/sqreen/go-dxvahook/internal/sqlib/sqsafe"
)

type Interceptor struct {
	logger *plog.Logger
	diag   diag.Logger
	state  *observe.State

	segment     *patch.Hook
	connection  *patch.Hook
	receive     *patch.Hook
	accelerator *patch.Hook
	service     *patch.Hook
}

// New returns an interceptor configured from the environment and the
// optional configuration file.
func New() (*Interceptor, error) {
	logger := plog.NewLogger(plog.Info, os.Stderr)
	cfg, err := config.New(logger)
	if err != nil {
		return nil, sqerrors.Wrap(err, "configuration error")
	}
	logger = plog.NewLogger(cfg.LogLevel(), os.Stderr)

	d := diag.Disabled()
	if cfg.Diagnostics() {
		d = diag.NewFileLogger(diag.Options{
			Dir:           cfg.DiagnosticsDir(),
			DumpBitstream: cfg.DumpBitstream(),
			DumpMatrix:    cfg.DumpMatrix(),
		})
	}

	protector := patch.System()
	if cfg.MemoryProtection() == config.MemoryProtectionNone {
		protector = patch.Writable
	}

	return newInterceptor(logger, d, protector)
}

func newInterceptor(logger *plog.Logger, d diag.Logger, protector patch.Protector) (*Interceptor, error) {
	i := &Interceptor{
		logger: logger,
		diag:   d,
		state:  observe.New(),
	}

	acceleratorSlots := []abi.Method{abi.AcceleratorGetCompBufferInfo}
	serviceSlots := []abi.Method{abi.DecoderServiceCreateVideoDecoder}
	if d.Enabled() {
		acceleratorSlots = []abi.Method{
			abi.AcceleratorGetVideoAcceleratorGUIDs,
			abi.AcceleratorGetUncompFormatsSupported,
			abi.AcceleratorGetInternalMemInfo,
			abi.AcceleratorGetCompBufferInfo,
			abi.AcceleratorGetInternalCompBufferInfo,
			abi.AcceleratorBeginFrame,
			abi.AcceleratorEndFrame,
			abi.AcceleratorGetBuffer,
			abi.AcceleratorReleaseBuffer,
			abi.AcceleratorExecute,
			abi.AcceleratorQueryRenderStatus,
			abi.AcceleratorDisplayFrame,
		}
		serviceSlots = append(serviceSlots,
			abi.DecoderServiceGetDecoderDeviceGuids,
			abi.DecoderServiceGetDecoderConfigurations,
		)
	}

	hooks := []struct {
		hook  **patch.Hook
		name  string
		table interface{}
		slots []abi.Method
	}{
		{&i.segment, "segment timing", (*abi.PinVtbl)(nil), []abi.Method{abi.PinNewSegment}},
		{&i.connection, "connection negotiation", (*abi.PinVtbl)(nil), []abi.Method{abi.PinReceiveConnection}},
		{&i.receive, "buffered input", (*abi.MemInputPinVtbl)(nil), []abi.Method{abi.MemInputPinReceive}},
		{&i.accelerator, "video accelerator", (*abi.VideoAcceleratorVtbl)(nil), acceleratorSlots},
		{&i.service, "decoder service", (*abi.DecoderServiceVtbl)(nil), serviceSlots},
	}
	for _, h := range hooks {
		hook, err := patch.New(h.name, h.table, protector, h.slots...)
		if err != nil {
			return nil, err
		}
		*h.hook = hook
	}
	return i, nil
}

// install installs the hook and returns true when it is installed. Errors are
// logged.
func (i *Interceptor) install(h *patch.Hook, table interface{}, bind patch.BindFunc) bool {
	if err := h.Install(table, bind); err != nil {
		i.logger.Error(err)
	}
	return h.Installed()
}

func (i *Interceptor) uninstall(h *patch.Hook) {
	if table := h.Table(); table != nil {
		i.logger.Debugf("%s: restoring the table %p", h, table)
	}
	if err := h.Uninstall(); err != nil {
		i.logger.Error(err)
	}
}

// UninstallAll uninstalls every module.
func (i *Interceptor) UninstallAll() {
	for _, h := range []*patch.Hook{i.segment, i.connection, i.receive, i.accelerator, i.service} {
		i.uninstall(h)
	}
}

// diagnose runs `f` when diagnostics are enabled. A panic in `f` is recovered
// and logged as an error.
func (i *Interceptor) diagnose(f func()) {
	if !i.diag.Enabled() {
		return
	}
	if err := sqsafe.Call(func() error {
		f()
		return nil
	}); err != nil {
		i.logger.Error(sqerrors.Wrap(err, "diagnostics"))
	}
}

// LastDecodeModeDescription returns the description of the last negotiated
// decode mode.
func (i *Interceptor) LastDecodeModeDescription() string {
	return i.state.ModeDescription()
}

// LastDecodeAPIVersionLabel returns the label of the API version of the last
// negotiated decode mode.
func (i *Interceptor) LastDecodeAPIVersionLabel() string {
	return i.state.VersionLabel()
}

// ResetObservationState sets every observed value back to its default.
func (i *Interceptor) ResetObservationState() {
	i.logger.Debugf("observation state reset from %+v", i.state.Snapshot())
	i.state.Reset()
}

// SegmentStart returns the start time of the last segment of the hooked pin.
func (i *Interceptor) SegmentStart() abi.ReferenceTime {
	return i.state.SegmentStart()
}

// SampleStart returns the start time of the last sample received.
func (i *Interceptor) SampleStart() abi.ReferenceTime {
	return i.state.SampleStart()
}

// PlaybackRate returns the rate of the last segment of the hooked pin.
func (i *Interceptor) PlaybackRate() float64 {
	return i.state.Rate()
}
