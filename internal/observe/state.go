// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package observe holds the values the interception functions observe while
// the pipeline runs. Every field is an independent last-write-wins snapshot
// which can be read at any time from any goroutine.
package observe

import (
	"math"
	"sync/atomic"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/dxva"
)

// State is the observation state. Its zero value is not ready to use, use
// New() instead.
type State struct {
	segmentStart int64
	sampleStart  int64
	rateBits     uint64
	version      int32
	mode         atomic.Value // abi.GUID
}

// Snapshot is a copy of the observation state.
type Snapshot struct {
	SegmentStart abi.ReferenceTime
	SampleStart  abi.ReferenceTime
	Rate         float64
	Mode         abi.GUID
	Version      dxva.Version
}

// New returns a state with every field set to its default value.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// SetSegment records the start time and playback rate of a new segment.
func (s *State) SetSegment(start abi.ReferenceTime, rate float64) {
	atomic.StoreInt64(&s.segmentStart, int64(start))
	atomic.StoreUint64(&s.rateBits, math.Float64bits(rate))
}

func (s *State) SetSampleStart(start abi.ReferenceTime) {
	atomic.StoreInt64(&s.sampleStart, int64(start))
}

// SetMode records the decode mode negotiated using the given API version.
func (s *State) SetMode(mode abi.GUID, version dxva.Version) {
	s.mode.Store(mode)
	atomic.StoreInt32(&s.version, int32(version))
}

// ClearMode forgets the decode mode but keeps the version.
func (s *State) ClearMode() {
	s.mode.Store(abi.GUID_NULL)
}

// ResetSegment sets the segment fields back to their defaults.
func (s *State) ResetSegment() {
	s.SetSegment(0, 1)
}

// ResetSample sets the sample start time back to zero.
func (s *State) ResetSample() {
	s.SetSampleStart(0)
}

// ResetDecode sets the decode mode and version back to their defaults.
func (s *State) ResetDecode() {
	s.SetMode(abi.GUID_NULL, dxva.VersionNone)
}

// Reset sets every field back to its default.
func (s *State) Reset() {
	s.ResetSegment()
	s.ResetSample()
	s.ResetDecode()
}

func (s *State) SegmentStart() abi.ReferenceTime {
	return abi.ReferenceTime(atomic.LoadInt64(&s.segmentStart))
}

func (s *State) SampleStart() abi.ReferenceTime {
	return abi.ReferenceTime(atomic.LoadInt64(&s.sampleStart))
}

func (s *State) Rate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.rateBits))
}

func (s *State) Mode() abi.GUID {
	mode, _ := s.mode.Load().(abi.GUID)
	return mode
}

func (s *State) Version() dxva.Version {
	return dxva.Version(atomic.LoadInt32(&s.version))
}

// ModeDescription returns the description of the last decode mode.
func (s *State) ModeDescription() string {
	return dxva.ModeDescription(s.Mode())
}

// VersionLabel returns the label of the last API version.
func (s *State) VersionLabel() string {
	return s.Version().Label()
}

// Snapshot returns a copy of every field. Fields are read independently, so
// that the copy may mix values of concurrent writes.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		SegmentStart: s.SegmentStart(),
		SampleStart:  s.SampleStart(),
		Rate:         s.Rate(),
		Mode:         s.Mode(),
		Version:      s.Version(),
	}
}
