// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package dxva describes the values negotiated by accelerated decoding
// sessions: decode modes, API versions, surface formats and compressed
// buffer types.
package dxva

import (
	"github.com/sqreen/go-dxvahook/abi"
)

// UnknownMode is the description of the null mode and of modes missing from
// the table.
const UnknownMode = "Unknown"

var modes = map[abi.GUID]string{
	abi.DXVA_ModeMPEG2_A: "MPEG-2 A, motion compensation",
	abi.DXVA_ModeMPEG2_B: "MPEG-2 B, motion compensation and blending",
	abi.DXVA_ModeMPEG2_C: "MPEG-2 C, IDCT",
	abi.DXVA_ModeMPEG2_D: "MPEG-2 D, IDCT and blending",

	abi.DXVA2_ModeMPEG2_MoComp: "MPEG-2 motion compensation",
	abi.DXVA2_ModeMPEG2_IDCT:   "MPEG-2 IDCT",
	abi.DXVA2_ModeMPEG2_VLD:    "MPEG-2 variable-length decoder",

	abi.DXVA2_ModeH264_A: "H.264 A, motion compensation, no FGT",
	abi.DXVA2_ModeH264_B: "H.264 B, motion compensation, FGT",
	abi.DXVA2_ModeH264_C: "H.264 C, IDCT, no FGT",
	abi.DXVA2_ModeH264_D: "H.264 D, IDCT, FGT",
	abi.DXVA2_ModeH264_E: "H.264 bitstream decoder, no FGT",
	abi.DXVA2_ModeH264_F: "H.264 bitstream decoder, FGT",

	abi.DXVA2_ModeWMV8_A: "WMV8 post processing",
	abi.DXVA2_ModeWMV8_B: "WMV8 motion compensation",
	abi.DXVA2_ModeWMV9_A: "WMV9 post processing",
	abi.DXVA2_ModeWMV9_B: "WMV9 motion compensation",
	abi.DXVA2_ModeWMV9_C: "WMV9 IDCT",

	abi.DXVA2_ModeVC1_A: "VC-1 post processing",
	abi.DXVA2_ModeVC1_B: "VC-1 motion compensation",
	abi.DXVA2_ModeVC1_C: "VC-1 IDCT",
	abi.DXVA2_ModeVC1_D: "VC-1 bitstream decoder",

	abi.DXVA2_ModeMPEG4pt2_VLD_Simple: "MPEG-4 Part 2 simple profile, bitstream decoder",
	abi.DXVA2_ModeHEVC_VLD_Main:       "HEVC Main profile, bitstream decoder",
	abi.DXVA2_ModeHEVC_VLD_Main10:     "HEVC Main10 profile, bitstream decoder",
	abi.DXVA2_ModeVP9_VLD_Profile0:    "VP9 profile 0, bitstream decoder",

	abi.DXVA_Intel_H264_ClearVideo:  "H.264 bitstream decoder, ClearVideo(tm)",
	abi.DXVA_Intel_VC1_ClearVideo:   "VC-1 bitstream decoder, ClearVideo(tm)",
	abi.DXVA_Intel_VC1_ClearVideo_2: "VC-1 bitstream decoder 2, ClearVideo(tm)",
}

// ModeDescription returns the human-readable name of a decode mode.
func ModeDescription(mode abi.GUID) string {
	if d, ok := modes[mode]; ok {
		return d
	}
	return UnknownMode
}

// IsH264Bitstream returns true for the H.264 modes whose picture parameters
// and slice control buffers use the H.264 DXVA layouts.
func IsH264Bitstream(mode abi.GUID) bool {
	return mode == abi.DXVA2_ModeH264_E || mode == abi.DXVA_Intel_H264_ClearVideo
}

// IsVC1Bitstream returns true for the VC-1 bitstream modes.
func IsVC1Bitstream(mode abi.GUID) bool {
	return mode == abi.DXVA2_ModeVC1_D || mode == abi.DXVA_Intel_VC1_ClearVideo || mode == abi.DXVA_Intel_VC1_ClearVideo_2
}

// IsMPEG2Bitstream returns true for the MPEG-2 bitstream mode.
func IsMPEG2Bitstream(mode abi.GUID) bool {
	return mode == abi.DXVA2_ModeMPEG2_VLD
}

// IsTraced returns true when the decoders created for the mode can be
// wrapped by the diagnostic decoder.
func IsTraced(mode abi.GUID) bool {
	return IsH264Bitstream(mode) || IsVC1Bitstream(mode) || IsMPEG2Bitstream(mode)
}

// Version of the acceleration API a session used.
type Version int32

const (
	VersionNone Version = iota
	Version1
	Version2
)

var versionLabels = [...]string{"DXVA ", "DXVA1", "DXVA2"}

// Label returns the fixed-width version label. Out-of-range versions get the
// label of VersionNone.
func (v Version) Label() string {
	if v < 0 || int(v) >= len(versionLabels) {
		return versionLabels[VersionNone]
	}
	return versionLabels[v]
}

func (v Version) String() string { return v.Label() }

// Compressed buffer types of the DXVA1 Execute call.
const (
	BufferPictureDecode             = 1
	BufferMacroblockControl         = 2
	BufferResidualDifference        = 3
	BufferDeblockingControl         = 4
	BufferInverseQuantizationMatrix = 5
	BufferSliceControl              = 6
	BufferBitstreamData             = 7
)

// Compressed buffer types of the DXVA2 decoders.
const (
	DXVA2PictureParametersBuffer         = 0
	DXVA2MacroBlockControlBuffer         = 1
	DXVA2ResidualDifferenceBuffer        = 2
	DXVA2DeblockingControlBuffer         = 3
	DXVA2InverseQuantizationMatrixBuffer = 4
	DXVA2SliceControlBuffer              = 5
	DXVA2BitStreamDataBuffer             = 6
	DXVA2MotionVectorBuffer              = 7
	DXVA2FilmGrainBuffer                 = 8
)

// MaxBufferType bounds the buffer type tags tracked per session.
const MaxBufferType = 15

// DXVA1 Execute functions whose private data is decoded.
const (
	ExecuteBufferDescriptions  = 0x01000000
	ExecuteConfigPictureDecode = 0xfffff101
	ExecuteConfigPictureProbe  = 0xfffff501
)
