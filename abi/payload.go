// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package abi

import (
	"bytes"
	"encoding/binary"
)

// Byte-packed DXVA structures carried inside compressed buffers. They are
// decoded from the raw buffer bytes and never aliased onto them, so that a
// short buffer cannot be over-read.

// PicEntryH264 is a DXVA_PicEntry_H264: a 7-bit surface index and an
// associated flag in the most significant bit.
type PicEntryH264 uint8

func (e PicEntryH264) Index7Bits() uint8     { return uint8(e) & 0x7f }
func (e PicEntryH264) AssociatedFlag() uint8 { return uint8(e) >> 7 }

// PicParamsH264 is a DXVA_PicParams_H264.
type PicParamsH264 struct {
	WFrameWidthInMbsMinus1             uint16
	WFrameHeightInMbsMinus1            uint16
	CurrPic                            PicEntryH264
	NumRefFrames                       uint8
	WBitFields                         uint16
	BitDepthLumaMinus8                 uint8
	BitDepthChromaMinus8               uint8
	Reserved16Bits                     uint16
	StatusReportFeedbackNumber         uint32
	RefFrameList                       [16]PicEntryH264
	CurrFieldOrderCnt                  [2]int32
	FieldOrderCntList                  [16][2]int32
	PicInitQsMinus26                   int8
	ChromaQpIndexOffset                int8
	SecondChromaQpIndexOffset          int8
	ContinuationFlag                   uint8
	PicInitQpMinus26                   int8
	NumRefIdxL0ActiveMinus1            uint8
	NumRefIdxL1ActiveMinus1            uint8
	Reserved8BitsA                     uint8
	FrameNumList                       [16]uint16
	UsedForReferenceFlags              uint32
	NonExistingFrameFlags              uint16
	FrameNum                           uint16
	Log2MaxFrameNumMinus4              uint8
	PicOrderCntType                    uint8
	Log2MaxPicOrderCntLsbMinus4        uint8
	DeltaPicOrderAlwaysZeroFlag        uint8
	Direct8x8InferenceFlag             uint8
	EntropyCodingModeFlag              uint8
	PicOrderPresentFlag                uint8
	NumSliceGroupsMinus1               uint8
	SliceGroupMapType                  uint8
	DeblockingFilterControlPresentFlag uint8
	RedundantPicCntPresentFlag         uint8
	Reserved8BitsB                     uint8
	SliceGroupChangeRateMinus1         uint16
	SliceGroupMap                      [810]uint8
}

// RefPicFlag is bit 6 of the bit fields.
func (p *PicParamsH264) RefPicFlag() uint16 { return (p.WBitFields >> 6) & 1 }

// SliceH264Short is a DXVA_Slice_H264_Short.
type SliceH264Short struct {
	BSNALunitDataLocation uint32
	SliceBytesInBuffer    uint32
	WBadSliceChopping     uint16
}

// SliceH264Long is a DXVA_Slice_H264_Long.
type SliceH264Long struct {
	BSNALunitDataLocation      uint32
	SliceBytesInBuffer         uint32
	WBadSliceChopping          uint16
	FirstMbInSlice             uint16
	NumMbsForSlice             uint16
	BitOffsetToSliceData       uint16
	SliceType                  uint8
	LumaLog2WeightDenom        uint8
	ChromaLog2WeightDenom      uint8
	NumRefIdxL0ActiveMinus1    uint8
	NumRefIdxL1ActiveMinus1    uint8
	SliceAlphaC0OffsetDiv2     int8
	SliceBetaOffsetDiv2        int8
	Reserved8Bits              uint8
	RefPicList                 [3][32]PicEntryH264
	Weights                    [2][32][3][2]int16
	SliceQsDelta               int8
	SliceQpDelta               int8
	RedundantPicCnt            uint8
	DirectSpatialMvPredFlag    uint8
	CabacInitIdc               uint8
	DisableDeblockingFilterIdc uint8
	SliceID                    uint16
}

// SliceInfo is a DXVA_SliceInfo, the slice control of the MPEG-2 and VC-1
// modes.
type SliceInfo struct {
	WHorizontalPosition uint16
	WVerticalPosition   uint16
	DwSliceBitsInBuffer uint32
	DwSliceDataLocation uint32
	BStartCodeBitOffset uint8
	BReservedBits       uint8
	WMBbitOffset        uint16
	WNumberMBsInSlice   uint16
	WQuantizerScaleCode uint16
	WBadSliceChopping   uint16
}

// PictureParameters is a DXVA_PictureParameters.
type PictureParameters struct {
	WDecodedPictureIndex          uint16
	WDeblockedPictureIndex        uint16
	WForwardRefPictureIndex       uint16
	WBackwardRefPictureIndex      uint16
	WPicWidthInMBminus1           uint16
	WPicHeightInMBminus1          uint16
	BMacroblockWidthMinus1        uint8
	BMacroblockHeightMinus1       uint8
	BBlockWidthMinus1             uint8
	BBlockHeightMinus1            uint8
	BBPPminus1                    uint8
	BPicStructure                 uint8
	BSecondField                  uint8
	BPicIntra                     uint8
	BPicBackwardPrediction        uint8
	BBidirectionalAveragingMode   uint8
	BMVprecisionAndChromaRelation uint8
	BChromaFormat                 uint8
	BPicScanFixed                 uint8
	BPicScanMethod                uint8
	BPicReadbackRequests          uint8
	BRcontrol                     uint8
	BPicSpatialResid8             uint8
	BPicOverflowBlocks            uint8
	BPicExtrapolation             uint8
	BPicDeblocked                 uint8
	BPicDeblockConfined           uint8
	BPic4MVallowed                uint8
	BPicOBMC                      uint8
	BPicBinPB                     uint8
	BMV_RPS                       uint8
	BReservedBits                 uint8
	WBitstreamFcodes              uint16
	WBitstreamPCEelements         uint16
	BBitstreamConcealmentNeed     uint8
	BBitstreamConcealmentMethod   uint8
}

// BufferDescription is a DXVA_BufferDescription, the private input of the
// DXVA1 Execute function 0x01000000.
type BufferDescription struct {
	DwTypeIndex      uint32
	DwBufferIndex    uint32
	DwDataOffset     uint32
	DwDataSize       uint32
	DwFirstMBaddress uint32
	DwNumMBsInBuffer uint32
	DwWidth          uint32
	DwHeight         uint32
	DwStride         uint32
	DwReservedBits   uint32
}

// ConfigPictureDecodeV1 is the DXVA1 DXVA_ConfigPictureDecode.
type ConfigPictureDecodeV1 struct {
	DwFunction                     uint32
	DwReservedBits                 [3]uint32
	GuidConfigBitstreamEncryption  GUID
	GuidConfigMBcontrolEncryption  GUID
	GuidConfigResidDiffEncryption  GUID
	BConfigBitstreamRaw            uint8
	BConfigMBcontrolRasterOrder    uint8
	BConfigResidDiffHost           uint8
	BConfigSpatialResid8           uint8
	BConfigResid8Subtraction       uint8
	BConfigSpatialHost8or9Clipping uint8
	BConfigSpatialResidInterleaved uint8
	BConfigIntraResidUnsigned      uint8
	BConfigResidDiffAccelerator    uint8
	BConfigHostInverseScan         uint8
	BConfigSpecificIDCT            uint8
	BConfig4GroupedCoefs           uint8
}

// Packed sizes of the structures above.
var (
	SizeofPicParamsH264         = binary.Size(PicParamsH264{})
	SizeofSliceH264Short        = binary.Size(SliceH264Short{})
	SizeofSliceH264Long         = binary.Size(SliceH264Long{})
	SizeofSliceInfo             = binary.Size(SliceInfo{})
	SizeofPictureParameters     = binary.Size(PictureParameters{})
	SizeofBufferDescription     = binary.Size(BufferDescription{})
	SizeofConfigPictureDecodeV1 = binary.Size(ConfigPictureDecodeV1{})
)

// Decode decodes the packed little-endian structure pointed to by v from the
// start of b. It returns false without touching v when b is too short.
func Decode(b []byte, v interface{}) bool {
	size := binary.Size(v)
	if size < 0 || len(b) < size {
		return false
	}
	return binary.Read(bytes.NewReader(b[:size]), binary.LittleEndian, v) == nil
}

func DecodePicParamsH264(b []byte) (*PicParamsH264, bool) {
	var v PicParamsH264
	if !Decode(b, &v) {
		return nil, false
	}
	return &v, true
}

func DecodePictureParameters(b []byte) (*PictureParameters, bool) {
	var v PictureParameters
	if !Decode(b, &v) {
		return nil, false
	}
	return &v, true
}

func DecodeConfigPictureDecodeV1(b []byte) (*ConfigPictureDecodeV1, bool) {
	var v ConfigPictureDecodeV1
	if !Decode(b, &v) {
		return nil, false
	}
	return &v, true
}

// DecodeSlicesH264Short decodes up to n consecutive short slices, stopping at
// the end of b.
func DecodeSlicesH264Short(b []byte, n int) []SliceH264Short {
	n = boundCount(len(b), SizeofSliceH264Short, n)
	slices := make([]SliceH264Short, n)
	if n > 0 {
		Decode(b, slices)
	}
	return slices
}

// DecodeSlicesH264Long decodes up to n consecutive long slices, stopping at
// the end of b.
func DecodeSlicesH264Long(b []byte, n int) []SliceH264Long {
	n = boundCount(len(b), SizeofSliceH264Long, n)
	slices := make([]SliceH264Long, n)
	if n > 0 {
		Decode(b, slices)
	}
	return slices
}

// DecodeSliceInfos decodes up to n consecutive slice infos, stopping at the
// end of b.
func DecodeSliceInfos(b []byte, n int) []SliceInfo {
	n = boundCount(len(b), SizeofSliceInfo, n)
	slices := make([]SliceInfo, n)
	if n > 0 {
		Decode(b, slices)
	}
	return slices
}

// DecodeBufferDescriptions decodes up to n consecutive buffer descriptions,
// stopping at the end of b.
func DecodeBufferDescriptions(b []byte, n int) []BufferDescription {
	n = boundCount(len(b), SizeofBufferDescription, n)
	descs := make([]BufferDescription, n)
	if n > 0 {
		Decode(b, descs)
	}
	return descs
}

func boundCount(length, size, n int) int {
	if n < 0 {
		return 0
	}
	if max := length / size; n > max {
		return max
	}
	return n
}
