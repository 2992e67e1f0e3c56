// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package diag

import (
	"fmt"
	"strings"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/dxva"
)

// CSV records of the structure files. Every record type has a header row
// written before its first record of a session.

var PicParamsH264Header = func() string {
	var s strings.Builder
	s.WriteString("RefPicFlag,wFrameWidthInMbsMinus1,wFrameHeightInMbsMinus1,CurrPic.Index7Bits,num_ref_frames,wBitFields,bit_depth_luma_minus8,bit_depth_chroma_minus8,Reserved16Bits,StatusReportFeedbackNumber,")
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&s, "RFL.Index7Bits[%d],", i)
	}
	s.WriteString("CurrFieldOrderCnt[0],CurrFieldOrderCnt[1],")
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&s, "FieldOrderCntList[%d][0],FieldOrderCntList[%d][1],", i, i)
	}
	s.WriteString("pic_init_qs_minus26,chroma_qp_index_offset,second_chroma_qp_index_offset,ContinuationFlag,pic_init_qp_minus26,num_ref_idx_l0_active_minus1,num_ref_idx_l1_active_minus1,Reserved8BitsA,")
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&s, "FrameNumList[%d],", i)
	}
	s.WriteString("UsedForReferenceFlags,NonExistingFrameFlags,frame_num,log2_max_frame_num_minus4,pic_order_cnt_type,log2_max_pic_order_cnt_lsb_minus4,delta_pic_order_always_zero_flag,direct_8x8_inference_flag,entropy_coding_mode_flag,pic_order_present_flag,num_slice_groups_minus1,slice_group_map_type,deblocking_filter_control_present_flag,redundant_pic_cnt_present_flag,Reserved8BitsB,slice_group_change_rate_minus1")
	return s.String()
}()

// PicParamsH264Record returns the record of H.264 picture parameters. Every
// value is followed by a comma.
func PicParamsH264Record(p *abi.PicParamsH264) string {
	var s strings.Builder
	field := func(v interface{}) { fmt.Fprintf(&s, "%d,", v) }
	field(p.RefPicFlag())
	field(p.WFrameWidthInMbsMinus1)
	field(p.WFrameHeightInMbsMinus1)
	field(p.CurrPic.Index7Bits())
	field(p.NumRefFrames)
	field(p.WBitFields)
	field(p.BitDepthLumaMinus8)
	field(p.BitDepthChromaMinus8)
	field(p.Reserved16Bits)
	field(p.StatusReportFeedbackNumber)
	for _, e := range p.RefFrameList {
		field(e.Index7Bits())
	}
	field(p.CurrFieldOrderCnt[0])
	field(p.CurrFieldOrderCnt[1])
	for _, cnt := range p.FieldOrderCntList {
		field(cnt[0])
		field(cnt[1])
	}
	field(p.PicInitQsMinus26)
	field(p.ChromaQpIndexOffset)
	field(p.SecondChromaQpIndexOffset)
	field(p.ContinuationFlag)
	field(p.PicInitQpMinus26)
	field(p.NumRefIdxL0ActiveMinus1)
	field(p.NumRefIdxL1ActiveMinus1)
	field(p.Reserved8BitsA)
	for _, n := range p.FrameNumList {
		field(n)
	}
	field(p.UsedForReferenceFlags)
	field(p.NonExistingFrameFlags)
	field(p.FrameNum)
	field(p.Log2MaxFrameNumMinus4)
	field(p.PicOrderCntType)
	field(p.Log2MaxPicOrderCntLsbMinus4)
	field(p.DeltaPicOrderAlwaysZeroFlag)
	field(p.Direct8x8InferenceFlag)
	field(p.EntropyCodingModeFlag)
	field(p.PicOrderPresentFlag)
	field(p.NumSliceGroupsMinus1)
	field(p.SliceGroupMapType)
	field(p.DeblockingFilterControlPresentFlag)
	field(p.RedundantPicCntPresentFlag)
	field(p.Reserved8BitsB)
	field(p.SliceGroupChangeRateMinus1)
	return s.String()
}

const PictureParametersHeader = "wDecodedPictureIndex,wDeblockedPictureIndex,wForwardRefPictureIndex,wBackwardRefPictureIndex,wPicWidthInMBminus1,wPicHeightInMBminus1,bMacroblockWidthMinus1,bMacroblockHeightMinus1,bBlockWidthMinus1,bBlockHeightMinus1,bBPPminus1,bPicStructure,bSecondField,bPicIntra,bPicBackwardPrediction,bBidirectionalAveragingMode,bMVprecisionAndChromaRelation,bChromaFormat,bPicScanFixed,bPicScanMethod,bPicReadbackRequests,bRcontrol,bPicSpatialResid8,bPicOverflowBlocks,bPicExtrapolation,bPicDeblocked,bPicDeblockConfined,bPic4MVallowed,bPicOBMC,bPicBinPB,bMV_RPS,bReservedBits,wBitstreamFcodes,wBitstreamPCEelements,bBitstreamConcealmentNeed,bBitstreamConcealmentMethod"

func PictureParametersRecord(p *abi.PictureParameters) string {
	return joinInts(
		p.WDecodedPictureIndex,
		p.WDeblockedPictureIndex,
		p.WForwardRefPictureIndex,
		p.WBackwardRefPictureIndex,
		p.WPicWidthInMBminus1,
		p.WPicHeightInMBminus1,
		p.BMacroblockWidthMinus1,
		p.BMacroblockHeightMinus1,
		p.BBlockWidthMinus1,
		p.BBlockHeightMinus1,
		p.BBPPminus1,
		p.BPicStructure,
		p.BSecondField,
		p.BPicIntra,
		p.BPicBackwardPrediction,
		p.BBidirectionalAveragingMode,
		p.BMVprecisionAndChromaRelation,
		p.BChromaFormat,
		p.BPicScanFixed,
		p.BPicScanMethod,
		p.BPicReadbackRequests,
		p.BRcontrol,
		p.BPicSpatialResid8,
		p.BPicOverflowBlocks,
		p.BPicExtrapolation,
		p.BPicDeblocked,
		p.BPicDeblockConfined,
		p.BPic4MVallowed,
		p.BPicOBMC,
		p.BPicBinPB,
		p.BMV_RPS,
		p.BReservedBits,
		p.WBitstreamFcodes,
		p.WBitstreamPCEelements,
		p.BBitstreamConcealmentNeed,
		p.BBitstreamConcealmentMethod,
	)
}

const SliceH264ShortHeader = "nCnt,BSNALunitDataLocation,SliceBytesInBuffer,wBadSliceChopping"

// SliceH264ShortRecord returns the record of the n-th short slice.
func SliceH264ShortRecord(n int, s *abi.SliceH264Short) string {
	return joinInts(n, s.BSNALunitDataLocation, s.SliceBytesInBuffer, s.WBadSliceChopping)
}

const SliceInfoHeader = "nCnt,wHorizontalPosition,wVerticalPosition,dwSliceBitsInBuffer,dwSliceDataLocation,bStartCodeBitOffset,bReservedBits,wMBbitOffset,wNumberMBsInSlice,wQuantizerScaleCode,wBadSliceChopping"

// SliceInfoRecord returns the record of the n-th slice info.
func SliceInfoRecord(n int, s *abi.SliceInfo) string {
	return joinInts(
		n,
		s.WHorizontalPosition,
		s.WVerticalPosition,
		s.DwSliceBitsInBuffer,
		s.DwSliceDataLocation,
		s.BStartCodeBitOffset,
		s.BReservedBits,
		s.WMBbitOffset,
		s.WNumberMBsInSlice,
		s.WQuantizerScaleCode,
		s.WBadSliceChopping,
	)
}

var SliceH264LongHeader = func() string {
	var s strings.Builder
	s.WriteString("nCnt,BSNALunitDataLocation,SliceBytesInBuffer,wBadSliceChopping,first_mb_in_slice,NumMbsForSlice,BitOffsetToSliceData,slice_type,luma_log2_weight_denom,chroma_log2_weight_denom,num_ref_idx_l0_active_minus1,num_ref_idx_l1_active_minus1,slice_alpha_c0_offset_div2,slice_beta_offset_div2,Reserved8Bits,slice_qs_delta,slice_qp_delta,redundant_pic_cnt,direct_spatial_mv_pred_flag,cabac_init_idc,disable_deblocking_filter_idc,slice_id,")
	// L0 and L1
	for i := 0; i < 2; i++ {
		for j := 0; j < 32; j++ {
			fmt.Fprintf(&s, "R[%d][%d].AssociatedFlag,R[%d][%d].bPicEntry,R[%d][%d].Index7Bits,", i, j, i, j, i, j)
		}
	}
	for a := 0; a < 2; a++ {
		for b := 0; b < 32; b++ {
			for c := 0; c < 3; c++ {
				for d := 0; d < 2; d++ {
					fmt.Fprintf(&s, "W[%d][%d][%d][%d],", a, b, c, d)
				}
			}
		}
	}
	return s.String()
}()

// SliceH264LongRecord returns the record of the n-th long slice. Every value
// is followed by a comma.
func SliceH264LongRecord(n int, sl *abi.SliceH264Long) string {
	var s strings.Builder
	field := func(v interface{}) { fmt.Fprintf(&s, "%d,", v) }
	field(n)
	field(sl.BSNALunitDataLocation)
	field(sl.SliceBytesInBuffer)
	field(sl.WBadSliceChopping)
	field(sl.FirstMbInSlice)
	field(sl.NumMbsForSlice)
	field(sl.BitOffsetToSliceData)
	field(sl.SliceType)
	field(sl.LumaLog2WeightDenom)
	field(sl.ChromaLog2WeightDenom)
	field(sl.NumRefIdxL0ActiveMinus1)
	field(sl.NumRefIdxL1ActiveMinus1)
	field(sl.SliceAlphaC0OffsetDiv2)
	field(sl.SliceBetaOffsetDiv2)
	field(sl.Reserved8Bits)
	field(sl.SliceQsDelta)
	field(sl.SliceQpDelta)
	field(sl.RedundantPicCnt)
	field(sl.DirectSpatialMvPredFlag)
	field(sl.CabacInitIdc)
	field(sl.DisableDeblockingFilterIdc)
	field(sl.SliceID)
	for _, list := range sl.RefPicList[:2] {
		for _, e := range list {
			field(e.AssociatedFlag())
			field(uint8(e))
			field(e.Index7Bits())
		}
	}
	for _, list := range sl.Weights {
		for _, ref := range list {
			for _, component := range ref {
				field(component[0])
				field(component[1])
			}
		}
	}
	return s.String()
}

const BitstreamHeader = "Size,Start,Stop"

// bitstreamEdge is the number of bytes dumped at each end of a bitstream
// buffer.
const bitstreamEdge = 20

// BitstreamRecord returns the record of a bitstream buffer of the given
// declared size, whose available bytes are `b`: the first and the last bytes
// of `b`, with `--` for missing ones.
func BitstreamRecord(size int, b []byte) string {
	var s strings.Builder
	fmt.Fprintf(&s, "%d, -", size)
	for i := 0; i < bitstreamEdge; i++ {
		if i < len(b) {
			fmt.Fprintf(&s, " %02x", b[i])
		} else {
			s.WriteString(" --")
		}
	}
	s.WriteString(", -")
	for i := len(b) - bitstreamEdge; i < len(b); i++ {
		if i >= 0 {
			fmt.Fprintf(&s, " %02x", b[i])
		} else {
			s.WriteString(" --")
		}
	}
	return s.String()
}

func joinInts(values ...interface{}) string {
	var s strings.Builder
	for i, v := range values {
		if i > 0 {
			s.WriteByte(',')
		}
		fmt.Fprintf(&s, "%d", v)
	}
	return s.String()
}

// Multi-line dumps of the main log file.

func PixelFormatLines(prefix string, formats []abi.DDPixelFormat) []string {
	lines := make([]string, 0, 8*len(formats))
	for i, p := range formats {
		lines = append(lines,
			fmt.Sprintf("%s[%d].dwSize = %d", prefix, i, p.Size),
			fmt.Sprintf("%s[%d].dwFlags = %08x", prefix, i, p.Flags),
			fmt.Sprintf("%s[%d].dwFourCC = %s", prefix, i, fourCC(p.FourCC)),
			fmt.Sprintf("%s[%d].dwRGBBitCount = %08x", prefix, i, p.RGBBitCount),
			fmt.Sprintf("%s[%d].dwRBitMask = %08x", prefix, i, p.RBitMask),
			fmt.Sprintf("%s[%d].dwGBitMask = %08x", prefix, i, p.GBitMask),
			fmt.Sprintf("%s[%d].dwBBitMask = %08x", prefix, i, p.BBitMask),
			fmt.Sprintf("%s[%d].dwRGBAlphaBitMask = %08x", prefix, i, p.RGBAlphaBitMask),
		)
	}
	return lines
}

func UncompDataInfoLines(prefix string, infos []abi.AMVAUncompDataInfo) []string {
	var lines []string
	for i, info := range infos {
		lines = append(lines,
			fmt.Sprintf("%s[%d].dwUncompWidth = %d", prefix, i, info.UncompWidth),
			fmt.Sprintf("%s[%d].dwUncompHeight = %d", prefix, i, info.UncompHeight),
		)
		lines = append(lines, PixelFormatLines(fmt.Sprintf("%s[%d]", prefix, i), []abi.DDPixelFormat{info.UncompPixelFormat})...)
	}
	return lines
}

// fourCC returns the four characters of a FOURCC code, with dots in place of
// non-printable ones.
func fourCC(code uint32) string {
	b := []byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '.'
		}
	}
	return string(b)
}

func BufferDescriptionLines(descs []abi.BufferDescription) []string {
	lines := make([]string, 0, 11*len(descs))
	for i, d := range descs {
		lines = append(lines,
			fmt.Sprintf("[in] lpPrivateInputData, buffer description %d", i),
			fmt.Sprintf("     pBuffDesc->dwTypeIndex         = %d", d.DwTypeIndex),
			fmt.Sprintf("     pBuffDesc->dwBufferIndex       = %d", d.DwBufferIndex),
			fmt.Sprintf("     pBuffDesc->dwDataOffset        = %d", d.DwDataOffset),
			fmt.Sprintf("     pBuffDesc->dwDataSize          = %d", d.DwDataSize),
			fmt.Sprintf("     pBuffDesc->dwFirstMBaddress    = %d", d.DwFirstMBaddress),
			fmt.Sprintf("     pBuffDesc->dwHeight            = %d", d.DwHeight),
			fmt.Sprintf("     pBuffDesc->dwStride            = %d", d.DwStride),
			fmt.Sprintf("     pBuffDesc->dwWidth             = %d", d.DwWidth),
			fmt.Sprintf("     pBuffDesc->dwNumMBsInBuffer    = %d", d.DwNumMBsInBuffer),
			fmt.Sprintf("     pBuffDesc->dwReservedBits      = %d", d.DwReservedBits),
		)
	}
	return lines
}

func ConfigPictureDecodeV1Lines(c *abi.ConfigPictureDecodeV1) []string {
	return []string{
		"[in] lpPrivateInputData, config requested",
		fmt.Sprintf("     ConfigRequested->bConfig4GroupedCoefs          = %d", c.BConfig4GroupedCoefs),
		fmt.Sprintf("     ConfigRequested->bConfigBitstreamRaw           = %d", c.BConfigBitstreamRaw),
		fmt.Sprintf("     ConfigRequested->bConfigHostInverseScan        = %d", c.BConfigHostInverseScan),
		fmt.Sprintf("     ConfigRequested->bConfigIntraResidUnsigned     = %d", c.BConfigIntraResidUnsigned),
		fmt.Sprintf("     ConfigRequested->bConfigMBcontrolRasterOrder   = %d", c.BConfigMBcontrolRasterOrder),
		fmt.Sprintf("     ConfigRequested->bConfigResid8Subtraction      = %d", c.BConfigResid8Subtraction),
		fmt.Sprintf("     ConfigRequested->bConfigResidDiffAccelerator   = %d", c.BConfigResidDiffAccelerator),
		fmt.Sprintf("     ConfigRequested->bConfigResidDiffHost          = %d", c.BConfigResidDiffHost),
		fmt.Sprintf("     ConfigRequested->bConfigSpatialHost8or9Clipping= %d", c.BConfigSpatialHost8or9Clipping),
		fmt.Sprintf("     ConfigRequested->bConfigSpatialResid8          = %d", c.BConfigSpatialResid8),
		fmt.Sprintf("     ConfigRequested->bConfigSpatialResidInterleaved= %d", c.BConfigSpatialResidInterleaved),
		fmt.Sprintf("     ConfigRequested->bConfigSpecificIDCT           = %d", c.BConfigSpecificIDCT),
		fmt.Sprintf("     ConfigRequested->dwFunction                    = %d", c.DwFunction),
		fmt.Sprintf("     ConfigRequested->guidConfigBitstreamEncryption = %s", c.GuidConfigBitstreamEncryption),
		fmt.Sprintf("     ConfigRequested->guidConfigMBcontrolEncryption = %s", c.GuidConfigMBcontrolEncryption),
		fmt.Sprintf("     ConfigRequested->guidConfigResidDiffEncryption = %s", c.GuidConfigResidDiffEncryption),
	}
}

func SliceH264ShortLines(slices []abi.SliceH264Short) []string {
	lines := make([]string, 0, 3*len(slices))
	for _, s := range slices {
		lines = append(lines,
			fmt.Sprintf("    - BSNALunitDataLocation  %d", s.BSNALunitDataLocation),
			fmt.Sprintf("    - SliceBytesInBuffer     %d", s.SliceBytesInBuffer),
			fmt.Sprintf("    - wBadSliceChopping      %d", s.WBadSliceChopping),
		)
	}
	return lines
}

func DXVA2ConfigLines(c *abi.ConfigPictureDecode) []string {
	field := func(name string, v interface{}) string {
		return fmt.Sprintf("    - %-34s%v", name, v)
	}
	return []string{
		"Config",
		field("Config4GroupedCoefs", c.Config4GroupedCoefs),
		field("ConfigBitstreamRaw", c.ConfigBitstreamRaw),
		field("ConfigDecoderSpecific", c.ConfigDecoderSpecific),
		field("ConfigHostInverseScan", c.ConfigHostInverseScan),
		field("ConfigIntraResidUnsigned", c.ConfigIntraResidUnsigned),
		field("ConfigMBcontrolRasterOrder", c.ConfigMBcontrolRasterOrder),
		field("ConfigMinRenderTargetBuffCount", c.ConfigMinRenderTargetBuffCount),
		field("ConfigResid8Subtraction", c.ConfigResid8Subtraction),
		field("ConfigResidDiffAccelerator", c.ConfigResidDiffAccelerator),
		field("ConfigResidDiffHost", c.ConfigResidDiffHost),
		field("ConfigSpatialHost8or9Clipping", c.ConfigSpatialHost8or9Clipping),
		field("ConfigSpatialResid8", c.ConfigSpatialResid8),
		field("ConfigSpatialResidInterleaved", c.ConfigSpatialResidInterleaved),
		field("ConfigSpecificIDCT", c.ConfigSpecificIDCT),
		field("guidConfigBitstreamEncryption", c.GuidConfigBitstreamEncryption),
		field("guidConfigMBcontrolEncryption", c.GuidConfigMBcontrolEncryption),
		field("guidConfigResidDiffEncryption", c.GuidConfigResidDiffEncryption),
	}
}

func VideoDescLines(d *abi.VideoDesc) []string {
	field := func(name string, format string, v ...interface{}) string {
		return fmt.Sprintf("    - %-34s", name) + fmt.Sprintf(format, v...)
	}
	return []string{
		"VideoDesc",
		field("Format", "%s  (0x%08x)", dxva.FormatName(d.Format), uint32(d.Format)),
		field("InputSampleFreq", "%d/%d", d.InputSampleFreq.Numerator, d.InputSampleFreq.Denominator),
		field("OutputFrameFreq", "%d/%d", d.OutputFrameFreq.Numerator, d.OutputFrameFreq.Denominator),
		field("SampleFormat", "%d", d.SampleFormat),
		field("SampleHeight", "%d", d.SampleHeight),
		field("SampleWidth", "%d", d.SampleWidth),
		field("UABProtectionLevel", "%d", d.UABProtectionLevel),
	}
}

func DecodeBufferDescLine(d *abi.DecodeBufferDesc) string {
	return fmt.Sprintf("DecodeBufferDesc type : %d   Size=%d   NumMBsInBuffer=%d", d.CompressedBufferType, d.DataSize, d.NumMBsInBuffer)
}
