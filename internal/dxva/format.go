// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package dxva

import "github.com/sqreen/go-dxvahook/abi"

type formatName struct {
	format abi.D3DFormat
	name   string
}

// The first entry is the fallback of unknown formats.
var formats = []formatName{
	{0, "D3DFMT_UNKNOWN"},
	{20, "D3DFMT_R8G8B8"},
	{21, "D3DFMT_A8R8G8B8"},
	{22, "D3DFMT_X8R8G8B8"},
	{23, "D3DFMT_R5G6B5"},
	{24, "D3DFMT_X1R5G5B5"},
	{25, "D3DFMT_A1R5G5B5"},
	{26, "D3DFMT_A4R4G4B4"},
	{27, "D3DFMT_R3G3B2"},
	{28, "D3DFMT_A8"},
	{29, "D3DFMT_A8R3G3B2"},
	{30, "D3DFMT_X4R4G4B4"},
	{31, "D3DFMT_A2B10G10R10"},
	{32, "D3DFMT_A8B8G8R8"},
	{33, "D3DFMT_X8B8G8R8"},
	{34, "D3DFMT_G16R16"},
	{35, "D3DFMT_A2R10G10B10"},
	{36, "D3DFMT_A16B16G16R16"},
	{40, "D3DFMT_A8P8"},
	{41, "D3DFMT_P8"},
	{50, "D3DFMT_L8"},
	{51, "D3DFMT_A8L8"},
	{52, "D3DFMT_A4L4"},
	{62, "D3DFMT_X8L8V8U8"},
	{63, "D3DFMT_Q8W8V8U8"},
	{64, "D3DFMT_V16U16"},
	{67, "D3DFMT_A2W10V10U10"},
	{abi.MakeFourCC('U', 'Y', 'V', 'Y'), "D3DFMT_UYVY"},
	{abi.MakeFourCC('R', 'G', 'B', 'G'), "D3DFMT_R8G8_B8G8"},
	{abi.MakeFourCC('Y', 'U', 'Y', '2'), "D3DFMT_YUY2"},
	{abi.MakeFourCC('G', 'R', 'G', 'B'), "D3DFMT_G8R8_G8B8"},
	{abi.MakeFourCC('D', 'X', 'T', '1'), "D3DFMT_DXT1"},
	{abi.MakeFourCC('D', 'X', 'T', '2'), "D3DFMT_DXT2"},
	{abi.MakeFourCC('D', 'X', 'T', '3'), "D3DFMT_DXT3"},
	{abi.MakeFourCC('D', 'X', 'T', '4'), "D3DFMT_DXT4"},
	{abi.MakeFourCC('D', 'X', 'T', '5'), "D3DFMT_DXT5"},
	{70, "D3DFMT_D16_LOCKABLE"},
	{71, "D3DFMT_D32"},
	{73, "D3DFMT_D15S1"},
	{75, "D3DFMT_D24S8"},
	{77, "D3DFMT_D24X8"},
	{79, "D3DFMT_D24X4S4"},
	{80, "D3DFMT_D16"},
	{82, "D3DFMT_D32F_LOCKABLE"},
	{83, "D3DFMT_D24FS8"},
	{81, "D3DFMT_L16"},
	{100, "D3DFMT_VERTEXDATA"},
	{101, "D3DFMT_INDEX16"},
	{102, "D3DFMT_INDEX32"},
	{110, "D3DFMT_Q16W16V16U16"},
	{abi.MakeFourCC('N', 'V', '1', '2'), "D3DFMT_NV12"},
	{abi.MakeFourCC('N', 'V', '2', '4'), "D3DFMT_NV24"},
}

// FormatName returns the name of a Direct3D surface format, or the name of
// D3DFMT_UNKNOWN when the format is not known.
func FormatName(f abi.D3DFormat) string {
	for _, e := range formats {
		if e.format == f {
			return e.name
		}
	}
	return formats[0].name
}
