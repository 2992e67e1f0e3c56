// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package abi

// Interface identifiers.
var (
	IID_IUnknown             = MustParseGUID("{00000000-0000-0000-C000-000000000046}")
	IID_IDirectXVideoDecoder = MustParseGUID("{F2B0810A-FD00-43C9-918C-DF94E2D8EF7D}")
)

// Video subtypes refused by the connection hook unless the trusted decoder
// proposes them.
var (
	MEDIASUBTYPE_P010 = MustParseGUID("{30313050-0000-0010-8000-00AA00389B71}")
	MEDIASUBTYPE_P016 = MustParseGUID("{36313050-0000-0010-8000-00AA00389B71}")
	MEDIASUBTYPE_NV12 = MustParseGUID("{3231564E-0000-0010-8000-00AA00389B71}")
)

// CLSID_LAVVideo is the class identifier of the LAV Video Decoder filter,
// which handles 10-bit DXVA output itself.
var CLSID_LAVVideo = MustParseGUID("{EE30215D-164F-4A92-A4EB-9D4C13390F9F}")

// Decode mode identifiers.
var (
	DXVA_ModeMPEG2_A = MustParseGUID("{1B81BE0A-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA_ModeMPEG2_B = MustParseGUID("{1B81BE0B-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA_ModeMPEG2_C = MustParseGUID("{1B81BE0C-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA_ModeMPEG2_D = MustParseGUID("{1B81BE0D-A0C7-11D3-B984-00C04F2E73C5}")

	DXVA2_ModeMPEG2_MoComp = MustParseGUID("{E6A9F44B-61B0-4563-9EA4-63D2A3C6FE66}")
	DXVA2_ModeMPEG2_IDCT   = MustParseGUID("{BF22AD00-03EA-4690-8077-473346209B7E}")
	DXVA2_ModeMPEG2_VLD    = MustParseGUID("{EE27417F-5E28-4E65-BEEA-1D26B508ADC9}")

	DXVA2_ModeH264_A = MustParseGUID("{1B81BE64-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeH264_B = MustParseGUID("{1B81BE65-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeH264_C = MustParseGUID("{1B81BE66-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeH264_D = MustParseGUID("{1B81BE67-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeH264_E = MustParseGUID("{1B81BE68-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeH264_F = MustParseGUID("{1B81BE69-A0C7-11D3-B984-00C04F2E73C5}")

	DXVA2_ModeWMV8_A = MustParseGUID("{1B81BE80-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeWMV8_B = MustParseGUID("{1B81BE81-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeWMV9_A = MustParseGUID("{1B81BE90-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeWMV9_B = MustParseGUID("{1B81BE91-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeWMV9_C = MustParseGUID("{1B81BE94-A0C7-11D3-B984-00C04F2E73C5}")

	DXVA2_ModeVC1_A = MustParseGUID("{1B81BEA0-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeVC1_B = MustParseGUID("{1B81BEA1-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeVC1_C = MustParseGUID("{1B81BEA2-A0C7-11D3-B984-00C04F2E73C5}")
	DXVA2_ModeVC1_D = MustParseGUID("{1B81BEA3-A0C7-11D3-B984-00C04F2E73C5}")

	DXVA2_ModeMPEG4pt2_VLD_Simple = MustParseGUID("{EFD64D74-C9E8-41D7-A5E9-E9B0E39FA319}")
	DXVA2_ModeHEVC_VLD_Main       = MustParseGUID("{5B11D51B-2F4C-4452-BCC3-09F2A1160CC0}")
	DXVA2_ModeHEVC_VLD_Main10     = MustParseGUID("{107AF0E0-EF1A-4D19-ABA8-67A163073D13}")
	DXVA2_ModeVP9_VLD_Profile0    = MustParseGUID("{463707F8-A1D0-4585-876D-83AA6D60B89E}")

	DXVA_Intel_H264_ClearVideo  = MustParseGUID("{604F8E68-4951-4C54-88FE-ABD25C15B3D6}")
	DXVA_Intel_VC1_ClearVideo   = MustParseGUID("{BCC5DB6D-A2B6-4AF0-ACE4-ADB1F787BC89}")
	DXVA_Intel_VC1_ClearVideo_2 = MustParseGUID("{E07EC519-E651-4CD6-AC84-1370CCEEC851}")

	DXVA_NoEncrypt = MustParseGUID("{1B81BED0-A0C7-11D3-B984-00C04F2E73C5}")
)
