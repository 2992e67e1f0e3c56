// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqreen/go-dxvahook/internal/plog"
	"github.com/sqreen/go-dxvahook/tools/testlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserConfig(t *testing.T) {
	logger := plog.NewLogger(plog.Debug, os.Stderr)
	cfg, err := New(logger)
	require.NoError(t, err)

	stringValueTests := []struct {
		Name         string
		GetCfgValue  func() string
		ConfigKey    string
		DefaultValue string
		SomeValue    string
	}{
		{
			Name:         "Diagnostics directory",
			GetCfgValue:  cfg.DiagnosticsDir,
			ConfigKey:    configKeyDiagnosticsDir,
			DefaultValue: configDefaultDiagnosticsDir,
			SomeValue:    testlib.RandString(2, 30),
		},
		{
			Name:         "Memory protection",
			GetCfgValue:  cfg.MemoryProtection,
			ConfigKey:    configKeyMemoryProtection,
			DefaultValue: MemoryProtectionSystem,
			SomeValue:    MemoryProtectionNone,
		},
	}
	for _, tc := range stringValueTests {
		testStringValue(t, cfg, tc.Name, tc.GetCfgValue, tc.ConfigKey, tc.DefaultValue, tc.SomeValue)
	}

	boolValueTests := []struct {
		Name          string
		GetCfgValue   func() bool
		ConfigKey     string
		DefaultValue  bool
		CfgValue      string
		ExpectedValue bool
	}{
		{
			Name:          "Diagnostics",
			GetCfgValue:   cfg.Diagnostics,
			ConfigKey:     configKeyDiagnostics,
			CfgValue:      testlib.RandString(1, 30),
			ExpectedValue: true,
		},
		{
			Name:          "Bitstream dumps",
			GetCfgValue:   cfg.DumpBitstream,
			ConfigKey:     configKeyDumpBitstream,
			CfgValue:      testlib.RandString(1, 30),
			ExpectedValue: true,
		},
		{
			Name:          "Matrix dumps",
			GetCfgValue:   cfg.DumpMatrix,
			ConfigKey:     configKeyDumpMatrix,
			CfgValue:      testlib.RandString(1, 30),
			ExpectedValue: true,
		},
		{
			Name:          "Blank values are disabled",
			GetCfgValue:   cfg.Diagnostics,
			ConfigKey:     configKeyDiagnostics,
			CfgValue:      "  ",
			ExpectedValue: false,
		},
	}
	for _, tc := range boolValueTests {
		testBoolValue(t, cfg, tc.Name, tc.GetCfgValue, tc.ConfigKey, tc.DefaultValue, tc.CfgValue, tc.ExpectedValue)
	}

	t.Run("Log level", func(t *testing.T) {
		require.Equal(t, plog.Error, cfg.LogLevel())
		envVar := strings.ToUpper(configEnvPrefix + "_" + configKeyLogLevel)
		os.Setenv(envVar, " Debug ")
		defer os.Unsetenv(envVar)
		require.Equal(t, plog.Debug, cfg.LogLevel())
	})
}

func TestConfigValidation(t *testing.T) {
	logger := plog.NewLogger(plog.Debug, os.Stderr)

	t.Run("default configuration", func(t *testing.T) {
		cfg, err := New(logger)
		require.NoError(t, err)
		require.NotNil(t, cfg)
	})

	t.Run("unexpected memory protection mode", func(t *testing.T) {
		cwdFile := newCfgFile(t, ".", configKeyMemoryProtection+`: rwx`)
		defer os.Remove(cwdFile)
		cfg, err := New(logger)
		require.Error(t, err)
		require.Nil(t, cfg)
	})

	t.Run("memory protection mode is case insensitive", func(t *testing.T) {
		cwdFile := newCfgFile(t, ".", configKeyMemoryProtection+`: None`)
		defer os.Remove(cwdFile)
		cfg, err := New(logger)
		require.NoError(t, err)
		require.Equal(t, MemoryProtectionNone, cfg.MemoryProtection())
	})
}

func TestFileLocation(t *testing.T) {
	execFile, err := os.Executable()
	require.NoError(t, err)
	binDir := filepath.Dir(execFile)
	binDirValue := "exec-dir"
	binDirFile := newCfgFile(t, binDir, configKeyDiagnosticsDir+`: `+binDirValue)
	defer os.Remove(binDirFile)

	logger := plog.NewLogger(plog.Debug, os.Stderr)
	cfg, err := New(logger)
	require.NoError(t, err)
	require.Equal(t, binDirValue, cfg.DiagnosticsDir())

	cwdValue := "cwd-dir"
	cwdFile := newCfgFile(t, ".", configKeyDiagnosticsDir+`: `+cwdValue)
	defer os.Remove(cwdFile)

	cfg, err = New(logger)
	require.NoError(t, err)
	require.Equal(t, cwdValue, cfg.DiagnosticsDir())

	tmpValue := "tmp-dir"
	tmpDir := "./" + testlib.RandString(4)
	tmpFile := newCfgFile(t, tmpDir, configKeyDiagnosticsDir+`: `+tmpValue)
	defer os.RemoveAll(tmpDir)
	os.Setenv("DXVAHOOK_CONFIG_FILE", tmpFile)

	cfg, err = New(logger)
	require.NoError(t, err)
	require.Equal(t, tmpValue, cfg.DiagnosticsDir())

	os.Unsetenv("DXVAHOOK_CONFIG_FILE")

	cfg, err = New(logger)
	require.NoError(t, err)
	require.Equal(t, cwdValue, cfg.DiagnosticsDir())
}

func TestConfigLogging(t *testing.T) {
	t.Run("unreadable configuration file", func(t *testing.T) {
		tmpFile := filepath.Join(os.TempDir(), testlib.RandString(8)+".yml")
		os.Setenv("DXVAHOOK_CONFIG_FILE", tmpFile)
		defer os.Unsetenv("DXVAHOOK_CONFIG_FILE")

		logger := &testlib.LoggerMockup{}
		defer logger.AssertExpectations(t)
		logger.ExpectInfof("config: configuration file enforced by the environment variable `DXVAHOOK_CONFIG_FILE` to `" + tmpFile + "`").Once()
		logger.ExpectError(mock.Anything).Once()

		cfg, err := New(logger)
		require.NoError(t, err)
		require.Equal(t, configDefaultDiagnosticsDir, cfg.DiagnosticsDir())
	})

	t.Run("debug level settings", func(t *testing.T) {
		os.Setenv("DXVAHOOK_LOG_LEVEL", "debug")
		defer os.Unsetenv("DXVAHOOK_LOG_LEVEL")

		logger := &testlib.LoggerMockup{}
		defer logger.AssertExpectations(t)
		logger.ExpectInfof("config: reading configuration settings from environment variables").Once()
		logger.ExpectInfof("config: setting: DXVAHOOK_CONFIG_FILE = \"\"").Once()
		logger.ExpectInfof("config: settings: log_level = \"debug\"").Once()
		logger.ExpectInfof(mock.Anything).Times(5)

		_, err := New(logger)
		require.NoError(t, err)
	})
}

func testStringValue(t *testing.T, cfg *Config, name string, getCfgValue func() string, envKey, defaultValue, someValue string) {
	t.Run(name, func(t *testing.T) {
		t.Run("Default value", func(t *testing.T) {
			require.Equal(t, defaultValue, getCfgValue())
		})

		t.Run("Set through environment variable", func(t *testing.T) {
			envVar := strings.ToUpper(configEnvPrefix) + "_" + strings.ToUpper(envKey)
			os.Setenv(envVar, someValue)
			defer os.Unsetenv(envVar)
			require.Equal(t, someValue, getCfgValue())
		})

		t.Run("Set through configuration file", func(t *testing.T) {
			filename := newCfgFile(t, ".", envKey+`: `+someValue)
			defer os.Remove(filename)
			require.NoError(t, cfg.ReadInConfig())
			require.Equal(t, someValue, getCfgValue())
		})
	})
}

func testBoolValue(t *testing.T, cfg *Config, name string, getCfgValue func() bool, envKey string, defaultValue bool, cfgValue string, expectedValue bool) {
	t.Run(name, func(t *testing.T) {
		t.Run("Default value", func(t *testing.T) {
			require.Equal(t, defaultValue, getCfgValue())
		})

		t.Run("Set through environment variable", func(t *testing.T) {
			envVar := strings.ToUpper(configEnvPrefix) + "_" + strings.ToUpper(envKey)
			os.Setenv(envVar, cfgValue)
			defer os.Unsetenv(envVar)
			require.Equal(t, expectedValue, getCfgValue())
		})
	})
}

func newCfgFile(t *testing.T, path string, content string) string {
	os.MkdirAll(path, 0700)
	cfg, err := os.Create(path + "/dxvahook.yml")
	require.NoError(t, err)
	defer cfg.Close()
	_, err = cfg.WriteString(content)
	require.NoError(t, err)
	return cfg.Name()
}
