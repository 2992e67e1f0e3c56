// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Run-time configuration of the interceptor, read from the environment and an
// optional configuration file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/sqreen/go-dxvahook/internal/plog"
	"github.com/sqreen/go-dxvahook/internal/sqlib/sqerrors"
)

type Config struct {
	*viper.Viper
}

const (
	configEnvPrefix    = `dxvahook`
	configFileBasename = `dxvahook`
)

const (
	configEnvKeyConfigFile = `config_file`

	configKeyLogLevel         = `log_level`
	configKeyDiagnostics      = `diagnostics`
	configKeyDiagnosticsDir   = `diagnostics_dir`
	configKeyDumpBitstream    = `dump_bitstream`
	configKeyDumpMatrix       = `dump_matrix`
	configKeyMemoryProtection = `memory_protection`
)

// Memory protection modes of the dispatch tables.
const (
	// MemoryProtectionSystem changes the protection of the table pages with
	// the OS memory protection API while patching.
	MemoryProtectionSystem = `system`
	// MemoryProtectionNone writes the tables directly.
	MemoryProtectionNone = `none`
)

// User configuration's default values.
const (
	configDefaultLogLevel         = `error`
	configDefaultDiagnosticsDir   = `.`
	configDefaultMemoryProtection = MemoryProtectionSystem
)

// New reads the configuration from the environment and the optional
// configuration file, logging the settings it uses.
func New(logger plog.InfoLevelLogger) (*Config, error) {
	manager := viper.New()
	manager.SetEnvPrefix(configEnvPrefix)
	manager.AutomaticEnv()
	manager.SetConfigName(configFileBasename)

	// Default values of configurable parameters
	parameters := []struct {
		key          string
		defaultValue interface{}
	}{
		{key: configKeyLogLevel, defaultValue: configDefaultLogLevel},
		{key: configKeyDiagnostics, defaultValue: ""},
		{key: configKeyDiagnosticsDir, defaultValue: configDefaultDiagnosticsDir},
		{key: configKeyDumpBitstream, defaultValue: ""},
		{key: configKeyDumpMatrix, defaultValue: ""},
		{key: configKeyMemoryProtection, defaultValue: configDefaultMemoryProtection},
	}
	for _, p := range parameters {
		manager.SetDefault(p.key, p.defaultValue)
	}

	// Configuration file settings
	configFileEnvVar := strings.ToUpper(configEnvPrefix + "_" + configEnvKeyConfigFile)
	configFile := os.Getenv(configFileEnvVar)
	if configFile != "" {
		// File location enforced by the user
		manager.SetConfigFile(configFile)
		logger.Infof("config: configuration file enforced by the environment variable `%s` to `%s`", configFileEnvVar, configFile)
	} else {
		// Not enforced: add possible paths in precedence order
		// 1. Current working directory path:
		manager.AddConfigPath(`.`)
		// 2. Executable path, usually the host application's one
		exec, err := os.Executable()
		if err != nil {
			logger.Error(sqerrors.Wrap(err, "config: could not read the executable file path"))
		} else {
			manager.AddConfigPath(filepath.Dir(exec))
		}
	}
	// Try to read a configuration file according to the previous settings
	if readErr, fileUsed := manager.ReadInConfig(), manager.ConfigFileUsed(); readErr != nil && fileUsed != "" {
		// Could not read despite the fact of having found a file
		logger.Error(sqerrors.Wrap(readErr, fmt.Sprintf("config: could not read the configuration file `%s`: falling back to environment variables", fileUsed)))
	} else if fileUsed != "" {
		logger.Infof("config: reading configuration settings from file `%s`", fileUsed)
	} else {
		logger.Infof("config: reading configuration settings from environment variables")
	}

	cfg := &Config{Viper: manager}
	if cfg.LogLevel() == plog.Debug {
		logger.Infof("config: setting: %s = %q", configFileEnvVar, configFile)
		for _, p := range parameters {
			logger.Infof("config: settings: %s = %q", p.key, cfg.GetString(p.key))
		}
	}

	if err := cfg.health(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogLevel returns the log level.
func (c *Config) LogLevel() plog.LogLevel {
	return plog.ParseLogLevel(sanitizeString(c.GetString(configKeyLogLevel)))
}

// Diagnostics returns true when the diagnostic files should be written.
func (c *Config) Diagnostics() bool {
	return sanitizeString(c.GetString(configKeyDiagnostics)) != ""
}

// DiagnosticsDir returns the directory of the diagnostic files.
func (c *Config) DiagnosticsDir() string {
	dir := sanitizeString(c.GetString(configKeyDiagnosticsDir))
	if dir == "" {
		return configDefaultDiagnosticsDir
	}
	return dir
}

// DumpBitstream returns true when every bitstream buffer should be dumped into
// its own file. Diagnostics only.
func (c *Config) DumpBitstream() bool {
	return sanitizeString(c.GetString(configKeyDumpBitstream)) != ""
}

// DumpMatrix returns true when every inverse quantization matrix buffer should
// be dumped into its own file. Diagnostics only.
func (c *Config) DumpMatrix() bool {
	return sanitizeString(c.GetString(configKeyDumpMatrix)) != ""
}

// MemoryProtection returns the memory protection mode.
func (c *Config) MemoryProtection() string {
	return strings.ToLower(sanitizeString(c.GetString(configKeyMemoryProtection)))
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}

func (c *Config) health() error {
	switch mode := c.MemoryProtection(); mode {
	case MemoryProtectionSystem, MemoryProtectionNone:
	default:
		return sqerrors.Errorf("config: unexpected memory protection mode `%s`", mode)
	}
	return nil
}
