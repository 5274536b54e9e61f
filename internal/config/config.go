// File: internal/config/config.go
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/analysis/static/angular"
	"github.com/xkilldash9x/scopelint/internal/discovery"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Lint() LintConfig
	Output() OutputConfig

	// Command line overrides
	SetEngineConcurrency(int)
	SetLintControllerNamePattern(string)
	SetLintSeverity(string)
	SetOutputFormat(string)
	SetOutputPath(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	EngineCfg EngineConfig `mapstructure:"engine" yaml:"engine"`
	LintCfg   LintConfig   `mapstructure:"lint" yaml:"lint"`
	OutputCfg OutputConfig `mapstructure:"output" yaml:"output"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig { return c.EngineCfg }
func (c *Config) Lint() LintConfig     { return c.LintCfg }
func (c *Config) Output() OutputConfig { return c.OutputCfg }

func (c *Config) SetEngineConcurrency(n int) { c.EngineCfg.Concurrency = n }
func (c *Config) SetLintControllerNamePattern(p string) {
	c.LintCfg.ControllerNamePattern = p
}
func (c *Config) SetLintSeverity(s string) { c.LintCfg.Severity = s }
func (c *Config) SetOutputFormat(f string) { c.OutputCfg.Format = f }
func (c *Config) SetOutputPath(p string)   { c.OutputCfg.Path = p }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig configures the concurrent lint engine.
type EngineConfig struct {
	// Concurrency bounds the number of files parsed at the same time.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// WatchDebounce coalesces bursts of file system events in watch mode.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

// LintConfig selects the files to lint and configures the rule.
type LintConfig struct {
	// ControllerNamePattern switches controller detection from
	// .controller() registrations to function names. Either an exact name
	// or a /regex/flags literal.
	ControllerNamePattern string   `mapstructure:"controller_name_pattern" yaml:"controller_name_pattern"`
	Include               []string `mapstructure:"include" yaml:"include"`
	Exclude               []string `mapstructure:"exclude" yaml:"exclude"`
	Severity              string   `mapstructure:"severity" yaml:"severity"`
}

// OutputConfig configures where and how diagnostics are written.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	// Path is the report destination. Empty means stdout.
	Path string `mapstructure:"path" yaml:"path"`
}

// EnvPrefix is the prefix of environment variables that override
// configuration keys, e.g. SCOPELINT_LINT_SEVERITY.
const EnvPrefix = "SCOPELINT"

// NewEnvKeyReplacer maps nested keys such as lint.severity onto environment
// variable names.
func NewEnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// SupportedFormats lists the report formats the reporting package can produce.
var SupportedFormats = []string{"text", "json", "sarif"}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scopelint")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Engine --
	v.SetDefault("engine.concurrency", runtime.NumCPU())
	v.SetDefault("engine.watch_debounce", "250ms")

	// -- Lint --
	v.SetDefault("lint.controller_name_pattern", "")
	v.SetDefault("lint.include", discovery.DefaultInclude)
	v.SetDefault("lint.exclude", discovery.DefaultExclude)
	v.SetDefault("lint.severity", string(core.SeverityWarning))

	// -- Output --
	v.SetDefault("output.format", "text")
	v.SetDefault("output.path", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading ~ in file system paths.
func (c *Config) expandPaths() error {
	var err error
	if c.LoggerCfg.LogFile, err = homedir.Expand(c.LoggerCfg.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	if c.OutputCfg.Path, err = homedir.Expand(c.OutputCfg.Path); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.EngineCfg.Concurrency <= 0 {
		return fmt.Errorf("engine.concurrency must be a positive integer")
	}
	if c.EngineCfg.WatchDebounce < 0 {
		return fmt.Errorf("engine.watch_debounce must not be negative")
	}
	if len(c.LintCfg.Include) == 0 {
		return fmt.Errorf("lint.include must contain at least one pattern")
	}
	if _, err := core.ParseSeverity(c.LintCfg.Severity); err != nil {
		return fmt.Errorf("lint.severity: %w", err)
	}
	if _, err := angular.NewControllerMatcher(c.LintCfg.ControllerNamePattern); err != nil {
		return fmt.Errorf("lint.controller_name_pattern: %w", err)
	}
	if !isSupportedFormat(c.OutputCfg.Format) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(SupportedFormats, ", "), c.OutputCfg.Format)
	}
	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}
