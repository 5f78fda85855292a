package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/invoice-extractor/internal/batch"
	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
)

const (
	// Default values
	DefaultOutput        = "results/invoices.xlsx"
	DefaultUploadDir     = "uploads"
	DefaultSheet         = "Invoices"
	DefaultTableDetector = layout.DetectorRows
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment override, e.g. INVOICE_UPLOAD_DIR
	EnvPrefix = "INVOICE"
)

// Flag names, also used as viper keys
const (
	KeyOutput        = "output"
	KeyUploadDir     = "upload-dir"
	KeyShaping       = "shaping"
	KeySheet         = "sheet"
	KeyTemplate      = "template"
	KeyTableDetector = "table-detector"
	KeyPreflight     = "preflight"
	KeyMaxFileSize   = "max-file-size"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
)

// Config holds all configuration for the invoice extractor
type Config struct {
	// Output configuration
	Output string
	Sheet  string
	// Shaping is empty when the input mode should pick it, see ShapingFor.
	Shaping string

	// Input configuration
	UploadDir    string
	TemplatePath string

	// PDF configuration
	TableDetector string
	Preflight     bool
	MaxFileSize   int64 // Maximum PDF file size in bytes

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output:        DefaultOutput,
		Sheet:         DefaultSheet,
		UploadDir:     DefaultUploadDir,
		TableDetector: DefaultTableDetector,
		MaxFileSize:   DefaultMaxFileSize,
		Version:       "1.0.0",
		ServerName:    "invoice-extractor",
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// RegisterFlags defines the configuration flags on fs
func RegisterFlags(fs *pflag.FlagSet) {
	cfg := DefaultConfig()

	fs.StringP(KeyOutput, "o", cfg.Output, "Spreadsheet to create or append to")
	fs.String(KeyUploadDir, cfg.UploadDir, "Directory scanned for PDF files")
	fs.String(KeyShaping, "", "Row shaping: numbered, numbered-source, plain, plain-source (default depends on input mode)")
	fs.String(KeySheet, cfg.Sheet, "Worksheet name")
	fs.String(KeyTemplate, "", "TOML template profile overriding the invoice layout")
	fs.String(KeyTableDetector, cfg.TableDetector, "Table detector: rows or geometric")
	fs.Bool(KeyPreflight, false, "Validate PDF structure with pdfcpu before extraction")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String(KeyLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String(KeyLogFormat, cfg.LogFormat, "Log format (console, json)")
}

// Load reads configuration from the environment and fs, flags taking
// precedence. fs must have been set up with RegisterFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	populateConfigFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newViper configures a viper instance with environment variables and defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyOutput, cfg.Output)
	v.SetDefault(KeyUploadDir, cfg.UploadDir)
	v.SetDefault(KeyShaping, cfg.Shaping)
	v.SetDefault(KeySheet, cfg.Sheet)
	v.SetDefault(KeyTemplate, cfg.TemplatePath)
	v.SetDefault(KeyTableDetector, cfg.TableDetector)
	v.SetDefault(KeyPreflight, cfg.Preflight)
	v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyLogFormat, cfg.LogFormat)
	return v
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Output = v.GetString(KeyOutput)
	cfg.UploadDir = v.GetString(KeyUploadDir)
	cfg.Shaping = v.GetString(KeyShaping)
	cfg.Sheet = v.GetString(KeySheet)
	cfg.TemplatePath = v.GetString(KeyTemplate)
	cfg.TableDetector = v.GetString(KeyTableDetector)
	cfg.Preflight = v.GetBool(KeyPreflight)
	cfg.MaxFileSize = v.GetInt64(KeyMaxFileSize)
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.LogFormat = v.GetString(KeyLogFormat)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output path cannot be empty")
	}

	if c.UploadDir == "" {
		return errors.New("upload directory cannot be empty")
	}

	if c.Sheet == "" {
		return errors.New("sheet name cannot be empty")
	}

	if c.Shaping != "" {
		if _, err := batch.ParseShaping(c.Shaping); err != nil {
			return err
		}
	}

	if _, err := layout.NewTableDetector(c.TableDetector); err != nil {
		return fmt.Errorf("invalid table detector: %w", err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
	}

	return nil
}

// ShapingFor returns the configured shaping, or the default for the input
// mode: numbered-source when scanning a directory, numbered for an explicit
// file list.
func (c *Config) ShapingFor(scan bool) string {
	if c.Shaping != "" {
		return c.Shaping
	}
	if scan {
		return string(batch.ShapingNumberedSource)
	}
	return string(batch.ShapingNumbered)
}

// EnsureUploadDir creates the upload directory if it does not exist
func (c *Config) EnsureUploadDir() error {
	if _, err := os.Stat(c.UploadDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.UploadDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create upload directory %s: %w", c.UploadDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access upload directory %s: %w", c.UploadDir, err)
	}
	return nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Output: %s, Sheet: %s, Shaping: %s, UploadDir: %s, Template: %s, TableDetector: %s, Preflight: %t, MaxFileSize: %d, LogLevel: %s, LogFormat: %s}",
		c.Output, c.Sheet, c.Shaping, c.UploadDir, c.TemplatePath, c.TableDetector, c.Preflight, c.MaxFileSize, c.LogLevel, c.LogFormat)
}
