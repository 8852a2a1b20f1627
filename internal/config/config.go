package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdfgraph/internal/pdf"
	"github.com/a3tai/pdfgraph/internal/pdf/document"
	"github.com/a3tai/pdfgraph/internal/pdf/xref"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultTimeout     = 30 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDFGRAPH"
)

// ErrVersionRequested is returned by Load when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the pdfgraph MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory      string
	MaxFileSize       int64 // Maximum PDF file size in bytes
	XRefWindow        int   // trailing bytes searched for startxref
	ExtendedFilters   bool
	StrictGenerations bool
	Timeout           time.Duration // per-document assembly limit, 0 disables
	CrossCheck        bool          // expose the pdf_crosscheck tool
	CacheSize         int           // assembled documents kept between calls

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		XRefWindow:   xref.DefaultWindow,
		Timeout:      DefaultTimeout,
		CrossCheck:   true,
		CacheSize:    pdf.DefaultCacheSize,
		Version:      "1.0.0",
		ServerName:   "pdfgraph",
		LogLevel:     DefaultLogLevel,
	}
}

// LoadFromFlags loads the configuration from os.Args and the environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses args on top of PDFGRAPH_* environment variables and the
// defaults. Flags win over the environment.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	if hasVersionFlag(args) {
		return nil, ErrVersionRequested
	}

	v := viper.New()
	setupViperEnvironment(v, cfg)

	flags := pflag.NewFlagSet("pdfgraph", pflag.ContinueOnError)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = usage(flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("xrefwindow", cfg.XRefWindow)
	v.SetDefault("extendedfilters", cfg.ExtendedFilters)
	v.SetDefault("strictgenerations", cfg.StrictGenerations)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("crosscheck", cfg.CrossCheck)
	v.SetDefault("cachesize", cfg.CacheSize)
}

func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Int("xrefwindow", cfg.XRefWindow, "Trailing bytes searched for startxref")
	flags.Bool("extendedfilters", cfg.ExtendedFilters, "Decode ASCIIHex, ASCII85, LZW, RunLength and CCITT streams")
	flags.Bool("strictgenerations", cfg.StrictGenerations, "Reject objects whose generation differs from the reference")
	flags.Duration("timeout", cfg.Timeout, "Per-document parse timeout (0 disables)")
	flags.Bool("crosscheck", cfg.CrossCheck, "Expose the pdf_crosscheck tool")
	flags.Int("cachesize", cfg.CacheSize, "Assembled documents kept in memory (0 disables)")
}

func usage(flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage of pdfgraph:\n")
		fmt.Fprintf(os.Stderr, "\npdfgraph - A Model Context Protocol server exposing the PDF object graph\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pdfgraph --dir=/path/to/pdfs                     # stdio mode\n")
		fmt.Fprintf(os.Stderr, "  pdfgraph --mode=server --port=8081 --dir=/pdfs   # SSE server\n")
		fmt.Fprintf(os.Stderr, "  pdfgraph --extendedfilters --loglevel=debug      # decode every filter, trace parsing\n")
		fmt.Fprintf(os.Stderr, "\nEvery option can also be set as %s_<NAME>, e.g. %s_DIR.\n", envPrefix, envPrefix)
	}
}

func hasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.XRefWindow = v.GetInt("xrefwindow")
	cfg.ExtendedFilters = v.GetBool("extendedfilters")
	cfg.StrictGenerations = v.GetBool("strictgenerations")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.CrossCheck = v.GetBool("crosscheck")
	cfg.CacheSize = v.GetInt("cachesize")
}

// Validate checks if the configuration is valid. A missing PDF directory is
// created.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.XRefWindow <= 0 {
		return errors.New("xref window must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// DocumentOptions maps the parser settings onto document options. In debug
// mode every assembly step is traced to logger.
func (c *Config) DocumentOptions(logger *log.Logger) []document.Option {
	opts := []document.Option{document.WithXRefWindow(c.XRefWindow)}
	if c.StrictGenerations {
		opts = append(opts, document.WithStrictGenerations())
	}
	if c.IsDebug() && logger != nil && logger.Writer() != io.Discard {
		opts = append(opts, document.WithTracer(document.NewLogTracer(logger)))
	}
	return opts
}

// ServiceOptions maps the configuration onto pdf.Service options
func (c *Config) ServiceOptions(logger *log.Logger) []pdf.ServiceOption {
	return []pdf.ServiceOption{
		pdf.WithExtendedFilters(c.ExtendedFilters),
		pdf.WithTimeout(c.Timeout),
		pdf.WithCacheSize(c.CacheSize),
		pdf.WithDocumentOptions(c.DocumentOptions(logger)...),
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, "+
		"MaxFileSize: %d, XRefWindow: %d, ExtendedFilters: %t, Timeout: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel,
		c.MaxFileSize, c.XRefWindow, c.ExtendedFilters, c.Timeout)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
