package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants for the MCP front end
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the jstrip front ends
type Config struct {
	// Batch CLI configuration
	InputPath  string // positional: a PDF file or a folder to mirror
	SkipNonPDF bool
	Verbose    bool

	// MCP server configuration
	Mode          string // "stdio" or "server"
	Host          string
	Port          int
	RootDirectory string // containment root for MCP tool paths

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio,
		Host:          DefaultHost,
		Port:          DefaultPort,
		RootDirectory: currentDir,
		Version:       "1.0.0",
		ServerName:    "jstrip",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses the batch CLI's command line and returns a
// configuration. The single positional argument is the input path.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)

	pflag.Bool("skip-nonpdf", false, "Skip copying non-PDF files into the mirrored tree")
	pflag.BoolP("verbose", "v", false, "Per-file status output")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")

	_ = viper.BindPFlag("skipnonpdf", pflag.Lookup("skip-nonpdf"))
	_ = viper.BindPFlag("verbose", pflag.Lookup("verbose"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))

	setupUsageMessage()
	pflag.Parse()

	cfg.SkipNonPDF = viper.GetBool("skipnonpdf")
	cfg.Verbose = viper.GetBool("verbose")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")

	if pflag.NArg() > 0 {
		if expanded, err := filepath.Abs(pflag.Arg(0)); err == nil {
			cfg.InputPath = expanded
		} else {
			cfg.InputPath = pflag.Arg(0)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadServerFromFlags parses the MCP server's command line and returns a
// configuration.
func LoadServerFromFlags() (*Config, error) {
	cfg := DefaultConfig()
	cfg.ServerName = "jstrip-mcp"

	setupViperEnvironment(cfg)

	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.RootDirectory, "Root directory the strip tools may read and write")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")

	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))

	pflag.Parse()

	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.RootDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")

	if cfg.RootDirectory != "" {
		if expanded, err := filepath.Abs(cfg.RootDirectory); err == nil {
			cfg.RootDirectory = expanded
		}
	}

	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("JSTRIP")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.RootDirectory)
	viper.SetDefault("skipnonpdf", cfg.SkipNonPDF)
	viper.SetDefault("verbose", cfg.Verbose)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// setupUsageMessage configures the custom usage message for the batch CLI
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\njstrip - remove JavaScript from PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "The input is a single PDF file or a folder. A file is cleaned into\n")
		fmt.Fprintf(os.Stderr, "<stem>_nojs.pdf beside it; a folder is mirrored into a sibling folder\n")
		fmt.Fprintf(os.Stderr, "named JStripped_<folder>, with every PDF sanitized on the way.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  JSTRIP_SKIPNONPDF   Skip copying non-PDF files\n")
		fmt.Fprintf(os.Stderr, "  JSTRIP_VERBOSE      Per-file status output\n")
		fmt.Fprintf(os.Stderr, "  JSTRIP_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  JSTRIP_MAXFILESIZE  Maximum file size\n")
	}
}

// Validate checks the batch CLI configuration
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is required")
	}
	return c.validateCommon()
}

// ValidateServer checks the MCP server configuration
func (c *Config) ValidateServer() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}
	if c.RootDirectory == "" {
		return errors.New("root directory cannot be empty")
	}
	if _, err := os.Stat(c.RootDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.RootDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create root directory %s: %w", c.RootDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access root directory %s: %w", c.RootDirectory, err)
	}
	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
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

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServerMode returns true if the MCP front end runs as an HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the MCP front end speaks over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, RootDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.RootDirectory, c.LogLevel, c.MaxFileSize)
}
