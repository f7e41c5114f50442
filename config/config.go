package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/apoxy-dev/apoxy-static/pkg/fileserver"
)

var (
	ConfigFile      string
	Verbose         bool
	AlsoLogToStderr bool
	DefaultConfig   = Config{
		ListenAddr:     fileserver.DefaultListenAddr,
		DocRoot:        ".",
		Index:          "index.html",
		ReadBufferSize: fileserver.DefaultReadBufferSize,
		MaxConnections: fileserver.DefaultMaxConnections,
		LogLevel:       "info",
	}
)

type Config struct {
	// The address to listen on.
	ListenAddr string `yaml:"listen_addr,omitempty"`
	// The directory request targets are resolved against.
	DocRoot string `yaml:"doc_root,omitempty"`
	// The document served for "/".
	Index string `yaml:"index,omitempty"`
	// The size of the single read that receives a request.
	ReadBufferSize int `yaml:"read_buffer_size,omitempty"`
	// The maximum number of connections served at once.
	MaxConnections int `yaml:"max_connections,omitempty"`
	// How long to wait for a request before closing the connection. Zero waits forever.
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`
	// Whether a short file read is served as 500 instead of partial content.
	StrictReads bool `yaml:"strict_reads,omitempty"`
	// Whether targets escaping the document root are rejected.
	ConfineToRoot bool `yaml:"confine_to_root,omitempty"`
	// Whether to enable verbose logging.
	Verbose bool `yaml:"verbose,omitempty"`
	// The log level when not verbose.
	LogLevel string `yaml:"log_level,omitempty"`
	// Whether to log in JSON.
	JSONLogs bool `yaml:"json_logs,omitempty"`
	// Sentry DSN for error reporting. Empty disables reporting.
	SentryDSN string `yaml:"sentry_dsn,omitempty"`
}

// ApoxyDir returns the path to the Apoxy configuration directory.
func ApoxyDir() string {
	return filepath.Join(os.Getenv("HOME"), ".apoxy")
}

// DefaultConfigPath returns the config file used when --config is not set.
func DefaultConfigPath() string {
	return filepath.Join(ApoxyDir(), "static.yaml")
}

// Load reads ConfigFile over DefaultConfig. A missing file yields the defaults.
func Load() (*Config, error) {
	if ConfigFile == "" {
		ConfigFile = DefaultConfigPath()
	}
	cfg := DefaultConfig
	yamlFile, err := os.ReadFile(ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		cfg.Verbose = cfg.Verbose || Verbose
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	cfg.Verbose = cfg.Verbose || Verbose
	return &cfg, nil
}

func ensureDirExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Create the directory if it doesn't exist
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// Store writes cfg to ConfigFile.
func Store(cfg *Config) error {
	yamlFile, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if ConfigFile == "" {
		ConfigFile = DefaultConfigPath()
	}
	if err := ensureDirExists(ConfigFile); err != nil {
		return fmt.Errorf("failed to ensure directory exists: %w", err)
	}
	if err := os.WriteFile(ConfigFile, yamlFile, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// ServerOptions returns the immutable server options described by cfg.
func (c *Config) ServerOptions() fileserver.Options {
	return fileserver.Options{
		ListenAddr:     c.ListenAddr,
		DocRoot:        c.DocRoot,
		Index:          c.Index,
		ReadBufferSize: c.ReadBufferSize,
		MaxConnections: c.MaxConnections,
		ReadTimeout:    c.ReadTimeout,
		StrictReads:    c.StrictReads,
		ConfineToRoot:  c.ConfineToRoot,
	}
}
