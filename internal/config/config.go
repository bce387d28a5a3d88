package config

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/tabdeck/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "tabdeck.yaml"

	// DefaultAddress is the default server listen address.
	DefaultAddress = "localhost:7420"

	// DefaultSessionPath is the default session database, relative to the
	// config directory.
	DefaultSessionPath = ".tabdeck/session.db"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "tabdeck"

	// DefaultS3MaxSize is the default size limit for S3 documents.
	DefaultS3MaxSize = 10 << 20
)

// Config represents the complete tabdeck.yaml configuration.
type Config struct {
	// ShowHomeOnStartup opens a home tab when the workbench starts.
	ShowHomeOnStartup bool `yaml:"showHomeOnStartup"`

	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log"`

	// Session contains session persistence configuration.
	Session SessionConfig `yaml:"session"`

	// Watch contains file watching configuration.
	Watch WatchConfig `yaml:"watch"`

	// S3 contains configuration for s3:// documents.
	S3 S3Config `yaml:"s3,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the host:port to listen on.
	Address string `yaml:"address"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// SessionConfig contains session persistence settings.
type SessionConfig struct {
	// Path is the session database file.
	Path string `yaml:"path"`

	// Restore reopens the documents of the previous session on start.
	Restore bool `yaml:"restore"`
}

// WatchConfig contains file watching settings.
type WatchConfig struct {
	// Enabled reloads open text documents when they change on disk.
	Enabled bool `yaml:"enabled"`
}

// S3Config contains S3 client settings.
type S3Config struct {
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`
	MaxSize   int64  `yaml:"maxSize,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		ShowHomeOnStartup: true,
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			Path:    DefaultSessionPath,
			Restore: true,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		S3: S3Config{
			MaxSize: DefaultS3MaxSize,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for tabdeck.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("E102").Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault is LoadFile, except that a missing file yields the
// defaults. The returned config saves to path.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New("E102").Wrap(err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Session.Path == "" {
		c.Session.Path = DefaultSessionPath
	}
	if c.S3.MaxSize == 0 {
		c.S3.MaxSize = DefaultS3MaxSize
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Server.Address)
	if err != nil {
		return errors.New("E103").WithDetail(err.Error())
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return errors.New("E103").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Quote(port))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("E104").WithDetail("Unknown level " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E105").WithDetail("Unknown format " + strconv.Quote(c.Log.Format))
	}
	if c.S3.MaxSize < 0 {
		return errors.Newf(errors.CategoryConfig, "s3.maxSize must not be negative")
	}
	return nil
}

// SessionPath returns the absolute path to the session database.
func (c *Config) SessionPath() string {
	if filepath.IsAbs(c.Session.Path) {
		return c.Session.Path
	}
	return filepath.Join(c.Dir(), c.Session.Path)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
