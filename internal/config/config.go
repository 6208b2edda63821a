package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/consolenav/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "consolenav.json"

	// DefaultAddress is the default server listen address.
	DefaultAddress = ":8080"

	// DefaultMaxRedirects is the default redirect hop limit.
	DefaultMaxRedirects = 10

	// DefaultFallback is the default recovery path.
	DefaultFallback = "/"

	// DefaultCacheSize is the default number of cached resolution steps.
	DefaultCacheSize = 512

	// DefaultOutput is the default manifest export path.
	DefaultOutput = "dist/routes.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CONSOLENAV_"
)

// FileNames lists the configuration file names Load looks for, in order.
var FileNames = []string{ConfigFileName, "consolenav.yaml", "consolenav.yml"}

// Config represents the complete consolenav configuration.
type Config struct {
	// Server contains HTTP and WebSocket settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Navigation contains navigator settings.
	Navigation NavigationConfig `json:"navigation" yaml:"navigation"`

	// Log contains logger settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Export contains manifest export settings.
	Export ExportConfig `json:"export" yaml:"export"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings. Durations use time.ParseDuration
// syntax ("30s", "5m").
type ServerConfig struct {
	Address           string `json:"address,omitempty" yaml:"address,omitempty"`
	ReadTimeout       string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	HeartbeatInterval string `json:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty"`
	NavigateTimeout   string `json:"navigateTimeout,omitempty" yaml:"navigateTimeout,omitempty"`
	ShutdownTimeout   string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists the Origins accepted for WebSocket upgrades.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// NavigationConfig contains navigator settings.
type NavigationConfig struct {
	// MaxRedirects is the number of redirects a navigation may follow.
	MaxRedirects int `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`

	// Fallback is the path failed navigations recover to.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	// CacheSize bounds the resolution cache. 0 disables caching.
	CacheSize int `json:"cacheSize" yaml:"cacheSize"`

	// Recover makes live streams recover failed navigations.
	Recover bool `json:"recover,omitempty" yaml:"recover,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled       bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	IncludeSearch bool `json:"includeSearch,omitempty" yaml:"includeSearch,omitempty"`
}

// ExportConfig contains manifest export settings.
type ExportConfig struct {
	// Output is the local manifest path.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Bucket, Key and Region select an S3 destination. Export uploads when
	// Bucket is set.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Navigation: NavigationConfig{CacheSize: DefaultCacheSize},
		Metrics:    MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory, trying each of
// FileNames in order.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E300").
		WithDetail("No consolenav.json or consolenav.yaml found in " + dir).
		WithSuggestion("Run 'consolenav init' to create one")
}

// LoadFile reads configuration from the specified file path. Files ending in
// .yaml or .yml are parsed as YAML, others as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E300").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E301").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = decodeYAML(path, data, cfg)
	} else {
		err = decodeJSON(path, data, cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func decodeJSON(path string, data []byte, cfg *Config) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		ce := errors.New("E301").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		var syntax *json.SyntaxError
		if stderrors.As(err, &syntax) {
			line := 1 + bytes.Count(data[:syntax.Offset], []byte("\n"))
			ce.WithLocation(path, line, 0)
		}
		return ce
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		ce := errors.New("E301").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML")
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil && line > 0 {
			ce.WithLocation(path, line, 0)
		}
		return ce
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension asks for it.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E301").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E301").Wrap(err)
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
	// Server
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "60s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = "30s"
	}
	if c.Server.NavigateTimeout == "" {
		c.Server.NavigateTimeout = "5s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "30s"
	}

	// Navigation
	if c.Navigation.MaxRedirects == 0 {
		c.Navigation.MaxRedirects = DefaultMaxRedirects
	}
	if c.Navigation.Fallback == "" {
		c.Navigation.Fallback = DefaultFallback
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "consolenav"
	}

	// Export
	if c.Export.Output == "" {
		c.Export.Output = DefaultOutput
	}
	if c.Export.Key == "" {
		c.Export.Key = "routes.json"
	}
}

// ApplyEnv overrides fields from CONSOLENAV_* variables found by lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E302").
				WithDetail(EnvPrefix + name + " must be an integer, got " + strconv.Quote(v))
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E302").
				WithDetail(EnvPrefix + name + " must be a boolean, got " + strconv.Quote(v))
		}
		*dst = b
		return nil
	}

	str("ADDRESS", &c.Server.Address)
	str("FALLBACK", &c.Navigation.Fallback)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("METRICS_NAMESPACE", &c.Metrics.Namespace)
	str("EXPORT_OUTPUT", &c.Export.Output)
	str("EXPORT_BUCKET", &c.Export.Bucket)
	str("EXPORT_KEY", &c.Export.Key)
	str("EXPORT_REGION", &c.Export.Region)

	for _, err := range []error{
		num("MAX_REDIRECTS", &c.Navigation.MaxRedirects),
		num("CACHE_SIZE", &c.Navigation.CacheSize),
		flag("RECOVER", &c.Navigation.Recover),
		flag("METRICS", &c.Metrics.Enabled),
		flag("TRACING", &c.Tracing.Enabled),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) *errors.ConsoleError {
		return errors.New("E302").WithDetail(detail)
	}

	durations := []struct {
		name  string
		value string
	}{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.heartbeatInterval", c.Server.HeartbeatInterval},
		{"server.navigateTimeout", c.Server.NavigateTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil || v <= 0 {
			return invalid(d.name + " must be a positive duration, got " + strconv.Quote(d.value)).
				WithExample(`"server": {"readTimeout": "60s", "heartbeatInterval": "30s"}`)
		}
	}
	if c.HeartbeatInterval() >= c.ReadTimeout() {
		return invalid("server.heartbeatInterval must be shorter than server.readTimeout")
	}

	if c.Navigation.MaxRedirects < 1 {
		return invalid("navigation.maxRedirects must be at least 1")
	}
	if c.Navigation.CacheSize < 0 {
		return invalid("navigation.cacheSize must not be negative")
	}
	if !strings.HasPrefix(c.Navigation.Fallback, "/") {
		return invalid("navigation.fallback must be an absolute path, got " + strconv.Quote(c.Navigation.Fallback)).
			WithExample(`"navigation": {"fallback": "/"}`)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid(err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	return nil
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ReadTimeout returns server.readTimeout. Call Validate first.
func (c *Config) ReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// WriteTimeout returns server.writeTimeout.
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// HeartbeatInterval returns server.heartbeatInterval.
func (c *Config) HeartbeatInterval() time.Duration {
	return mustDuration(c.Server.HeartbeatInterval)
}

// NavigateTimeout returns server.navigateTimeout.
func (c *Config) NavigateTimeout() time.Duration { return mustDuration(c.Server.NavigateTimeout) }

// ShutdownTimeout returns server.shutdownTimeout.
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the directory containing a
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E300").
				WithDetail("No consolenav.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'consolenav init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the working directory or its
// nearest parent that has one. Without any config file it returns defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
