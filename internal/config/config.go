package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/pages"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pagekit.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultBridgePrefix is where bridge functions are served.
	DefaultBridgePrefix = "/api"

	// DefaultMetricsPath is where metrics are exposed when enabled.
	DefaultMetricsPath = "/metrics"

	// DefaultDebounce is the default file watcher debounce.
	DefaultDebounce = "100ms"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "10s"
)

// Serving modes.
const (
	// ModeSSR renders page templates on the server.
	ModeSSR = "ssr"

	// ModeSPA serves the single-page-application index for every known
	// route and leaves rendering to the client.
	ModeSPA = "spa"
)

// Config represents the complete pagekit.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Mode is the serving mode, "ssr" or "spa".
	Mode string `json:"mode,omitempty"`

	// Pages configures page discovery.
	Pages PagesConfig `json:"pages,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Bridge configures the function bridge.
	Bridge BridgeConfig `json:"bridge,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Frontend records the client toolchain used by the scaffolds.
	Frontend FrontendConfig `json:"frontend,omitempty"`

	// Tracing enables OpenTelemetry request spans.
	Tracing bool `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PagesConfig configures where pages are found and which files are pages.
type PagesConfig struct {
	// Dir is the pages directory, relative to the project root.
	Dir string `json:"dir,omitempty"`

	// Ext is the page file extension (default: ".html").
	Ext string `json:"ext,omitempty"`

	// Reserved are the glob patterns selecting _app and 404.
	Reserved []string `json:"reserved,omitempty"`

	// Routes are the glob patterns selecting routable pages.
	Routes []string `json:"routes,omitempty"`

	// S3 loads pages from a bucket instead of Dir when Bucket is set.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config locates a page tree in S3.
type S3Config struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/assets").
	Prefix string `json:"prefix,omitempty"`

	// Index is the SPA index file inside Dir (default: "index.html").
	Index string `json:"index,omitempty"`

	// Manifest maps asset names to fingerprinted files inside Dir
	// (default: "manifest.json"). It is optional.
	Manifest string `json:"manifest,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// BridgeConfig configures the function bridge.
type BridgeConfig struct {
	// Prefix is the URL prefix for bridge calls (default: "/api").
	Prefix string `json:"prefix,omitempty"`

	// BaseURL is the URL generated clients call. Defaults to Prefix.
	BaseURL string `json:"baseURL,omitempty"`

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty"`

	// Output is where "pagekit gen bridge" writes the TypeScript client.
	Output string `json:"output,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// HotReload enables browser reload on page changes.
	HotReload bool `json:"hotReload"`

	// Debounce coalesces bursts of file events (e.g. "100ms").
	Debounce string `json:"debounce,omitempty"`

	// Watch contains extra paths to watch besides the pages directory.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains glob patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// FrontendConfig records the client toolchain.
type FrontendConfig struct {
	// JSRuntime is the JavaScript runtime, e.g. "node" or "bun".
	JSRuntime string `json:"jsRuntime,omitempty"`

	// PackageManager is the package manager, e.g. "npm" or "pnpm".
	PackageManager string `json:"packageManager,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Version: "0.1.0",
		Dev: DevConfig{
			HotReload: true,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for pagekit.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No pagekit.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'pagekit create' to create a new project or create pagekit.json manually")
		}
		return nil, errors.New("E120").WithPath(path).Wrap(err)
	}

	cfg := &Config{Dev: DevConfig{HotReload: true}}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithPath(path).
			WithDetail("Failed to parse pagekit.json: " + err.Error()).
			WithSuggestion("Check that pagekit.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
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
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
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
	if c.Mode == "" {
		c.Mode = ModeSSR
	}

	// Pages
	if c.Pages.Dir == "" {
		c.Pages.Dir = "pages"
	}
	if c.Pages.Ext == "" {
		c.Pages.Ext = pages.DefaultExt
	}

	// Static
	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/assets"
	}
	if c.Static.Index == "" {
		c.Static.Index = "index.html"
	}
	if c.Static.Manifest == "" {
		c.Static.Manifest = "manifest.json"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Bridge
	if c.Bridge.Prefix == "" {
		c.Bridge.Prefix = DefaultBridgePrefix
	}
	if c.Bridge.BaseURL == "" {
		c.Bridge.BaseURL = c.Bridge.Prefix
	}
	if c.Bridge.Output == "" {
		c.Bridge.Output = "src/functions.ts"
	}

	// Dev
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce
	}

	// Metrics
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Frontend
	if c.Frontend.JSRuntime == "" {
		c.Frontend.JSRuntime = "node"
	}
	if c.Frontend.PackageManager == "" {
		c.Frontend.PackageManager = "npm"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E121").
			WithDetail("Port " + strconv.Itoa(c.Server.Port) + " is outside 0-65535")
	}
	if c.Mode != ModeSSR && c.Mode != ModeSPA {
		return errors.New("E122").
			WithDetail("Got mode " + strconv.Quote(c.Mode))
	}
	if !strings.HasPrefix(c.Pages.Ext, ".") {
		return errors.New("E123").
			WithDetail("Got extension " + strconv.Quote(c.Pages.Ext))
	}
	prefixes := []struct{ name, value string }{
		{"static.prefix", c.Static.Prefix},
		{"bridge.prefix", c.Bridge.Prefix},
		{"metrics.path", c.Metrics.Path},
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(p.value, "/") {
			return errors.New("E124").
				WithDetail(p.name + " is " + strconv.Quote(p.value))
		}
	}
	durations := []struct{ name, value string }{
		{"dev.debounce", c.Dev.Debounce},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		if _, err := time.ParseDuration(d.value); err != nil {
			return errors.New("E125").
				WithDetail(d.name + ": " + err.Error()).
				WithSuggestion("Use a Go duration such as \"100ms\" or \"10s\"")
		}
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the full URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// DebounceDuration returns the parsed dev debounce, or the default.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// ShutdownDuration returns the parsed shutdown timeout, or the default.
func (c *Config) ShutdownDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// PagesOptions returns the discovery options described by the pages
// section. The discovery root is the pages directory name so raw paths
// read like "/pages/blog/[slug].html".
func (c *Config) PagesOptions() pages.Options {
	return pages.Options{
		Root:             "/" + filepath.ToSlash(filepath.Base(c.Pages.Dir)),
		Ext:              c.Pages.Ext,
		ReservedPatterns: c.Pages.Reserved,
		RoutePatterns:    c.Pages.Routes,
	}
}

// UsesS3 reports whether pages are loaded from S3.
func (c *Config) UsesS3() bool {
	return c.Pages.S3.Bucket != ""
}

// PagesPath returns the absolute path to the pages directory.
func (c *Config) PagesPath() string {
	return c.resolve(c.Pages.Dir)
}

// StaticPath returns the absolute path to the static directory.
func (c *Config) StaticPath() string {
	return c.resolve(c.Static.Dir)
}

// WatchPaths returns the absolute paths the dev server watches: the pages
// directory unless pages come from S3, the static directory when it exists,
// and dev.watch.
func (c *Config) WatchPaths() []string {
	var paths []string
	if !c.UsesS3() {
		paths = append(paths, c.PagesPath())
	}
	if info, err := os.Stat(c.StaticPath()); err == nil && info.IsDir() {
		paths = append(paths, c.StaticPath())
	}
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(p))
	}
	return paths
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing pagekit.json, or an error if not found.
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
			return "", errors.New("E141").
				WithDetail("No pagekit.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'pagekit create' to create a new project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
