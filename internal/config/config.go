package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete invisiboga configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Assets  AssetsConfig  `mapstructure:"assets" yaml:"assets"`
	Screen  ScreenConfig  `mapstructure:"screen" yaml:"screen"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// EngineConfig drives the simulated engine
type EngineConfig struct {
	// InitScript is the progress sequence returned by successive engine bring-up polls
	InitScript []int `mapstructure:"init_script" yaml:"init_script"`
	// LoadScript is the progress sequence returned by successive data-set loading polls
	LoadScript []int `mapstructure:"load_script" yaml:"load_script"`
	// StepDelay is the simulated cost of one poll
	StepDelay time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	// Seed makes dice rolls deterministic (0 = random)
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
}

// AssetsConfig locates the board textures
type AssetsConfig struct {
	// Dir is the texture directory. Empty means built-in placeholders.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Manifest is the manifest file name inside Dir (default: textures.yaml)
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
}

// ScreenConfig overrides the detected screen size. Zero means detect.
type ScreenConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// RenderConfig controls the render thread
type RenderConfig struct {
	// FPS limits the frame rate (default: 30, min: 1, max: 240)
	FPS int `mapstructure:"fps" yaml:"fps"`
}

// UIConfig controls overlay behavior
type UIConfig struct {
	ToastShort time.Duration `mapstructure:"toast_short" yaml:"toast_short"`
	ToastLong  time.Duration `mapstructure:"toast_long" yaml:"toast_long"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory. Empty means stderr, except in the TUI which
	// always logs to a file under the config directory.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// ResolveDir expands a leading ~ and resolves a relative path against
// baseDir. An empty path stays empty.
func ResolveDir(path, baseDir string) string {
	if path == "" {
		return ""
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			InitScript: []int{0, 20, 45, 70, 100},
			LoadScript: []int{10, 60, 100},
			StepDelay:  150 * time.Millisecond,
		},
		Assets: AssetsConfig{
			Dir:      "", // Empty means placeholder textures
			Manifest: "textures.yaml",
		},
		Screen: ScreenConfig{},
		Render: RenderConfig{
			FPS: 30,
		},
		UI: UIConfig{
			ToastShort: 2 * time.Second,
			ToastLong:  3500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values with v
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Engine defaults
	v.SetDefault("engine.init_script", defaults.Engine.InitScript)
	v.SetDefault("engine.load_script", defaults.Engine.LoadScript)
	v.SetDefault("engine.step_delay", defaults.Engine.StepDelay)
	v.SetDefault("engine.seed", defaults.Engine.Seed)

	// Asset defaults
	v.SetDefault("assets.dir", defaults.Assets.Dir)
	v.SetDefault("assets.manifest", defaults.Assets.Manifest)

	// Screen defaults
	v.SetDefault("screen.width", defaults.Screen.Width)
	v.SetDefault("screen.height", defaults.Screen.Height)

	// Render defaults
	v.SetDefault("render.fps", defaults.Render.FPS)

	// UI defaults
	v.SetDefault("ui.toast_short", defaults.UI.ToastShort)
	v.SetDefault("ui.toast_long", defaults.UI.ToastLong)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)

	// Metrics defaults
	v.SetDefault("metrics.addr", defaults.Metrics.Addr)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "invisiboga")
	}
	// Fall back to ~/.config/invisiboga
	home, err := os.UserHomeDir()
	if err != nil {
		return ".invisiboga"
	}
	return filepath.Join(home, ".config", "invisiboga")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
