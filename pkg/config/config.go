package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config file and environment lookup
const (
	ConfigName = "raytracer"
	EnvPrefix  = "RAYTRACER"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// RenderConfig holds the settings shared by the CLI and the web server.
// Zero Width, SamplesPerPixel or MaxDepth mean "use the scene's value".
type RenderConfig struct {
	Scene           string `mapstructure:"scene"`
	Width           int    `mapstructure:"width"`
	SamplesPerPixel int    `mapstructure:"samples"`
	MaxDepth        int    `mapstructure:"max_depth"`
	Seed            int64  `mapstructure:"seed"`
	Output          string `mapstructure:"output"`
	Format          string `mapstructure:"format"`
	Port            int    `mapstructure:"port"`
	ScenesDir       string `mapstructure:"scenes_dir"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() RenderConfig {
	return RenderConfig{
		Scene:     "default",
		Seed:      42,
		Format:    "png",
		Port:      8080,
		ScenesDir: "scenes",
	}
}

// New creates a viper instance with defaults, config file search paths and
// RAYTRACER_ environment overrides. Keys use underscores, so max_depth is
// read from RAYTRACER_MAX_DEPTH.
func New(configFile string) *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("scene", defaults.Scene)
	v.SetDefault("width", defaults.Width)
	v.SetDefault("samples", defaults.SamplesPerPixel)
	v.SetDefault("max_depth", defaults.MaxDepth)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("scenes_dir", defaults.ScenesDir)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// BindFlags binds command flags to config keys. Flag names use dashes
// (max-depth), keys use underscores (max_depth).
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Load reads the optional config file and unmarshals the merged settings.
// A missing config file is not an error unless it was named explicitly.
func Load(v *viper.Viper) (RenderConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return RenderConfig{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config RenderConfig
	if err := v.Unmarshal(&config); err != nil {
		return RenderConfig{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Format = strings.ToLower(config.Format)
	if err := config.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return config, nil
}

// Validate rejects negative sizes and unsupported formats
func (c RenderConfig) Validate() error {
	if c.Scene == "" {
		return fmt.Errorf("%w: scene must be set", ErrInvalidConfig)
	}
	if c.Width < 0 {
		return fmt.Errorf("%w: width must not be negative, got %d", ErrInvalidConfig, c.Width)
	}
	if c.SamplesPerPixel < 0 {
		return fmt.Errorf("%w: samples must not be negative, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.Format {
	case "ppm", "png":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}
