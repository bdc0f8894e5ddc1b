package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// EnvPrefix prefixes every environment override
const EnvPrefix = "VIDEOEDITOR_"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	Concurrency int    `yaml:"concurrency"`

	Editor  EditorConfig  `yaml:"editor"`
	Insert  InsertConfig  `yaml:"insert"`
	Faces   FacesConfig   `yaml:"faces"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Logging LoggingConfig `yaml:"logging"`
}

type EditorConfig struct {
	OutputFormat string  `yaml:"output_format"`
	FPS          float64 `yaml:"fps"`
	WithoutAudio bool    `yaml:"without_audio"`
	WriteThreads int     `yaml:"write_threads"`
	Method       string  `yaml:"method"`
}

// InsertConfig holds defaults for the insert-image and insert-video commands.
// Time accepts the same forms as the --time flag.
type InsertConfig struct {
	Time     string  `yaml:"time"`
	Duration float64 `yaml:"duration"`
	Resize   bool    `yaml:"resize"`
}

type FacesConfig struct {
	CascadePath  string  `yaml:"cascade_path"`
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors"`
	Confidence   int     `yaml:"confidence"`
}

type FFmpegConfig struct {
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
}

type LoggingConfig struct {
	File       string `yaml:"file"`
	Verbose    bool   `yaml:"verbose"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads configuration from file or returns defaults.
// Environment overrides are applied on top of either.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "",
		Concurrency: 2,
		Editor: EditorConfig{
			OutputFormat: "mp4",
			Method:       "compose",
		},
		Insert: InsertConfig{
			Time:     "0",
			Duration: 0.8,
			Resize:   true,
		},
		Faces: FacesConfig{
			ScaleFactor:  1.2,
			MinNeighbors: 10,
			Confidence:   3,
		},
		FFmpeg: FFmpegConfig{
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
			VideoCodec: "libx264",
			AudioCodec: "aac",
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".videoeditor", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnv overrides settings from VIDEOEDITOR_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CASCADE_PATH": &c.Faces.CascadePath,
		"LOG_FILE":     &c.Logging.File,
		"WORK_DIR":     &c.WorkDir,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FFMPEG_THREADS": &c.FFmpeg.Threads,
		"WORKERS":        &c.Concurrency,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}
	return nil
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
