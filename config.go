package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	configEnv  = "HIF_CONFIG"
	configFile = "hif.yml"
)

var ErrBadConfig = errors.New("hif: invalid config")

// Config holds shell defaults read from a YAML file such as
//
//	compression:
//	  algorithm: zstd
//	  level: 19
//	  chunk_size: 65536
//	view:
//	  max_width: 120
//	  background: "202020"
type Config struct {
	Compression struct {
		Algorithm Algorithm `yaml:"algorithm"`
		Level     int       `yaml:"level"`
		ChunkSize int       `yaml:"chunk_size"`
	} `yaml:"compression"`
	View struct {
		MaxWidth   int    `yaml:"max_width"`
		Background string `yaml:"background"`
	} `yaml:"view"`
}

func DefaultConfig() Config {
	var c Config
	c.Compression.Algorithm = Gzip
	c.Compression.ChunkSize = defaultChunkSize
	c.View.MaxWidth = 80
	c.View.Background = "000000"
	return c
}

// CompressOptions returns the compression settings of c.
func (c Config) CompressOptions() CompressOptions {
	return CompressOptions{
		Algorithm: c.Compression.Algorithm,
		Level:     c.Compression.Level,
		ChunkSize: c.Compression.ChunkSize,
	}
}

// BackgroundColor parses View.Background.
func (c Config) BackgroundColor() (color.RGBA, error) {
	return parseHexColor(c.View.Background)
}

func (c Config) validate() error {
	if !c.Compression.Algorithm.valid() {
		return fmt.Errorf("%w: compression.algorithm %q", ErrBadConfig, c.Compression.Algorithm)
	}
	if c.Compression.ChunkSize < 0 {
		return fmt.Errorf("%w: compression.chunk_size %d", ErrBadConfig, c.Compression.ChunkSize)
	}
	if c.View.MaxWidth < 0 {
		return fmt.Errorf("%w: view.max_width %d", ErrBadConfig, c.View.MaxWidth)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return fmt.Errorf("%w: view.background: %v", ErrBadConfig, err)
	}
	return nil
}

// LoadConfig reads the config file at path. An empty path falls back to
// $HIF_CONFIG and then to ./hif.yml; a missing fallback file yields the
// defaults, while a missing explicit path is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configEnv)
		explicit = path != ""
	}
	if path == "" {
		path = configFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrBadConfig, path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parseHexColor accepts "rrggbb" with an optional leading '#'.
func parseHexColor(s string) (color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != hexPixelLen {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	var p [channels]byte
	if _, err := hex.Decode(p[:], []byte(s)); err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}, nil
}
