// Package config loads Brickyard settings.
//
// Settings live in a TOML file at $XDG_CONFIG_HOME/brickyard/config.toml
// (~/.config/brickyard/config.toml when XDG_CONFIG_HOME is unset). Files
// ending in .yaml or .yml are decoded as YAML instead. Keys missing from the
// file keep their [Default] values, and a few BRICKYARD_* environment
// variables override the file.
//
//	[builder]
//	click_threshold = 5.0
//	default_piece = "2x4"
//	default_color = "#E3000B"
//	frame_rate = 30
//
//	[store]
//	backend = "sqlite"
//	sqlite_path = "/var/lib/brickyard/builds.db"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/errors"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Builder Builder `toml:"builder" yaml:"builder"`
	Camera  Camera  `toml:"camera" yaml:"camera"`
	Store   Store   `toml:"store" yaml:"store"`
	Server  Server  `toml:"server" yaml:"server"`
	TUI     TUI     `toml:"tui" yaml:"tui"`
}

// Builder configures placement.
type Builder struct {
	ClickThreshold float64 `toml:"click_threshold" yaml:"click_threshold"`
	DefaultPiece   string  `toml:"default_piece" yaml:"default_piece"`
	DefaultColor   string  `toml:"default_color" yaml:"default_color"`
	FrameRate      int     `toml:"frame_rate" yaml:"frame_rate"`
}

// Camera configures the perspective ray caster used by the HTTP API.
type Camera struct {
	Eye    [3]float64 `toml:"eye" yaml:"eye"`
	Target [3]float64 `toml:"target" yaml:"target"`
	FovY   float64    `toml:"fov" yaml:"fov"`
}

// Store selects and configures the build library backend.
type Store struct {
	Backend         string `toml:"backend" yaml:"backend"`
	Dir             string `toml:"dir" yaml:"dir"`
	SQLitePath      string `toml:"sqlite_path" yaml:"sqlite_path"`
	RedisURL        string `toml:"redis_url" yaml:"redis_url"`
	RedisPrefix     string `toml:"redis_prefix" yaml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection" yaml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr    string `toml:"addr" yaml:"addr"`
	Metrics bool   `toml:"metrics" yaml:"metrics"`
}

// TUI configures the terminal builder.
type TUI struct {
	Mouse bool `toml:"mouse" yaml:"mouse"`
	// Extent is the number of grid units shown on each axis.
	Extent int `toml:"extent" yaml:"extent"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := DataDir()
	return Config{
		Builder: Builder{
			ClickThreshold: 5,
			DefaultPiece:   string(catalog.DefaultType),
			DefaultColor:   string(catalog.DefaultColor),
			FrameRate:      30,
		},
		Camera: Camera{
			Eye:    [3]float64{15, 15, 15},
			Target: [3]float64{0, 0, 0},
			FovY:   45,
		},
		Store: Store{
			Backend:         BackendFile,
			Dir:             filepath.Join(dataDir, "builds"),
			SQLitePath:      filepath.Join(dataDir, "builds.db"),
			RedisURL:        "redis://localhost:6379/0",
			RedisPrefix:     "brickyard:",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "brickyard",
			MongoCollection: "builds",
		},
		Server: Server{
			Addr:    "127.0.0.1:8080",
			Metrics: true,
		},
		TUI: TUI{
			Mouse:  true,
			Extent: catalog.BaseplateSize,
		},
	}
}

// Path returns the default config file location.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "brickyard", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".brickyard", "config.toml")
	}
	return filepath.Join(home, ".config", "brickyard", "config.toml")
}

// DataDir returns the directory holding saved builds.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "brickyard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brickyard"
	}
	return filepath.Join(home, ".local", "share", "brickyard")
}

// Load reads the config file at path, or at [Path] when path is empty.
// A missing file at the default location yields the defaults; a missing
// explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		// nothing to merge
	case os.IsNotExist(err):
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		return nil
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ApplyEnv overrides settings from BRICKYARD_* environment variables.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		"BRICKYARD_STORE":     &c.Store.Backend,
		"BRICKYARD_REDIS_URL": &c.Store.RedisURL,
		"BRICKYARD_MONGO_URI": &c.Store.MongoURI,
		"BRICKYARD_ADDR":      &c.Server.Addr,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.Builder.ClickThreshold <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "builder.click_threshold must be positive, got %v", c.Builder.ClickThreshold)
	}
	if c.Builder.FrameRate < 1 || c.Builder.FrameRate > 240 {
		return errors.New(errors.ErrCodeInvalidConfig, "builder.frame_rate must be between 1 and 240, got %d", c.Builder.FrameRate)
	}
	if _, err := catalog.ParseType(c.Builder.DefaultPiece); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "builder.default_piece")
	}
	if _, err := catalog.ParseColor(c.Builder.DefaultColor); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "builder.default_color")
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		return errors.New(errors.ErrCodeInvalidConfig, "camera.fov must be in (0, 180), got %v", c.Camera.FovY)
	}
	if c.Camera.Eye == c.Camera.Target {
		return errors.New(errors.ErrCodeInvalidConfig, "camera.eye and camera.target must differ")
	}
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be one of file, sqlite, redis, mongo; got %q", c.Store.Backend)
	}
	if c.TUI.Extent < 8 || c.TUI.Extent > catalog.BaseplateSize {
		return errors.New(errors.ErrCodeInvalidConfig, "tui.extent must be between 8 and %d, got %d", catalog.BaseplateSize, c.TUI.Extent)
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes c as TOML to path, creating parent directories.
func (c Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
