package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	APIURL        string `toml:"api_url"`
	Listen        string `toml:"listen"`
	PublicURL     string `toml:"public_url"`
	SaveDirectory string `toml:"save_directory"`
	UploadDir     string `toml:"upload_dir"`
	MaxUploadMB   int64  `toml:"max_upload_mb"`
	Confirmations bool   `toml:"confirmations"`

	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// CacheConfig selects the export cache. An empty RedisAddr keeps exports
// cached in process memory.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLMinutes    int    `toml:"ttl_minutes"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func Default() *Config {
	return &Config{
		APIURL:        "http://localhost:5000",
		Listen:        ":5000",
		PublicURL:     "http://localhost:5000",
		UploadDir:     "uploads",
		MaxUploadMB:   10,
		Confirmations: true,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "easel.db",
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
		},
	}
}

func getConfigFilePath() string {
	// useful during development or other non-standard setups.
	if dir := os.Getenv("EASEL_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "easel", "config.toml")
}

// Load reads the config file, falling back to defaults when there is none,
// then applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

func LoadFile(path string) (*Config, error) {
	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := config.Load(string(data)); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	config.applyEnv()
	config.normalize()
	return config, nil
}

// Load merges TOML data over the current values.
func (c *Config) Load(data string) error {
	_, err := toml.Decode(data, c)
	return err
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EASEL_API_URL"); v != "" {
		c.APIURL = v
	}
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	c.SaveDirectory = expandPath(c.SaveDirectory)
	c.UploadDir = expandPath(c.UploadDir)
	if c.Database.Driver == "sqlite" {
		c.Database.DSN = expandPath(c.Database.DSN)
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 10
	}
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func expandPath(value string) string {
	if value == "" || strings.Contains(value, "://") {
		return value
	}
	if strings.HasPrefix(value, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

// GetSavePath places filename in the save directory, creating it if needed.
// Without a save directory the name is used as is.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
