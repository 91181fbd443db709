package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration lets config files use "60s" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogJSON    bool   `yaml:"log_json"`

	DefaultPageSize   int `yaml:"default_page_size"`
	MaxPageSize       int `yaml:"max_page_size"`
	MaxContentLength  int `yaml:"max_content_length"`
	MaxUsernameLength int `yaml:"max_username_length"`

	RateLimitWindow        Duration `yaml:"rate_limit_window"`
	RateLimitMaxPosts      int      `yaml:"rate_limit_max_posts"`
	RateLimitSweepInterval Duration `yaml:"rate_limit_sweep_interval"`

	MemeStoragePath  string `yaml:"meme_storage_path"`
	MemeMaxSizeBytes int64  `yaml:"meme_max_size_bytes"`
	MemeDefaultLimit int    `yaml:"meme_default_limit"`

	TokenStats TokenStats `yaml:"token_stats"`
}

type TokenStats struct {
	ExplorerURL    string   `yaml:"explorer_url"`
	TokenAddress   string   `yaml:"token_address"`
	TradingAddress string   `yaml:"trading_address"`
	CacheTTL       Duration `yaml:"cache_ttl"`
}

type Private struct {
	ModerationSecret string `yaml:"moderation_secret"`
	IpHashPepper     string `yaml:"ip_hash_pepper"`
	RedisAddr        string `yaml:"redis_addr"` // empty: in-memory guard and cache
	Pg               Pg     `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (c *Config) ModerationSecret() string {
	return c.Private.ModerationSecret
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides lets deployments inject secrets without writing them into
// the config files shipped with the image.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MODERATION_SECRET"); v != "" {
		c.Private.ModerationSecret = v
	}
	if v := os.Getenv("IP_HASH_PEPPER"); v != "" {
		c.Private.IpHashPepper = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Private.RedisAddr = v
	}
	if v := os.Getenv("PG_HOST"); v != "" {
		c.Private.Pg.Host = v
	}
	if v := os.Getenv("PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Private.Pg.Port = port
		}
	}
	if v := os.Getenv("PG_USER"); v != "" {
		c.Private.Pg.User = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		c.Private.Pg.Password = v
	}
	if v := os.Getenv("PG_DBNAME"); v != "" {
		c.Private.Pg.Dbname = v
	}
}
