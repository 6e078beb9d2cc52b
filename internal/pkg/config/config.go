package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Map       MapConfig       `mapstructure:"map"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Vocab     VocabConfig     `mapstructure:"vocabulary"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	BodyLimitMB  int    `mapstructure:"body_limit_mb"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// UpstreamConfig points at the platform REST API the admin console is built on.
type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
	Token   string `mapstructure:"token"`
}

func (u UpstreamConfig) TimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

// MapConfig describes the raster map image markers are drawn on.
// Either all four edges are set, or center + radius_m derive them.
type MapConfig struct {
	North       float64 `mapstructure:"north"`
	South       float64 `mapstructure:"south"`
	West        float64 `mapstructure:"west"`
	East        float64 `mapstructure:"east"`
	CenterLat   float64 `mapstructure:"center_lat"`
	CenterLon   float64 `mapstructure:"center_lon"`
	RadiusM     float64 `mapstructure:"radius_m"`
	ImagePath   string  `mapstructure:"image_path"`
	ImageWidth  float64 `mapstructure:"image_width"`
	ImageHeight float64 `mapstructure:"image_height"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr       string `mapstructure:"addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type UploadConfig struct {
	SessionTTL int `mapstructure:"session_ttl"` // seconds
	MaxFileMB  int `mapstructure:"max_file_mb"`
	PutTimeout int `mapstructure:"put_timeout"` // seconds, per presigned PUT
}

func (u UploadConfig) PutTimeoutDuration() time.Duration {
	return time.Duration(u.PutTimeout) * time.Second
}

func (u UploadConfig) SessionTTLDuration() time.Duration {
	return time.Duration(u.SessionTTL) * time.Second
}

// VocabConfig overrides the complaint and echo category values. Empty entries
// keep the built-in labels. Lists accept comma-separated env values.
type VocabConfig struct {
	ComplaintPending  string   `mapstructure:"complaint_pending"`
	ComplaintReviewed string   `mapstructure:"complaint_reviewed"`
	ComplaintResolved string   `mapstructure:"complaint_resolved"`
	Severities        []string `mapstructure:"severities"`
	EchoStatuses      []string `mapstructure:"echo_statuses"`
	EchoTypes         []string `mapstructure:"echo_types"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ECHOADMIN_UPSTREAM_BASE_URL → upstream.base_url
	v.SetEnvPrefix("ECHOADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.body_limit_mb", 512)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("upstream.base_url", "http://localhost:3000")
	v.SetDefault("upstream.timeout", 10)
	v.SetDefault("upstream.token", "")
	// Seoul city raster
	v.SetDefault("map.north", 37.7151)
	v.SetDefault("map.south", 37.4134)
	v.SetDefault("map.west", 126.7341)
	v.SetDefault("map.east", 127.2693)
	v.SetDefault("map.image_width", 1600)
	v.SetDefault("map.image_height", 1200)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "echoadmin")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "echoadmin")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.ttl_seconds", 30)
	v.SetDefault("upload.session_ttl", 1800)
	v.SetDefault("upload.max_file_mb", 256)
	v.SetDefault("upload.put_timeout", 300)
	for _, key := range []string{"complaint_pending", "complaint_reviewed", "complaint_resolved"} {
		v.SetDefault("vocabulary."+key, "")
	}
	for _, key := range []string{"severities", "echo_statuses", "echo_types"} {
		v.SetDefault("vocabulary."+key, []string{})
	}
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, "upstream.timeout must be positive")
	}
	if c.Map.RadiusM <= 0 {
		if c.Map.North <= c.Map.South {
			errs = append(errs, "map.north must be greater than map.south")
		}
		if c.Map.East <= c.Map.West {
			errs = append(errs, "map.east must be greater than map.west")
		}
	}
	if c.Map.ImagePath == "" && (c.Map.ImageWidth <= 0 || c.Map.ImageHeight <= 0) {
		errs = append(errs, "map.image_width and map.image_height must be positive when map.image_path is unset")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.Upload.SessionTTL <= 0 {
		errs = append(errs, "upload.session_ttl must be positive")
	}
	if c.Upload.MaxFileMB <= 0 {
		errs = append(errs, "upload.max_file_mb must be positive")
	}
	if c.Upload.PutTimeout <= 0 {
		errs = append(errs, "upload.put_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
