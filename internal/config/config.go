// Package config loads the service configuration from a YAML file with
// environment variable overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Storage  StorageConfig  `yaml:"storage"`
	Purge    PurgeConfig    `yaml:"purge"`
	Logger   LoggerConfig   `yaml:"logger"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN builds the PostgreSQL connection string
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection settings. URL takes precedence over the
// discrete fields when set.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// StorageConfig selects and configures the attachment storage backend
type StorageConfig struct {
	// Backend is "fs" or "s3"
	Backend           string   `yaml:"backend"`
	RootDir           string   `yaml:"root_dir"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	S3                S3Config `yaml:"s3"`
}

// S3Config holds S3 backend settings. Endpoint is set for MinIO and other
// S3-compatible stores.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// PurgeConfig controls the retention job for deleted posts
type PurgeConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Schedule  string        `yaml:"schedule"`
	Retention time.Duration `yaml:"retention"`
}

// LoggerConfig holds logging settings
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// CORSConfig lists the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the configuration file and applies environment overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Backend:           "fs",
			RootDir:           "./uploads",
			MaxUploadBytes:    10 * 1024 * 1024,
			AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "pdf", "txt", "zip"},
		},
		Purge: PurgeConfig{
			Enabled:   false,
			Schedule:  "0 4 * * *",
			Retention: 30 * 24 * time.Hour,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// applyEnvOverrides lets deployments inject secrets without touching the file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("STORAGE_ROOT_DIR"); v != "" {
		cfg.Storage.RootDir = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Storage.S3.SecretKey = v
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "fs", "s3":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage backend s3 requires a bucket")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if len(c.Storage.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	return nil
}
