package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Assets     AssetsConfig     `yaml:"assets"`
	Media      MediaConfig      `yaml:"media"`
	Queue      QueueConfig      `yaml:"queue"`
	Pagination PaginationConfig `yaml:"pagination"`
	LogLevel   string           `yaml:"log_level"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

// AssetsConfig points at the object store that keeps processed media.
type AssetsConfig struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type MediaConfig struct {
	ChunkSize       int64    `yaml:"chunk_size"`
	DirectThreshold int64    `yaml:"direct_threshold"`
	MaxFileSize     int64    `yaml:"max_file_size"`
	ImageExtensions []string `yaml:"image_extensions"`
	ModelExtensions []string `yaml:"model_extensions"`
	MaxWidth        int      `yaml:"max_width"`
	MaxHeight       int      `yaml:"max_height"`
	Quality         int      `yaml:"quality"`
	TempPath        string   `yaml:"temp_path"`
}

type QueueConfig struct {
	ImageWorkers         int `yaml:"image_workers"`
	ModelWorkers         int `yaml:"model_workers"`
	MaxRetries           int `yaml:"max_retries"`
	BackoffBaseMs        int `yaml:"backoff_base_ms"`
	CompletedRetention   int `yaml:"completed_retention"`
	GCInterval           int `yaml:"gc_interval"`
	SessionTTL           int `yaml:"session_ttl"`
	SessionSweepInterval int `yaml:"session_sweep_interval"`
}

type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Media.ChunkSize <= 0 {
		cfg.Media.ChunkSize = 2 << 20
	}
	if cfg.Media.DirectThreshold <= 0 {
		cfg.Media.DirectThreshold = 2 << 20
	}
	if cfg.Media.MaxFileSize <= 0 {
		cfg.Media.MaxFileSize = 100 << 20
	}
	if len(cfg.Media.ImageExtensions) == 0 {
		cfg.Media.ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	}
	if len(cfg.Media.ModelExtensions) == 0 {
		cfg.Media.ModelExtensions = []string{".glb", ".gltf"}
	}
	if cfg.Media.MaxWidth <= 0 {
		cfg.Media.MaxWidth = 1200
	}
	if cfg.Media.MaxHeight <= 0 {
		cfg.Media.MaxHeight = 1200
	}
	if cfg.Media.Quality <= 0 {
		cfg.Media.Quality = 85
	}
	if cfg.Media.TempPath == "" {
		cfg.Media.TempPath = "./data/temp"
	}
	if cfg.Queue.ImageWorkers <= 0 {
		cfg.Queue.ImageWorkers = 5
	}
	if cfg.Queue.ModelWorkers <= 0 {
		cfg.Queue.ModelWorkers = 3
	}
	if cfg.Queue.MaxRetries <= 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Queue.BackoffBaseMs <= 0 {
		cfg.Queue.BackoffBaseMs = 1000
	}
	if cfg.Queue.CompletedRetention <= 0 {
		cfg.Queue.CompletedRetention = 60
	}
	if cfg.Queue.GCInterval <= 0 {
		cfg.Queue.GCInterval = 60
	}
	if cfg.Queue.SessionTTL <= 0 {
		cfg.Queue.SessionTTL = 1800
	}
	if cfg.Queue.SessionSweepInterval <= 0 {
		cfg.Queue.SessionSweepInterval = 300
	}
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	if cfg.Pagination.DefaultPageSize <= 0 {
		cfg.Pagination.DefaultPageSize = 20
	}
	if cfg.Pagination.MaxPageSize <= 0 {
		cfg.Pagination.MaxPageSize = 100
	}
}
