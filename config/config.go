package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	vtypes "img2svg/type"
)

// EnvPrefix 环境变量前缀，例如 IMG2SVG_SERVER_PORT
const EnvPrefix = "IMG2SVG"

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Convert  ConvertConfig   `mapstructure:"convert"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Defaults vtypes.Settings `mapstructure:"defaults"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type ConvertConfig struct {
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	QueueTimeout  int    `mapstructure:"queue_timeout"` // 秒
	MaxDimension  int    `mapstructure:"max_dimension"`
	ResizeTo      int    `mapstructure:"resize_to"`
	Preset        string `mapstructure:"preset"`
	BoundaryOrder string `mapstructure:"boundary_order"`
	RejectEmpty   bool   `mapstructure:"reject_empty"`
}

type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Region   string `mapstructure:"s3_region"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
}

// Load 从 YAML 文件加载配置，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	return &cfg, nil
}

// New 加载 path，失败时退回默认配置
func New(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		if cfg, err = Load(""); err != nil {
			return Default()
		}
	}
	return cfg
}

// Default 内置默认配置，不读取文件和环境变量
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.allowed_types", []string{
		"image/jpeg", "image/png", "image/jpg", "image/gif", "image/webp", "image/bmp",
	})

	v.SetDefault("convert.max_concurrent", 3)
	v.SetDefault("convert.queue_timeout", 30)
	v.SetDefault("convert.max_dimension", 10000)
	v.SetDefault("convert.resize_to", 1200)
	v.SetDefault("convert.preset", "default")
	v.SetDefault("convert.boundary_order", "discovery")
	v.SetDefault("convert.reject_empty", false)

	v.SetDefault("storage.sqlite_path", "./data/img2svg.db")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_prefix", "svg/")
	v.SetDefault("storage.s3_endpoint", "")

	d := vtypes.DefaultSettings()
	v.SetDefault("defaults.complexity", d.Complexity)
	v.SetDefault("defaults.color_simplification", d.ColorSimplification)
	v.SetDefault("defaults.path_smoothing", d.PathSmoothing)
}
