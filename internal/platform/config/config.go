package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite归档库的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// TrackingConfig 定义了工时台账的业务参数。
// BreakLimitMin 和 WorkTargetMin 可以分别用环境变量
// BREAK_LIMIT_MIN 和 WORK_TARGET_MIN 覆盖。
type TrackingConfig struct {
	BreakLimitMin  float64       `mapstructure:"breakLimitMin"`
	WorkTargetMin  float64       `mapstructure:"workTargetMin"`
	TickInterval   time.Duration `mapstructure:"tickInterval"`
	CookieMaxAgeHr int           `mapstructure:"cookieMaxAgeHr"`
}

// ArchiveConfig 定义了快照归档器的参数
type ArchiveConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	RetentionDays int           `mapstructure:"retentionDays"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 配置文件缺失不是错误：所有配置项都有可用的默认值，
// 环境变量可以覆盖任意一项（例如 TRACKING_BREAKLIMITMIN=30）。
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 默认值与原始产品行为一致：45分钟休息上限，8小时工作目标，10秒tick
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.sqlite.path", "ccms.db")
	v.SetDefault("tracking.breakLimitMin", 45.0)
	v.SetDefault("tracking.workTargetMin", 480.0)
	v.SetDefault("tracking.tickInterval", 10*time.Second)
	v.SetDefault("tracking.cookieMaxAgeHr", 24)
	v.SetDefault("archive.interval", 10*time.Minute)
	v.SetDefault("archive.retentionDays", 30)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 历史遗留的两个短名环境变量，优先级最高
	_ = v.BindEnv("tracking.breakLimitMin", "BREAK_LIMIT_MIN")
	_ = v.BindEnv("tracking.workTargetMin", "WORK_TARGET_MIN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
