// Package config loads application configuration from TOML.
// Files are searched in several candidate paths; secrets can be overridden
// from the environment or a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig basic server settings.
type MainConfig struct {
	AppName  string `toml:"appName"`
	Host     string `toml:"host"`     // listen address, e.g. "0.0.0.0"
	Port     int    `toml:"port"`     // listen port, e.g. 3001
	Mode     string `toml:"mode"`     // "dev" or "release"
	ForceTLS bool   `toml:"forceTLS"` // redirect plain HTTP to HTTPS
}

// Addr returns host:port.
func (m MainConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// DatabaseConfig relational store settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver"` // "mysql", "postgres" or "sqlite"
	DSN          string `toml:"dsn"`    // full DSN, wins over the discrete fields
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"` // for sqlite, the file path
	MaxOpenConns int    `toml:"maxOpenConns"`
	MaxIdleConns int    `toml:"maxIdleConns"`
}

// RedisConfig cache settings.
type RedisConfig struct {
	Enabled      bool   `toml:"enabled"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	Db           int    `toml:"db"`
	WorkerNum    int    `toml:"workerNum"`    // async cache workers
	TaskChanSize int    `toml:"taskChanSize"` // async cache queue size
}

// SmsConfig delivery provider settings (Alibaba Cloud SMS).
type SmsConfig struct {
	Provider        string `toml:"provider"` // "aliyun" or "mock"
	AccessKeyID     string `toml:"accessKeyID"`
	AccessKeySecret string `toml:"accessKeySecret"`
	Endpoint        string `toml:"endpoint"`
	SignName        string `toml:"signName"`
	TemplateCode    string `toml:"templateCode"`
	TemplateParam   string `toml:"templateParam"` // template variable receiving the body
	FromNumber      string `toml:"fromNumber"`    // sender recorded on outbound messages
	MockFailNumbers []string `toml:"mockFailNumbers"`
}

// LogConfig zap + lumberjack settings.
type LogConfig struct {
	LogPath    string `toml:"logPath"`
	FileName   string `toml:"fileName"`
	MaxSize    int    `toml:"maxSize"`    // MB
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"`     // days
	Level      string `toml:"level"`      // debug, info, warn, error
}

// KafkaConfig live-update relay settings.
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel" or "kafka"
	HostPort    string        `toml:"hostPort"`
	EventTopic  string        `toml:"eventTopic"`
	GroupID     string        `toml:"groupID"`
	Timeout     time.Duration `toml:"timeout"` // seconds
}

// UploadConfig CSV ingestion settings.
type UploadConfig struct {
	TempDir   string `toml:"tempDir"`
	BatchSize int    `toml:"batchSize"`
	MaxSizeMB int    `toml:"maxSizeMB"`
}

// JWTConfig operator authentication.
type JWTConfig struct {
	Enabled              bool   `toml:"enabled"`
	Secret               string `toml:"secret"`
	AccessTokenExpiry    int    `toml:"accessTokenExpiry"` // minutes
	OperatorName         string `toml:"operatorName"`
	OperatorPasswordHash string `toml:"operatorPasswordHash"` // bcrypt
}

// SnowflakeConfig id node settings.
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 0-1023
}

// InboundConfig inbound webhook settings.
type InboundConfig struct {
	DedupTTLMinutes int `toml:"dedupTTLMinutes"`
}

// Config aggregates every section.
type Config struct {
	MainConfig      `toml:"mainConfig"`
	DatabaseConfig  `toml:"databaseConfig"`
	RedisConfig     `toml:"redisConfig"`
	SmsConfig       `toml:"smsConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	UploadConfig    `toml:"uploadConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	InboundConfig   `toml:"inboundConfig"`
}

var config *Config

// candidate config paths, local overrides first
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Load decodes the first readable file in paths into a defaulted Config and
// applies environment overrides. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		break
	}
	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)
	return cfg, nil
}

// GetConfig returns the process configuration, loading it on first use.
func GetConfig() *Config {
	if config == nil {
		cfg, err := Load(searchPaths...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v, using defaults\n", err)
			cfg = Default()
			applyEnv(cfg)
		}
		config = cfg
	}
	return config
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName: "sms_campaign_server",
			Host:    "0.0.0.0",
			Port:    3001,
			Mode:    "dev",
		},
		DatabaseConfig: DatabaseConfig{
			Driver:       "mysql",
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			DatabaseName: "sms_campaign",
			MaxOpenConns: 50,
			MaxIdleConns: 10,
		},
		RedisConfig: RedisConfig{
			Enabled:      true,
			Host:         "127.0.0.1",
			Port:         6379,
			WorkerNum:    15,
			TaskChanSize: 3000,
		},
		SmsConfig: SmsConfig{
			Provider:      "mock",
			Endpoint:      "dysmsapi.aliyuncs.com",
			TemplateParam: "content",
		},
		LogConfig: LogConfig{
			LogPath: "./logs",
			Level:   "info",
		},
		KafkaConfig: KafkaConfig{
			MessageMode: "channel",
			HostPort:    "127.0.0.1:9092",
			EventTopic:  "sms_campaign_events",
			GroupID:     "sms_campaign_server",
			Timeout:     1,
		},
		UploadConfig: UploadConfig{
			TempDir:   "uploads",
			BatchSize: 100,
			MaxSizeMB: 32,
		},
		JWTConfig: JWTConfig{
			AccessTokenExpiry: 60,
			OperatorName:      "admin",
		},
		InboundConfig: InboundConfig{
			DedupTTLMinutes: 1440,
		},
	}
}

// applyEnv overrides secrets from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseConfig.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.DatabaseConfig.Driver = v
	}
	if v := os.Getenv("SMS_ACCESS_KEY_ID"); v != "" {
		cfg.SmsConfig.AccessKeyID = v
	}
	if v := os.Getenv("SMS_ACCESS_KEY_SECRET"); v != "" {
		cfg.SmsConfig.AccessKeySecret = v
	}
	if v := os.Getenv("SMS_FROM_NUMBER"); v != "" {
		cfg.SmsConfig.FromNumber = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTConfig.Secret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisConfig.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MainConfig.Port = port
		}
	}
}
