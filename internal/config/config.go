package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	viper "github.com/spf13/viper"
)

const (
	ConfigFileEnv     = "SHOPCORE_CONFIG_FILE"
	DefaultConfigFile = ".env"
	MinAuthTokenKey   = 32
)

var ErrInvalidConfig = errors.New("invalid config")

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取, 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var muonce sync.Once

type ConfigSingleton struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	DbName string `mapstructure:"POSTGRES_DB"`
	DbHost string `mapstructure:"POSTGRES_HOST"`
	DbPort string `mapstructure:"POSTGRES_PORT"`
	DbUser string `mapstructure:"POSTGRES_USER"`
	DbPas  string `mapstructure:"POSTGRES_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers    []string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string   `mapstructure:"KAFKA_ORDER_TOPIC"`

	AuthTokenKey        string        `mapstructure:"AUTH_TOKEN_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`

	CheckoutVerifyTotal bool          `mapstructure:"CHECKOUT_VERIFY_TOTAL"`
	IdempotencyTTL      time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	// 保留中 (尚未完成) 的冪等鍵存活時間
	IdempotencyPendingTTL time.Duration `mapstructure:"IDEMPOTENCY_PENDING_TTL"`

	RateLimitCapacity int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRatePS   float64 `mapstructure:"RATE_LIMIT_RATE_PS"`

	OutboxPollInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize    int           `mapstructure:"OUTBOX_BATCH_SIZE"`
}

// GetConfig 第一次呼叫時載入並監聽設定檔, 載入失敗直接結束程式
func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleton{}
		path := ConfigPath()
		v, cf, err := load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("error read config")
		}
		configSingleton.Config = cf

		if v.ConfigFileUsed() == "" {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := unmarshal(v)
			if err != nil {
				log.Error().Err(err).Str("file", e.Name).Msg("failed to reload config file, keep previous config")
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
			log.Info().Str("file", e.Name).Msg("config reloaded")
		})
		v.WatchConfig()
	})
}

func ConfigPath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}
	return DefaultConfigFile
}

/*
單純回傳錯誤, 由外部決定要不要Fatal
設定檔不存在時只讀環境變數
*/
func LoadConfig(path string) (*Config, error) {
	_, cf, err := load(path)
	return cf, err
}

func load(path string) (*viper.Viper, *Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, nil, err
			}
			v.SetConfigFile("")
		}
	}

	cf, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	return v, cf, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("POSTGRES_DB", "shopcore")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("ACCESS_TOKEN_DURATION", 24*time.Hour)
	v.SetDefault("CHECKOUT_VERIFY_TOTAL", false)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)
	v.SetDefault("IDEMPOTENCY_PENDING_TTL", time.Minute)
	v.SetDefault("RATE_LIMIT_CAPACITY", 20)
	v.SetDefault("RATE_LIMIT_RATE_PS", 5)
	v.SetDefault("OUTBOX_POLL_INTERVAL", time.Second)
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
}

func (c *Config) Validate() error {
	if len(c.AuthTokenKey) < MinAuthTokenKey {
		return fmt.Errorf("%w: AUTH_TOKEN_KEY must be at least %d characters", ErrInvalidConfig, MinAuthTokenKey)
	}
	if c.AccessTokenDuration <= 0 {
		return fmt.Errorf("%w: ACCESS_TOKEN_DURATION must be positive", ErrInvalidConfig)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("%w: KAFKA_BROKERS is required", ErrInvalidConfig)
	}
	return nil
}
