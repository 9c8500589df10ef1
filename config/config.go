// Package config carrega a configuração do gateway (viper: arquivo + env GATEWAY_*)
// e o arquivo de políticas por rota.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const EnvPrefix = "GATEWAY"

type Config struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	UpstreamURL  string `mapstructure:"upstream_url"`
	PoliciesFile string `mapstructure:"policies_file"`
	TrustXFF     bool   `mapstructure:"trust_xff"`
	APIKeyHeader string `mapstructure:"api_key_header"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`

	Store StoreConfig `mapstructure:"store"`
	Stats StatsConfig `mapstructure:"stats"`
}

type StoreConfig struct {
	Shards       int           `mapstructure:"shards"`
	Grace        time.Duration `mapstructure:"grace"`
	CleanupEvery time.Duration `mapstructure:"cleanup_every"`
}

// StatsConfig liga o RedisStatsStore. Só estatísticas: os contadores
// continuam locais ao processo.
type StatsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	Bucket        string        `mapstructure:"bucket"`
	TrackKeys     bool          `mapstructure:"track_keys"`
}

// SetDefaults registra todos os valores padrão. Com AutomaticEnv o viper só
// enxerga variáveis de ambiente de chaves conhecidas, então toda chave precisa de default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("upstream_url", "")
	v.SetDefault("policies_file", "")
	v.SetDefault("trust_xff", false)
	v.SetDefault("api_key_header", "X-Api-Key")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("store.shards", 32)
	v.SetDefault("store.grace", 15*time.Minute)
	v.SetDefault("store.cleanup_every", 2*time.Minute)

	v.SetDefault("stats.enabled", false)
	v.SetDefault("stats.redis_addr", "")
	v.SetDefault("stats.redis_password", "")
	v.SetDefault("stats.redis_db", 0)
	v.SetDefault("stats.prefix", "ratelimit:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")
	v.SetDefault("stats.track_keys", false)
}

// BindEnv liga GATEWAY_<CHAVE> (com "." trocado por "_") às chaves do viper.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodifica e valida a configuração.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.UpstreamURL) == "" {
		return errors.New("upstream_url is required")
	}
	if c.Store.Shards <= 0 {
		return errors.New("store.shards must be > 0")
	}
	if c.Store.Grace < 0 {
		return errors.New("store.grace must be >= 0")
	}
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("stats.redis_addr is required when stats.enabled=true")
	}
	switch c.Stats.Bucket {
	case "minute", "none":
	default:
		return fmt.Errorf("stats.bucket must be minute or none, got %q", c.Stats.Bucket)
	}
	return nil
}
