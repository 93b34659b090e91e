package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	AppEnv    string `validate:"required,oneof=development staging production test"`
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Outbox    OutboxConfig
	Leave     LeaveConfig
}

type HTTPConfig struct {
	Port               string `validate:"required,numeric"`
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string `validate:"required,oneof=postgres mysql"`
	Host            string `validate:"required"`
	Port            string `validate:"required,numeric"`
	User            string `validate:"required"`
	Password        string
	Name            string `validate:"required"`
	SSLMode         string
	MaxRetries      int `validate:"min=1"`
	MaxOpenConns    int `validate:"min=1"`
	MaxIdleConns    int `validate:"min=0"`
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `validate:"required"`
	Password string
	DB       int `validate:"min=0"`
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

type AuthConfig struct {
	JWTSecret string `validate:"required,min=16"`
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	RPS   float64 `validate:"gt=0"`
	Burst int     `validate:"min=1"`
}

type OutboxConfig struct {
	PollSchedule  string `validate:"required"`
	PurgeSchedule string `validate:"required"`
	BatchSize     int    `validate:"min=1"`
	Retention     time.Duration
}

type LeaveConfig struct {
	AnnualAllotment int `validate:"min=1"`
}

// DSN builds the driver specific connection string. MySQL sessions use UTC so
// DATE columns round-trip as calendar dates.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverMySQL {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// SQLDriverName is the database/sql driver registered for Driver.
func (d DatabaseConfig) SQLDriverName() string {
	if d.Driver == DriverMySQL {
		return "mysql"
	}
	return "pgx"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")

	v.SetDefault("port", "3000")
	v.SetDefault("http_read_timeout", "5s")
	v.SetDefault("http_write_timeout", "10s")
	v.SetDefault("http_idle_timeout", "60s")
	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "employee_management")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_retries", 5)
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", "1h")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)

	v.SetDefault("kafka_broker", "")
	v.SetDefault("kafka_consumer_group", "employee-management-leave-notifier")

	v.SetDefault("jwt_ttl", "24h")

	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)

	v.SetDefault("outbox_poll_schedule", "@every 3s")
	v.SetDefault("outbox_purge_schedule", "@daily")
	v.SetDefault("outbox_batch_size", 50)
	v.SetDefault("outbox_retention", "168h")

	v.SetDefault("leave_annual_allotment", 28)
}

// Load reads config.yml from path when present and lets environment variables
// (DB_HOST, JWT_SECRET, ...) override every key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := &Config{
		AppEnv: v.GetString("app_env"),
		HTTP: HTTPConfig{
			Port:               v.GetString("port"),
			ReadTimeout:        v.GetDuration("http_read_timeout"),
			WriteTimeout:       v.GetDuration("http_write_timeout"),
			IdleTimeout:        v.GetDuration("http_idle_timeout"),
			CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("db_driver")),
			Host:            v.GetString("db_host"),
			Port:            v.GetString("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Name:            v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxRetries:      v.GetInt("db_max_retries"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(v.GetString("kafka_broker")),
			ConsumerGroup: v.GetString("kafka_consumer_group"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("jwt_secret"),
			TokenTTL:  v.GetDuration("jwt_ttl"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit_rps"),
			Burst: v.GetInt("rate_limit_burst"),
		},
		Outbox: OutboxConfig{
			PollSchedule:  v.GetString("outbox_poll_schedule"),
			PurgeSchedule: v.GetString("outbox_purge_schedule"),
			BatchSize:     v.GetInt("outbox_batch_size"),
			Retention:     v.GetDuration("outbox_retention"),
		},
		Leave: LeaveConfig{
			AnnualAllotment: v.GetInt("leave_annual_allotment"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireKafka is checked by the binaries that talk to a broker.
func (c *Config) RequireKafka() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKER is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
