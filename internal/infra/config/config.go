package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "AUTH"

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	SMTP         SMTPSettings         `mapstructure:"smtp"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry"`
	RateLimit    RateLimitSettings    `mapstructure:"rate_limit"`
	Verification VerificationSettings `mapstructure:"verification"`
	Password     PasswordSettings     `mapstructure:"password"`
	Argon2       Argon2Settings       `mapstructure:"argon2"`
	CORS         CORSSettings         `mapstructure:"cors"`
}

type AppSettings struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	BasePath string `mapstructure:"base_path"`
}

// APIBasePath returns the prefix for application routes: "" or a path with a leading slash
// and no trailing slash.
func (a AppSettings) APIBasePath() string {
	p := strings.Trim(strings.TrimSpace(a.BasePath), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	Schema            string        `mapstructure:"schema"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	AutoMigrate       bool          `mapstructure:"auto_migrate"`
}

// RedisSettings configures the Redis connection backing IP rate limits.
type RedisSettings struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	DB              int    `mapstructure:"db"`
	Password        string `mapstructure:"password"`
	TLSEnabled      bool   `mapstructure:"tls_enabled"`
	RateLimitPrefix string `mapstructure:"rate_limit_prefix"`
}

// KafkaSettings configures the domain event producer. No brokers disables publishing.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// SMTPSettings configures verification code delivery. An empty host logs codes instead of mailing them.
type SMTPSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// RateLimitSettings configures per-IP sliding windows on the public auth endpoints.
type RateLimitSettings struct {
	WindowDuration      time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts    int           `mapstructure:"login_max_attempts"`
	SendCodeMaxAttempts int           `mapstructure:"send_code_max_attempts"`
	VerifyMaxAttempts   int           `mapstructure:"verify_max_attempts"`
}

// VerificationSettings configures the verification code ledger.
type VerificationSettings struct {
	CodeTTL         time.Duration `mapstructure:"code_ttl"`
	ResendCooldown  time.Duration `mapstructure:"resend_cooldown"`
	RetentionGrace  time.Duration `mapstructure:"retention_grace"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

// PasswordSettings configures hashing and the policy applied to new passwords.
type PasswordSettings struct {
	Algorithm           string `mapstructure:"algorithm"`
	BcryptCost          int    `mapstructure:"bcrypt_cost"`
	MinLength           int    `mapstructure:"min_length"`
	MinCharacterClasses int    `mapstructure:"min_character_classes"`
	MinStrengthScore    int    `mapstructure:"min_strength_score"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type TelemetrySettings struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var envKeys = []string{
	"app.name",
	"app.env",
	"app.host",
	"app.port",
	"app.log_level",
	"app.base_path",
	"postgres.host",
	"postgres.port",
	"postgres.user",
	"postgres.password",
	"postgres.database",
	"postgres.schema",
	"postgres.ssl_mode",
	"postgres.max_conns",
	"postgres.min_conns",
	"postgres.max_conn_lifetime",
	"postgres.max_conn_idle_time",
	"postgres.health_check_period",
	"postgres.auto_migrate",
	"redis.host",
	"redis.port",
	"redis.db",
	"redis.password",
	"redis.tls_enabled",
	"redis.rate_limit_prefix",
	"kafka.brokers",
	"kafka.topic_prefix",
	"smtp.host",
	"smtp.port",
	"smtp.username",
	"smtp.password",
	"smtp.from",
	"smtp.from_name",
	"telemetry.tracing_enabled",
	"telemetry.otlp_endpoint",
	"telemetry.service_name",
	"telemetry.sampling_rate",
	"rate_limit.window_duration",
	"rate_limit.login_max_attempts",
	"rate_limit.send_code_max_attempts",
	"rate_limit.verify_max_attempts",
	"verification.code_ttl",
	"verification.resend_cooldown",
	"verification.retention_grace",
	"verification.janitor_interval",
	"password.algorithm",
	"password.bcrypt_cost",
	"password.min_length",
	"password.min_character_classes",
	"password.min_strength_score",
	"argon2.memory",
	"argon2.iterations",
	"argon2.parallelism",
	"argon2.salt_length",
	"argon2.key_length",
	"cors.allowed_origins",
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	setDefaults(v)

	if err := bindEnvs(v, envKeys); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DSN renders a pgx connection string for the configured database.
func (p PostgresSettings) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// Addr renders the host:port pair for the Redis server.
func (r RedisSettings) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "marketplace-auth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.base_path", "")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "marketplace")
	v.SetDefault("postgres.password", "marketplace_password")
	v.SetDefault("postgres.database", "marketplace")
	v.SetDefault("postgres.schema", "public")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.rate_limit_prefix", "auth:ratelimit")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "marketplace")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@wurldmarket.local")
	v.SetDefault("smtp.from_name", "WurldMarket")

	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "marketplace-auth")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.login_max_attempts", 10)
	v.SetDefault("rate_limit.send_code_max_attempts", 5)
	v.SetDefault("rate_limit.verify_max_attempts", 10)

	v.SetDefault("verification.code_ttl", "15m")
	v.SetDefault("verification.resend_cooldown", "60s")
	v.SetDefault("verification.retention_grace", "1h")
	v.SetDefault("verification.janitor_interval", "10m")

	v.SetDefault("password.algorithm", "argon2id")
	v.SetDefault("password.bcrypt_cost", 10)
	v.SetDefault("password.min_length", 6)
	v.SetDefault("password.min_character_classes", 0)
	v.SetDefault("password.min_strength_score", 0)

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
