package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// minPollInterval is the floor for the job-agent scheduler cadence
const minPollInterval = time.Minute

type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Postgres  PostgresConfig  `env:",prefix=POSTGRES_"`
	Redis     RedisConfig     `env:",prefix=REDIS_"`
	JWT       JWTConfig       `env:",prefix=JWT_"`
	LinkedIn  LinkedInConfig  `env:",prefix=LINKEDIN_"`
	Scheduler SchedulerConfig `env:",prefix=SCHEDULER_"`
	Security  SecurityConfig  `env:",prefix="`
	CORS      CORSConfig      `env:",prefix=CORS_"`
	Env       string          `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host           string `env:"HOST,default=localhost"`
	Port           string `env:"PORT,default=5432"`
	User           string `env:"USER,default=jobboard"`
	Password       string `env:"PASSWORD,default=jobboard_password"`
	DBName         string `env:"DB,default=jobboard_db"`
	SSLMode        string `env:"SSLMODE,default=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default="`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

type LinkedInConfig struct {
	ClientID     string `env:"CLIENT_ID,default="`
	ClientSecret string `env:"CLIENT_SECRET,default="`
	RedirectURL  string `env:"REDIRECT_URL,default="`
}

type SchedulerConfig struct {
	PollInterval Duration `env:"POLL_INTERVAL,default=1m"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	MaxLoginAttempts  int      `env:"MAX_LOGIN_ATTEMPTS,default=5"`
	LockoutDuration   Duration `env:"LOCKOUT_DURATION,default=15m"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Enabled checks whether LinkedIn federation is configured
func (l LinkedInConfig) Enabled() bool {
	return l.ClientID != ""
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate JWT secret length
	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.Scheduler.PollInterval.Duration < minPollInterval {
		return nil, fmt.Errorf("SCHEDULER_POLL_INTERVAL must be at least %s", minPollInterval)
	}

	if config.LinkedIn.Enabled() && (config.LinkedIn.ClientSecret == "" || config.LinkedIn.RedirectURL == "") {
		return nil, fmt.Errorf("LINKEDIN_CLIENT_SECRET and LINKEDIN_REDIRECT_URL are required when LINKEDIN_CLIENT_ID is set")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
