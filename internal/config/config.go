package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	ServiceName               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Redis                     RedisConfig
	Mailer                    MailerConfig
	OTP                       OTPConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	LockTTL                   time.Duration
	MaxPhotoBytes             int64
	EnableCleanup             bool
	AppURL                    string
	ShutdownTimeout           time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds the connection used for slot locks. An empty Addr
// disables Redis and the service falls back to in-process locks.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Transport   string
	Host        string
	Port        string
	Username    string
	Password    string
	DefaultFrom string
}

// OTPConfig controls one-time password login.
type OTPConfig struct {
	TTL    time.Duration
	Length int
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "mysql"),
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "conectabem"),
	}

	switch dbConfig.Driver {
	case "mysql":
		dbConfig.Port = getEnv("DB_PORT", "3306")
		dbConfig.DSN = getEnv("DB_DSN", mysqlDSN(dbConfig))
	case "postgres":
		dbConfig.Port = getEnv("DB_PORT", "5432")
		dbConfig.DSN = getEnv("DB_DSN", postgresDSN(dbConfig, getEnv("DB_SSLMODE", "disable")))
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want mysql or postgres", dbConfig.Driver)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisConfig := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	mailerConfig := MailerConfig{
		Transport:   getEnv("MAILER_TRANSPORT", "log"),
		Host:        getEnv("SMTP_HOST", ""),
		Port:        getEnv("SMTP_PORT", "587"),
		Username:    getEnv("SMTP_USERNAME", ""),
		Password:    getEnv("SMTP_PASSWORD", ""),
		DefaultFrom: getEnv("MAILER_DEFAULT_FROM", "no-reply@conectabem.com.br"),
	}

	otpTTL, err := getDuration("OTP_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	otpLength, err := strconv.Atoi(getEnv("OTP_LENGTH", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_LENGTH: %w", err)
	}
	if otpLength < 4 || otpLength > 10 {
		return nil, fmt.Errorf("invalid OTP_LENGTH: %d is outside 4..10", otpLength)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	lockTTL, err := getDuration("LOCK_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	maxPhotoBytes, err := strconv.ParseInt(getEnv("MAX_PHOTO_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PHOTO_BYTES: %w", err)
	}

	enableCleanup, err := strconv.ParseBool(getEnv("ENABLE_CLEANUP", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENABLE_CLEANUP: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:3000"),
		Environment:               getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		ServiceName:               getEnv("SERVICE_NAME", "conectabem-api"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Redis:                     redisConfig,
		Mailer:                    mailerConfig,
		OTP:                       OTPConfig{TTL: otpTTL, Length: otpLength},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		LockTTL:                   lockTTL,
		MaxPhotoBytes:             maxPhotoBytes,
		EnableCleanup:             enableCleanup,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
		ShutdownTimeout:           shutdownTimeout,
	}, nil
}

func mysqlDSN(db DatabaseConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = db.Username
	cfg.Passwd = db.Password
	cfg.Net = "tcp"
	cfg.Addr = db.Host + ":" + db.Port
	cfg.DBName = db.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

func postgresDSN(db DatabaseConfig, sslMode string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		db.Host, db.Port, db.Username, db.Password, db.Name, sslMode)
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
