package config

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "defaultsecret"
)

type Config struct {
	APIPort string
	AppEnv  string

	JWTKey []byte
	JWTExp time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string

	FrontendURL        string
	CORSAllowedOrigins []string

	BcryptCost    int
	ResetTokenTTL time.Duration
}

// IsProduction reports whether the deployment mode flag is set to production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		APIPort:       v.GetString("API_PORT"),
		AppEnv:        strings.ToLower(v.GetString("APP_ENV")),
		JWTKey:        []byte(v.GetString("JWT_SECRET")),
		JWTExp:        v.GetDuration("JWT_EXPIRATION"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSslMode:     v.GetString("DB_SSLMODE"),
		DBConnStr:     v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		EventsChannel: v.GetString("EVENTS_CHANNEL"),
		MailHost:      v.GetString("MAIL_HOST"),
		MailPort:      v.GetInt("MAIL_PORT"),
		MailUser:      v.GetString("MAIL_USER"),
		MailPassword:  v.GetString("MAIL_PASSWORD"),
		MailFrom:      v.GetString("MAIL_FROM"),
		FrontendURL:   strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		ResetTokenTTL: v.GetDuration("RESET_TOKEN_TTL"),
	}

	if cfg.DBConnStr == "" {
		cfg.DBConnStr = buildConnStr(cfg)
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.MailUser
	}
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 && cfg.FrontendURL != "" {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", time.Hour)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sahaya")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EVENTS_CHANNEL", "sahaya:events")
	v.SetDefault("MAIL_PORT", 465)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RESET_TOKEN_TTL", time.Hour)
}

func (c *Config) validate() error {
	if c.IsProduction() && string(c.JWTKey) == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if len(c.JWTKey) == 0 {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTExp <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	if c.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}
	// An empty list makes the CORS middleware allow every origin.
	if c.IsProduction() && len(c.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS or FRONTEND_URL must be set in production")
	}
	return nil
}

func buildConnStr(c *Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
