package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your_jwt_secret_key_here"

// MinioConfig holds the object store settings for listing attachments.
// An empty Endpoint disables attachments.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

type Config struct {
	Env           string
	Port          string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigin    string
	EnforceAdmin  bool
	StaticDir     string
	LogLevel      string
	Minio         MinioConfig
}

// Load reads a .env file if one exists and then the process environment.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "")
	if env == "" {
		env = getEnv("NODE_ENV", "development")
	}

	return Config{
		Env:           env,
		Port:          getEnv("PORT", "3000"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/profile_seller"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "profile_seller"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:      getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
		EnforceAdmin:  getBool("ENFORCE_ADMIN", false),
		StaticDir:     getEnv("STATIC_DIR", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "profile-attachments"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsesDefaultSecret reports whether tokens are signed with the placeholder key.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
