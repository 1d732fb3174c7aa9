package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ComplianceConfig holds the policy knobs of the compliance engine.
type ComplianceConfig struct {
	// DefaultPolicy is applied when a request does not pick one:
	// "optimistic" (submitted counts) or "strict" (verified only).
	DefaultPolicy string
	// AllowResubmitVerified gates the verified -> submitted correction path.
	AllowResubmitVerified bool
	// JurisdictionsPath optionally points to a JSON file of jurisdiction
	// profiles that extends the built-in seed set.
	JurisdictionsPath string
	// FormsBaseURL prefixes generated customs form references.
	FormsBaseURL string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	MaxUploadMB int
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Compliance  ComplianceConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Compliance: ComplianceConfig{
			DefaultPolicy:         getEnv("COMPLIANCE_DEFAULT_POLICY", "optimistic"),
			AllowResubmitVerified: getEnvBool("COMPLIANCE_ALLOW_RESUBMIT_VERIFIED", false),
			JurisdictionsPath:     getEnv("JURISDICTIONS_PATH", ""),
			FormsBaseURL:          getEnv("FORMS_BASE_URL", "https://api.cargoconnect.com"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
