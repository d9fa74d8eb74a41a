package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGoogle   = "google"
	ProviderFirebase = "firebase"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	MongoURI    string
	MongoDB     string
	FrontendURL string

	JWTSecret      string
	JWTExpireHours int

	// AuthProvider selects how incoming ID tokens are verified: "google" or "firebase".
	AuthProvider               string
	GoogleClientID             string
	FirebaseServiceAccountPath string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	UsernameMaxAttempts       int
	UsernameProvisionAttempts int

	SignInRateLimit  int
	SignInRateWindow time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "promptshare"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		AuthProvider:               getEnv("AUTH_PROVIDER", ProviderGoogle),
		GoogleClientID:             getEnv("GOOGLE_CLIENT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "promptshare"),

		UsernameMaxAttempts:       getEnvInt("USERNAME_MAX_ATTEMPTS", 1000),
		UsernameProvisionAttempts: getEnvInt("USERNAME_PROVISION_ATTEMPTS", 3),

		SignInRateLimit:  getEnvInt("SIGNIN_RATE_LIMIT", 20),
		SignInRateWindow: getEnvDuration("SIGNIN_RATE_WINDOW", time.Minute),
	}
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
