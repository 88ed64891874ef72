package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort           string // Application port
	DBUser            string // Database user
	DBPassword        string // Database password
	DBHost            string // Database host
	DBPort            string // Database port
	DBName            string // Database name
	DBSSLMode         string // Postgres sslmode (disable, require, ...)
	JWTSecret         string // JWT secret key
	RedisAddr         string // Redis server address
	RedisPass         string // Redis password
	RedisDB           int    // Redis database number
	GeminiAPIKey      string // Gemini API key (empty disables AI analysis)
	RazorpayKeyID     string // Razorpay key id
	RazorpayKeySecret string // Razorpay key secret
	FirebaseCredsPath string // Firebase service account file path
	SiteBaseURL       string // Public base URL used by SEO/sitemap output
	IsProd            bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            os.Getenv("DB_NAME"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASS"),
		RedisDB:           redisDB,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		FirebaseCredsPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		SiteBaseURL:       getEnv("SITE_BASE_URL", "https://antidote.fit"),
		IsProd:            os.Getenv("IS_PROD") == "true",
	}
}

// DSN builds the Postgres connection string
func (c *Config) DSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
}

// getEnv returns the environment variable or a fallback value
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
