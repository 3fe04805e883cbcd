// config.go - Handles configuration for the project

package config // Declares the package name

import ( // Import required packages
	"strings" // For normalising enum-like values
	"time"    // For durations (session TTL)

	"github.com/joho/godotenv" // Optional .env file support
	"github.com/spf13/viper"   // Environment lookup with defaults
)

type Config struct { // Config struct holds all configuration values
	Port     string // HTTP listen port
	GinMode  string // gin mode: debug, release or test
	LogLevel string // slog level: debug, info, warn, error

	DBDriver    string // "sqlite" or "postgres"
	DBPath      string // Path to the SQLite database file
	DatabaseURL string // PostgreSQL DSN, used when DBDriver is postgres

	JWTSecret    string        // Secret key used to sign session cookies
	SessionTTL   time.Duration // How long a session stays valid
	SessionStore string        // "memory" or "redis"
	RedisURL     string        // Address of the Redis server for shared sessions
	CookieSecure bool          // Mark the session cookie Secure (HTTPS only)
	BcryptCost   int           // bcrypt work factor for password hashes

	MQTTBroker string // Address of the MQTT broker, empty disables events
	MQTTTopic  string // Topic that receives forecast-submitted events

	EnableDiagnostics bool // Registers the /check_forecasts dump
}

func Load() *Config { // Load reads config from environment variables (and .env) or uses defaults
	_ = godotenv.Load() // A missing .env file is fine

	v := viper.New()
	v.AutomaticEnv() // PORT, DB_PATH, JWT_SECRET, ...

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "forecasts.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "supersecret")
	v.SetDefault("SESSION_TTL", "72h")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10) // bcrypt.DefaultCost
	v.SetDefault("MQTT_BROKER", "")
	v.SetDefault("MQTT_TOPIC", "forecasts/submitted")
	v.SetDefault("ENABLE_DIAGNOSTICS", false)

	return &Config{
		Port:              v.GetString("PORT"),
		GinMode:           v.GetString("GIN_MODE"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:            v.GetString("DB_PATH"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		SessionStore:      strings.ToLower(v.GetString("SESSION_STORE")),
		RedisURL:          v.GetString("REDIS_URL"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		MQTTBroker:        v.GetString("MQTT_BROKER"),
		MQTTTopic:         v.GetString("MQTT_TOPIC"),
		EnableDiagnostics: v.GetBool("ENABLE_DIAGNOSTICS"),
	}
}
