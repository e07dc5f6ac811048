package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	ServerPort     string
	JWTSecret      string
	JWTExpiryHours int
	AdminEmail     string
	AdminPassword  string
	LogLevel       string
	GinMode        string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "todo_user"),
		DBPassword:     getEnv("DB_PASSWORD", "todo_pass"),
		DBName:         getEnv("DB_NAME", "todo_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "todo.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@todoapp.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "Admin1234!"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		GinMode:        getEnv("GIN_MODE", "debug"),
	}
}

// PostgresDSN builds the keyword/value connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Invalid value %q for %s, using %d", value, key, defaultVal)
		return defaultVal
	}
	return n
}
