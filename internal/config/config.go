// Package config loads application configuration from environment
// variables.  A .env file, when present, is loaded first by the binaries.
package config

import "strings"

// Config holds the API server settings.
type Config struct {
	Env      string // dev, test, prod
	Port     string
	LogLevel string

	DBDriver  string // mysql or postgres
	DBUser    string
	DBPass    string
	DBHost    string
	DBPort    string
	DBName    string
	DBSSLMode string // postgres only

	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	// AdminAuth requires an ADMIN access token on catalog, roster and order
	// status writes.  Off by default: the master admin signs in locally and
	// holds no token.
	AdminAuth bool

	Broker BrokerConfig
}

// Load reads the server configuration.  Missing required variables are
// fatal.
func Load() Config {
	driver := strings.ToLower(envStr("DB_DRIVER", "mysql"))
	defPort := "3306"
	if driver == "postgres" {
		defPort = "5432"
	}
	return Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "5000"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		DBDriver:  driver,
		DBUser:    must("DB_USER"),
		DBPass:    envStr("DB_PASS", ""),
		DBHost:    must("DB_HOST"),
		DBPort:    envStr("DB_PORT", defPort),
		DBName:    must("DB_NAME"),
		DBSSLMode: envStr("DB_SSLMODE", "disable"),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60*24),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		AdminAuth:    envBool("ADMIN_AUTH", false),

		Broker: LoadBrokerConfig(),
	}
}
