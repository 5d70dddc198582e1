package config

import "time"

// Session backends for the shopper console.
const (
	SessionFile  = "file"
	SessionRedis = "redis"
)

// ClientConfig holds the shopper console settings.  Nothing is required.
type ClientConfig struct {
	Env            string
	LogLevel       string
	APIBase        string
	SessionBackend string
	SessionFile    string // empty means ~/.crimson/session.json
	SessionPrefix  string
	InitTimeout    time.Duration
}

// LoadClient reads the console configuration.
func LoadClient() ClientConfig {
	backend := envStr("SESSION_BACKEND", SessionFile)
	if backend != SessionRedis {
		backend = SessionFile
	}
	return ClientConfig{
		Env:            envStr("APP_ENV", "dev"),
		LogLevel:       envStr("LOG_LEVEL", "warn"),
		APIBase:        envStr("API_BASE", "http://localhost:5000/api"),
		SessionBackend: backend,
		SessionFile:    envStr("SESSION_FILE", ""),
		SessionPrefix:  envStr("SESSION_PREFIX", "crimson:session"),
		InitTimeout:    envDur("INIT_TIMEOUT", 3*time.Second),
	}
}
