package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment         string
	Addr                string
	LogLevel            string
	DatabaseURL         string
	MigrationsDir       string
	CauseSearchURL      string
	CauseSearchKey      string
	CauseSearchTake     int
	CauseSearchTimeout  time.Duration
	CauseCacheTTL       time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	ListenerSendBuffer  int
	ListenerPingEvery   time.Duration
	SSEHeartbeatEvery   time.Duration
	CORSAllowedOrigin   string
	ShutdownGracePeriod time.Duration
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:         GetString("APP_ENV", "development"),
		Addr:                GetString("API_ADDR", ":5000"),
		LogLevel:            GetString("LOG_LEVEL", "info"),
		DatabaseURL:         GetString("DATABASE_URL", ""),
		MigrationsDir:       GetString("DB_MIGRATIONS_DIR", ""),
		CauseSearchURL:      GetString("EVERY_ORG_API_URL", "https://partners.every.org/v0.2"),
		CauseSearchKey:      GetString("EVERY_ORG_API_KEY", ""),
		CauseSearchTake:     GetInt("CAUSE_SEARCH_TAKE", 3),
		CauseSearchTimeout:  GetSeconds("CAUSE_SEARCH_TIMEOUT_SECONDS", 10),
		CauseCacheTTL:       GetSeconds("CAUSE_CACHE_TTL_SECONDS", 300),
		RedisAddr:           GetString("REDIS_ADDR", ""),
		RedisPassword:       GetString("REDIS_PASSWORD", ""),
		RedisDB:             GetInt("REDIS_DB", 0),
		ListenerSendBuffer:  GetInt("WS_SEND_BUFFER", 32),
		ListenerPingEvery:   GetSeconds("WS_PING_SECONDS", 30),
		SSEHeartbeatEvery:   GetSeconds("SSE_HEARTBEAT_SECONDS", 15),
		CORSAllowedOrigin:   GetString("CORS_ALLOWED_ORIGIN", "*"),
		ShutdownGracePeriod: GetSeconds("SHUTDOWN_GRACE_SECONDS", 10),
	}
}

// JournalEnabled reports whether a database is configured for the journal.
func (c APIConfig) JournalEnabled() bool {
	return c.DatabaseURL != ""
}
