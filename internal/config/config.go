package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"product-catalog/internal/model"
)

type Config struct {
	AppName string
	AppPort string

	MongoURI            string
	MongoDBName         string
	MongoConnectTimeout time.Duration
	MongoMaxRetries     int
	MongoRetryBackoff   time.Duration

	UploadDir       string
	UploadMaxBytes  int64
	DefaultImageURL string

	ListLimit      int64
	AllowedOrigins []string
	DebugLog       bool

	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
	RemoteLogHttpURI       string
}

// Telemetry accessors, consumed by internal/telemetry.
func (c *Config) GetAppName() string      { return c.AppName }
func (c *Config) GetOtelRPCURI() string   { return c.RemoteTraceRpcURI }
func (c *Config) GetPyroscopeURI() string { return c.RemoteProfilingHttpURI }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(log *slog.Logger, key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warn("Invalid numeric env, using fallback",
			slog.String("key", key), slog.String("value", v), slog.Int64("fallback", fallback))
		return fallback
	}
	return n
}

func getBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// Load reads configuration from the environment, after loading an optional
// .env file. It fails when a required variable is absent.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "product-catalog"),
		AppPort: getEnv("APP_PORT", "3000"),

		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDBName:         os.Getenv("MONGO_DB_NAME"),
		MongoConnectTimeout: time.Duration(getInt64(log, "MONGO_CONNECT_TIMEOUT_MS", 30000)) * time.Millisecond,
		MongoMaxRetries:     int(getInt64(log, "MONGO_MAX_RETRIES", 3)),
		MongoRetryBackoff:   time.Duration(getInt64(log, "MONGO_RETRY_BACKOFF_MS", 1000)) * time.Millisecond,

		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes:  getInt64(log, "UPLOAD_MAX_BYTES", 5<<20),
		DefaultImageURL: getEnv("DEFAULT_IMAGE_URL", model.DefaultImageURL),

		ListLimit: getInt64(log, "LIST_LIMIT", 0),
		DebugLog:  getBool("DEBUG_LOG"),

		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"*"}
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.MongoDBName == "" {
		missing = append(missing, "MONGO_DB_NAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	// Optional but recommended
	if cfg.RemoteTraceRpcURI == "" {
		log.Warn("Missing REMOTE_TRACE_RPC_URI, traces go to stdout")
	}
	if cfg.RemoteProfilingHttpURI == "" {
		log.Warn("Missing REMOTE_PROFILING_HTTP_URI, profiling disabled")
	}
	if cfg.RemoteLogHttpURI == "" {
		log.Warn("Missing REMOTE_LOG_HTTP_URI, remote log shipping disabled")
	}

	log.Info("Configuration loaded successfully",
		slog.String("app_name", cfg.AppName),
		slog.String("app_port", cfg.AppPort),
		slog.String("mongo_db_name", cfg.MongoDBName),
		slog.String("upload_dir", cfg.UploadDir),
		slog.Int64("upload_max_bytes", cfg.UploadMaxBytes),
		slog.Int64("list_limit", cfg.ListLimit),
	)

	return cfg, nil
}
