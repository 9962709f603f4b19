package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		Port:         getEnvOrDefault("PORT", "8080"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		StoreBackend: getEnvOrDefault("STORE_BACKEND", BackendSQLite),
		DBName:       getEnvOrDefault("DB_NAME", "pitchside.db"),
		DefaultGroup: getEnvOrDefault("DEFAULT_GROUP", "default"),
		DedupeWindow: getDurationOrDefault("DEDUPE_WINDOW", 2*time.Second),
		CORSOrigins:  splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		ProjectID:   os.Getenv("GCP_PROJECT"),
		PubSubTopic: getEnvOrDefault("PUBSUB_TOPIC", "match-events"),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET"),
			TTL:    getDurationOrDefault("JWT_TTL", 72*time.Hour),
		},
		Slack: SlackConfig{
			Token:     os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
			Timezone:  getEnvOrDefault("TIMEZONE", "UTC"),
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_URL"),
		},
	}
	if cfg.StoreBackend == BackendFirestore && cfg.ProjectID == "" {
		log.Fatal("Error: GCP_PROJECT is required when STORE_BACKEND=firestore")
	}
	return cfg
}

func getEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
