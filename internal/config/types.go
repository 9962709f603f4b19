package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port         string
	LogLevel     string
	StoreBackend string
	DBName       string
	DefaultGroup string
	DedupeWindow time.Duration
	CORSOrigins  []string
	Turso        TursoConfig
	ProjectID    string
	PubSubTopic  string
	JWT          JWTConfig
	Slack        SlackConfig
	R2           R2Config
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type SlackConfig struct {
	Token     string
	ChannelID string
	// Timezone kick-off times are shown in.
	Timezone string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether every R2 field is set.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

// Enabled reports whether Slack notifications can be sent.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)
