package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where notemind stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// WebhookSecret authenticates inbound messenger webhook deliveries
	WebhookSecret string

	// LLM Configuration
	AIEnabled bool   // NOTEMIND_AI_ENABLED
	AIAPIKey  string // NOTEMIND_AI_API_KEY
	AIBaseURL string // NOTEMIND_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel   string // NOTEMIND_AI_MODEL (default: gpt-4o-mini)

	// Maps / routing configuration
	MapsAPIKey  string // NOTEMIND_MAPS_API_KEY
	MapsBaseURL string // NOTEMIND_MAPS_BASE_URL

	// Messenger bot configuration
	BotToken   string // NOTEMIND_BOT_TOKEN
	BotBaseURL string // NOTEMIND_BOT_BASE_URL (default: https://botapi.max.ru)

	// DigestCron is the cron spec for the morning agenda digest.
	// Empty disables the digest runner.
	DigestCron string // NOTEMIND_DIGEST_CRON (default: "0 8 * * *")
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if intent extraction is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// IsMapsEnabled returns true if the travel-time resolver is configured.
func (p *Profile) IsMapsEnabled() bool {
	return p.MapsAPIKey != "" && p.MapsBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from NOTEMIND_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("NOTEMIND_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("NOTEMIND_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("NOTEMIND_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("NOTEMIND_AI_MODEL", "gpt-4o-mini")

	p.MapsAPIKey = os.Getenv("NOTEMIND_MAPS_API_KEY")
	p.MapsBaseURL = os.Getenv("NOTEMIND_MAPS_BASE_URL")

	p.BotToken = os.Getenv("NOTEMIND_BOT_TOKEN")
	p.BotBaseURL = getEnvOrDefault("NOTEMIND_BOT_BASE_URL", "https://botapi.max.ru")

	if secret := os.Getenv("NOTEMIND_WEBHOOK_SECRET"); secret != "" {
		p.WebhookSecret = secret
	}
	p.DigestCron = getEnvOrDefault("NOTEMIND_DIGEST_CRON", "0 8 * * *")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "notemind")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/notemind"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("notemind_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
