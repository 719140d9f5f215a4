package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Storage
	DataDir   string
	LeadsFile string
	UploadDir string

	// Upload limits
	MaxFiles      int
	MaxFileSizeMB int

	// Admin access
	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string // bcrypt; takes precedence over AdminPassword

	// SMTP
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFromAddress  string
	SMTPFromName     string
	DestinationEmail string
}

func Load() (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Define flags with env var fallbacks
	flag.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port")
	flag.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")

	cfg.DataDir = getEnv("DATA_DIR", "./data")
	cfg.LeadsFile = getEnv("LEADS_FILE", filepath.Join(cfg.DataDir, "leads.json"))
	cfg.UploadDir = getEnv("UPLOAD_DIR", filepath.Join(cfg.DataDir, "uploads"))

	cfg.MaxFiles = getEnvInt("MAX_FILES", 5)
	cfg.MaxFileSizeMB = getEnvInt("MAX_FILE_SIZE_MB", 10)

	cfg.AdminUser = getEnv("ADMIN_USER", "admin")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPass = getEnv("SMTP_PASS", "")
	cfg.SMTPFromAddress = getEnv("SMTP_FROM_ADDRESS", "")
	cfg.SMTPFromName = getEnv("SMTP_FROM_NAME", "Lead Intake")
	cfg.DestinationEmail = getEnv("DESTINATION_EMAIL", "")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxFiles < 1 || c.MaxFiles > 5 {
		return fmt.Errorf("MAX_FILES must be between 1 and 5, got %d", c.MaxFiles)
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > 10 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be between 1 and 10, got %d", c.MaxFileSizeMB)
	}
	return nil
}

// MailEnabled reports whether enough SMTP configuration is present to send
// notification email.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.DestinationEmail != ""
}

// AdminEnabled reports whether any admin credential is configured. With
// neither a password nor a hash, admin routes refuse all requests.
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
