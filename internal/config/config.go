package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var messagesYAML []byte

type Config struct {
	Database Database
	Face     Face
	Telegram Telegram
	Admin    Admin
	Upload   Upload
	Web      Web
	Messages Messages
}

type Database struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type Face struct {
	Threshold float64 // L2 distance threshold for accepting a match (default 0.55)
}

type Telegram struct {
	BotToken string
	APIURL   string // defaults to https://api.telegram.org, overridable for tests
}

// Enabled reports whether a bot token is configured. Without a token the
// notifier runs in no-op mode, which keeps local development working.
func (t *Telegram) Enabled() bool {
	return t.BotToken != ""
}

type Admin struct {
	User     string
	Password string
}

type Upload struct {
	Dir string // root directory for stored images (event and reference shots)
}

type Web struct {
	Port int
	Host string
}

// Messages holds the user-facing Telegram text catalog embedded at build time.
type Messages struct {
	Telegram TelegramMessages `yaml:"telegram"`
}

type TelegramMessages struct {
	StartPrompt        string `yaml:"start_prompt"`
	ShareContactButton string `yaml:"share_contact_button"`
	PhoneUnreadable    string `yaml:"phone_unreadable"`
	Denied             string `yaml:"denied"`
	Subscribed         string `yaml:"subscribed"`
	ImageFailedNote    string `yaml:"image_failed_note"`
	EventTemplate      string `yaml:"event_template"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var messages Messages
	if err := yaml.Unmarshal(messagesYAML, &messages); err != nil {
		// Embedded file, so this can only happen on a broken build.
		panic("failed to unmarshal embedded messages.yaml: " + err.Error())
	}

	apiURL := strings.TrimRight(os.Getenv("TELEGRAM_API_URL"), "/")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	host := os.Getenv("WEB_HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	return &Config{
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Face: Face{
			Threshold: envFloat("FACE_THRESHOLD", 0.55),
		},
		Telegram: Telegram{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			APIURL:   apiURL,
		},
		Admin: Admin{
			User:     os.Getenv("ADMIN_USER"),
			Password: os.Getenv("ADMIN_PASS"),
		},
		Upload: Upload{
			Dir: uploadDir,
		},
		Web: Web{
			Port: envInt("PORT", 3000),
			Host: host,
		},
		Messages: messages,
	}
}
