package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             string
	FREDAPIKey       string
	OpenAIKey        string
	TelegramToken    string
	WebhookPublicURL string
	AlertChatID      int64
	CacheDBPath      string
	CacheTTL         time.Duration
}

// TelegramEnabled reports whether the alert bot has everything it needs.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.WebhookPublicURL != ""
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}
	dbPath := os.Getenv("CACHE_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/ratesdash.db"
	}
	ttlMinutes := 5
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttlMinutes = n
		} else {
			log.Printf("config: ignoring invalid CACHE_TTL_MINUTES=%q", v)
		}
	}
	var alertChatID int64
	if v := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			alertChatID = n
		} else {
			log.Printf("config: ignoring invalid TELEGRAM_ALERT_CHAT_ID=%q", v)
		}
	}

	cfg := Config{
		Port:             port,
		FREDAPIKey:       os.Getenv("FRED_API_KEY"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookPublicURL: os.Getenv("WEBHOOK_PUBLIC_URL"),
		AlertChatID:      alertChatID,
		CacheDBPath:      dbPath,
		CacheTTL:         time.Duration(ttlMinutes) * time.Minute,
	}
	if cfg.FREDAPIKey == "" {
		log.Println("config: FRED_API_KEY not set, FRED-backed data disabled")
	}
	if cfg.OpenAIKey == "" {
		log.Println("config: OPENAI_API_KEY not set, /api/summary disabled")
	}
	if !cfg.TelegramEnabled() {
		log.Println("config: telegram bot disabled (need TELEGRAM_BOT_TOKEN and WEBHOOK_PUBLIC_URL)")
	}
	return cfg
}
