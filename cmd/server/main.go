package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ratesdash/internal/config"
	"ratesdash/internal/marketdata"
	"ratesdash/internal/openai"
	"ratesdash/internal/server"
	"ratesdash/internal/storage"
	"ratesdash/internal/telegram"
)

func main() {
	cfg := config.Load()

	// Ensure parent directory for the DB exists
	_ = os.MkdirAll(filepath.Dir(cfg.CacheDBPath), 0o755)
	db, err := storage.OpenSQLite("file:" + cfg.CacheDBPath + "?_fk=1")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	log.Printf("db: opened sqlite at %s", cfg.CacheDBPath)
	if err := storage.InitSchema(db); err != nil {
		log.Fatal(err)
	}
	log.Println("db: schema ensured (snapshots table)")
	store := storage.NewStore(db)

	svc := marketdata.NewService(cfg.FREDAPIKey, store, cfg.CacheTTL)

	var note *openai.DeskNote
	if cfg.OpenAIKey != "" {
		note = openai.NewDeskNote(cfg.OpenAIKey)
	}

	var webhook http.HandlerFunc
	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.WebhookPublicURL, svc)
		if err != nil {
			log.Fatal(err)
		}
		webhook = bot.WebhookHandler
		log.Printf("telegram: bot initialized, webhook target %s", cfg.WebhookPublicURL)
	}

	// Prewarm in the background, then keep the cache and snapshots fresh.
	go func() {
		log.Println("prewarm: warming cache")
		refresh(svc, bot, cfg.AlertChatID)
		ticker := time.NewTicker(cfg.CacheTTL)
		defer ticker.Stop()
		for range ticker.C {
			refresh(svc, bot, cfg.AlertChatID)
		}
	}()

	h := server.NewHandlers(svc, store, note)
	mux := server.NewHTTPMux(h, webhook)
	addr := ":" + cfg.Port
	log.Println("http: listening on", addr)
	if err := server.ListenAndServe(addr, mux); err != nil {
		log.Println("server error:", err)
		os.Exit(1)
	}
}

func refresh(svc *marketdata.Service, bot *telegram.Bot, alertChatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	changed := svc.Refresh(ctx)
	if len(changed) > 0 {
		log.Printf("refresh: data changed: %v", changed)
		if bot != nil {
			bot.NotifyChanged(alertChatID, changed)
		}
	}
}
