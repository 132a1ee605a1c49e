// Package telegram runs an optional alert bot: it answers dashboard
// queries in chat and pushes a message when the underlying data changes.
package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ratesdash/internal/marketdata"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
}

func NewBot(token, webhookURL string, svc *marketdata.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.Printf("telegram: webhook set to %s", webhookURL)

	return &Bot{api: api, h: NewHandlers(api, svc)}, nil
}

// Webhook HTTP handler (registered at /telegram/webhook)
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", 400)
		return
	}
	if update.Message != nil {
		log.Printf("webhook: chat_id=%d from=%d text=%q", update.Message.Chat.ID, update.Message.From.ID, update.Message.Text)
		go b.h.HandleMessage(update.Message)
	}
	w.WriteHeader(http.StatusOK)
}

// NotifyChanged pushes a data-changed alert to the configured chat.
func (b *Bot) NotifyChanged(chatID int64, dataTypes []string) {
	if chatID == 0 || len(dataTypes) == 0 {
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Dashboard data updated: %s", strings.Join(dataTypes, ", ")))
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("telegram: notify: %v", err)
	}
}
