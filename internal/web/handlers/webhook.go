package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/subscription"
	"github.com/elchinm/attendance-gate/internal/telegram"
)

// WebhookHandler receives Telegram bot updates and runs the subscription
// opt-in protocol.
type WebhookHandler struct {
	registry *subscription.Registry
	bot      *telegram.Client // nil when the bot is disabled
	messages config.TelegramMessages
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(registry *subscription.Registry, bot *telegram.Client, messages config.TelegramMessages) *WebhookHandler {
	return &WebhookHandler{registry: registry, bot: bot, messages: messages}
}

// Handle processes one bot update. The endpoint always answers 200 to
// updates it cannot act on; Telegram keeps redelivering anything else.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	sig := subscription.Signal{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.Contact != nil {
		sig.ContactPhone = msg.Contact.PhoneNumber
	}

	outcome, err := h.registry.HandleSignal(r.Context(), sig)
	if err != nil {
		log.Printf("webhook: subscription signal from chat %d failed: %v", sig.ChatID, err)
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	h.reply(r, sig.ChatID, outcome)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// reply sends the protocol answer for an outcome, if any.
func (h *WebhookHandler) reply(r *http.Request, chatID int64, outcome subscription.SignalOutcome) {
	if h.bot == nil {
		return
	}

	var text string
	var markup *telegram.ReplyMarkup
	switch outcome {
	case subscription.OutcomeAwaitingContact:
		text = h.messages.StartPrompt
		markup = telegram.ContactRequestKeyboard(h.messages.ShareContactButton)
	case subscription.OutcomeSubscribed:
		text = h.messages.Subscribed
		markup = telegram.RemoveKeyboard()
	case subscription.OutcomeDenied:
		text = h.messages.Denied
		markup = telegram.RemoveKeyboard()
	case subscription.OutcomeInvalidPhone:
		text = h.messages.PhoneUnreadable
	default:
		return
	}

	if err := h.bot.SendMessage(r.Context(), chatID, text, markup); err != nil {
		log.Printf("webhook: reply to chat %d failed: %v", chatID, err)
	}
}
