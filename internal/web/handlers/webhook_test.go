package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database/mock"
	"github.com/elchinm/attendance-gate/internal/subscription"
)

func webhookMessages() config.TelegramMessages {
	return config.TelegramMessages{
		StartPrompt:        "Share your phone number to subscribe.",
		ShareContactButton: "Share contact",
		PhoneUnreadable:    "Could not read the phone number.",
		Denied:             "This number is not authorized.",
		Subscribed:         "You are subscribed.",
	}
}

func newWebhookHandler(allowList *mock.MockAllowListStore, subs *mock.MockSubscriptionStore) *WebhookHandler {
	registry := subscription.NewRegistry(allowList, subs)
	// bot nil: replies are skipped, the protocol outcome is still recorded.
	return NewWebhookHandler(registry, nil, webhookMessages())
}

func TestWebhook_StartMessage(t *testing.T) {
	handler := newWebhookHandler(mock.NewMockAllowListStore(), mock.NewMockSubscriptionStore())

	body := `{"update_id":1,"message":{"message_id":10,"chat":{"id":100},"text":"/start"}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestWebhook_ContactSubscribes(t *testing.T) {
	allowList := mock.NewMockAllowListStore()
	allowList.AddPhone("+994501234567")
	subs := mock.NewMockSubscriptionStore()
	handler := newWebhookHandler(allowList, subs)

	body := `{"update_id":2,"message":{"message_id":11,"chat":{"id":100},"contact":{"phone_number":"0994501234567"}}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sub := subs.Subscription(100)
	if sub == nil || !sub.Active {
		t.Errorf("expected active subscription for chat 100, got %+v", sub)
	}
}

func TestWebhook_ContactDenied(t *testing.T) {
	subs := mock.NewMockSubscriptionStore()
	handler := newWebhookHandler(mock.NewMockAllowListStore(), subs)

	body := `{"update_id":3,"message":{"message_id":12,"chat":{"id":200},"contact":{"phone_number":"+15550000000"}}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sub := subs.Subscription(200)
	if sub == nil || sub.Active {
		t.Errorf("denied contact should leave an inactive subscription, got %+v", sub)
	}
}

func TestWebhook_EmptyUpdate(t *testing.T) {
	handler := newWebhookHandler(mock.NewMockAllowListStore(), mock.NewMockSubscriptionStore())

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{"update_id":4}`))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("update without a message must still answer 200, got %d", rec.Code)
	}
}

func TestWebhook_InvalidBody(t *testing.T) {
	handler := newWebhookHandler(mock.NewMockAllowListStore(), mock.NewMockSubscriptionStore())

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestWebhook_StoreFailureStillAnswers200(t *testing.T) {
	allowList := mock.NewMockAllowListStore()
	allowList.LookupError = errTest
	handler := newWebhookHandler(allowList, mock.NewMockSubscriptionStore())

	body := `{"update_id":5,"message":{"message_id":13,"chat":{"id":300},"contact":{"phone_number":"+994501234567"}}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("internal failures must not trigger Telegram redelivery, got %d", rec.Code)
	}
}
