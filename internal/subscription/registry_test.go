package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/elchinm/attendance-gate/internal/database/mock"
)

func newTestRegistry() (*Registry, *mock.MockAllowListStore, *mock.MockSubscriptionStore) {
	allowList := mock.NewMockAllowListStore()
	subs := mock.NewMockSubscriptionStore()
	return NewRegistry(allowList, subs), allowList, subs
}

func TestHandleSignal_Start(t *testing.T) {
	registry, _, subs := newTestRegistry()

	outcome, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, Text: "/start"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeAwaitingContact {
		t.Errorf("outcome = %v, want AWAITING_CONTACT", outcome)
	}
	if subs.Subscription(10) != nil {
		t.Error("start signal must not persist a subscription")
	}
}

func TestHandleSignal_AllowedContact(t *testing.T) {
	registry, allowList, subs := newTestRegistry()
	allowList.AddPhone("+99123456")

	outcome, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "0099123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeSubscribed {
		t.Errorf("outcome = %v, want SUBSCRIBED", outcome)
	}

	sub := subs.Subscription(10)
	if sub == nil {
		t.Fatal("expected subscription row")
	}
	if !sub.Active || sub.Phone != "+99123456" {
		t.Errorf("subscription = %+v, want active with normalized phone", sub)
	}
}

func TestHandleSignal_DeniedContact(t *testing.T) {
	registry, _, subs := newTestRegistry()

	outcome, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "99123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeDenied {
		t.Errorf("outcome = %v, want DENIED", outcome)
	}

	sub := subs.Subscription(10)
	if sub == nil {
		t.Fatal("denied contact must still be recorded, inactive")
	}
	if sub.Active {
		t.Error("denied subscription must be inactive")
	}
}

func TestHandleSignal_Resubscribe(t *testing.T) {
	registry, allowList, subs := newTestRegistry()

	// First attempt denied, then the number gets allow-listed.
	if _, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "99123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	allowList.AddPhone("+99123456")
	if _, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "99123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub := subs.Subscription(10)
	if sub == nil || !sub.Active {
		t.Error("re-subscribing must overwrite the existing row (last write wins)")
	}
}

func TestHandleSignal_InvalidPhone(t *testing.T) {
	registry, _, _ := newTestRegistry()

	outcome, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "---"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeInvalidPhone {
		t.Errorf("outcome = %v, want INVALID_PHONE", outcome)
	}
}

func TestHandleSignal_UnrelatedText(t *testing.T) {
	registry, _, _ := newTestRegistry()

	outcome, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeIgnored {
		t.Errorf("outcome = %v, want IGNORED", outcome)
	}
}

func TestHandleSignal_AllowListError(t *testing.T) {
	registry, allowList, _ := newTestRegistry()
	allowList.LookupError = errors.New("db down")

	if _, err := registry.HandleSignal(context.Background(), Signal{ChatID: 10, ContactPhone: "99123456"}); err == nil {
		t.Error("expected error when the allow-list lookup fails")
	}
}

func TestRegisterAllowedPhone(t *testing.T) {
	registry, _, _ := newTestRegistry()

	id, phone, err := registry.RegisterAllowedPhone(context.Background(), "00 99 123 456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 || phone != "+99123456" {
		t.Errorf("got (%d, %q), want assigned ID and normalized phone", id, phone)
	}

	if _, _, err := registry.RegisterAllowedPhone(context.Background(), "+99123456"); err == nil {
		t.Error("expected duplicate error")
	}
}
