package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elchinm/attendance-gate/internal/database"
)

// ErrUnusablePhone marks a phone number that is empty after normalization.
var ErrUnusablePhone = errors.New("phone number is not usable")

// SignalOutcome is the registry's verdict on one incoming chat signal.
type SignalOutcome string

const (
	// OutcomeAwaitingContact: the chat sent a start signal; the caller
	// should prompt for contact info. Transient, nothing is persisted.
	OutcomeAwaitingContact SignalOutcome = "AWAITING_CONTACT"
	// OutcomeSubscribed: the shared phone is allow-listed; the chat is now
	// an active subscriber.
	OutcomeSubscribed SignalOutcome = "SUBSCRIBED"
	// OutcomeDenied: the shared phone is not allow-listed; the chat is
	// recorded as an inactive subscription.
	OutcomeDenied SignalOutcome = "DENIED"
	// OutcomeInvalidPhone: the shared contact carried no usable number.
	OutcomeInvalidPhone SignalOutcome = "INVALID_PHONE"
	// OutcomeIgnored: the signal is not part of the opt-in protocol.
	OutcomeIgnored SignalOutcome = "IGNORED"
)

// Signal is one transport-agnostic chat event: either a text message or a
// shared contact.
type Signal struct {
	ChatID       int64
	Text         string
	ContactPhone string // set when the chat shared a contact
}

// Registry decides subscription membership against the phone allow-list.
type Registry struct {
	allowList     database.AllowListStore
	subscriptions database.SubscriptionStore
}

// NewRegistry creates a subscription registry.
func NewRegistry(allowList database.AllowListStore, subscriptions database.SubscriptionStore) *Registry {
	return &Registry{allowList: allowList, subscriptions: subscriptions}
}

// HandleSignal runs the opt-in protocol for one chat signal. A start signal
// asks the caller to collect contact info; a shared contact is normalized,
// checked against the allow-list and upserted as an active or inactive
// subscription. A chat has at most one subscription row; re-subscribing
// overwrites phone and active flag.
func (r *Registry) HandleSignal(ctx context.Context, sig Signal) (SignalOutcome, error) {
	if sig.ContactPhone != "" {
		return r.handleContact(ctx, sig.ChatID, sig.ContactPhone)
	}
	if strings.TrimSpace(sig.Text) == "/start" {
		return OutcomeAwaitingContact, nil
	}
	return OutcomeIgnored, nil
}

func (r *Registry) handleContact(ctx context.Context, chatID int64, rawPhone string) (SignalOutcome, error) {
	phone := NormalizePhone(rawPhone)
	if phone == "" {
		return OutcomeInvalidPhone, nil
	}

	allowed, err := r.allowList.IsAllowed(ctx, phone)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("checking allow-list: %w", err)
	}

	if !allowed {
		if err := r.subscriptions.Upsert(ctx, chatID, phone, false); err != nil {
			return OutcomeIgnored, fmt.Errorf("recording denied subscription: %w", err)
		}
		return OutcomeDenied, nil
	}

	if err := r.subscriptions.Upsert(ctx, chatID, phone, true); err != nil {
		return OutcomeIgnored, fmt.Errorf("activating subscription: %w", err)
	}
	return OutcomeSubscribed, nil
}

// RegisterAllowedPhone normalizes and inserts a phone into the allow-list.
// Returns database.ErrDuplicate if the number is already allowed.
func (r *Registry) RegisterAllowedPhone(ctx context.Context, rawPhone string) (int64, string, error) {
	phone := NormalizePhone(rawPhone)
	if phone == "" {
		return 0, "", ErrUnusablePhone
	}
	id, err := r.allowList.Add(ctx, phone)
	if err != nil {
		return 0, "", err
	}
	return id, phone, nil
}
