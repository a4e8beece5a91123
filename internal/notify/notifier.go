// Package notify fans one attendance notification out to every active
// subscriber chat. Deliveries are independent: one failing chat never
// affects the others, and the triggering submission never waits on or fails
// with a delivery.
package notify

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database"
)

// defaultWorkers bounds concurrent deliveries within one fan-out.
const defaultWorkers = 4

// announceTimeout bounds an entire async fan-out triggered by an event.
const announceTimeout = 30 * time.Second

// Transport delivers a single message to a single chat.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoPath, caption string) error
}

// Delivery is the per-chat result of one fan-out.
type Delivery struct {
	ChatID   int64
	Err      error // nil on success
	FellBack bool  // true when the image failed and text-only was sent
}

// FanoutResult reports what happened to every active subscriber.
type FanoutResult struct {
	Deliveries []Delivery
}

// Succeeded counts deliveries that reached the chat.
func (r *FanoutResult) Succeeded() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts deliveries that could not reach the chat at all.
func (r *FanoutResult) Failed() int {
	return len(r.Deliveries) - r.Succeeded()
}

// Notifier delivers notifications to all active subscriptions.
type Notifier struct {
	transport     Transport
	subscriptions database.SubscriptionStore
	messages      config.TelegramMessages
	workers       int
}

// New creates a notifier with the default delivery concurrency.
func New(transport Transport, subscriptions database.SubscriptionStore, messages config.TelegramMessages) *Notifier {
	return &Notifier{
		transport:     transport,
		subscriptions: subscriptions,
		messages:      messages,
		workers:       defaultWorkers,
	}
}

// Notify delivers text (and optionally an image) to every active subscriber.
// An empty subscriber set is a valid state and reports zero deliveries. The
// only error returned is a failure to list subscribers; delivery failures
// live in the result.
func (n *Notifier) Notify(ctx context.Context, text, imagePath string) (*FanoutResult, error) {
	chatIDs, err := n.subscriptions.ActiveChatIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &FanoutResult{Deliveries: make([]Delivery, len(chatIDs))}
	if len(chatIDs) == 0 {
		return result, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := n.workers
	if workers > len(chatIDs) {
		workers = len(chatIDs)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result.Deliveries[i] = n.deliver(ctx, chatIDs[i], text, imagePath)
			}
		}()
	}

	for i := range chatIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return result, nil
}

// deliver sends to one chat: image with caption first, text-only fallback
// with a note when the image cannot be attached.
func (n *Notifier) deliver(ctx context.Context, chatID int64, text, imagePath string) Delivery {
	d := Delivery{ChatID: chatID}

	if imagePath != "" {
		if err := n.transport.SendPhoto(ctx, chatID, imagePath, text); err == nil {
			return d
		}
		d.FellBack = true
		fallback := text + "\n\n" + n.messages.ImageFailedNote
		if err := n.transport.SendText(ctx, chatID, fallback); err != nil {
			d.Err = err
		}
		return d
	}

	if err := n.transport.SendText(ctx, chatID, text); err != nil {
		d.Err = err
	}
	return d
}

// AnnounceEvent renders and dispatches an attendance event notification
// asynchronously. It implements attendance.Announcer: the caller returns
// immediately, and failures are only logged.
func (n *Notifier) AnnounceEvent(event database.AttendanceEvent) {
	text := n.renderEvent(event)
	imagePath := event.ImagePath

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()

		result, err := n.Notify(ctx, text, imagePath)
		if err != nil {
			log.Printf("notification fan-out failed for event %d: %v", event.ID, err)
			return
		}
		for _, d := range result.Deliveries {
			if d.Err != nil {
				log.Printf("notification delivery to chat %d failed for event %d: %v", d.ChatID, event.ID, d.Err)
			}
		}
	}()
}

// renderEvent fills the embedded event template with event data.
func (n *Notifier) renderEvent(event database.AttendanceEvent) string {
	note := event.Note
	if note == "" {
		note = "-"
	}
	return strings.NewReplacer(
		"{{worker}}", event.Name+" "+event.Surname,
		"{{role}}", event.Role,
		"{{site}}", event.Site,
		"{{kind}}", string(event.Kind),
		"{{outcome}}", string(event.Outcome),
		"{{note}}", note,
		"{{time}}", event.CreatedAt.Format("2006-01-02 15:04:05"),
	).Replace(n.messages.EventTemplate)
}
