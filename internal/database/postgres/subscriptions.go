package postgres

import (
	"context"
	"fmt"

	"github.com/elchinm/attendance-gate/internal/database"
)

// SubscriptionRepository provides PostgreSQL-backed subscription storage.
type SubscriptionRepository struct {
	pool *Pool
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository.
func NewSubscriptionRepository(pool *Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Upsert creates or overwrites the subscription for a chat. Last write wins
// on both the phone and the active flag.
func (r *SubscriptionRepository) Upsert(ctx context.Context, chatID int64, phone string, active bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (chat_id, phone, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO UPDATE SET phone = EXCLUDED.phone, active = EXCLUDED.active
	`, chatID, phone, active)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// ActiveChatIDs returns the chat IDs of all active subscriptions.
func (r *SubscriptionRepository) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT chat_id FROM subscriptions WHERE active ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("query active subscriptions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat ids: %w", err)
	}
	return ids, nil
}

var _ database.SubscriptionStore = (*SubscriptionRepository)(nil)
