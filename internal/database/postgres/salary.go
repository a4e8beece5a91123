package postgres

import (
	"context"
	"fmt"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/facematch"
)

// SalaryRuleRepository provides PostgreSQL-backed salary rule storage.
type SalaryRuleRepository struct {
	pool *Pool
}

// NewSalaryRuleRepository creates a new PostgreSQL salary rule repository.
func NewSalaryRuleRepository(pool *Pool) *SalaryRuleRepository {
	return &SalaryRuleRepository{pool: pool}
}

// Upsert creates or updates the rule keyed by normalized (site, role) and
// reactivates it.
func (r *SalaryRuleRepository) Upsert(ctx context.Context, site, role string, dailyRate float64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO salary_rules (site, role, daily_rate, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (site, role) DO UPDATE SET daily_rate = EXCLUDED.daily_rate, active = TRUE
	`, facematch.NormalizeIdentity(site), facematch.NormalizeIdentity(role), dailyRate)
	if err != nil {
		return fmt.Errorf("upsert salary rule: %w", err)
	}
	return nil
}

// ListActive returns all active rules ordered by site, role.
func (r *SalaryRuleRepository) ListActive(ctx context.Context) ([]database.SalaryRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, site, role, daily_rate, active
		FROM salary_rules
		WHERE active
		ORDER BY site, role
	`)
	if err != nil {
		return nil, fmt.Errorf("query salary rules: %w", err)
	}
	defer rows.Close()

	var rules []database.SalaryRule
	for rows.Next() {
		var rule database.SalaryRule
		if err := rows.Scan(&rule.ID, &rule.Site, &rule.Role, &rule.DailyRate, &rule.Active); err != nil {
			return nil, fmt.Errorf("scan salary rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate salary rules: %w", err)
	}
	return rules, nil
}

// Deactivate soft-deletes a rule by ID.
func (r *SalaryRuleRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE salary_rules SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate salary rule: %w", err)
	}
	return requireRow(result)
}

var _ database.SalaryRuleStore = (*SalaryRuleRepository)(nil)
