package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/salary"
)

// SalaryHandler handles the admin salary rule and report endpoints.
type SalaryHandler struct {
	rules database.SalaryRuleStore
	calc  *salary.Calculator
}

// NewSalaryHandler creates a new salary handler.
func NewSalaryHandler(rules database.SalaryRuleStore, calc *salary.Calculator) *SalaryHandler {
	return &SalaryHandler{rules: rules, calc: calc}
}

type salaryRuleResponse struct {
	ID        int64   `json:"id"`
	Site      string  `json:"site"`
	Role      string  `json:"role"`
	DailyRate float64 `json:"daily_rate"`
}

// ListRules returns all active salary rules.
func (h *SalaryHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListActive(r.Context())
	if err != nil {
		log.Printf("failed to list salary rules: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list salary rules")
		return
	}

	out := make([]salaryRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, salaryRuleResponse{ID: rule.ID, Site: rule.Site, Role: rule.Role, DailyRate: rule.DailyRate})
	}
	respondJSON(w, http.StatusOK, map[string]any{"rules": out})
}

type upsertRuleRequest struct {
	Site      string  `json:"site"`
	Role      string  `json:"role"`
	DailyRate float64 `json:"daily_rate"`
}

// UpsertRule creates or updates the rule for a (site, role) pair.
func (h *SalaryHandler) UpsertRule(w http.ResponseWriter, r *http.Request) {
	var req upsertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Site == "" || req.Role == "" || req.DailyRate <= 0 {
		respondError(w, http.StatusBadRequest, "site, role and a positive daily_rate are required")
		return
	}

	if err := h.rules.Upsert(r.Context(), req.Site, req.Role, req.DailyRate); err != nil {
		log.Printf("failed to upsert salary rule: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save salary rule")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// DeactivateRule soft-deletes a salary rule.
func (h *SalaryHandler) DeactivateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	err := h.rules.Deactivate(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		log.Printf("failed to deactivate salary rule %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to deactivate rule")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// reportPeriod parses ?month= (YYYY-MM) or ?from=/?to= (YYYY-MM-DD);
// defaults to the current calendar month.
func reportPeriod(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if s := r.URL.Query().Get("month"); s != "" {
		parsed, err := time.Parse("2006-01", s)
		if err != nil {
			return from, to, fmt.Errorf("invalid month %q", s)
		}
		from = parsed
		return from, from.AddDate(0, 1, 0).Add(-time.Second), nil
	}
	if s := r.URL.Query().Get("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", s)
		}
		from = parsed
	}
	if s := r.URL.Query().Get("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", s)
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("to date is before from date")
	}
	return from, to, nil
}

// Report streams the salary spreadsheet for the requested period.
func (h *SalaryHandler) Report(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportPeriod(r, time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.calc.Compute(r.Context(), from, to)
	if err != nil {
		log.Printf("failed to compute salary summary: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute salary report")
		return
	}

	filename := fmt.Sprintf("salary-%s.xlsx", from.Format("2006-01"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := summary.WriteXLSX(w); err != nil {
		// Headers are already out, all we can do is log.
		log.Printf("failed to write salary report: %v", err)
	}
}
