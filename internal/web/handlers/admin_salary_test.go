package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/database/mock"
	"github.com/elchinm/attendance-gate/internal/salary"
	"github.com/xuri/excelize/v2"
)

func newSalaryHandler(t *testing.T) (*SalaryHandler, *mock.MockWorkerStore, *mock.MockEventStore, *mock.MockSalaryRuleStore) {
	t.Helper()
	workers := mock.NewMockWorkerStore()
	events := mock.NewMockEventStore()
	rules := mock.NewMockSalaryRuleStore()
	calc := salary.NewCalculator(workers, events, rules)
	return NewSalaryHandler(rules, calc), workers, events, rules
}

func TestSalaryUpsertRule(t *testing.T) {
	handler, _, _, rules := newSalaryHandler(t)

	req := newJSONRequest(t, http.MethodPost, "/api/admin/salary/rules",
		map[string]any{"site": "north-yard", "role": "welder", "daily_rate": 45.0})
	rec := httptest.NewRecorder()

	handler.UpsertRule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	active, err := rules.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(active) != 1 || active[0].DailyRate != 45 {
		t.Errorf("unexpected rules: %+v", active)
	}
}

func TestSalaryUpsertRule_Invalid(t *testing.T) {
	handler, _, _, _ := newSalaryHandler(t)

	req := newJSONRequest(t, http.MethodPost, "/api/admin/salary/rules",
		map[string]any{"site": "north-yard", "role": "welder", "daily_rate": 0})
	rec := httptest.NewRecorder()

	handler.UpsertRule(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSalaryDeactivateRule_NotFound(t *testing.T) {
	handler, _, _, _ := newSalaryHandler(t)

	req := requestWithChiParams(
		httptest.NewRequest(http.MethodDelete, "/api/admin/salary/rules/9", nil),
		map[string]string{"id": "9"},
	)
	rec := httptest.NewRecorder()

	handler.DeactivateRule(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSalaryReport(t *testing.T) {
	handler, workers, events, _ := newSalaryHandler(t)

	id := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "welder", Active: true})
	_, err := events.Append(context.Background(), &database.AttendanceEvent{
		WorkerID: &id, Site: "north-yard",
		Kind: database.KindEntry, Outcome: database.OutcomeOK,
		CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/salary.xlsx?from=2026-03-01&to=2026-03-31", nil)
	rec := httptest.NewRecorder()

	handler.Report(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("returned workbook unreadable: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Salary", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Ali Valiyev" {
		t.Errorf("expected worker row, got %q", got)
	}
}

func TestSalaryReport_MonthParam(t *testing.T) {
	handler, workers, events, _ := newSalaryHandler(t)

	id := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "welder", Active: true})
	_, err := events.Append(context.Background(), &database.AttendanceEvent{
		WorkerID: &id, Site: "north-yard",
		Kind: database.KindEntry, Outcome: database.OutcomeOK,
		CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/salary.xlsx?month=2026-03", nil)
	rec := httptest.NewRecorder()

	handler.Report(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="salary-2026-03.xlsx"` {
		t.Errorf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("returned workbook unreadable: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Salary", "D2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "1" {
		t.Errorf("expected one day present, got %q", got)
	}
}

func TestSalaryReport_BadPeriod(t *testing.T) {
	handler, _, _, _ := newSalaryHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/salary.xlsx?from=2026-03-31&to=2026-03-01", nil)
	rec := httptest.NewRecorder()

	handler.Report(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
