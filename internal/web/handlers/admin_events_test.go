package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/database/mock"
)

func seedEvents(t *testing.T, events *mock.MockEventStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		workerID := int64(1)
		_, err := events.Append(context.Background(), &database.AttendanceEvent{
			WorkerID: &workerID,
			Name:     "Ali", Surname: "Valiyev", Role: "welder", Site: "north-yard",
			Kind: database.KindEntry, Outcome: database.OutcomeOK,
			CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}
}

func TestEventsList(t *testing.T) {
	events := mock.NewMockEventStore()
	seedEvents(t, events, 3)
	handler := NewEventsHandler(events, testUploads(t))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events?limit=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Events []eventResponse `json:"events"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].ID <= resp.Events[1].ID {
		t.Error("events should be newest first")
	}
}

func TestEventsDelete(t *testing.T) {
	events := mock.NewMockEventStore()
	seedEvents(t, events, 1)
	handler := NewEventsHandler(events, testUploads(t))

	req := requestWithChiParams(
		httptest.NewRequest(http.MethodDelete, "/api/admin/events/1", nil),
		map[string]string{"id": "1"},
	)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(events.Events()) != 0 {
		t.Error("event should be deleted")
	}
}

func TestEventsDelete_NotFound(t *testing.T) {
	handler := NewEventsHandler(mock.NewMockEventStore(), testUploads(t))

	req := requestWithChiParams(
		httptest.NewRequest(http.MethodDelete, "/api/admin/events/99", nil),
		map[string]string{"id": "99"},
	)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestEventsList_StoreError(t *testing.T) {
	events := mock.NewMockEventStore()
	events.QueryError = errTest
	handler := NewEventsHandler(events, testUploads(t))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
