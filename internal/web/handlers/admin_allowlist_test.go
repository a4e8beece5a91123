package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elchinm/attendance-gate/internal/database/mock"
	"github.com/elchinm/attendance-gate/internal/subscription"
)

func newAllowListHandler(allowList *mock.MockAllowListStore) *AllowListHandler {
	registry := subscription.NewRegistry(allowList, mock.NewMockSubscriptionStore())
	return NewAllowListHandler(registry, allowList)
}

func TestAllowListAdd_Normalizes(t *testing.T) {
	allowList := mock.NewMockAllowListStore()
	handler := newAllowListHandler(allowList)

	req := newJSONRequest(t, http.MethodPost, "/api/admin/allowlist",
		map[string]string{"phone": "00 994 (50) 123-45-67"})
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Phone string `json:"phone"`
	}
	decodeBody(t, rec, &resp)
	if resp.Phone != "+994501234567" {
		t.Errorf("expected normalized phone, got %q", resp.Phone)
	}
}

func TestAllowListAdd_Unusable(t *testing.T) {
	handler := newAllowListHandler(mock.NewMockAllowListStore())

	req := newJSONRequest(t, http.MethodPost, "/api/admin/allowlist", map[string]string{"phone": "abc"})
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAllowListAdd_Duplicate(t *testing.T) {
	allowList := mock.NewMockAllowListStore()
	allowList.AddPhone("+994501234567")
	handler := newAllowListHandler(allowList)

	req := newJSONRequest(t, http.MethodPost, "/api/admin/allowlist",
		map[string]string{"phone": "+994501234567"})
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestAllowListList(t *testing.T) {
	allowList := mock.NewMockAllowListStore()
	allowList.AddPhone("+994501234567")
	allowList.AddPhone("+994507654321")
	handler := newAllowListHandler(allowList)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/allowlist", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Phones []allowedPhoneResponse `json:"phones"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Phones) != 2 {
		t.Errorf("expected 2 phones, got %d", len(resp.Phones))
	}
}

func TestAllowListRemove_NotFound(t *testing.T) {
	handler := newAllowListHandler(mock.NewMockAllowListStore())

	req := requestWithChiParams(
		httptest.NewRequest(http.MethodDelete, "/api/admin/allowlist/7", nil),
		map[string]string{"id": "7"},
	)
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
