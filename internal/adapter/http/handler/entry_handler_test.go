package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

type entryServiceStub struct {
	createFn func(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error)
	listFn   func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	updateFn func(ctx context.Context, userID, id string, fields domain.EntryFields) (*domain.Entry, error)
	deleteFn func(ctx context.Context, userID, id string) error
	importFn func(ctx context.Context, userID string, items []usecase.ImportItem) *usecase.ImportResult
}

func (s *entryServiceStub) CreateEntry(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error) {
	return s.createFn(ctx, userID, fields)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
	return s.listFn(ctx, input)
}

func (s *entryServiceStub) UpdateEntry(ctx context.Context, userID, id string, fields domain.EntryFields) (*domain.Entry, error) {
	return s.updateFn(ctx, userID, id, fields)
}

func (s *entryServiceStub) DeleteEntry(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *entryServiceStub) ImportEntries(ctx context.Context, userID string, items []usecase.ImportItem) *usecase.ImportResult {
	return s.importFn(ctx, userID, items)
}

func sampleEntry(id string) *domain.Entry {
	return &domain.Entry{
		ID:       id,
		LedgerID: "123456",
		UserID:   "u1",
		Type:     domain.EntryTypeIncome,
		Amount:   decimal.NewFromInt(3000),
		Title:    "salary",
		Date:     time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC),
	}
}

func TestEntryHandler_List(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
			if input != (usecase.ListEntriesInput{LedgerID: "123456", Period: "2024-05", Limit: 5, Offset: 10}) {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []*domain.Entry{sampleEntry("e1"), sampleEntry("e2")}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries?ledgerId=123456&period=2024-05&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp []dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected %d items, got %d", 2, len(resp))
	}
	if resp[0].Date != "2024-05-25" {
		t.Fatalf("expected %q, got %q", "2024-05-25", resp[0].Date)
	}
}

func TestEntryHandler_List_InvalidPeriod(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
			return nil, domain.NewValidationError("period must be in YYYY-MM format")
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/entries?ledgerId=123456&period=May", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if decodeError(t, rec) != "period must be in YYYY-MM format" {
		t.Fatalf("expected %q, got %q", "period must be in YYYY-MM format", decodeError(t, rec))
	}
}

func TestEntryHandler_Categories(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{})

	rec := httptest.NewRecorder()
	h.Categories(rec, httptest.NewRequest(http.MethodGet, "/entries/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp dto.EntryCategoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(resp.Savings, domain.SavingsCategories) {
		t.Fatalf("expected %v, got %v", domain.SavingsCategories, resp.Savings)
	}
	if !slices.Contains(resp.Expense, "food") {
		t.Fatalf("expected %v to contain %q", resp.Expense, "food")
	}
}

func TestEntryHandler_Create(t *testing.T) {
	var captured domain.EntryFields
	h := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error) {
			if userID != "u1" {
				t.Fatalf("expected %q, got %q", "u1", userID)
			}
			captured = fields
			return sampleEntry("e1"), nil
		},
	})

	body := `{"ledgerId":"123456","type":"income","amount":3000,"title":"salary","date":"2024-05-25"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if captured.LedgerID != "123456" {
		t.Fatalf("expected %q, got %q", "123456", captured.LedgerID)
	}
	if !captured.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected %s, got %s", decimal.NewFromInt(3000), captured.Amount)
	}
	if captured.Date != "2024-05-25" {
		t.Fatalf("expected %q, got %q", "2024-05-25", captured.Date)
	}
}

func TestEntryHandler_Create_NotMember(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error) {
			return nil, domain.ErrNotFound
		},
	})

	body := `{"ledgerId":"654321","type":"income","amount":1,"title":"x","date":"2024-05-25"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestEntryHandler_Create_Unauthenticated(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{})

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestEntryHandler_Import(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		importFn: func(ctx context.Context, userID string, items []usecase.ImportItem) *usecase.ImportResult {
			if len(items) != 2 {
				t.Fatalf("expected %d items, got %d", 2, len(items))
			}
			if err := items[0].DecodeErr; err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if items[1].DecodeErr == nil {
				t.Fatalf("expected an error")
			}
			return &usecase.ImportResult{
				Created: 1,
				Failed:  1,
				Entries: []*domain.Entry{sampleEntry("e1")},
				Errors:  []string{"[1] entry must be a JSON object"},
			}
		},
	})

	body := `{"entries":[{"ledgerId":"123456","type":"income","amount":3000,"title":"salary","date":"2024-05-25"},"oops"]}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/entries/import", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.Import(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	var resp dto.ImportEntriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Created != 1 {
		t.Fatalf("expected %v, got %v", 1, resp.Created)
	}
	if resp.Failed != 1 {
		t.Fatalf("expected %v, got %v", 1, resp.Failed)
	}
	if !slices.Equal(resp.Errors, []string{"[1] entry must be a JSON object"}) {
		t.Fatalf("expected %v, got %v", []string{"[1] entry must be a JSON object"}, resp.Errors)
	}
}

func TestEntryHandler_Import_MissingEntries(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		importFn: func(ctx context.Context, userID string, items []usecase.ImportItem) *usecase.ImportResult {
			t.Fatal("ImportEntries should not be called without entries")
			return nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodPost, "/entries/import", strings.NewReader(`{}`)), "u1")
	rec := httptest.NewRecorder()
	h.Import(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestEntryHandler_Update(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		updateFn: func(ctx context.Context, userID, id string, fields domain.EntryFields) (*domain.Entry, error) {
			if id != "e1" {
				t.Fatalf("expected %q, got %q", "e1", id)
			}
			e := sampleEntry(id)
			e.Title = fields.Title
			return e, nil
		},
	})

	body := `{"ledgerId":"123456","type":"income","amount":3000,"title":"bonus","date":"2024-05-25"}`
	req := withUser(httptest.NewRequest(http.MethodPut, "/entries/e1", strings.NewReader(body)), "u1")
	req = setChiURLParam(req, "id", "e1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "bonus" {
		t.Fatalf("expected %q, got %q", "bonus", resp.Title)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, userID, id string) error {
			if id == "missing" {
				return domain.ErrNotFound
			}
			return nil
		},
	})

	req := setChiURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/entries/e1", nil), "u1"), "id", "e1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if len(rec.Body.String()) != 0 {
		t.Fatalf("expected empty rec.Body.String(), got %v", rec.Body.String())
	}

	req = setChiURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/entries/missing", nil), "u1"), "id", "missing")
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestEntryHandler_Delete_StorageError(t *testing.T) {
	h := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return errors.New("connection reset")
		},
	})

	req := setChiURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/entries/e1", nil), "u1"), "id", "e1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if decodeError(t, rec) != "internal server error" {
		t.Fatalf("expected %q, got %q", "internal server error", decodeError(t, rec))
	}
}
