package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/domain/model"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
	accountssvc "github.com/harborexpo/backend/internal/services/accounts"
	"github.com/harborexpo/backend/internal/transport/http/dto"
)

type memRegistrantStore struct {
	records map[string]*model.Registrant
}

func newMemRegistrantStore(records ...model.Registrant) *memRegistrantStore {
	store := &memRegistrantStore{records: make(map[string]*model.Registrant, len(records))}
	for i := range records {
		record := records[i]
		store.records[record.ID] = &record
	}
	return store
}

func (m *memRegistrantStore) GetByID(_ context.Context, id string) (model.Registrant, error) {
	record, ok := m.records[id]
	if !ok {
		return model.Registrant{}, pgrepo.ErrRegistrantNotFound
	}
	return *record, nil
}

func (m *memRegistrantStore) List(_ context.Context, filter pgrepo.RegistrantFilter, page, perPage int) ([]model.Registrant, int, error) {
	var matched []model.Registrant
	for _, record := range m.records {
		if filter.AccountType != nil && record.AccountType != *filter.AccountType {
			continue
		}
		if filter.ApprovalStatus != nil && record.ApprovalStatus != *filter.ApprovalStatus {
			continue
		}
		matched = append(matched, *record)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (page - 1) * perPage
	if start >= total {
		return []model.Registrant{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memRegistrantStore) ListAll(ctx context.Context, filter pgrepo.RegistrantFilter) ([]model.Registrant, error) {
	records, _, err := m.List(ctx, filter, 1, len(m.records)+1)
	return records, err
}

func (m *memRegistrantStore) MarkValidated(_ context.Context, id string) error {
	return m.transition(id, enums.ApprovalStatusPending, enums.ApprovalStatusValidated)
}

func (m *memRegistrantStore) MarkRejected(_ context.Context, id string, reason enums.RejectionReason, _ string) error {
	if err := m.transition(id, enums.ApprovalStatusPending, enums.ApprovalStatusRejected); err != nil {
		return err
	}
	m.records[id].RejectionReason = &reason
	return nil
}

func (m *memRegistrantStore) MarkDeactivated(_ context.Context, id string) error {
	return m.transition(id, enums.ApprovalStatusValidated, enums.ApprovalStatusDeactivated)
}

func (m *memRegistrantStore) TouchReminded(_ context.Context, id string) error {
	record, ok := m.records[id]
	if !ok {
		return pgrepo.ErrRegistrantNotFound
	}
	if record.ApprovalStatus != enums.ApprovalStatusPending {
		return fmt.Errorf("%w: current status %q", pgrepo.ErrStatusConflict, record.ApprovalStatus)
	}
	now := time.Now().UTC()
	record.RemindedAt = &now
	return nil
}

func (m *memRegistrantStore) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, record := range m.records {
		if record.ApprovalStatus == enums.ApprovalStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *memRegistrantStore) transition(id string, from, to enums.ApprovalStatus) error {
	record, ok := m.records[id]
	if !ok {
		return pgrepo.ErrRegistrantNotFound
	}
	if record.ApprovalStatus != from {
		return fmt.Errorf("%w: current status %q", pgrepo.ErrStatusConflict, record.ApprovalStatus)
	}
	record.ApprovalStatus = to
	return nil
}

func newAdminUsersRouter(store *memRegistrantStore) http.Handler {
	handler := NewAdminUsersHandler(accountssvc.NewService(store, nil, nil, 20, 100))

	r := chi.NewRouter()
	r.Get("/admin/users/pending", handler.ListPending)
	r.Get("/admin/users", handler.List)
	r.Get("/admin/users/export", handler.Export)
	r.Get("/admin/users/reject-reasons", handler.RejectReasons)
	r.Get("/admin/users/{id}", handler.Get)
	r.Post("/admin/users/{id}/validate", handler.Validate)
	r.Post("/admin/users/{id}/reject", handler.Reject)
	r.Post("/admin/users/{id}/remind", handler.Remind)
	r.Post("/admin/users/{id}/deactivate", handler.Deactivate)
	return r
}

func pendingRegistrant(id string) model.Registrant {
	return model.Registrant{
		ID:             id,
		GivenName:      "Claire",
		FamilyName:     "Dubois",
		Email:          id + "@harborexpo.test",
		AccountType:    enums.AccountTypeExhibitor,
		ApprovalStatus: enums.ApprovalStatusPending,
		RegisteredAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestListPendingReturnsRecordsAndTotalPages(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore(
		pendingRegistrant("r1"),
		pendingRegistrant("r2"),
		pendingRegistrant("r3"),
	))

	req := httptest.NewRequest(http.MethodGet, "/admin/users/pending?page=1&per_page=2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var response dto.RegistrantListResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Records) != 2 {
		t.Fatalf("unexpected record count: %d", len(response.Records))
	}
	if response.Total != 3 || response.TotalPages != 2 {
		t.Fatalf("unexpected totals: total=%d total_pages=%d", response.Total, response.TotalPages)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore())

	req := httptest.NewRequest(http.MethodGet, "/admin/users?status=waiting", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

func TestValidateConflictsOnRepeat(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore(pendingRegistrant("r1")))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/admin/users/r1/validate", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first validate failed: status=%d body=%s", first.Code, first.Body.String())
	}

	var response dto.RegistrantResponse
	if err := json.NewDecoder(first.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Registrant.ApprovalStatus != "validated" {
		t.Fatalf("unexpected status in response: %s", response.Registrant.ApprovalStatus)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/admin/users/r1/validate", nil))
	if second.Code != http.StatusConflict {
		t.Fatalf("repeat validate should conflict: status=%d body=%s", second.Code, second.Body.String())
	}
}

func TestRejectRequiresKnownReason(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore(pendingRegistrant("r1")))

	body := strings.NewReader(`{"reason":"BAD_REASON"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/users/r1/reject", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetUnknownRegistrantReturns404(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users/ghost", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusNotFound)
	}
}

func TestExportReturnsCSVPayload(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore(pendingRegistrant("r1")))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users/export?type=exhibitor", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var response dto.ExportResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasSuffix(response.Filename, ".csv") {
		t.Fatalf("unexpected filename: %s", response.Filename)
	}
	if !strings.Contains(response.Content, "r1@harborexpo.test") {
		t.Fatalf("exported csv missing registrant row: %s", response.Content)
	}
}

func TestRejectReasonsReturnsFixedSet(t *testing.T) {
	router := newAdminUsersRouter(newMemRegistrantStore())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users/reject-reasons", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var response dto.RejectReasonsResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Reasons) != 3 {
		t.Fatalf("expected the three fixed reasons, got %d", len(response.Reasons))
	}
	for _, reason := range response.Reasons {
		if reason.ReasonCode == "" || reason.Label == "" {
			t.Fatalf("incomplete reason item: %+v", reason)
		}
	}
}
