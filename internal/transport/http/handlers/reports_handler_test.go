package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/domain/model"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
	moderationsvc "github.com/harborexpo/backend/internal/services/moderation"
	"github.com/harborexpo/backend/internal/transport/http/dto"
)

type memReportStore struct {
	records map[string]*model.Report
}

func newMemReportStore(records ...model.Report) *memReportStore {
	store := &memReportStore{records: make(map[string]*model.Report, len(records))}
	for i := range records {
		record := records[i]
		store.records[record.ID] = &record
	}
	return store
}

func (m *memReportStore) GetByID(_ context.Context, id string) (model.Report, error) {
	record, ok := m.records[id]
	if !ok {
		return model.Report{}, pgrepo.ErrReportNotFound
	}
	return *record, nil
}

func (m *memReportStore) List(_ context.Context, _, _ int) ([]model.Report, int, error) {
	out := make([]model.Report, 0, len(m.records))
	for _, record := range m.records {
		out = append(out, *record)
	}
	return out, len(out), nil
}

func (m *memReportStore) MarkResolved(_ context.Context, id string, action enums.ResolutionAction) error {
	record, ok := m.records[id]
	if !ok {
		return pgrepo.ErrReportNotFound
	}
	if record.Status != enums.ReportStatusOpen {
		return pgrepo.ErrReportResolved
	}
	record.Status = enums.ReportStatusResolved
	record.ResolutionAction = &action
	now := time.Now().UTC()
	record.ResolvedAt = &now
	return nil
}

func (m *memReportStore) CountOpen(_ context.Context) (int, error) {
	count := 0
	for _, record := range m.records {
		if record.Status == enums.ReportStatusOpen {
			count++
		}
	}
	return count, nil
}

func newReportsRouter(store *memReportStore) http.Handler {
	handler := NewReportsHandler(moderationsvc.NewService(store, nil, 20, 100))

	r := chi.NewRouter()
	r.Get("/admin/reports", handler.List)
	r.Get("/admin/reports/{id}", handler.Get)
	r.Post("/admin/reports/{id}/resolve", handler.Resolve)
	return r
}

func openReport(id string) model.Report {
	return model.Report{
		ID: id,
		ReportedUser: model.ReportedUser{
			ID:    "u-" + id,
			Email: id + "@harborexpo.test",
		},
		Reason:      "spam",
		Status:      enums.ReportStatusOpen,
		SubmittedAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestResolveReportHappyPath(t *testing.T) {
	router := newReportsRouter(newMemReportStore(openReport("rp1")))

	body := strings.NewReader(`{"action":"dismissed"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/reports/rp1/resolve", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var response dto.ReportResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Report.Status != "resolved" {
		t.Fatalf("unexpected status in response: %s", response.Report.Status)
	}
	if response.Report.ResolutionAction == nil || *response.Report.ResolutionAction != "dismissed" {
		t.Fatalf("resolution action missing in response: %+v", response.Report.ResolutionAction)
	}
}

func TestResolveReportRejectsUnknownAction(t *testing.T) {
	router := newReportsRouter(newMemReportStore(openReport("rp1")))

	body := strings.NewReader(`{"action":"nuke"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/reports/rp1/resolve", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

func TestResolveReportTwiceConflicts(t *testing.T) {
	router := newReportsRouter(newMemReportStore(openReport("rp1")))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/admin/reports/rp1/resolve", strings.NewReader(`{"action":"content_removed"}`)))
	if first.Code != http.StatusOK {
		t.Fatalf("first resolve failed: status=%d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/admin/reports/rp1/resolve", strings.NewReader(`{"action":"dismissed"}`)))
	if second.Code != http.StatusConflict {
		t.Fatalf("repeat resolve should conflict: status=%d body=%s", second.Code, second.Body.String())
	}
}

func TestListReportsReturnsRecords(t *testing.T) {
	router := newReportsRouter(newMemReportStore(openReport("rp1"), openReport("rp2")))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/reports", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var response dto.ReportListResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Records) != 2 || response.Total != 2 || response.TotalPages != 1 {
		t.Fatalf("unexpected list payload: records=%d total=%d total_pages=%d", len(response.Records), response.Total, response.TotalPages)
	}
}
