package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	accountssvc "github.com/harborexpo/backend/internal/services/accounts"
	"github.com/harborexpo/backend/internal/transport/http/dto"
	httperrors "github.com/harborexpo/backend/internal/transport/http/errors"
)

type AdminUsersHandler struct {
	accounts *accountssvc.Service
}

func NewAdminUsersHandler(accounts *accountssvc.Service) *AdminUsersHandler {
	return &AdminUsersHandler{accounts: accounts}
}

// ListPending serves the validation queue: pending registrants only.
func (h *AdminUsersHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	page, perPage := pageParams(r)
	result, err := h.accounts.ListPending(r.Context(), page, perPage)
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, registrantListResponse(result))
}

func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	page, perPage := pageParams(r)
	result, err := h.accounts.List(r.Context(), accountssvc.ListQuery{
		Page:        page,
		PerPage:     perPage,
		AccountType: r.URL.Query().Get("type"),
		Status:      r.URL.Query().Get("status"),
		Search:      r.URL.Query().Get("search"),
	})
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, registrantListResponse(result))
}

func (h *AdminUsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	detail, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RegistrantDetailResponse{
		Registrant:   dto.RegistrantFromModel(detail.Registrant),
		DocumentURLs: append([]string(nil), detail.DocumentURLs...),
	})
}

func (h *AdminUsersHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountsValidate)
}

func (h *AdminUsersHandler) Remind(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountsRemind)
}

func (h *AdminUsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountsDeactivate)
}

func (h *AdminUsersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	var req dto.RejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	updated, err := h.accounts.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason, req.Comment)
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RegistrantResponse{Registrant: dto.RegistrantFromModel(updated)})
}

func (h *AdminUsersHandler) RejectReasons(w http.ResponseWriter, _ *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	items := h.accounts.ListRejectReasons()
	reasons := make([]dto.RejectReason, 0, len(items))
	for _, item := range items {
		reasons = append(reasons, dto.RejectReason{
			ReasonCode:      item.ReasonCode,
			Label:           item.Label,
			ReasonText:      item.ReasonText,
			RequiredFixStep: item.RequiredFixStep,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RejectReasonsResponse{Reasons: reasons})
}

// Export returns the filtered registrant list as a CSV payload the console
// saves client-side.
func (h *AdminUsersHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	result, err := h.accounts.Export(r.Context(), r.URL.Query().Get("type"), r.URL.Query().Get("status"))
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ExportResponse{
		Filename: result.Filename,
		Content:  string(result.Content),
	})
}

func (h *AdminUsersHandler) transition(w http.ResponseWriter, r *http.Request, apply func(r *http.Request, id string) (dto.Registrant, error)) {
	if h.accounts == nil {
		writeInternal(w, "ACCOUNTS_SERVICE_UNAVAILABLE", "accounts service is unavailable")
		return
	}

	updated, err := apply(r, chi.URLParam(r, "id"))
	if err != nil {
		handleAccountsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RegistrantResponse{Registrant: updated})
}

func (h *AdminUsersHandler) accountsValidate(r *http.Request, id string) (dto.Registrant, error) {
	updated, err := h.accounts.Validate(r.Context(), id)
	return dto.RegistrantFromModel(updated), err
}

func (h *AdminUsersHandler) accountsRemind(r *http.Request, id string) (dto.Registrant, error) {
	updated, err := h.accounts.Remind(r.Context(), id)
	return dto.RegistrantFromModel(updated), err
}

func (h *AdminUsersHandler) accountsDeactivate(r *http.Request, id string) (dto.Registrant, error) {
	updated, err := h.accounts.Deactivate(r.Context(), id)
	return dto.RegistrantFromModel(updated), err
}

func registrantListResponse(page accountssvc.Page) dto.RegistrantListResponse {
	return dto.RegistrantListResponse{
		Records:    dto.RegistrantsFromModels(page.Records),
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PerPage:    page.PerPage,
	}
}

func handleAccountsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accountssvc.ErrInvalidReasonCode):
		writeBadRequest(w, "VALIDATION_ERROR", "unknown rejection reason code")
	case errors.Is(err, accountssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, accountssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "registrant not found")
	case errors.Is(err, accountssvc.ErrInvalidState):
		writeConflict(w, "INVALID_STATE", "registrant status does not allow this action")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func pageParams(r *http.Request) (int, int) {
	page := queryInt(r, "page")
	perPage := queryInt(r, "per_page")
	return page, perPage
}

func queryInt(r *http.Request, name string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
