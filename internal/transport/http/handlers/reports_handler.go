package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	moderationsvc "github.com/harborexpo/backend/internal/services/moderation"
	"github.com/harborexpo/backend/internal/transport/http/dto"
	httperrors "github.com/harborexpo/backend/internal/transport/http/errors"
)

type ReportsHandler struct {
	moderation *moderationsvc.Service
}

func NewReportsHandler(moderation *moderationsvc.Service) *ReportsHandler {
	return &ReportsHandler{moderation: moderation}
}

func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	page, perPage := pageParams(r)
	result, err := h.moderation.List(r.Context(), page, perPage)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReportListResponse{
		Records:    dto.ReportsFromModels(result.Records),
		Total:      result.Total,
		TotalPages: result.TotalPages,
		Page:       result.Page,
		PerPage:    result.PerPage,
	})
}

func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	report, err := h.moderation.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReportResponse{Report: dto.ReportFromModel(report)})
}

func (h *ReportsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h.moderation == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ReportActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	resolved, err := h.moderation.Resolve(r.Context(), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReportResponse{Report: dto.ReportFromModel(resolved)})
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, moderationsvc.ErrInvalidAction):
		writeBadRequest(w, "VALIDATION_ERROR", "unknown resolution action")
	case errors.Is(err, moderationsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, moderationsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "report not found")
	case errors.Is(err, moderationsvc.ErrAlreadyResolved):
		writeConflict(w, "INVALID_STATE", "report is already resolved")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
