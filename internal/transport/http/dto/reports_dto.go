package dto

import (
	"time"

	"github.com/harborexpo/backend/internal/domain/model"
)

type ReportedUser struct {
	ID         string `json:"id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

type Report struct {
	ID               string       `json:"id"`
	ReportedUser     ReportedUser `json:"reported_user"`
	Reason           string       `json:"reason"`
	Description      string       `json:"description,omitempty"`
	SubmittedAt      time.Time    `json:"submitted_at"`
	Status           string       `json:"status"`
	ResolutionAction *string      `json:"resolution_action,omitempty"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
}

type ReportListResponse struct {
	Records    []Report `json:"records"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
}

type ReportActionRequest struct {
	Action string `json:"action"`
}

type ReportResponse struct {
	Report Report `json:"report"`
}

func ReportFromModel(report model.Report) Report {
	out := Report{
		ID: report.ID,
		ReportedUser: ReportedUser{
			ID:         report.ReportedUser.ID,
			GivenName:  report.ReportedUser.GivenName,
			FamilyName: report.ReportedUser.FamilyName,
			Email:      report.ReportedUser.Email,
		},
		Reason:      report.Reason,
		Description: report.Description,
		SubmittedAt: report.SubmittedAt,
		Status:      string(report.Status),
		ResolvedAt:  report.ResolvedAt,
	}
	if report.ResolutionAction != nil {
		action := string(*report.ResolutionAction)
		out.ResolutionAction = &action
	}
	return out
}

func ReportsFromModels(records []model.Report) []Report {
	out := make([]Report, 0, len(records))
	for _, record := range records {
		out = append(out, ReportFromModel(record))
	}
	return out
}
