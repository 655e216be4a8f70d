package dto

import (
	"time"

	"github.com/harborexpo/backend/internal/domain/model"
)

type Registrant struct {
	ID                       string     `json:"id"`
	GivenName                string     `json:"given_name"`
	FamilyName               string     `json:"family_name"`
	Email                    string     `json:"email"`
	Organization             string     `json:"organization,omitempty"`
	Phone                    string     `json:"phone,omitempty"`
	AccountType              string     `json:"account_type"`
	ApprovalStatus           string     `json:"approval_status"`
	ProfileCompletionPercent int        `json:"profile_completion_percent"`
	RegisteredAt             time.Time  `json:"registered_at"`
	ValidatedAt              *time.Time `json:"validated_at,omitempty"`
	RemindedAt               *time.Time `json:"reminded_at,omitempty"`
	RejectionReason          *string    `json:"rejection_reason,omitempty"`
	RejectionComment         *string    `json:"rejection_comment,omitempty"`
}

type RegistrantListResponse struct {
	Records    []Registrant `json:"records"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
}

type RegistrantDetailResponse struct {
	Registrant
	DocumentURLs []string `json:"document_urls,omitempty"`
}

type RegistrantResponse struct {
	Registrant Registrant `json:"registrant"`
}

type RejectRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
}

type RejectReason struct {
	ReasonCode      string `json:"reason_code"`
	Label           string `json:"label"`
	ReasonText      string `json:"reason_text"`
	RequiredFixStep string `json:"required_fix_step"`
}

type RejectReasonsResponse struct {
	Reasons []RejectReason `json:"reasons"`
}

type ExportResponse struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func RegistrantFromModel(registrant model.Registrant) Registrant {
	out := Registrant{
		ID:                       registrant.ID,
		GivenName:                registrant.GivenName,
		FamilyName:               registrant.FamilyName,
		Email:                    registrant.Email,
		Organization:             registrant.Organization,
		Phone:                    registrant.Phone,
		AccountType:              string(registrant.AccountType),
		ApprovalStatus:           string(registrant.ApprovalStatus),
		ProfileCompletionPercent: registrant.ProfileCompletionPercent,
		RegisteredAt:             registrant.RegisteredAt,
		ValidatedAt:              registrant.ValidatedAt,
		RemindedAt:               registrant.RemindedAt,
		RejectionComment:         registrant.RejectionComment,
	}
	if registrant.RejectionReason != nil {
		reason := string(*registrant.RejectionReason)
		out.RejectionReason = &reason
	}
	return out
}

func RegistrantsFromModels(records []model.Registrant) []Registrant {
	out := make([]Registrant, 0, len(records))
	for _, record := range records {
		out = append(out, RegistrantFromModel(record))
	}
	return out
}
