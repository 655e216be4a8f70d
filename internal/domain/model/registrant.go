package model

import (
	"time"

	"github.com/harborexpo/backend/internal/domain/enums"
)

// Registrant is an account created by the public registration flow and owned
// by the admin approval workflow from that point on. Records are never deleted
// here; they only move through the approval state machine.
type Registrant struct {
	ID                       string                 `json:"id"`
	GivenName                string                 `json:"given_name"`
	FamilyName               string                 `json:"family_name"`
	Email                    string                 `json:"email"`
	Organization             string                 `json:"organization,omitempty"`
	Phone                    string                 `json:"phone,omitempty"`
	AccountType              enums.AccountType      `json:"account_type"`
	ApprovalStatus           enums.ApprovalStatus   `json:"approval_status"`
	ProfileCompletionPercent int                    `json:"profile_completion_percent"`
	RegisteredAt             time.Time              `json:"registered_at"`
	ValidatedAt              *time.Time             `json:"validated_at,omitempty"`
	RemindedAt               *time.Time             `json:"reminded_at,omitempty"`
	RejectionReason          *enums.RejectionReason `json:"rejection_reason,omitempty"`
	RejectionComment         *string                `json:"rejection_comment,omitempty"`
	AttachedDocuments        []string               `json:"attached_documents,omitempty"`
}

func (r Registrant) FullName() string {
	if r.GivenName == "" {
		return r.FamilyName
	}
	if r.FamilyName == "" {
		return r.GivenName
	}
	return r.GivenName + " " + r.FamilyName
}
