package model

import (
	"time"

	"github.com/harborexpo/backend/internal/domain/enums"
)

// ReportedUser is a denormalized snapshot of the registrant a report targets.
// The moderation queue only reads it for display; the registrant record itself
// stays owned by the approval workflow.
type ReportedUser struct {
	ID         string `json:"id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

type Report struct {
	ID               string                  `json:"id"`
	ReportedUser     ReportedUser            `json:"reported_user"`
	Reason           string                  `json:"reason"`
	Description      string                  `json:"description,omitempty"`
	SubmittedAt      time.Time               `json:"submitted_at"`
	Status           enums.ReportStatus      `json:"status"`
	ResolutionAction *enums.ResolutionAction `json:"resolution_action,omitempty"`
	ResolvedAt       *time.Time              `json:"resolved_at,omitempty"`
}
