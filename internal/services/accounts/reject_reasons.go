package accounts

import (
	"sort"

	"github.com/harborexpo/backend/internal/domain/enums"
)

type RejectReasonItem struct {
	ReasonCode      string
	Label           string
	ReasonText      string
	RequiredFixStep string
}

type rejectReasonTemplate struct {
	Label           string
	ReasonText      string
	RequiredFixStep string
}

var rejectReasonTemplates = map[enums.RejectionReason]rejectReasonTemplate{
	enums.RejectionReasonInvalidEmail: {
		Label:           "Invalid email address",
		ReasonText:      "The email address on the registration could not be verified.",
		RequiredFixStep: "Register again with a working email address you have access to.",
	},
	enums.RejectionReasonIncompleteProfile: {
		Label:           "Incomplete profile",
		ReasonText:      "The registration profile is missing required information.",
		RequiredFixStep: "Fill in the remaining required profile fields and resubmit.",
	},
	enums.RejectionReasonMissingDocument: {
		Label:           "Missing document",
		ReasonText:      "One or more required supporting documents were not attached.",
		RequiredFixStep: "Upload the required documents and resubmit your registration.",
	},
}

// ListRejectReasons returns the fixed reason set the reject dialog offers,
// sorted by code so the order is stable across calls.
func (s *Service) ListRejectReasons() []RejectReasonItem {
	codes := make([]string, 0, len(rejectReasonTemplates))
	for code := range rejectReasonTemplates {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	items := make([]RejectReasonItem, 0, len(codes))
	for _, code := range codes {
		template := rejectReasonTemplates[enums.RejectionReason(code)]
		items = append(items, RejectReasonItem{
			ReasonCode:      code,
			Label:           template.Label,
			ReasonText:      template.ReasonText,
			RequiredFixStep: template.RequiredFixStep,
		})
	}

	return items
}
