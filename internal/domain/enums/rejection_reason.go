package enums

// RejectionReason codes mirror the fixed reason set offered by the admin
// console's reject dialog.
type RejectionReason string

const (
	RejectionReasonInvalidEmail      RejectionReason = "INVALID_EMAIL"
	RejectionReasonIncompleteProfile RejectionReason = "INCOMPLETE_PROFILE"
	RejectionReasonMissingDocument   RejectionReason = "MISSING_DOCUMENT"
)

func ParseRejectionReason(value string) (RejectionReason, bool) {
	switch RejectionReason(value) {
	case RejectionReasonInvalidEmail, RejectionReasonIncompleteProfile, RejectionReasonMissingDocument:
		return RejectionReason(value), true
	}
	return "", false
}
