package enums

type ApprovalStatus string

const (
	ApprovalStatusPending     ApprovalStatus = "pending"
	ApprovalStatusValidated   ApprovalStatus = "validated"
	ApprovalStatusRejected    ApprovalStatus = "rejected"
	ApprovalStatusDeactivated ApprovalStatus = "deactivated"
)

func ParseApprovalStatus(value string) (ApprovalStatus, bool) {
	switch ApprovalStatus(value) {
	case ApprovalStatusPending, ApprovalStatusValidated, ApprovalStatusRejected, ApprovalStatusDeactivated:
		return ApprovalStatus(value), true
	}
	return "", false
}
