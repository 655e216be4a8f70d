package enums

type AccountType string

const (
	AccountTypeExhibitor AccountType = "exhibitor"
	AccountTypePartner   AccountType = "partner"
	AccountTypeVisitor   AccountType = "visitor"
	AccountTypeAdmin     AccountType = "admin"
)

func ParseAccountType(value string) (AccountType, bool) {
	switch AccountType(value) {
	case AccountTypeExhibitor, AccountTypePartner, AccountTypeVisitor, AccountTypeAdmin:
		return AccountType(value), true
	}
	return "", false
}
