package enums

// Role is the admin console role carried in access tokens.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)
