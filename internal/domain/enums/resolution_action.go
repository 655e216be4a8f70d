package enums

type ResolutionAction string

const (
	ResolutionActionContentRemoved ResolutionAction = "content_removed"
	ResolutionActionUserWarned     ResolutionAction = "user_warned"
	ResolutionActionDismissed      ResolutionAction = "dismissed"
)

func ParseResolutionAction(value string) (ResolutionAction, bool) {
	switch ResolutionAction(value) {
	case ResolutionActionContentRemoved, ResolutionActionUserWarned, ResolutionActionDismissed:
		return ResolutionAction(value), true
	}
	return "", false
}
