// Package capability maps roles to the actions they may perform. The checks
// here gate what the API offers; the database constraints remain the
// authoritative line of defense for booking correctness.
package capability

// Actions known to the booking workflow.
const (
	ActionBookingCreate  = "booking.create"
	ActionBookingRead    = "booking.read"
	ActionBookingCancel  = "booking.cancel"
	ActionBookingApprove = "booking.approve"
	ActionBookingReject  = "booking.reject"

	ActionRoomRead   = "room.read"
	ActionRoomManage = "room.manage"
)

// Roles recognized by the service.
const (
	RoleStaff  = "staff"
	RoleLeader = "leader"
	RoleAdmin  = "admin"
)

// roleCapabilities is the capability set per role. Admin carries the full
// set; leaders add approval rights on top of staff.
var roleCapabilities = map[string][]string{
	RoleStaff: {
		ActionBookingCreate,
		ActionBookingRead,
		ActionBookingCancel,
		ActionRoomRead,
	},
	RoleLeader: {
		ActionBookingCreate,
		ActionBookingRead,
		ActionBookingCancel,
		ActionBookingApprove,
		ActionBookingReject,
		ActionRoomRead,
	},
	RoleAdmin: {"*"},
}

// Can reports whether the given role may perform the action.
func Can(role, action string) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	for _, c := range caps {
		if c == "*" || c == action {
			return true
		}
	}
	return false
}

// CanAny reports whether the role may perform any of the actions.
func CanAny(role string, actions ...string) bool {
	for _, a := range actions {
		if Can(role, a) {
			return true
		}
	}
	return false
}

// IsValidRole reports whether the role is one the service recognizes.
func IsValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// CapabilitiesFor returns a copy of the capability set for a role. Used by
// the API to tell clients which actions to render.
func CapabilitiesFor(role string) []string {
	caps, ok := roleCapabilities[role]
	if !ok {
		return nil
	}
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}
