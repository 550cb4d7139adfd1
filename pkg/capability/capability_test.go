package capability_test

import (
	"testing"

	"github.com/staffops/staffops-backend/pkg/capability"
	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role    string
		action  string
		allowed bool
	}{
		{capability.RoleStaff, capability.ActionBookingCreate, true},
		{capability.RoleStaff, capability.ActionBookingCancel, true},
		{capability.RoleStaff, capability.ActionBookingApprove, false},
		{capability.RoleStaff, capability.ActionRoomManage, false},
		{capability.RoleLeader, capability.ActionBookingApprove, true},
		{capability.RoleLeader, capability.ActionBookingReject, true},
		{capability.RoleLeader, capability.ActionRoomManage, false},
		{capability.RoleAdmin, capability.ActionBookingApprove, true},
		{capability.RoleAdmin, capability.ActionRoomManage, true},
		{"intern", capability.ActionBookingRead, false},
		{"", capability.ActionBookingRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.allowed, capability.Can(tt.role, tt.action))
		})
	}
}

func TestCanAny(t *testing.T) {
	assert.True(t, capability.CanAny(capability.RoleStaff,
		capability.ActionBookingApprove, capability.ActionBookingRead))
	assert.False(t, capability.CanAny(capability.RoleStaff,
		capability.ActionBookingApprove, capability.ActionRoomManage))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, capability.IsValidRole(capability.RoleStaff))
	assert.True(t, capability.IsValidRole(capability.RoleLeader))
	assert.True(t, capability.IsValidRole(capability.RoleAdmin))
	assert.False(t, capability.IsValidRole("superuser"))
}

func TestCapabilitiesFor_ReturnsCopy(t *testing.T) {
	caps := capability.CapabilitiesFor(capability.RoleStaff)
	assert.NotEmpty(t, caps)

	caps[0] = "tampered"
	assert.NotContains(t, capability.CapabilitiesFor(capability.RoleStaff), "tampered")
}
