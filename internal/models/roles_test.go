package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleClassification(t *testing.T) {
	cases := []struct {
		role     Role
		admin    bool
		investor bool
		known    bool
	}{
		{"", false, true, true},
		{RoleInvestor, false, true, true},
		{RoleUser, false, true, true},
		{RoleAdmin, true, false, true},
		{RoleRTACEO, true, false, true},
		{RoleSuperAdmin, true, false, true},
		{RoleAMC, false, false, true},
		{RoleDistributor, false, false, true},
		{RoleSEBI, false, false, true},
		{"auditor", false, false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.admin, tc.role.IsAdmin(), "IsAdmin(%q)", tc.role)
		assert.Equal(t, tc.investor, tc.role.IsInvestor(), "IsInvestor(%q)", tc.role)
		assert.Equal(t, tc.known, tc.role.Known(), "Known(%q)", tc.role)
	}
	assert.Equal(t, RoleSEBI, ParseRole("  sebi "))
}

func TestUserStatus(t *testing.T) {
	assert.True(t, User{}.Active())
	assert.True(t, User{Status: StatusActive}.Active())
	assert.False(t, User{Status: StatusLocked}.Active())
	assert.True(t, User{Status: StatusLocked}.Locked())
	assert.False(t, User{Status: StatusSuspended}.Active())
}
