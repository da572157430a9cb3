package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/rta-portal/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "rta-test", time.Hour)
	user := models.User{ID: 42, Email: "ceo@rta.example", Role: models.RoleAdmin, SubRole: models.SubRoleCEO}

	raw, issued, err := tm.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := tm.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, models.SubRoleCEO, claims.SubRole)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenRejections(t *testing.T) {
	tm := NewTokenManager("secret", "rta-test", time.Minute)
	raw, _, err := tm.Generate(models.User{ID: 1, Role: models.RoleInvestor})
	require.NoError(t, err)

	other := NewTokenManager("other-secret", "rta-test", time.Minute)
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenManager("secret", "someone-else", time.Minute)
	_, err = wrongIssuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Sup3rSecret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestHasPermission(t *testing.T) {
	cases := []struct {
		name string
		user models.User
		perm string
		want bool
	}{
		{"non admin", models.User{Role: models.RoleAMC, Permissions: []string{PermAdminUsers}}, PermAdminUsers, false},
		{"custom grant", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleExecutive, Permissions: []string{PermAdminUsers}}, PermAdminUsers, true},
		{"sub role default", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleCustomerService}, PermReadTransactions, true},
		{"sub role missing perm", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleCustomerService}, PermAdminUsers, false},
		{"read all covers reads", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleCOO}, PermReadAudit, true},
		{"read all does not cover writes", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleCOO}, PermWriteRegulatoryReports, false},
		{"write all covers writes", models.User{Role: models.RoleAdmin, SubRole: models.SubRoleCEO}, PermWriteRegulatoryReports, true},
		{"no sub role", models.User{Role: models.RoleAdmin}, PermViewDashboard, false},
		{"RTA CEO without sub role", models.User{Role: models.RoleRTACEO}, PermAdminUsers, true},
		{"superadmin without sub role", models.User{Role: models.RoleSuperAdmin}, PermReadTransactions, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, HasPermission(c.user, c.perm))
		})
	}
}

func TestPermissionsMergesCustom(t *testing.T) {
	user := models.User{Role: models.RoleAdmin, SubRole: models.SubRoleExecutive, Permissions: []string{PermReadNAV, PermReadFolio}}
	assert.ElementsMatch(t, []string{PermReadFolio, PermWriteEntry, PermViewDashboard, PermReadNAV}, Permissions(user))
	assert.Nil(t, Permissions(models.User{Role: models.RoleSEBI}))
	assert.True(t, ValidSubRole(models.SubRoleComplianceHead))
	assert.False(t, ValidSubRole("janitor"))
}
