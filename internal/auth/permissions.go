package auth

import (
	"slices"
	"strings"

	"github.com/hongminglow/rta-portal/internal/models"
)

// Admin permissions.
const (
	PermReadAll          = "read:all"
	PermReadTransactions = "read:transactions"
	PermReadOperations   = "read:operations"
	PermReadFolio        = "read:folio"
	PermReadNAV          = "read:nav"
	PermReadAudit        = "read:audit"
	PermReadReports      = "read:reports"
	PermViewDashboard    = "view:dashboard"

	PermWriteAll               = "write:all"
	PermWriteTransactions      = "write:transactions"
	PermWriteOperations        = "write:operations"
	PermWritePurchase          = "write:purchase"
	PermWriteRedemption        = "write:redemption"
	PermWriteEntry             = "write:entry"
	PermWriteRegulatoryReports = "write:regulatory_reports"

	PermAdminUsers        = "admin:users"
	PermSystemConfig      = "system:config"
	PermEmergencyOverride = "emergency:override"

	PermApproveBulk       = "approve:bulk"
	PermApproveCompliance = "approve:compliance"
	PermApproveLevel1     = "approve:level1"
)

// RolePermissions maps admin sub-roles to their default permissions.
var RolePermissions = map[string][]string{
	models.SubRoleCEO: {
		PermReadAll, PermWriteAll, PermAdminUsers, PermSystemConfig,
		PermEmergencyOverride, PermViewDashboard, PermApproveLevel1,
	},
	models.SubRoleCOO: {
		PermReadAll, PermWriteTransactions, PermWriteOperations,
		PermApproveBulk, PermViewDashboard, PermApproveLevel1,
	},
	models.SubRoleComplianceHead: {
		PermReadAudit, PermReadTransactions, PermWriteRegulatoryReports,
		PermApproveCompliance, PermReadReports, PermViewDashboard,
	},
	models.SubRoleOperationsManager: {
		PermReadOperations, PermWriteTransactions, PermApproveLevel1,
		PermReadFolio, PermViewDashboard,
	},
	models.SubRoleSeniorExecutive: {
		PermReadFolio, PermWritePurchase, PermWriteRedemption,
		PermReadNAV, PermViewDashboard,
	},
	models.SubRoleExecutive: {
		PermReadFolio, PermWriteEntry, PermViewDashboard,
	},
	models.SubRoleCustomerService: {
		PermReadFolio, PermReadTransactions, PermViewDashboard,
	},
}

// ValidSubRole reports whether name is a known admin sub-role.
func ValidSubRole(name string) bool {
	_, ok := RolePermissions[name]
	return ok
}

// effectiveSubRole treats the top admin identities as the CEO sub-role when none is assigned.
func effectiveSubRole(user models.User) string {
	if user.SubRole != "" {
		return user.SubRole
	}
	if user.Role == models.RoleRTACEO || user.Role == models.RoleSuperAdmin {
		return models.SubRoleCEO
	}
	return ""
}

// Permissions returns the default and custom permissions of an admin user.
func Permissions(user models.User) []string {
	if !user.Role.IsAdmin() {
		return nil
	}
	out := slices.Clone(RolePermissions[effectiveSubRole(user)])
	for _, p := range user.Permissions {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// HasPermission reports whether an admin user holds the permission, directly or through read:all/write:all.
func HasPermission(user models.User, perm string) bool {
	if !user.Role.IsAdmin() {
		return false
	}
	if slices.Contains(user.Permissions, perm) {
		return true
	}
	defaults := RolePermissions[effectiveSubRole(user)]
	if slices.Contains(defaults, perm) {
		return true
	}
	if slices.Contains(defaults, PermReadAll) && strings.Contains(perm, "read") {
		return true
	}
	if slices.Contains(defaults, PermWriteAll) && strings.Contains(perm, "write") {
		return true
	}
	return false
}
