package models

import "strings"

// Role is the portal identity a user logs in with.
type Role string

const (
	RoleInvestor    Role = "investor"
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleRTACEO      Role = "RTA CEO"
	RoleSuperAdmin  Role = "superadmin"
	RoleAMC         Role = "amc"
	RoleDistributor Role = "distributor"
	RoleSEBI        Role = "sebi"
)

// ParseRole trims the raw value. An empty role stays empty and counts as investor.
func ParseRole(raw string) Role {
	return Role(strings.TrimSpace(raw))
}

// IsAdmin reports whether the role satisfies admin gating.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin, RoleRTACEO, RoleSuperAdmin:
		return true
	}
	return false
}

// IsInvestor reports whether the role is the investor/default identity.
func (r Role) IsInvestor() bool {
	switch r {
	case "", RoleInvestor, RoleUser:
		return true
	}
	return false
}

// Known reports whether the role is one the portal recognises.
func (r Role) Known() bool {
	if r.IsAdmin() || r.IsInvestor() {
		return true
	}
	switch r {
	case RoleAMC, RoleDistributor, RoleSEBI:
		return true
	}
	return false
}

// Admin sub-roles carried by admin users.
const (
	SubRoleCEO               = "rta_ceo"
	SubRoleCOO               = "rta_coo"
	SubRoleComplianceHead    = "compliance_head"
	SubRoleOperationsManager = "operations_manager"
	SubRoleSeniorExecutive   = "senior_executive"
	SubRoleExecutive         = "executive"
	SubRoleCustomerService   = "customer_service"
)
