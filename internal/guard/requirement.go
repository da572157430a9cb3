package guard

import (
	"errors"

	"github.com/hongminglow/rta-portal/internal/models"
)

// Requirement names the role area a route belongs to.
type Requirement int

const (
	// Investor is the default area; any investor/default identity may enter.
	Investor Requirement = iota
	AdminArea
	AMCArea
	DistributorArea
	SEBIArea
)

// Requirements lists every area, in declaration order.
var Requirements = []Requirement{Investor, AdminArea, AMCArea, DistributorArea, SEBIArea}

type paths struct {
	name  string
	login string
	home  string
}

var areaPaths = map[Requirement]paths{
	Investor:        {name: "investor", login: "/login", home: "/dashboard"},
	AdminArea:       {name: "admin", login: "/admin/login", home: "/admin/admindashboard"},
	AMCArea:         {name: "amc", login: "/amc/login", home: "/amc"},
	DistributorArea: {name: "distributor", login: "/distributor/login", home: "/distributor"},
	SEBIArea:        {name: "sebi", login: "/sebi/login", home: "/sebi"},
}

// ErrConflictingFlags is returned when more than one area flag is set.
var ErrConflictingFlags = errors.New("at most one area flag may be set")

// Flags mirrors the boolean route props of the portal router.
type Flags struct {
	AdminOnly       bool
	AMCOnly         bool
	DistributorOnly bool
	SEBIOnly        bool
}

// RequirementFromFlags converts zero or one set flag into a Requirement.
func RequirementFromFlags(f Flags) (Requirement, error) {
	req := Investor
	set := 0
	for _, c := range []struct {
		on  bool
		req Requirement
	}{
		{f.AdminOnly, AdminArea},
		{f.AMCOnly, AMCArea},
		{f.DistributorOnly, DistributorArea},
		{f.SEBIOnly, SEBIArea},
	} {
		if c.on {
			set++
			req = c.req
		}
	}
	if set > 1 {
		return Investor, ErrConflictingFlags
	}
	return req, nil
}

// RequirementForRole returns the area a role belongs to. Unrecognised roles report false.
func RequirementForRole(role models.Role) (Requirement, bool) {
	switch {
	case role.IsInvestor():
		return Investor, true
	case role.IsAdmin():
		return AdminArea, true
	case role == models.RoleAMC:
		return AMCArea, true
	case role == models.RoleDistributor:
		return DistributorArea, true
	case role == models.RoleSEBI:
		return SEBIArea, true
	}
	return Investor, false
}

// Allows reports whether the role belongs to this area.
func (r Requirement) Allows(role models.Role) bool {
	owner, ok := RequirementForRole(role)
	return ok && owner == r
}

// LoginPath is the dedicated login page of the area.
func (r Requirement) LoginPath() string {
	return areaPaths[r].login
}

// HomePath is the dashboard of the area.
func (r Requirement) HomePath() string {
	return areaPaths[r].home
}

func (r Requirement) String() string {
	if p, ok := areaPaths[r]; ok {
		return p.name
	}
	return "unknown"
}
