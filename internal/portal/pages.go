// Package portal serves the page surface of the portal behind the route guard.
package portal

import (
	"strings"

	"github.com/hongminglow/rta-portal/internal/guard"
)

// Page is one routable screen of the portal.
type Page struct {
	Path        string
	Name        string
	Public      bool
	Requirement guard.Requirement
}

func public(path, name string) Page {
	return Page{Path: path, Name: name, Public: true}
}

func area(req guard.Requirement, prefix string, names ...string) []Page {
	out := make([]Page, 0, len(names))
	for _, name := range names {
		path := prefix + "/" + name
		if name == "" {
			path = prefix
		}
		out = append(out, Page{Path: path, Name: pageName(req, name), Requirement: req})
	}
	return out
}

func pageName(req guard.Requirement, name string) string {
	if name == "" {
		return req.String() + "-home"
	}
	return strings.TrimSuffix(name, "/{id}")
}

// Pages is the full routing table. Paths use ServeMux wildcard syntax.
var Pages = buildPages()

func buildPages() []Page {
	pages := []Page{
		public("/", "home"),
		public("/login", "login"),
		public("/register", "register"),
		public("/maintenance", "maintenance"),
		public("/disclosures", "disclosures"),
		public("/forgot-password", "forgot-password"),
		public("/reset-password", "reset-password"),
		public("/admin/login", "admin-login"),
		public("/admin/register", "admin-register"),
		public("/amc/login", "amc-login"),
		public("/amc/register", "amc-register"),
		public("/distributor/login", "distributor-login"),
		public("/distributor/register", "distributor-register"),
		public("/sebi/login", "sebi-login"),
	}

	pages = append(pages, area(guard.Investor, "",
		"dashboard", "profile", "folio/{id}", "purchase", "redemption", "sip", "swp", "stp",
		"transactions", "switch", "unclaimed", "idcw",
		"reports/capital-gains", "reports/valuation", "reports/cas",
		"profile/banks", "profile/nominees", "profile/security", "profile/documents",
		"mandates", "service-requests", "notifications", "support", "analytics/allocation",
		"complaints", "clients",
	)...)

	pages = append(pages, area(guard.AdminArea, "/admin",
		"", "admindashboard", "approvals", "transactions", "nav", "idcw", "unclaimed", "recon",
		"exceptions", "reports", "audit", "users", "alerts", "admin-alerts", "documents",
		"maintenance", "kyc-verification", "complaints", "mandate-approvals", "system-settings",
		"batch-jobs", "user-sessions", "regulatory-filings", "monitoring-logs",
	)...)

	pages = append(pages, area(guard.AMCArea, "/amc",
		"", "fund-flows", "nav-monitoring", "compliance", "reconciliation", "disclosures",
		"investors", "transactions", "documents", "nav-upload",
	)...)

	pages = append(pages, area(guard.DistributorArea, "/distributor",
		"", "onboarding", "portfolio/{id}", "commissions", "analytics", "maintenance",
	)...)

	pages = append(pages, area(guard.SEBIArea, "/sebi",
		"", "compliance-monitoring", "regulatory-reports", "audit-trail", "unclaimed-oversight",
		"maintenance", "transaction-reports", "folio-details",
	)...)

	return pages
}
