// Package guard decides whether a session may enter a role area of the portal.
package guard

import (
	"github.com/hongminglow/rta-portal/internal/session"
)

// Outcome is what the caller should do with a route.
type Outcome int

const (
	// Wait means session state is still being established; make no redirect decision.
	Wait Outcome = iota
	// Render means the route content may be shown.
	Render
	// Redirect means the caller should navigate to Decision.Location.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the result of Decide.
type Decision struct {
	Outcome  Outcome
	Location string
}

// LandingPath is where sessions with an unrecognised role are sent.
const LandingPath = "/"

func redirect(location string) Decision {
	return Decision{Outcome: Redirect, Location: location}
}

// Decide applies the route guard table to a session and requirement.
func Decide(state session.State, req Requirement) Decision {
	if state.Loading {
		return Decision{Outcome: Wait}
	}
	if !state.LoggedIn() {
		return redirect(req.LoginPath())
	}

	role := state.Role()
	if req != Investor {
		if req.Allows(role) {
			return Decision{Outcome: Render}
		}
		return redirect(req.LoginPath())
	}

	owner, known := RequirementForRole(role)
	switch {
	case !known:
		return redirect(LandingPath)
	case owner == Investor:
		return Decision{Outcome: Render}
	default:
		return redirect(owner.HomePath())
	}
}

// DecideFlags is Decide for callers still holding the boolean route flags.
func DecideFlags(state session.State, flags Flags) (Decision, error) {
	req, err := RequirementFromFlags(flags)
	if err != nil {
		return Decision{}, err
	}
	return Decide(state, req), nil
}
