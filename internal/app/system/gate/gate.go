// Package gate decides, per request, whether a caller may reach a path and
// routes the generic dashboard to the caller's role-specific one.
package gate

import "github.com/akadox/akadox/internal/app/system/auth"

// Kind is the outcome of an access decision.
type Kind int

const (
	Allow Kind = iota
	RedirectLogin
	RedirectDashboard
)

func (k Kind) String() string {
	switch k {
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "allow"
	}
}

// Decision is what the gate does with a request. Location is empty for Allow.
type Decision struct {
	Kind     Kind
	Location string
}

// Decide is a pure function of (path, caller). A nil caller means the
// request is anonymous, including when identity lookup failed.
func Decide(path string, caller *auth.Caller) Decision {
	switch Classify(path) {
	case Protected:
		if caller == nil {
			return Decision{Kind: RedirectLogin, Location: auth.LoginURL(path)}
		}
	case AuthOnly:
		if caller != nil {
			return Decision{Kind: RedirectDashboard, Location: DashboardPath}
		}
	}
	return Decision{Kind: Allow}
}
