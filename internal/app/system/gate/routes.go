package gate

import "strings"

// Class is the access category of a request path.
type Class int

const (
	Public Class = iota
	AuthOnly
	Protected
)

func (c Class) String() string {
	switch c {
	case AuthOnly:
		return "auth_only"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// DashboardPath is the generic dashboard the role router dispatches from.
const DashboardPath = "/dashboard"

// protectedPrefixes require a signed-in caller. Matching is per path
// segment, so "/admin" does not cover "/administration".
var protectedPrefixes = []string{
	"/upload",
	"/profile",
	DashboardPath,
	"/favorites",
	"/admin",
	"/university-admin",
}

// authOnlyPaths are for visitors who are not signed in.
var authOnlyPaths = []string{
	"/login",
	"/register",
	"/auth/callback",
}

// Classify categorizes a request path.
func Classify(path string) Class {
	for _, p := range protectedPrefixes {
		if hasSegmentPrefix(path, p) {
			return Protected
		}
	}
	for _, p := range authOnlyPaths {
		if hasSegmentPrefix(path, p) {
			return AuthOnly
		}
	}
	return Public
}

func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
