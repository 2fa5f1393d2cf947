// Package routing decides what a navigation to a console location shows,
// given the caller's authentication state and the route's allowed roles.
package routing

import "github.com/datadrift/datadrift/pkg/models"

// LoginPath is where anonymous users are sent.
const LoginPath = "/login"

// Guard is the view of the auth session the decision needs.
// *session.Manager satisfies it.
type Guard interface {
	IsLoading() bool
	IsAuthenticated() bool
	HasRole(roles ...models.Role) bool
}

// Kind enumerates the possible outcomes of a navigation.
type Kind int

const (
	Render Kind = iota
	Loading
	Redirect
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide.
type Decision struct {
	Kind Kind

	// Target and From are set for Redirect. From is the location to return
	// to after a successful login.
	Target string
	From   string

	// Title and Message are set for Loading and Forbidden.
	Title   string
	Message string
}

// Decide evaluates one navigation to location. An empty roles list allows any
// authenticated user. Loading always wins so a session that is still being
// restored is never redirected.
func Decide(g Guard, roles []models.Role, location string) Decision {
	switch {
	case g.IsLoading():
		return Decision{
			Kind:    Loading,
			Title:   "Loading",
			Message: "Checking your permissions…",
		}
	case !g.IsAuthenticated():
		return Decision{Kind: Redirect, Target: LoginPath, From: location}
	case len(roles) > 0 && !g.HasRole(roles...):
		return Decision{
			Kind:    Forbidden,
			Title:   "Not authorized",
			Message: "You do not have permission to access this page.",
		}
	default:
		return Decision{Kind: Render}
	}
}
