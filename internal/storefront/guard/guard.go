// Package guard decides whether a storefront view may render for the current session.
package guard

import "tienda/internal/models"

const (
	// LoginPath is where signed-out visitors are sent.
	LoginPath = "/inicio"
	// HomePath is where signed-in non-administrators are sent from admin views.
	HomePath = "/"
)

type Action int

const (
	Suspend Action = iota
	Render
	Redirect
)

func (a Action) String() string {
	switch a {
	case Suspend:
		return "suspend"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of a guard. From carries the origin so login can return there.
type Decision struct {
	Action Action
	To     string
	From   string
}

// State is the part of the session the guards read.
type State interface {
	Loading() bool
	IsLoggedIn() bool
	Role() string
}

// RequireAuth renders for any signed-in user.
func RequireAuth(s State, from string) Decision {
	if s.Loading() {
		return Decision{Action: Suspend}
	}
	if !s.IsLoggedIn() {
		return Decision{Action: Redirect, To: LoginPath, From: from}
	}
	return Decision{Action: Render}
}

// RequireAdmin renders for administrators only.
func RequireAdmin(s State, from string) Decision {
	if d := RequireAuth(s, from); d.Action != Render {
		return d
	}
	if s.Role() != models.RoleAdministrator {
		return Decision{Action: Redirect, To: HomePath}
	}
	return Decision{Action: Render}
}
