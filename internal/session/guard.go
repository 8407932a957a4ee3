package session

// Route classifies a command or screen by its session requirement
type Route int

const (
	// RouteOpen is reachable in any state
	RouteOpen Route = iota
	// RouteProtected needs a logged-in user
	RouteProtected
	// RouteGuestOnly is login or registration, pointless with a live session
	RouteGuestOnly
)

// Decision is what the caller should do before entering a route
type Decision int

const (
	// DecisionLoading means the session is hydrating; show a neutral loading state
	DecisionLoading Decision = iota
	// DecisionAllow means enter the route
	DecisionAllow
	// DecisionRedirectLogin means send the user to the login entry point
	DecisionRedirectLogin
	// DecisionRedirectHome means send the user to the default authenticated landing
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Guard decides access to route for the given session state
func Guard(s Session, route Route) Decision {
	if s.Phase == PhaseHydrating {
		return DecisionLoading
	}

	switch route {
	case RouteProtected:
		if !s.Authenticated() {
			return DecisionRedirectLogin
		}
	case RouteGuestOnly:
		if s.Authenticated() {
			return DecisionRedirectHome
		}
	}
	return DecisionAllow
}

// Guard decides access to route for the manager's current state
func (m *Manager) Guard(route Route) Decision {
	return Guard(m.Snapshot(), route)
}
