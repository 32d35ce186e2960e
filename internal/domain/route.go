package domain

// Route is a navigation destination decided by the role resolver.
// It is an explicit enum so an unmapped role is a visible gap in the
// homeByRole table, not a silent default branch.
type Route string

const (
	RouteSignIn          Route = "sign_in"
	RoutePendingApproval Route = "pending_approval"
	RouteRoleSelection   Route = "role_selection"
	// RouteEventSelection prompts a confirmed user to pick an active event
	// before role-scoped screens are reachable. Distinct from the integrity
	// fault: roles are unknown here, not known to be absent.
	RouteEventSelection Route = "event_selection"
	RouteProfile         Route = "profile"
	RouteOrganizerHome   Route = "organizer_dashboard"
	RouteDelegationHome  Route = "delegation_dashboard"
	RouteJudgeHome       Route = "judge_dashboard"
	RouteAdministration  Route = "administration"
	// RouteIntegrityFault is distinct from pending approval: a confirmed user
	// with zero roles is a data-setup fault, not a normal pending state.
	RouteIntegrityFault Route = "integrity_fault"
	RouteError          Route = "error"
)

// homeByRole is the fixed home destination per role code.
var homeByRole = map[string]Route{
	RoleAthlete:       RouteProfile,
	RoleGeneralPublic: RouteProfile,
	RoleOrganizer:     RouteOrganizerHome,
	RoleDelegationRep: RouteDelegationHome,
	RoleJudge:         RouteJudgeHome,
	RoleAdministrator: RouteAdministration,
}

// RoutingDecision is the full resolver output: the destination plus the
// order-stable role list carried to the role-selection screen.
type RoutingDecision struct {
	Route Route
	Roles []string
}

// ResolveRoute maps a user and their role assignments for the active event to
// a routing decision. Pure and I/O-free; all fetching lives in the session
// service. Evaluation order matters: confirmation gates everything.
func ResolveRoute(user User, assignments []RoleAssignment) RoutingDecision {
	if !user.Confirmed {
		return RoutingDecision{Route: RoutePendingApproval}
	}

	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		names = append(names, a.RoleName)
	}

	switch len(assignments) {
	case 0:
		return RoutingDecision{Route: RouteIntegrityFault}
	case 1:
		home, ok := homeByRole[assignments[0].RoleName]
		if !ok {
			return RoutingDecision{Route: RouteError, Roles: names}
		}
		return RoutingDecision{Route: home, Roles: names}
	default:
		return RoutingDecision{Route: RouteRoleSelection, Roles: names}
	}
}

// publicDestinations is the fixed allow-list of navigation targets reachable
// without an authenticated session.
var publicDestinations = map[string]struct{}{
	"/":        {},
	"/signin":  {},
	"/signup":  {},
	"/about":   {},
	"/contact": {},
}

// IsPublicDestination reports whether an anonymous session may stay on the
// given navigation target instead of being redirected to sign-in.
func IsPublicDestination(target string) bool {
	_, ok := publicDestinations[target]
	return ok
}
