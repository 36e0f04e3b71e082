package roles

// Route identifiers consumed by the route guard and the REPL navigation.
const (
	RouteHome         = "/"
	RouteSignIn       = "/sign-in"
	RouteAdmin        = "/admin"
	RouteOrganizer    = "/organizer"
	RouteChiefReferee = "/referee"
	RouteTeamManager  = "/team"
	RouteCoach        = "/coach"
	RouteAthlete      = "/athlete"
	RouteSpectator    = "/spectator"
)

func routeForKey(k Key) string {
	switch k {
	case KeyAdmin:
		return RouteAdmin
	case KeyOrganizer:
		return RouteOrganizer
	case KeyChiefReferee:
		return RouteChiefReferee
	case KeyTeamManager:
		return RouteTeamManager
	case KeyCoach:
		return RouteCoach
	case KeyAthlete:
		return RouteAthlete
	case KeySpectator:
		return RouteSpectator
	default:
		return RouteHome
	}
}
