// Package roles contains pure authorization and routing decisions over role
// identifiers. It holds no state beyond the role registry passed in by the
// caller; the registry itself comes from the platform's role API.
package roles

import "github.com/matchline/tournops/internal/client/models"

// Key is one of the closed set of role names shared with the platform's role
// registry. Authorization decisions are made on keys, never on free-form
// strings.
type Key string

const (
	KeyAdmin        Key = "admin"
	KeyOrganizer    Key = "organizer"
	KeyChiefReferee Key = "chief_referee"
	KeyTeamManager  Key = "team_manager"
	KeyCoach        Key = "coach"
	KeyAthlete      Key = "athlete"
	KeySpectator    Key = "spectator"
)

// routePriority is the fixed precedence used when a user holds several roles.
// Order here, not order in the user's role list, decides ties.
var routePriority = []Key{
	KeyAdmin,
	KeyOrganizer,
	KeyChiefReferee,
	KeyTeamManager,
	KeyCoach,
	KeyAthlete,
	KeySpectator,
}

// ParseKey reports whether s names one of the known role keys.
func ParseKey(s string) (Key, bool) {
	k := Key(s)
	switch k {
	case KeyAdmin, KeyOrganizer, KeyChiefReferee, KeyTeamManager,
		KeyCoach, KeyAthlete, KeySpectator:
		return k, true
	default:
		return "", false
	}
}

// RoleByName returns the role with the exact given name from the registry.
// The second result is false when no such role exists.
func RoleByName(registry []models.Role, name string) (models.Role, bool) {
	for _, r := range registry {
		if r.Name == name {
			return r, true
		}
	}
	return models.Role{}, false
}

// RoleNames resolves each id to its display name, preserving input order.
// Ids missing from the registry are skipped, not substituted.
func RoleNames(registry []models.Role, ids []string) []string {
	byID := make(map[string]string, len(registry))
	for _, r := range registry {
		byID[r.ID] = r.Name
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// HasAnyRole reports whether the two id sets intersect. An empty candidate
// set never matches.
func HasAnyRole(userRoleIDs, candidateIDs []string) bool {
	if len(candidateIDs) == 0 {
		return false
	}
	held := make(map[string]struct{}, len(userRoleIDs))
	for _, id := range userRoleIDs {
		held[id] = struct{}{}
	}
	for _, id := range candidateIDs {
		if _, ok := held[id]; ok {
			return true
		}
	}
	return false
}

// DefaultRouteForRoles picks the landing route for a user: the route bound to
// the highest-priority role the user holds, or RouteHome when the user holds
// no known role. Total over any input, including an empty list.
func DefaultRouteForRoles(registry []models.Role, userRoleIDs []string) string {
	held := make(map[Key]struct{}, len(userRoleIDs))

	byID := make(map[string]string, len(registry))
	for _, r := range registry {
		byID[r.ID] = r.Name
	}
	for _, id := range userRoleIDs {
		if key, ok := ParseKey(byID[id]); ok {
			held[key] = struct{}{}
		}
	}

	for _, key := range routePriority {
		if _, ok := held[key]; ok {
			return routeForKey(key)
		}
	}
	return RouteHome
}
