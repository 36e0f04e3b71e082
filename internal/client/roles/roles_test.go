package roles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchline/tournops/internal/client/models"
)

var registry = []models.Role{
	{ID: "r-admin", Name: "admin", Description: "platform administrator"},
	{ID: "r-org", Name: "organizer", Description: "tournament organizer"},
	{ID: "r-ref", Name: "chief_referee", Description: "chief referee"},
	{ID: "r-tm", Name: "team_manager", Description: "team manager"},
	{ID: "r-coach", Name: "coach", Description: "coach"},
	{ID: "r-ath", Name: "athlete", Description: "athlete"},
	{ID: "r-spec", Name: "spectator", Description: "spectator"},
}

func TestRoleByName(t *testing.T) {
	r, ok := RoleByName(registry, "coach")
	require.True(t, ok)
	require.Equal(t, "r-coach", r.ID)

	_, ok = RoleByName(registry, "janitor")
	require.False(t, ok)
}

func TestRoleNames_OrderAndSkips(t *testing.T) {
	names := RoleNames(registry, []string{"r-ath", "r-nope", "r-admin"})
	require.Equal(t, []string{"athlete", "admin"}, names)

	require.Empty(t, RoleNames(registry, nil))
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name       string
		user       []string
		candidates []string
		want       bool
	}{
		{name: "intersecting", user: []string{"r-ath", "r-coach"}, candidates: []string{"r-coach"}, want: true},
		{name: "disjoint", user: []string{"r-ath"}, candidates: []string{"r-admin"}, want: false},
		{name: "empty candidates always false", user: []string{"r-ath"}, candidates: nil, want: false},
		{name: "empty user", user: nil, candidates: []string{"r-admin"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HasAnyRole(tt.user, tt.candidates))
		})
	}
}

func TestDefaultRouteForRoles(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{name: "empty list falls back to home", ids: nil, want: RouteHome},
		{name: "unknown ids fall back to home", ids: []string{"r-nope"}, want: RouteHome},
		{name: "single role", ids: []string{"r-coach"}, want: RouteCoach},
		{name: "admin wins regardless of position", ids: []string{"r-spec", "r-admin"}, want: RouteAdmin},
		{name: "priority order decides ties", ids: []string{"r-ath", "r-tm"}, want: RouteTeamManager},
		{name: "spectator lowest", ids: []string{"r-spec"}, want: RouteSpectator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultRouteForRoles(registry, tt.ids)
			require.Equal(t, tt.want, got)
			require.NotEmpty(t, got)
		})
	}
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("organizer")
	require.True(t, ok)
	require.Equal(t, KeyOrganizer, k)

	_, ok = ParseKey("superuser")
	require.False(t, ok)
}
