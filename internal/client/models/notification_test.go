package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNotificationType(t *testing.T) {
	for _, s := range []string{
		"match_update", "tournament_start", "tournament_end",
		"schedule_change", "referee_assigned", "reminder", "announcement",
	} {
		nt, ok := ParseNotificationType(s)
		require.True(t, ok, s)
		require.Equal(t, NotificationType(s), nt)
	}

	_, ok := ParseNotificationType("poke")
	require.False(t, ok)
}

func TestUserPatch_Apply(t *testing.T) {
	u := &User{ID: "u1", Username: "ann", Email: "ann@example.com", RoleIDs: []string{"r1"}}

	verified := true
	name := "ann.k"
	UserPatch{Username: &name, IsEmailVerified: &verified}.Apply(u)

	require.Equal(t, "ann.k", u.Username)
	require.True(t, u.IsEmailVerified)
	require.Equal(t, "ann@example.com", u.Email)
	require.Equal(t, []string{"r1"}, u.RoleIDs)
}

func TestUserClone_Isolated(t *testing.T) {
	u := &User{ID: "u1", RoleIDs: []string{"r1"}}
	c := u.Clone()
	c.RoleIDs[0] = "r2"
	require.Equal(t, "r1", u.RoleIDs[0])

	var nilUser *User
	require.Nil(t, nilUser.Clone())
}
