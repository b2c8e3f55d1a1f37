package loft_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loft-iot/loft-client/pkg/loft"
)

func TestRoles_Contains(t *testing.T) {
	t.Parallel()

	all := []loft.Role{
		loft.RoleAdmin,
		loft.RoleManager,
		loft.RoleReader,
		loft.RoleSubscriber,
		loft.RolePublisher,
	}

	t.Run("admin implies everything", func(t *testing.T) {
		t.Parallel()

		roles := loft.Roles{loft.RoleAdmin}
		for _, role := range all {
			assert.True(t, roles.Contains(role), "admin should imply %s", role)
		}
	})

	t.Run("manager implies reader", func(t *testing.T) {
		t.Parallel()

		roles := loft.Roles{loft.RoleManager}
		assert.True(t, roles.Contains(loft.RoleManager))
		assert.True(t, roles.Contains(loft.RoleReader))
		assert.False(t, roles.Contains(loft.RoleAdmin))
		assert.False(t, roles.Contains(loft.RoleSubscriber))
	})

	t.Run("reader implies nothing else", func(t *testing.T) {
		t.Parallel()

		roles := loft.Roles{loft.RoleReader}
		assert.True(t, roles.Contains(loft.RoleReader))
		assert.False(t, roles.Contains(loft.RoleManager))
		assert.False(t, roles.Contains(loft.RoleAdmin))
	})

	t.Run("empty set contains nothing", func(t *testing.T) {
		t.Parallel()

		roles := loft.Roles{}
		for _, role := range all {
			assert.False(t, roles.Contains(role))
		}
	})
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := loft.ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, loft.RoleManager, role)

	_, err = loft.ParseRole("root")
	require.ErrorIs(t, err, loft.ErrUnknownRole)
}

func TestRole_JSON(t *testing.T) {
	t.Parallel()

	var roles loft.Roles
	require.NoError(t, json.Unmarshal([]byte(`["admin","subscriber"]`), &roles))
	assert.Equal(t, loft.Roles{loft.RoleAdmin, loft.RoleSubscriber}, roles)

	var bad loft.Roles
	require.Error(t, json.Unmarshal([]byte(`["superuser"]`), &bad))
}

func TestMembers_JSON(t *testing.T) {
	t.Parallel()

	input := `{
		"resourceVersion": "1234",
		"members": {
			"user-a": {"roles": ["admin"]},
			"user-b": {"roles": ["reader", "subscriber"]}
		}
	}`

	var members loft.Members
	require.NoError(t, json.Unmarshal([]byte(input), &members))

	require.NotNil(t, members.ResourceVersion)
	assert.Equal(t, "1234", *members.ResourceVersion)
	assert.True(t, members.Members["user-a"].Roles.Contains(loft.RolePublisher))
	assert.False(t, members.Members["user-b"].Roles.Contains(loft.RoleManager))
}
