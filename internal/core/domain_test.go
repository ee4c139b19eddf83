package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamValidate(t *testing.T) {
	currentYear := time.Now().Year()

	valid := Team{Name: "AC Milan", City: "Milano", Founded: 1899, Budget: 1_000_000}

	t.Run("valid team", func(t *testing.T) {
		team := valid
		require.NoError(t, team.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		team := valid
		team.Name = ""
		err := team.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("missing city", func(t *testing.T) {
		team := valid
		team.City = ""
		require.Error(t, team.Validate())
	})

	t.Run("founded too early", func(t *testing.T) {
		team := valid
		team.Founded = 1849
		err := team.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "founding year")
	})

	t.Run("founded in the future", func(t *testing.T) {
		team := valid
		team.Founded = currentYear + 1
		require.Error(t, team.Validate())
	})

	t.Run("boundary years accepted", func(t *testing.T) {
		team := valid
		team.Founded = MinFoundingYear
		assert.NoError(t, team.Validate())
		team.Founded = currentYear
		assert.NoError(t, team.Validate())
	})
}

func TestPlayerValidate(t *testing.T) {
	valid := Player{FirstName: "Mario", LastName: "Rossi", Role: RoleForward, ShirtNumber: 9}

	t.Run("valid player", func(t *testing.T) {
		p := valid
		require.NoError(t, p.Validate())
	})

	t.Run("missing first name", func(t *testing.T) {
		p := valid
		p.FirstName = ""
		require.Error(t, p.Validate())
	})

	t.Run("missing last name", func(t *testing.T) {
		p := valid
		p.LastName = ""
		require.Error(t, p.Validate())
	})

	t.Run("unknown role", func(t *testing.T) {
		p := valid
		p.Role = "Libero"
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid role")
	})

	t.Run("shirt number out of range", func(t *testing.T) {
		for _, n := range []int{0, -1, 100} {
			p := valid
			p.ShirtNumber = n
			assert.Error(t, p.Validate(), "shirt number %d", n)
		}
	})

	t.Run("shirt number boundaries", func(t *testing.T) {
		p := valid
		p.ShirtNumber = 1
		assert.NoError(t, p.Validate())
		p.ShirtNumber = 99
		assert.NoError(t, p.Validate())
	})
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward} {
		assert.True(t, r.Valid(), "role %s", r)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("forward").Valid(), "role set is case-sensitive")
}
