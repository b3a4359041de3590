package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Key(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		expected string
	}{
		{
			name:     "enterprise and team",
			identity: Identity{EnterpriseID: "E100", TeamID: "T200"},
			expected: "E100-T200",
		},
		{
			name:     "team only",
			identity: Identity{TeamID: "T200"},
			expected: "none-T200",
		},
		{
			name:     "enterprise only",
			identity: Identity{EnterpriseID: "E100"},
			expected: "E100-none",
		},
		{
			name:     "empty identity",
			identity: Identity{},
			expected: "none-none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.identity.Key())
		})
	}
}

func TestDerive(t *testing.T) {
	t.Run("explicit ids win", func(t *testing.T) {
		id := Derive(Source{
			EnterpriseID: "E1",
			TeamID:       "T1",
			Enterprise:   "E2",
			Team:         "T2",
			UserTeamID:   "T3",
		})
		assert.Equal(t, "E1", id.EnterpriseID)
		assert.Equal(t, "T1", id.TeamID)
	})

	t.Run("nested objects as fallback", func(t *testing.T) {
		id := Derive(Source{
			Enterprise: "E2",
			Team:       "T2",
			UserTeamID: "T3",
		})
		assert.Equal(t, "E2", id.EnterpriseID)
		assert.Equal(t, "T2", id.TeamID)
	})

	t.Run("user team id as last resort", func(t *testing.T) {
		id := Derive(Source{UserTeamID: "T3"})
		assert.Equal(t, "", id.EnterpriseID)
		assert.Equal(t, "T3", id.TeamID)
	})

	t.Run("enterprise install flag carried", func(t *testing.T) {
		id := Derive(Source{TeamID: "T1", IsEnterpriseInstall: true})
		assert.True(t, id.IsEnterpriseInstall)
	})
}
