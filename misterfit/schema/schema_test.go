package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleStudent, NormalizeRole("aluno"))
	assert.Equal(t, RoleTrainer, NormalizeRole("personal"))
	assert.Equal(t, RoleStudent, NormalizeRole("student"))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))

	// Unknown values pass through so callers can reject them.
	assert.Equal(t, "coach", NormalizeRole("coach"))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleTrainer, RoleAdmin} {
		assert.True(t, ValidRole(role), role)
	}
	for _, role := range []string{"", "aluno", "personal", "coach"} {
		assert.False(t, ValidRole(role), role)
	}
}
