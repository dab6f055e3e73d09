package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		expected bool
	}{
		{"technician as technician", Technician, Technician, true},
		{"technician as supervisor", Technician, Supervisor, false},
		{"supervisor as technician", Supervisor, Technician, true},
		{"admin as supervisor", Admin, Supervisor, true},
		{"supervisor as admin", Supervisor, Admin, false},
		{"unknown role", Role("guest"), Technician, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.HasPermission(tt.required))
		})
	}
}

func TestCanApprove(t *testing.T) {
	assert.False(t, CanApprove(Technician))
	assert.True(t, CanApprove(Supervisor))
	assert.True(t, CanApprove(Admin))
	assert.False(t, CanApprove(Role("")))
}
