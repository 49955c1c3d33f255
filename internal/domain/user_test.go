package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Grants(t *testing.T) {
	tests := []struct {
		have     Role
		required Role
		want     bool
	}{
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleSupervisor, false},
		{RoleSupervisor, RoleViewer, true},
		{RoleSupervisor, RoleManager, false},
		{RoleManager, RoleViewer, true},
		{RoleManager, RoleSupervisor, true},
		{RoleManager, RoleAdmin, false},
		{RoleAdmin, RoleManager, true},
		{Role("AUDITOR"), RoleViewer, false},
		{RoleAdmin, Role("AUDITOR"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.have)+"_"+string(tt.required), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have.Grants(tt.required))
		})
	}
}

func TestUser_HasRole(t *testing.T) {
	manager := &User{Roles: []Role{RoleManager}}
	assert.True(t, manager.HasRole(RoleViewer))
	assert.True(t, manager.HasRole(RoleSupervisor))
	assert.True(t, manager.HasRole(RoleManager))
	assert.False(t, manager.HasRole(RoleAdmin))

	none := &User{}
	assert.False(t, none.HasRole(RoleViewer))
}
