package authz

import (
	"testing"

	"github.com/openlease/openlease/internal/domain/actor"
)

func TestAllowFullPolicy(t *testing.T) {
	tests := []struct {
		role   actor.Role
		action Action
		want   bool
	}{
		{actor.RoleLandlord, ActionManageProperty, true},
		{actor.RoleLandlord, ActionSubmitApplication, false},
		{actor.RoleLandlord, ActionDecideApplication, true},
		{actor.RoleLandlord, ActionReportMaintenance, true},
		{actor.RoleLandlord, ActionResolveMaintenance, true},
		{actor.RoleLandlord, ActionViewOwnerDashboard, true},
		{actor.RoleTenant, ActionManageProperty, false},
		{actor.RoleTenant, ActionSubmitApplication, true},
		{actor.RoleTenant, ActionDecideApplication, false},
		{actor.RoleTenant, ActionReportMaintenance, true},
		{actor.RoleTenant, ActionResolveMaintenance, false},
		{actor.RoleTenant, ActionViewOwnerDashboard, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			if got := Allow(tt.role, tt.action); got != tt.want {
				t.Errorf("Allow(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}

	// Every action must appear in the table above exactly twice.
	if len(tests) != len(Actions)*2 {
		t.Errorf("policy table covers %d cases, want %d", len(tests), len(Actions)*2)
	}
}

func TestAllowUnknownRole(t *testing.T) {
	if Allow(actor.Role("admin"), ActionManageProperty) {
		t.Error("unknown role must never be allowed")
	}
}

func TestAllowUnknownAction(t *testing.T) {
	if Allow(actor.RoleLandlord, Action("delete-everything")) {
		t.Error("unknown action must never be allowed")
	}
}
