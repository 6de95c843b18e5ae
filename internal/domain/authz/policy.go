// Package authz defines the role-based action policy for the marketplace.
//
// The policy table is deliberately a closed enumeration over Role x Action so
// that every combination is checkable in tests. Ownership ("own property
// only") is not decided here; services check it next to the entity fetch.
package authz

import "github.com/openlease/openlease/internal/domain/actor"

// Action identifies a mutating operation that requires authorization.
type Action string

const (
	ActionManageProperty     Action = "property.manage"     // create or edit a property
	ActionSubmitApplication  Action = "application.submit"  // apply to rent a property
	ActionDecideApplication  Action = "application.decide"  // approve or reject an application
	ActionReportMaintenance  Action = "maintenance.report"  // report a maintenance issue
	ActionResolveMaintenance Action = "maintenance.resolve" // assign contractor, complete, or cancel
	ActionViewOwnerDashboard Action = "dashboard.owner"     // landlord portfolio summary
)

// Actions lists every defined action, in policy-table order.
var Actions = []Action{
	ActionManageProperty,
	ActionSubmitApplication,
	ActionDecideApplication,
	ActionReportMaintenance,
	ActionResolveMaintenance,
	ActionViewOwnerDashboard,
}

// policy maps each role to the set of actions it may perform.
var policy = map[actor.Role]map[Action]bool{
	actor.RoleLandlord: {
		ActionManageProperty:     true,
		ActionDecideApplication:  true,
		ActionReportMaintenance:  true,
		ActionResolveMaintenance: true,
		ActionViewOwnerDashboard: true,
	},
	actor.RoleTenant: {
		ActionSubmitApplication: true,
		ActionReportMaintenance: true,
	},
}

// Allow reports whether the given role may perform the action. Unknown roles
// and unknown actions are denied.
func Allow(role actor.Role, action Action) bool {
	return policy[role][action]
}
