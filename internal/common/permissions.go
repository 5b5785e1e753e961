package common

// Permission keys known to the platform. Handlers guard routes with
// these; the role defaults table in authflow maps roles onto them.
const (
	PermViewSchedule   = "view_schedule"
	PermManageSchedule = "manage_schedule"
	PermViewMembers    = "view_members"
	PermManageMembers  = "manage_members"
	PermManageBookings = "manage_bookings"
	PermViewReports    = "view_reports"
	PermManageSettings = "manage_settings"
	PermManageBilling  = "manage_billing"
	PermRunPayroll     = "run_payroll"
	PermManageRoles    = "manage_roles"
	PermManageFeatures = "manage_features"
)

// PermissionSet is an immutable set of permission keys with a membership
// check. The zero value denies everything, so a capability check can never
// pass before permission resolution has run.
type PermissionSet struct {
	perms map[string]struct{}
}

// NewPermissionSet builds a set from the union of the given keys.
func NewPermissionSet(keys ...[]string) PermissionSet {
	m := make(map[string]struct{})
	for _, group := range keys {
		for _, k := range group {
			m[k] = struct{}{}
		}
	}
	return PermissionSet{perms: m}
}

// Contains reports whether the permission was granted.
func (ps PermissionSet) Contains(permission string) bool {
	if ps.perms == nil {
		return false
	}
	_, ok := ps.perms[permission]
	return ok
}

// Len returns the number of granted permissions.
func (ps PermissionSet) Len() int {
	return len(ps.perms)
}

// Keys returns the granted permission keys in unspecified order.
func (ps PermissionSet) Keys() []string {
	out := make([]string, 0, len(ps.perms))
	for k := range ps.perms {
		out = append(out, k)
	}
	return out
}
