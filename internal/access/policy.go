// Package access holds the role based authorization table for the time
// tracking backend. It has no dependencies on storage or transport so the
// whole policy can be exercised from unit tests.
package access

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned by Check when the policy rejects an operation.
var ErrForbidden = errors.New("access: forbidden")

// Role identifies the permission group of an employee.
type Role string

const (
	// RoleLawyer may read the catalog and manage only their own time entries.
	RoleLawyer Role = "lawyer"
	// RoleSeniorLawyer additionally manages matters and rates and approves entries of others.
	RoleSeniorLawyer Role = "senior_lawyer"
	// RoleAdmin is unrestricted.
	RoleAdmin Role = "admin"
)

// Roles lists every known role in ascending privilege order.
func Roles() []Role {
	return []Role{RoleLawyer, RoleSeniorLawyer, RoleAdmin}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("access: unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleLawyer, RoleSeniorLawyer, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role may act on time entries owned by others.
func (r Role) Elevated() bool {
	return r == RoleSeniorLawyer || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// Resource names a protected entity type.
type Resource string

const (
	ResourceClient       Resource = "client"
	ResourceContract     Resource = "contract"
	ResourceMatter       Resource = "matter"
	ResourceEmployee     Resource = "employee"
	ResourceRate         Resource = "rate"
	ResourceTimeEntry    Resource = "time_entry"
	ResourceActivityType Resource = "activity_type"
)

// Action names what is being done to a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionApprove moves a time entry from draft to approved.
	ActionApprove Action = "approve"
	// ActionReadAll lists or filters time entries across all employees.
	ActionReadAll Action = "read_all"
	// ActionReport builds billing reports over approved entries.
	ActionReport Action = "report"
	// ActionRecalculate re-runs rate resolution for every stored entry.
	ActionRecalculate Action = "recalculate"
)

// Operation is a resource/action pair checked against the policy table.
type Operation struct {
	Resource Resource
	Action   Action
}

func (o Operation) String() string {
	return string(o.Resource) + ":" + string(o.Action)
}

// Op is shorthand for constructing an Operation.
func Op(resource Resource, action Action) Operation {
	return Operation{Resource: resource, Action: action}
}

// Commonly checked operations outside plain CRUD.
var (
	ApproveTimeEntry  = Op(ResourceTimeEntry, ActionApprove)
	ReadAllTimeEntry  = Op(ResourceTimeEntry, ActionReadAll)
	ReportTimeEntry   = Op(ResourceTimeEntry, ActionReport)
	RecalculateRates  = Op(ResourceTimeEntry, ActionRecalculate)
	crudActions       = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	catalogResources  = []Resource{ResourceClient, ResourceContract, ResourceMatter, ResourceEmployee, ResourceRate, ResourceActivityType}
	allResources      = append(append([]Resource(nil), catalogResources...), ResourceTimeEntry)
	timeEntrySpecials = []Action{ActionApprove, ActionReadAll, ActionReport, ActionRecalculate}
)

// grant describes under which ownership condition an operation is permitted.
type grant int

const (
	grantNone grant = iota
	grantAny
	grantOwnOnly
	grantNotOwn
)

var policy = buildPolicy()

func buildPolicy() map[Role]map[Operation]grant {
	lawyer := map[Operation]grant{}
	for _, resource := range catalogResources {
		lawyer[Op(resource, ActionRead)] = grantAny
	}
	for _, action := range crudActions {
		lawyer[Op(ResourceTimeEntry, action)] = grantOwnOnly
	}

	senior := make(map[Operation]grant, len(lawyer)+10)
	for op, g := range lawyer {
		senior[op] = g
	}
	for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		senior[Op(ResourceMatter, action)] = grantAny
		senior[Op(ResourceRate, action)] = grantAny
	}
	senior[Op(ResourceTimeEntry, ActionRead)] = grantAny
	senior[Op(ResourceTimeEntry, ActionUpdate)] = grantAny
	senior[Op(ResourceTimeEntry, ActionDelete)] = grantAny
	senior[ReadAllTimeEntry] = grantAny
	senior[ReportTimeEntry] = grantAny
	senior[ApproveTimeEntry] = grantNotOwn

	admin := map[Operation]grant{}
	for _, resource := range allResources {
		for _, action := range crudActions {
			admin[Op(resource, action)] = grantAny
		}
	}
	for _, action := range timeEntrySpecials {
		admin[Op(ResourceTimeEntry, action)] = grantAny
	}

	return map[Role]map[Operation]grant{
		RoleLawyer:       lawyer,
		RoleSeniorLawyer: senior,
		RoleAdmin:        admin,
	}
}

// Allowed reports whether role may perform op. owned states whether the
// caller owns the target resource; it only matters for ownership gated grants.
func Allowed(role Role, op Operation, owned bool) bool {
	table, ok := policy[role]
	if !ok {
		return false
	}
	switch table[op] {
	case grantAny:
		return true
	case grantOwnOnly:
		return owned
	case grantNotOwn:
		return !owned
	default:
		return false
	}
}

// Operations returns every operation known to the policy table.
func Operations() []Operation {
	ops := make([]Operation, 0, len(allResources)*len(crudActions)+len(timeEntrySpecials))
	for _, resource := range allResources {
		for _, action := range crudActions {
			ops = append(ops, Op(resource, action))
		}
	}
	for _, action := range timeEntrySpecials {
		ops = append(ops, Op(ResourceTimeEntry, action))
	}
	return ops
}

// Check is Allowed expressed as an error so callers can wrap it.
func Check(role Role, op Operation, owned bool) error {
	if Allowed(role, op, owned) {
		return nil
	}
	return fmt.Errorf("%w: role %s may not %s", ErrForbidden, role, op)
}
