package auth

import (
	"slices"
	"time"
)

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSalesRep      Role = "sales_rep"
	RoleCustomer      Role = "customer"
)

// Capability is a named permission grant.
type Capability string

const (
	CapManageOptions Capability = "manage_options"
	CapSalesRep      Capability = "sales_rep"
	CapRead          Capability = "read"
)

// roleCapabilities lists the grants each role carries on top of a user's
// explicit capabilities.
var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {CapManageOptions, CapRead},
	RoleSalesRep:      {CapSalesRep, CapRead},
	RoleCustomer:      {CapRead},
}

// RolesGranting returns every role that grants capability.
func RolesGranting(capability Capability) []Role {
	var roles []Role
	for _, role := range []Role{RoleAdministrator, RoleSalesRep, RoleCustomer} {
		if slices.Contains(roleCapabilities[role], capability) {
			roles = append(roles, role)
		}
	}
	return roles
}

// User is the domain representation of a stored account.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID           int64
	Login        string
	Email        string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash string
	Role         Role
	Capabilities []Capability
	SalesRepID   *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Can reports whether the user holds capability either through its role or
// through an explicit grant.
func (u User) Can(capability Capability) bool {
	if slices.Contains(u.Capabilities, capability) {
		return true
	}
	return slices.Contains(roleCapabilities[u.Role], capability)
}

// Grants returns the full capability set of the user.
func (u User) Grants() []Capability {
	grants := slices.Clone(roleCapabilities[u.Role])
	for _, c := range u.Capabilities {
		if !slices.Contains(grants, c) {
			grants = append(grants, c)
		}
	}
	return grants
}

// RegisterRequest contains user registration data supplied by callers.
type RegisterRequest struct {
	Login       string `json:"login"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	SalesRepID  *int64 `json:"sales_rep_id,omitempty"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
