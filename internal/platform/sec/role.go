// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Default role for registered customers
	RoleUser UserRole = "user"

	// Store staff with account management rights
	RoleAdmin UserRole = "admin"
)

// # Rights

// Right names a capability checked by route guards.
type Right string

const (
	// Holders may act on their own resources
	RightUser Right = "user"

	// Holders may act on any account and on the catalog
	RightManageUser Right = "manageUser"
)

// roleRights is the fixed role to rights table.
var roleRights = map[UserRole][]Right{
	RoleUser:  {RightUser},
	RoleAdmin: {RightManageUser},
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	_, ok := roleRights[r]
	return ok
}

// Rights returns the capabilities granted to r.
func (r UserRole) Rights() []Right {
	return roleRights[r]
}

// Can reports whether r grants every right in required.
func (r UserRole) Can(required ...Right) bool {
	granted := roleRights[r]
	for _, want := range required {
		found := false
		for _, have := range granted {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
