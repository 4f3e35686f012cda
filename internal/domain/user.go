package domain

// User is the authenticated caller as asserted by the bearer token.
type User struct {
	ID    string
	Email string
	Roles []string
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Roles allowed to manage the catalog, orders and carts of other users.
const (
	RoleAdmin  = "ADMIN"
	RoleSeller = "SELLER"
)

// IsStaff reports whether the user may act on other users' carts, orders and
// addresses.
func (u User) IsStaff() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSeller)
}
