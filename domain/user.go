package domain

import "time"

type Role string

const (
	RoleKitchen  Role = "kitchen"
	RoleWaiter   Role = "waiter"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// StaffRoles are the roles allowed to register through the staff endpoint.
var StaffRoles = []Role{RoleKitchen, RoleWaiter, RoleAdmin}

func (r Role) IsStaff() bool {
	return r == RoleKitchen || r == RoleWaiter || r == RoleAdmin
}

func (r Role) Valid() bool {
	return r.IsStaff() || r == RoleCustomer
}

type User struct {
	ID        uint       `json:"id"`
	Username  *string    `json:"username"`
	Email     *string    `json:"email"`
	Role      Role       `json:"role"`
	FullName  *string    `json:"fullName"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

// UserBrief is the public view of a staff member embedded in other payloads.
type UserBrief struct {
	ID       uint    `json:"id"`
	Username *string `json:"username"`
	FullName *string `json:"fullName"`
}

// Identity is what a bearer token proves about its holder.
type Identity struct {
	UserID   uint
	Role     Role
	Username string
	Email    string
}

// DisplayName prefers the username, then the email.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
