package model

// Role gates access to the admin console.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is USER or ADMIN.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Toggled returns the other role.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// User is a registered shopper or administrator.  Email is unique among
// registered users.  The password never leaves the API; it only travels
// inbound on login and signup.
//
// Fields:
//  ID      – business key ("u-xxxxxxxxx" for signups, "tejovanth" for the master admin).
//  Name    – display name.
//  Email   – lower-cased, unique.
//  Role    – USER or ADMIN.
//  Avatar  – avatar URL.
//  Phone   – optional.
//  Address – optional.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Avatar  string `json:"avatar,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ProfilePatch carries the editable profile fields.  Nil fields are left
// unchanged.
type ProfilePatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Apply returns u with every non-nil patch field written over it.
func (p ProfilePatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return u
}
