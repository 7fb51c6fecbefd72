package domain

import "time"

// Role is the closed set of principal roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User is the account entity. The API never mutates users; they exist so
// requests can be resolved to a principal and so trade reads can attach the
// owner's public profile.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Profile   string    `bson:"profile,omitempty" json:"profile,omitempty"`
	Role      Role      `bson:"role" json:"role"`
	TaxID     string    `bson:"tax_id,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// PublicProfile is the subset of user attributes exposed on trade reads.
type PublicProfile struct {
	Username string `json:"username"`
	Profile  string `json:"profile,omitempty"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{Username: u.Username, Profile: u.Profile}
}

// Principal is the authenticated identity acting on a request.
type Principal struct {
	ID    string
	Role  Role
	TaxID string
}

// CanMutate reports whether the principal may update or delete a resource
// owned by ownerID: the owner always can, an admin always can.
func (p Principal) CanMutate(ownerID string) bool {
	return p.ID == ownerID || p.Role == RoleAdmin
}
