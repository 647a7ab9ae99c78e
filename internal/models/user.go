package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the profile mirrored from the identity provider. Its ID is the
// provider's uid.
type User struct {
	Meta        `bson:",inline"`
	Email       string     `bson:"email" json:"email"`
	DisplayName string     `bson:"displayName" json:"displayName"`
	PhoneNumber string     `bson:"phoneNumber" json:"phoneNumber"`
	Role        string     `bson:"role" json:"role"`
	CustomID    string     `bson:"customId" json:"customId"`
	Cart        []CartItem `bson:"cart,omitempty" json:"cart,omitempty"`
}

// IsAdmin reports whether the user may use the dashboard.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credential is the identity provider's private record.
type Credential struct {
	Meta         `bson:",inline"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	LastLoginAt  time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}
