package models

import "time"

// Role names. The two rows are reference data seeded at startup.
const (
	RoleAdministrator = "Administrator"
	RoleClient        = "Client"

	RoleAdministratorID uint = 1
	RoleClientID        uint = 2
)

// Role is an access tier.
type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
}

// User represents a storefront account.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Surname      string    `json:"surname" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // never serialized
	RoleID       uint      `json:"role_id" gorm:"not null;index"`
	Role         *Role     `json:"role,omitempty"`
	Addresses    []Address `json:"addresses,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleName returns the loaded role name, or "" when the role was not preloaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// DefaultAddress returns the user's first address (lowest id), if any.
func (u *User) DefaultAddress() *Address {
	if len(u.Addresses) == 0 {
		return nil
	}
	first := &u.Addresses[0]
	for i := range u.Addresses {
		if u.Addresses[i].ID < first.ID {
			first = &u.Addresses[i]
		}
	}
	return first
}

// Address is a shipping address. The first row per user is the default one.
type Address struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	UserID uint    `json:"user_id" gorm:"not null;index"`
	Street string  `json:"street" gorm:"size:255;not null"`
	Unit   *string `json:"unit" gorm:"size:100"`
	Region string  `json:"region" gorm:"size:100;not null"`
	Comune string  `json:"comune" gorm:"size:100;not null"`
}
