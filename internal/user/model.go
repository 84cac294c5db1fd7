package user

import (
	"time"
)

type RoleName string

const (
	RoleSeller   RoleName = "seller"
	RoleCustomer RoleName = "customer"
)

// RoleNames is the full set of roles seeded into the roles table.
var RoleNames = []RoleName{RoleSeller, RoleCustomer}

func ValidRole(name string) bool {
	for _, r := range RoleNames {
		if string(r) == name {
			return true
		}
	}
	return false
}

type Role struct {
	ID    uint     `gorm:"primaryKey" json:"id"`
	Name  RoleName `gorm:"uniqueIndex;size:16;not null" json:"name"`
	Users []User   `gorm:"many2many:user_roles" json:"-"`
}

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	ProfilePicture *string   `gorm:"size:512" json:"profile_picture"`
	PasswordHash   string    `gorm:"size:128;not null" json:"-"`
	Roles          []Role    `gorm:"many2many:user_roles" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetPassword hashes plaintext and stores only the hash.
func (u *User) SetPassword(plaintext string) error {
	hash, err := HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) Authenticate(plaintext string) bool {
	return CheckPassword(u.PasswordHash, plaintext) == nil
}

// RoleNameList flattens the loaded Roles association.
func (u *User) RoleNameList() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r.Name))
	}
	return names
}
