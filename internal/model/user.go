package model

import (
	"time"
)

type User struct {
	ID             string    `gorm:"primaryKey"`
	UserName       string    `gorm:"uniqueIndex;not null"`
	Email          string    `gorm:"uniqueIndex;not null"`
	FirstName      string    `gorm:"not null"`
	LastName       string    `gorm:"not null"`
	HashedPassword string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`

	Roles []Role `gorm:"many2many:user_roles"`
}

// RoleNames flattens the loaded role set.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
