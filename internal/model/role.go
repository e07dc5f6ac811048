package model

// Role is a named permission set assigned to users.
type Role struct {
	Name string `gorm:"primaryKey"`
}
