package model

import (
	"time"
)

type Task struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"not null" validate:"required,max=200"`
	Description *string   `validate:"omitempty,max=2000"`
	IsCompleted bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	OwnerID     string    `gorm:"not null;index"`
}
