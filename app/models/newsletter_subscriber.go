package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewsletterSubscriber struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	Name         *string   `gorm:"type:varchar(150)" json:"name" validate:"omitempty,max=150"`
	SubscribedAt time.Time `gorm:"autoCreateTime" json:"subscribed_at"`
	Active       bool      `gorm:"default:true;index" json:"active"`
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
