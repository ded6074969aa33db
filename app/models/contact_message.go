package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageStatusNew     = "new"
	MessageStatusRead    = "read"
	MessageStatusReplied = "replied"
)

type ContactMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Email     string    `gorm:"type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	Phone     *string   `gorm:"type:varchar(50)" json:"phone" validate:"omitempty,max=50"`
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject" validate:"required,max=255"`
	Message   string    `gorm:"type:text;not null" json:"message" validate:"required"`
	Status    string    `gorm:"type:varchar(20);not null;default:'new'" json:"status" validate:"oneof=new read replied"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
