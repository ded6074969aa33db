package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventCategoryConference  = "conference"
	EventCategoryFormation   = "formation"
	EventCategoryCelebration = "celebration"
	EventCategoryCommunity   = "community"
)

// Event is a scheduled church activity. Date is an ISO date string so events
// sort lexically by day.
type Event struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Date        string    `gorm:"type:varchar(10);not null;index" json:"date" validate:"required,datetime=2006-01-02"`
	Time        string    `gorm:"type:varchar(20);not null" json:"time" validate:"required,max=20"`
	Description string    `gorm:"type:text;not null" json:"description" validate:"required"`
	Location    string    `gorm:"type:varchar(255);not null" json:"location" validate:"required,max=255"`
	Category    string    `gorm:"type:varchar(20);not null;default:'community'" json:"category" validate:"oneof=conference formation celebration community"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
