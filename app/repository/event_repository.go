package repository

import (
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *eventRepository) GetByID(id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListUpcoming returns events ordered by date ascending
func (r *eventRepository) ListUpcoming(limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Order("date ASC").Limit(limit).Find(&events).Error
	return events, err
}
