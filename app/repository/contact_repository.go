package repository

import (
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

func (r *contactRepository) ListRecent(limit int) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.Order("created_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}
