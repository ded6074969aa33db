package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) Create(subscriber *models.NewsletterSubscriber) error {
	return r.db.Create(subscriber).Error
}

func (r *newsletterRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.NewsletterSubscriber{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

func (r *newsletterRepository) ListActive(limit int) ([]models.NewsletterSubscriber, error) {
	var subscribers []models.NewsletterSubscriber
	err := r.db.Where("active = ?", true).
		Order("subscribed_at DESC").
		Limit(limit).
		Find(&subscribers).Error
	return subscribers, err
}
