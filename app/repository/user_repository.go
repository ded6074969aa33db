package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileColumns are the columns a member may change on their own profile.
var ProfileColumns = []string{
	"first_name",
	"last_name",
	"phone",
	"address",
	"birth_date",
	"profession",
	"bio",
	"ministry_involvement",
	"updated_at",
}

func (r *userRepository) UpdateProfile(user *models.User) error {
	return profileUpdate(r.db, user).Error
}

// profileUpdate leaves donation_total to the atomic increment in
// AddDonationTotal so a concurrent reconcile is never overwritten.
func profileUpdate(db *gorm.DB, user *models.User) *gorm.DB {
	return db.Model(user).Select(ProfileColumns).Updates(user)
}

func (r *userRepository) UpdateLastLogin(id string, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *userRepository) AddDonationTotal(ctx context.Context, id string, amount decimal.Decimal) error {
	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"donation_total": gorm.Expr("donation_total + ?", amount),
			"updated_at":     time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
