package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/internal/pkg/utils"
)

const (
	ROLE_ADMIN       = "admin"
	ROLE_MEMBER      = "member"
	ROLE_VISITOR     = "visitor"
	STATUS_ACTIVE    = "active"
	STATUS_INACTIVE  = "inactive"
	STATUS_SUSPENDED = "suspended"
)

type User struct {
	ID                  string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email               string                      `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Username            string                      `gorm:"uniqueIndex;type:varchar(100)" json:"username" validate:"required,min=3,max=100"`
	Password            string                      `gorm:"type:text" json:"-" validate:"required"`
	FirstName           string                      `gorm:"type:varchar(100)" json:"first_name" validate:"required,max=100"`
	LastName            string                      `gorm:"type:varchar(100)" json:"last_name" validate:"required,max=100"`
	Phone               *string                     `gorm:"type:varchar(50)" json:"phone"`
	Address             *string                     `gorm:"type:varchar(255)" json:"address"`
	BirthDate           *string                     `gorm:"type:varchar(20)" json:"birth_date"`
	Profession          *string                     `gorm:"type:varchar(150)" json:"profession"`
	Role                string                      `gorm:"type:varchar(20);default:'member'" json:"role" validate:"oneof=admin member visitor"`
	Status              string                      `gorm:"type:varchar(20);default:'active'" json:"status" validate:"oneof=active inactive suspended"`
	EmailVerified       bool                        `gorm:"default:false" json:"email_verified"`
	ProfilePicture      *string                     `gorm:"type:varchar(255)" json:"profile_picture"`
	Bio                 *string                     `gorm:"type:text" json:"bio" validate:"omitempty,max=1000"`
	MinistryInvolvement datatypes.JSONSlice[string] `gorm:"type:json" json:"ministry_involvement"`
	DonationTotal       decimal.Decimal             `gorm:"type:decimal(12,2);not null;default:0" json:"donation_total"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	LastLogin           *time.Time                  `gorm:"type:timestamp;default:null" json:"last_login"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a validated member account with a hashed password.
func CreateUser(email, username, password, firstName, lastName string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	picture := utils.GetGravatarURL(email, 200)
	u := &User{
		ID:                  uuid.NewString(),
		Email:               email,
		Username:            strings.TrimSpace(username),
		Password:            pw,
		FirstName:           strings.TrimSpace(firstName),
		LastName:            strings.TrimSpace(lastName),
		Role:                ROLE_MEMBER,
		Status:              STATUS_ACTIVE,
		ProfilePicture:      &picture,
		MinistryInvolvement: datatypes.JSONSlice[string]{},
		DonationTotal:       decimal.Zero,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
