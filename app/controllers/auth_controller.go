package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
	"github.com/yaguita/iglesia-backend/internal/pkg/auth"
	"github.com/yaguita/iglesia-backend/internal/pkg/usercontext"
)

type RegisterRequest struct {
	Email      string  `json:"email" validate:"required,email,max=200"`
	Username   string  `json:"username" validate:"required,min=3,max=100"`
	Password   string  `json:"password" validate:"required,min=6,max=128"`
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"required,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	BirthDate  *string `json:"birth_date" validate:"omitempty,max=20"`
	Profession *string `json:"profession" validate:"omitempty,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest carries a partial profile; nil fields are left as is.
type ProfileUpdateRequest struct {
	FirstName           *string   `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName            *string   `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone               *string   `json:"phone" validate:"omitempty,max=50"`
	Address             *string   `json:"address" validate:"omitempty,max=255"`
	BirthDate           *string   `json:"birth_date" validate:"omitempty,max=20"`
	Profession          *string   `json:"profession" validate:"omitempty,max=150"`
	Bio                 *string   `json:"bio" validate:"omitempty,max=1000"`
	MinistryInvolvement *[]string `json:"ministry_involvement" validate:"omitempty,max=20,dive,max=100"`
}

// AuthController handles member registration, login and profile
type AuthController struct {
	users  repository.UserRepository
	tokens *auth.Manager
}

func NewAuthController(users repository.UserRepository, tokens *auth.Manager) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if _, err := ac.users.GetByEmail(req.Email); err == nil {
		return apperror.Validation("Un compte avec cet e-mail existe déjà")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Persistence("Erreur lors de la création du compte", err)
	}
	if _, err := ac.users.GetByUsername(req.Username); err == nil {
		return apperror.Validation("Ce nom d'utilisateur est déjà pris")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Persistence("Erreur lors de la création du compte", err)
	}

	user, err := models.CreateUser(req.Email, req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return apperror.Validation(describeValidation(err))
	}
	user.Phone = req.Phone
	user.Address = req.Address
	user.BirthDate = req.BirthDate
	user.Profession = req.Profession

	if err := ac.users.Create(user); err != nil {
		return apperror.Persistence("Erreur lors de la création du compte", err)
	}
	log.Infof("[Auth] new member registered: %s", user.ID)

	return ac.respondWithToken(c, user, fiber.StatusOK)
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Authentication("E-mail ou mot de passe incorrect", nil)
		}
		return apperror.Persistence("Erreur lors de la connexion", err)
	}
	if !user.CheckPassword(req.Password) {
		return apperror.Authentication("E-mail ou mot de passe incorrect", nil)
	}
	if !user.IsActive() {
		return apperror.Forbidden("Compte désactivé")
	}

	now := time.Now().UTC()
	if err := ac.users.UpdateLastLogin(user.ID, now); err != nil {
		log.Warnf("[Auth] failed to update last login for %s: %v", user.ID, err)
	} else {
		user.LastLogin = &now
	}

	return ac.respondWithToken(c, user, fiber.StatusOK)
}

func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	user, err := ac.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (ac *AuthController) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := ac.currentUser(c)
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}
	if req.BirthDate != nil {
		user.BirthDate = req.BirthDate
	}
	if req.Profession != nil {
		user.Profession = req.Profession
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.MinistryInvolvement != nil {
		user.MinistryInvolvement = datatypes.JSONSlice[string](*req.MinistryInvolvement)
	}

	if err := ac.users.UpdateProfile(user); err != nil {
		return apperror.Persistence("Erreur lors de la mise à jour du profil", err)
	}
	return c.JSON(user)
}

func (ac *AuthController) currentUser(c *fiber.Ctx) (*models.User, error) {
	user, err := ac.users.GetByID(usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authentication("Utilisateur introuvable", nil)
		}
		return nil, apperror.Persistence("Erreur lors du chargement du profil", err)
	}
	return user, nil
}

func (ac *AuthController) respondWithToken(c *fiber.Ctx, user *models.User, status int) error {
	resp, err := ac.tokens.NewTokenResponse(user)
	if err != nil {
		return apperror.Persistence("Erreur lors de la génération du jeton", err)
	}
	return c.Status(status).JSON(resp)
}
