package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/app/repository"
	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
)

const eventListLimit = 50

type EventRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,max=20"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required,max=255"`
	Category    string `json:"category" validate:"omitempty,oneof=conference formation celebration community"`
}

type EventController struct {
	repo repository.EventRepository
}

func NewEventController(repo repository.EventRepository) *EventController {
	return &EventController{repo: repo}
}

func (ec *EventController) HandleList(c *fiber.Ctx) error {
	events, err := ec.repo.ListUpcoming(eventListLimit)
	if err != nil {
		return apperror.Persistence("Erreur lors du chargement des événements", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(events)
}

func (ec *EventController) HandleGet(c *fiber.Ctx) error {
	event, err := ec.repo.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Événement non trouvé")
		}
		return apperror.Persistence("Erreur lors du chargement de l'événement", err)
	}
	return c.JSON(event)
}

// HandleCreate adds an event (admin)
func (ec *EventController) HandleCreate(c *fiber.Ctx) error {
	var req EventRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	category := req.Category
	if category == "" {
		category = models.EventCategoryCommunity
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Location:    strings.TrimSpace(req.Location),
		Category:    category,
	}
	if err := ec.repo.Create(event); err != nil {
		return apperror.Persistence("Erreur lors de la création de l'événement", err)
	}
	return c.JSON(event)
}
