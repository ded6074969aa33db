package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yaguita/iglesia-backend/app/models"
)

// ChurchController serves the static church identity and service schedule
type ChurchController struct {
	info     models.ChurchInfo
	services []models.ChurchService
}

func NewChurchController(info models.ChurchInfo, services []models.ChurchService) *ChurchController {
	return &ChurchController{info: info, services: services}
}

func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello World"})
}

func (cc *ChurchController) HandleChurchInfo(c *fiber.Ctx) error {
	return c.JSON(cc.info)
}

func (cc *ChurchController) HandleServices(c *fiber.Ctx) error {
	return c.JSON(cc.services)
}
