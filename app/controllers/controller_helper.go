package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/yaguita/iglesia-backend/internal/pkg/apperror"
)

var validate = validator.New()

// bindJSON decodes the request body into dst and validates its struct tags.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("Requête invalide")
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.Validation(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Requête invalide"
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est requis", field)
	case "email":
		return "Adresse e-mail invalide"
	case "min":
		return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères", field, fe.Param())
	case "max":
		return fmt.Sprintf("Le champ %s ne doit pas dépasser %s caractères", field, fe.Param())
	}
	return fmt.Sprintf("Le champ %s est invalide", field)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// queryLimit reads ?limit= bounded to [1, upper].
func queryLimit(c *fiber.Ctx, def, upper int) int {
	limit := c.QueryInt("limit", def)
	if limit <= 0 {
		return def
	}
	if limit > upper {
		return upper
	}
	return limit
}
