package handlers

import (
	"errors"
	"tienda/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto an HTTP response:
// not found -> 404, duplicate email -> 409, insufficient stock /
// invalid transition / bad input -> 400, anything else -> 500.
func respondError(c *fiber.Ctx, message string, err error) error {
	var (
		notFound     *models.NotFoundError
		dupEmail     *models.DuplicateEmailError
		noStock      *models.InsufficientStockError
		badTransit   *models.InvalidTransitionError
		persistError *models.PersistenceError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = fiber.StatusNotFound
	case errors.As(err, &dupEmail):
		status = fiber.StatusConflict
	case errors.As(err, &noStock), errors.As(err, &badTransit), errors.Is(err, models.ErrNoItems):
		status = fiber.StatusBadRequest
	case errors.As(err, &persistError):
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// respondValidationError formats go-playground/validator failures the
// way the API reports all field-level problems.
func respondValidationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
