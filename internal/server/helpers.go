// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"

	"plotshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	// pageSize is the fixed number of plots per listing page.
	pageSize = 9
	// gridWidth is the number of plots per row in list responses.
	gridWidth = 3
)

// parsePage extracts the 1-based page query parameter.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// mapServiceError translates an AppError code into the matching HTTP status
// and writes the standard error envelope.
func mapServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.ErrCodeNotFound:
			status = fiber.StatusNotFound
		case models.ErrCodeValidation:
			status = fiber.StatusBadRequest
		case models.ErrCodeUnauthorized:
			status = fiber.StatusUnauthorized
		case models.ErrCodeForbidden:
			status = fiber.StatusForbidden
		}
	}

	return models.RespondWithError(c, status, err)
}
