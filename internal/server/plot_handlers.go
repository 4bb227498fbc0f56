package server

import (
	"plotshare/internal/grid"
	"plotshare/internal/models"
	"plotshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// listResponse is the shape of every rowified plot listing.
type listResponse struct {
	Rows     [][]*models.Plot `json:"rows"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

// GetPlots handles GET /api/plots?page=N
func (s *Server) GetPlots(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePage(c)
	userID, _ := s.optionalUserID(c)

	plots, total, err := s.plotService.ListPlots(ctx, service.ListPlotsInput{
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
		CurrentUserID: userID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(listResponse{
		Rows:     grid.Rowify(plots, gridWidth),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetPlot handles GET /api/plots/:id
func (s *Server) GetPlot(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	plot, err := s.plotService.GetPlot(ctx, id, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(plot)
}

// CreatePlot handles POST /api/plots
func (s *Server) CreatePlot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Code        string `json:"code"`
		ImageURL    string `json:"image_url,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	plot, err := s.plotService.CreatePlot(ctx, service.CreatePlotInput{
		AuthorID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(plot)
}

// UpdatePlot handles PUT /api/plots/:id
func (s *Server) UpdatePlot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	plotID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Pointer fields distinguish "leave unchanged" from "clear".
	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Code        string  `json:"code"`
		ImageURL    *string `json:"image_url"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	plot, err := s.plotService.UpdatePlot(ctx, service.UpdatePlotInput{
		AuthorID:    userID,
		PlotID:      plotID,
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(plot)
}

// DeletePlot handles DELETE /api/plots/:id
func (s *Server) DeletePlot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	plotID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.plotService.DeletePlot(ctx, plotID, userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePlot handles POST /api/plots/:id/like
func (s *Server) LikePlot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	plotID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	plot, err := s.plotService.LikePlot(ctx, userID, plotID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(plot)
}

// UnlikePlot handles DELETE /api/plots/:id/like
func (s *Server) UnlikePlot(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	plotID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	plot, err := s.plotService.UnlikePlot(ctx, userID, plotID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(plot)
}

// GetMyPlots handles GET /api/plots/mine?page=N
func (s *Server) GetMyPlots(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePage(c)

	plots, total, err := s.plotService.GetUserPlots(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(listResponse{
		Rows:     grid.Rowify(plots, gridWidth),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetLikedPlots handles GET /api/plots/liked. The liked collection is small
// by nature so it is rowified without pagination.
func (s *Server) GetLikedPlots(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	plots, err := s.plotService.GetLikedPlots(ctx, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"rows":  grid.Rowify(plots, gridWidth),
		"total": len(plots),
	})
}
