// Package service contains the application's business rules.
package service

import (
	"context"
	"strings"

	"plotshare/internal/cache"
	"plotshare/internal/models"
	"plotshare/internal/repository"
)

type PlotService struct {
	plotRepo repository.PlotRepository
}

type CreatePlotInput struct {
	AuthorID    uint
	Title       string
	Description string
	Code        string
	ImageURL    string
}

// UpdatePlotInput carries a partial update. Title and Code are required
// non-empty fields, so the empty string means unchanged; Description and
// ImageURL are clearable, so nil means unchanged and a pointed-to empty
// string clears the field.
type UpdatePlotInput struct {
	AuthorID    uint
	PlotID      uint
	Title       string
	Description *string
	Code        string
	ImageURL    *string
}

type ListPlotsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

// cachedListPage is the shape stored in Redis for the anonymous first page.
type cachedListPage struct {
	Plots []*models.Plot `json:"plots"`
	Total int64          `json:"total"`
}

func NewPlotService(plotRepo repository.PlotRepository) *PlotService {
	return &PlotService{plotRepo: plotRepo}
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 4000
)

func validatePlotFields(title, description, code string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(description) > maxDescriptionLen {
		return models.NewValidationError("Description too long (max 4000 characters)")
	}
	if strings.TrimSpace(code) == "" {
		return models.NewValidationError("Code is required")
	}
	return nil
}

func (s *PlotService) CreatePlot(ctx context.Context, in CreatePlotInput) (*models.Plot, error) {
	if err := validatePlotFields(in.Title, in.Description, in.Code); err != nil {
		return nil, err
	}

	plot := &models.Plot{
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		ImageURL:    in.ImageURL,
		AuthorID:    in.AuthorID,
	}
	if err := s.plotRepo.Create(ctx, plot); err != nil {
		return nil, err
	}
	return s.plotRepo.GetByID(ctx, plot.ID, in.AuthorID)
}

// ListPlots returns one page of plots plus the total count. The anonymous
// first page is served cache-aside since it is the hottest read.
func (s *PlotService) ListPlots(ctx context.Context, in ListPlotsInput) ([]*models.Plot, int64, error) {
	if in.CurrentUserID == 0 && in.Offset == 0 {
		var page cachedListPage
		err := cache.Aside(ctx, cache.PlotsListKey(), &page, cache.PlotsListTTL, func() error {
			plots, fetchErr := s.plotRepo.List(ctx, in.Limit, in.Offset, 0)
			if fetchErr != nil {
				return fetchErr
			}
			total, fetchErr := s.plotRepo.Count(ctx)
			if fetchErr != nil {
				return fetchErr
			}
			page = cachedListPage{Plots: plots, Total: total}
			return nil
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Plots, page.Total, nil
	}

	plots, err := s.plotRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.plotRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return plots, total, nil
}

func (s *PlotService) GetPlot(ctx context.Context, id uint, currentUserID uint) (*models.Plot, error) {
	return s.plotRepo.GetByID(ctx, id, currentUserID)
}

// GetUserPlots returns one page of the given author's own plots.
func (s *PlotService) GetUserPlots(ctx context.Context, authorID uint, limit, offset int) ([]*models.Plot, int64, error) {
	plots, err := s.plotRepo.GetByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.plotRepo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}
	return plots, total, nil
}

func (s *PlotService) GetLikedPlots(ctx context.Context, userID uint) ([]*models.Plot, error) {
	return s.plotRepo.GetLikedByUser(ctx, userID)
}

func (s *PlotService) UpdatePlot(ctx context.Context, in UpdatePlotInput) (*models.Plot, error) {
	plot, err := s.plotRepo.GetByID(ctx, in.PlotID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if plot.AuthorID != in.AuthorID {
		return nil, models.NewForbiddenError("You can only update your own plots")
	}

	if in.Title != "" {
		plot.Title = in.Title
	}
	if in.Description != nil {
		plot.Description = *in.Description
	}
	if in.Code != "" {
		plot.Code = in.Code
	}
	if in.ImageURL != nil {
		plot.ImageURL = *in.ImageURL
	}
	if err := validatePlotFields(plot.Title, plot.Description, plot.Code); err != nil {
		return nil, err
	}

	if err := s.plotRepo.Update(ctx, plot); err != nil {
		return nil, err
	}
	return plot, nil
}

func (s *PlotService) DeletePlot(ctx context.Context, plotID, callerID uint) error {
	plot, err := s.plotRepo.GetByID(ctx, plotID, callerID)
	if err != nil {
		return err
	}
	if plot.AuthorID != callerID {
		return models.NewForbiddenError("You can only delete your own plots")
	}
	// Author-filtered lookup keeps the delete scoped even if the ownership
	// check above ever drifts out of sync with the row.
	if _, err := s.plotRepo.GetOwnedByID(ctx, plotID, callerID); err != nil {
		return err
	}
	return s.plotRepo.Delete(ctx, plotID)
}

func (s *PlotService) LikePlot(ctx context.Context, userID, plotID uint) (*models.Plot, error) {
	if err := s.plotRepo.Like(ctx, userID, plotID); err != nil {
		return nil, err
	}
	return s.plotRepo.GetByID(ctx, plotID, userID)
}

// UnlikePlot removes the caller's like. Unliking a plot the caller never
// liked is a no-op, not an error.
func (s *PlotService) UnlikePlot(ctx context.Context, userID, plotID uint) (*models.Plot, error) {
	if _, err := s.plotRepo.GetByID(ctx, plotID, userID); err != nil {
		return nil, err
	}
	if err := s.plotRepo.Unlike(ctx, userID, plotID); err != nil {
		return nil, err
	}
	return s.plotRepo.GetByID(ctx, plotID, userID)
}
