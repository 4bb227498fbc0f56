package repository

import (
	"context"
	"errors"
	"time"

	"plotshare/internal/cache"
	"plotshare/internal/models"
	"plotshare/internal/observability"

	"gorm.io/gorm"
)

// PlotRepository defines persistence operations for plots and their likes.
type PlotRepository interface {
	Create(ctx context.Context, plot *models.Plot) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Plot, error)
	GetOwnedByID(ctx context.Context, id uint, authorID uint) (*models.Plot, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Plot, error)
	Count(ctx context.Context) (int64, error)
	GetByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Plot, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	GetLikedByUser(ctx context.Context, userID uint) ([]*models.Plot, error)
	Update(ctx context.Context, plot *models.Plot) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, plotID uint) error
	Unlike(ctx context.Context, userID, plotID uint) error
}

type plotRepository struct {
	db *gorm.DB
}

// NewPlotRepository returns a new PlotRepository implementation.
func NewPlotRepository(db *gorm.DB) PlotRepository {
	return &plotRepository{db: db}
}

// withFavorite selects plot columns plus a my_favorite flag computed against
// the current user's likes. Anonymous readers always get false.
func withFavorite(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID == 0 {
		return db.Select("plots.*, false AS my_favorite")
	}
	return db.Select(
		"plots.*, EXISTS(SELECT 1 FROM likes WHERE likes.plot_id = plots.id AND likes.user_id = ?) AS my_favorite",
		currentUserID,
	)
}

func (r *plotRepository) Create(ctx context.Context, plot *models.Plot) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(plot).Error
	observability.DatabaseQueryLatency.WithLabelValues("create", "plots").Observe(time.Since(start).Seconds())
	if err != nil {
		return models.NewInternalError(err)
	}
	observability.PlotsCreated.Inc()
	cache.InvalidatePlotsList(ctx)
	return nil
}

// GetByID fetches one plot with its author and the viewer's favorite flag.
// The anonymous read is served cache-aside; authenticated reads always hit
// the database because my_favorite is per viewer.
func (r *plotRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Plot, error) {
	var plot models.Plot
	fetch := func() error {
		err := withFavorite(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			First(&plot, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Plot", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	if currentUserID == 0 {
		if err := cache.Aside(ctx, cache.PlotKey(id), &plot, cache.PlotTTL, fetch); err != nil {
			return nil, err
		}
		return &plot, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return &plot, nil
}

// GetOwnedByID fetches a plot only if it belongs to the given author.
func (r *plotRepository) GetOwnedByID(ctx context.Context, id uint, authorID uint) (*models.Plot, error) {
	var plot models.Plot
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		First(&plot, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Plot", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &plot, nil
}

func (r *plotRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Plot, error) {
	var plots []*models.Plot
	start := time.Now()
	err := withFavorite(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Order("plots.likes ASC, plots.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&plots).Error
	observability.DatabaseQueryLatency.WithLabelValues("list", "plots").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plots, nil
}

func (r *plotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Plot{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *plotRepository) GetByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Plot, error) {
	var plots []*models.Plot
	err := withFavorite(r.db.WithContext(ctx), authorID).
		Where("plots.author_id = ?", authorID).
		Preload("Author").
		Order("plots.likes ASC, plots.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&plots).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plots, nil
}

func (r *plotRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Plot{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// GetLikedByUser returns every plot the user has liked, in the global
// likes-ascending ordering. The my_favorite flag is true by construction.
func (r *plotRepository) GetLikedByUser(ctx context.Context, userID uint) ([]*models.Plot, error) {
	var plots []*models.Plot
	err := r.db.WithContext(ctx).
		Select("plots.*, true AS my_favorite").
		Joins("JOIN likes ON likes.plot_id = plots.id").
		Where("likes.user_id = ?", userID).
		Preload("Author").
		Order("plots.likes ASC, plots.created_at ASC").
		Find(&plots).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plots, nil
}

func (r *plotRepository) Update(ctx context.Context, plot *models.Plot) error {
	if err := r.db.WithContext(ctx).Save(plot).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePlot(ctx, plot.ID)
	cache.InvalidatePlotsList(ctx)
	return nil
}

// Delete soft-deletes the plot and hard-deletes its like rows.
func (r *plotRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plot_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Plot{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePlot(ctx, id)
	cache.InvalidatePlotsList(ctx)
	return nil
}

// Like records a like and bumps the plot's counter. The unique index on
// (user_id, plot_id) makes repeats a no-op, so the counter only moves when
// a row was actually inserted.
func (r *plotRepository) Like(ctx context.Context, userID, plotID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Plot{}).Where("id = ?", plotID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return models.NewNotFoundError("Plot", plotID)
		}

		res := tx.Exec(
			"INSERT INTO likes (user_id, plot_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, plot_id) DO NOTHING",
			userID, plotID, time.Now().UTC(),
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already liked, nothing to do.
			return nil
		}
		return tx.Model(&models.Plot{}).
			Where("id = ?", plotID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	observability.LikeToggles.WithLabelValues("like").Inc()
	cache.InvalidatePlot(ctx, plotID)
	cache.InvalidatePlotsList(ctx)
	return nil
}

// Unlike removes the like row and decrements the counter, clamping at zero.
func (r *plotRepository) Unlike(ctx context.Context, userID, plotID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND plot_id = ?", userID, plotID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Plot{}).
			Where("id = ?", plotID).
			UpdateColumn("likes", gorm.Expr(
				"CASE WHEN likes >= ? THEN likes - ? ELSE 0 END",
				res.RowsAffected, res.RowsAffected,
			)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	observability.LikeToggles.WithLabelValues("unlike").Inc()
	cache.InvalidatePlot(ctx, plotID)
	cache.InvalidatePlotsList(ctx)
	return nil
}
