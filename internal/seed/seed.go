// Package seed provides database seeding utilities for development.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"plotshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPlots    int
	ShouldClean bool
}

// Seed populates the database with test data. Every generated user has the
// password "password123".
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d plots...", opts.NumUsers, opts.NumPlots)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	plots, err := createPlots(db, users, opts.NumPlots)
	if err != nil {
		return fmt.Errorf("failed to create plots: %w", err)
	}
	log.Printf("%d plots created", len(plots))

	if err := createLikes(db, users, plots); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Println("likes distributed")

	return nil
}

func clearData(db *gorm.DB) error {
	// Unscoped to clear soft-deleted rows too. FK order: likes first.
	if err := db.Unscoped().Where("1 = 1").Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := db.Unscoped().Where("1 = 1").Delete(&models.Plot{}).Error; err != nil {
		return err
	}
	return db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error
}

// FakeUser builds a user with a random identity and the shared dev password.
func FakeUser() *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Password: string(hash),
	}
}

// FakePlot builds a plot owned by the given author.
func FakePlot(authorID uint) *models.Plot {
	return &models.Plot{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		Code:        fmt.Sprintf("plot(%s, color=%q)", gofakeit.Word(), gofakeit.HexColor()),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		AuthorID:    authorID,
	}
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := FakeUser()
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPlots(db *gorm.DB, users []*models.User, n int) ([]*models.Plot, error) {
	if len(users) == 0 {
		return nil, nil
	}
	plots := make([]*models.Plot, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		plot := FakePlot(author.ID)
		if err := db.Create(plot).Error; err != nil {
			return nil, err
		}
		plots = append(plots, plot)
	}
	return plots, nil
}

// createLikes has each user like a random third of the plots, keeping the
// denormalized counter in sync.
func createLikes(db *gorm.DB, users []*models.User, plots []*models.Plot) error {
	for _, user := range users {
		for _, plot := range plots {
			if rand.Intn(3) != 0 {
				continue
			}
			like := &models.Like{UserID: user.ID, PlotID: plot.ID}
			if err := db.Create(like).Error; err != nil {
				return err
			}
			if err := db.Model(plot).
				UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
