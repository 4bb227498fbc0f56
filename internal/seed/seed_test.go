package seed

import (
	"testing"

	"plotshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Plot{}, &models.Like{}))
	return db
}

func TestSeed(t *testing.T) {
	db := setupSeedTestDB(t)

	err := Seed(db, Options{NumUsers: 5, NumPlots: 10, ShouldClean: true})
	require.NoError(t, err)

	var userCount, plotCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Plot{}).Count(&plotCount)
	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(10), plotCount)

	// Counters match the like rows.
	var plots []models.Plot
	require.NoError(t, db.Find(&plots).Error)
	for _, plot := range plots {
		var likes int64
		db.Model(&models.Like{}).Where("plot_id = ?", plot.ID).Count(&likes)
		assert.Equal(t, likes, int64(plot.Likes), "plot %d counter in sync", plot.ID)
	}
}

func TestSeed_CleanRemovesPreviousData(t *testing.T) {
	db := setupSeedTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 2, NumPlots: 3, ShouldClean: false}))
	require.NoError(t, Seed(db, Options{NumUsers: 4, NumPlots: 6, ShouldClean: true}))

	var userCount, plotCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Plot{}).Count(&plotCount)
	assert.Equal(t, int64(4), userCount)
	assert.Equal(t, int64(6), plotCount)
}

func TestFakeFactories(t *testing.T) {
	user := FakeUser()
	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.Email)
	assert.NotEmpty(t, user.Password)

	plot := FakePlot(7)
	assert.Equal(t, uint(7), plot.AuthorID)
	assert.NotEmpty(t, plot.Title)
	assert.NotEmpty(t, plot.Code)
}
