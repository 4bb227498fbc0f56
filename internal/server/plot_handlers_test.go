package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"plotshare/internal/cache"
	"plotshare/internal/config"
	"plotshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Plot{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	cache.SetClient(nil)

	db := setupHandlerTestDB(t)
	cfg := &config.Config{
		JWTSecret: "test-secret-which-is-long-enough-0123",
		Port:      "0",
		Env:       "test",
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r-Secret-Pass!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPlot(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Plot {
	t.Helper()
	plot := &models.Plot{Title: title, Code: "plot(x)", AuthorID: authorID}
	require.NoError(t, db.Create(plot).Error)
	return plot
}

func bearer(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeList(t *testing.T, resp *http.Response) listResponse {
	t.Helper()
	defer resp.Body.Close()
	var out listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetPlots_GridAndPagination(t *testing.T) {
	s, app, db := newTestServer(t)
	author := seedUser(t, db, "author")
	for i := 0; i < 12; i++ {
		seedPlot(t, db, author.ID, fmt.Sprintf("Plot %d", i))
	}

	t.Run("First Page Has Three Full Rows", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/plots/", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeList(t, resp)
		assert.Equal(t, 1, out.Page)
		assert.Equal(t, 9, out.PageSize)
		assert.Equal(t, int64(12), out.Total)
		require.Len(t, out.Rows, 3)
		for _, row := range out.Rows {
			assert.Len(t, row, 3)
		}
	})

	t.Run("Second Page Has Remainder", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/plots/?page=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeList(t, resp)
		assert.Equal(t, 2, out.Page)
		require.Len(t, out.Rows, 1)
		assert.Len(t, out.Rows[0], 3)
	})

	t.Run("Ordering Is Likes Ascending", func(t *testing.T) {
		fan := seedUser(t, db, "fan")
		var firstShown models.Plot
		require.NoError(t, db.Order("created_at ASC, id ASC").First(&firstShown).Error)

		resp := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/plots/%d/like", firstShown.ID), bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		out := decodeList(t, doJSON(t, app, http.MethodGet, "/api/plots/?page=2", "", nil))
		last := out.Rows[len(out.Rows)-1]
		assert.Equal(t, firstShown.ID, last[len(last)-1].ID, "liked plot sinks to the end")
	})
}

func TestCreatePlot_Handler(t *testing.T) {
	s, app, db := newTestServer(t)
	user := seedUser(t, db, "ada")

	t.Run("Anonymous Rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/plots/", "",
			map[string]string{"title": "Spiral", "code": "plot(x)"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Success", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/plots/", bearer(t, s, user),
			map[string]string{"title": "Spiral", "code": "plot(x)", "description": "a spiral"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		defer resp.Body.Close()

		var plot models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&plot))
		assert.Equal(t, user.ID, plot.AuthorID)
		assert.Equal(t, "Spiral", plot.Title)
		assert.Zero(t, plot.Likes)
	})

	t.Run("Missing Code Rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/plots/", bearer(t, s, user),
			map[string]string{"title": "Spiral"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateDeletePlot_Ownership(t *testing.T) {
	s, app, db := newTestServer(t)
	owner := seedUser(t, db, "owner")
	intruder := seedUser(t, db, "intruder")
	plot := seedPlot(t, db, owner.ID, "Mine")

	t.Run("Non Owner Update Forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, intruder),
			map[string]string{"title": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var reloaded models.Plot
		require.NoError(t, db.First(&reloaded, plot.ID).Error)
		assert.Equal(t, "Mine", reloaded.Title, "plot unchanged")
	})

	t.Run("Non Owner Delete Forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, intruder), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var count int64
		db.Model(&models.Plot{}).Count(&count)
		assert.Equal(t, int64(1), count, "plot still present")
	})

	t.Run("Owner Update Succeeds", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, owner),
			map[string]string{"title": "Renamed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var updated models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, "Renamed", updated.Title)
	})

	t.Run("Omitted Description Left Untouched", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Plot{}).
			Where("id = ?", plot.ID).
			UpdateColumn("description", "a spiral").Error)

		resp := doJSON(t, app, http.MethodPut,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, owner),
			map[string]string{"title": "Still Renamed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reloaded models.Plot
		require.NoError(t, db.First(&reloaded, plot.ID).Error)
		assert.Equal(t, "a spiral", reloaded.Description)
	})

	t.Run("Empty Description Clears Field", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, owner),
			map[string]string{"description": ""})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reloaded models.Plot
		require.NoError(t, db.First(&reloaded, plot.ID).Error)
		assert.Empty(t, reloaded.Description)
	})

	t.Run("Owner Delete Succeeds", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/plots/%d", plot.ID), bearer(t, s, owner), nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/plots/%d", plot.ID), "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Anonymous Mutation Unauthorized", func(t *testing.T) {
		other := seedPlot(t, db, owner.ID, "Other")
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/plots/%d", other.ID), "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLikeUnlike_Handler(t *testing.T) {
	s, app, db := newTestServer(t)
	author := seedUser(t, db, "author")
	fan := seedUser(t, db, "fan")
	plot := seedPlot(t, db, author.ID, "Spiral")

	likeURL := fmt.Sprintf("/api/plots/%d/like", plot.ID)

	t.Run("Like Sets Counter And Flag", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, likeURL, bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 1, out.Likes)
		assert.True(t, out.MyFavorite)
	})

	t.Run("Double Like Is Idempotent", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, likeURL, bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 1, out.Likes)

		var rows int64
		db.Model(&models.Like{}).Where("user_id = ? AND plot_id = ?", fan.ID, plot.ID).Count(&rows)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("Detail Flag Differs Per Viewer", func(t *testing.T) {
		detail := fmt.Sprintf("/api/plots/%d", plot.ID)

		resp := doJSON(t, app, http.MethodGet, detail, bearer(t, s, author), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var asAuthor models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&asAuthor))
		resp.Body.Close()
		assert.False(t, asAuthor.MyFavorite)

		resp = doJSON(t, app, http.MethodGet, detail, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var asAnon models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&asAnon))
		resp.Body.Close()
		assert.False(t, asAnon.MyFavorite)
		assert.Equal(t, 1, asAnon.Likes)
	})

	t.Run("Liked Listing Contains The Plot", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/plots/liked", bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out struct {
			Rows  [][]*models.Plot `json:"rows"`
			Total int              `json:"total"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 1, out.Total)
		require.Len(t, out.Rows, 1)
		assert.Equal(t, plot.ID, out.Rows[0][0].ID)
	})

	t.Run("Unlike Restores State", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, likeURL, bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 0, out.Likes)
		assert.False(t, out.MyFavorite)
	})

	t.Run("Unlike Again Is NoOp", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, likeURL, bearer(t, s, fan), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out models.Plot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 0, out.Likes)
	})

	t.Run("Like Missing Plot", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/plots/9999/like", bearer(t, s, fan), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/plots/abc/like", bearer(t, s, fan), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetMyPlots_Handler(t *testing.T) {
	s, app, db := newTestServer(t)
	ada := seedUser(t, db, "ada")
	grace := seedUser(t, db, "grace")
	seedPlot(t, db, ada.ID, "Ada 1")
	seedPlot(t, db, ada.ID, "Ada 2")
	seedPlot(t, db, grace.ID, "Grace 1")

	resp := doJSON(t, app, http.MethodGet, "/api/plots/mine", bearer(t, s, ada), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeList(t, resp)
	assert.Equal(t, int64(2), out.Total)
	require.Len(t, out.Rows, 1)
	assert.Len(t, out.Rows[0], 2)
	for _, p := range out.Rows[0] {
		assert.Equal(t, ada.ID, p.AuthorID)
	}
}
