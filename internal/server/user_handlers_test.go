package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"plotshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfile_Handler(t *testing.T) {
	s, app, db := newTestServer(t)
	user := seedUser(t, db, "ada")
	seedUser(t, db, "grace")

	t.Run("Rename", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me", bearer(t, s, user),
			map[string]string{"username": "ada_lovelace"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out models.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "ada_lovelace", out.Username)
	})

	t.Run("Taken Username Rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, "/api/users/me", bearer(t, s, user),
			map[string]string{"username": "grace"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteMyAccount_Handler(t *testing.T) {
	s, app, db := newTestServer(t)
	user := seedUser(t, db, "ada")
	fan := seedUser(t, db, "fan")
	plot := seedPlot(t, db, user.ID, "Spiral")
	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PlotID: plot.ID}).Error)

	resp := doJSON(t, app, http.MethodDelete, "/api/users/me", bearer(t, s, user), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var plotCount, likeCount int64
	db.Model(&models.Plot{}).Count(&plotCount)
	db.Model(&models.Like{}).Count(&likeCount)
	assert.Zero(t, plotCount, "plots removed with the account")
	assert.Zero(t, likeCount, "likes on those plots removed")

	list := doJSON(t, app, http.MethodGet, "/api/plots/", "", nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	out := decodeList(t, list)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Rows)
}
