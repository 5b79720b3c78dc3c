package handler

import (
	"fmt"
	"net/http"
	"testing"

	"agrocore-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingPayload(name, category, listingType, description string) echo.Map {
	return echo.Map{
		"item_name":        name,
		"category":         category,
		"condition_status": "Used",
		"description":      description,
		"sale_price":       100,
		"seller_name":      "Seller",
		"seller_phone":     "555-0101",
		"listing_type":     listingType,
	}
}

func TestMarketplaceBrowse(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user("alice@farm.io", model.RoleUser, nil)
	_, _, bossToken := env.company("Acme", "boss@acme.io")

	for _, p := range []echo.Map{
		listingPayload("John Deere Tractor", "Machinery", "Sale", "Well kept"),
		listingPayload("Seed drill", "Machinery", "Rent", "Includes TRACTOR hitch"),
		listingPayload("Organic potatoes", "Produce", "Sale or Rent", "Fresh"),
	} {
		rec := env.do(http.MethodPost, "/api/marketplace", alice, p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := env.do(http.MethodPost, "/api/marketplace", bossToken, listingPayload("Old plough", "Machinery", "Sale", ""))
	require.Equal(t, http.StatusCreated, rec.Code)
	ploughID := body(rec).Get("id").Uint()

	rec = env.do(http.MethodPatch, fmt.Sprintf("/api/marketplace/%d/status", ploughID), bossToken, echo.Map{"status": "Sold"})
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		query string
		want  int64
	}{
		{"", 3},
		{"?category=All", 3},
		{"?category=Machinery", 2},
		{"?q=tractor", 2},
		{"?q=TRACTOR&listing_type=Rent", 1},
		{"?listing_type=Sale%20or%20Rent", 1},
		{"?q=combine", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/marketplace"+tt.query, bossToken, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, body(rec).Get("#").Int())
		})
	}

	// Sold listings stay visible to their owner only
	path := fmt.Sprintf("/api/marketplace/%d", ploughID)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, bossToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, alice, nil).Code)

	rec = env.do(http.MethodGet, "/api/marketplace/mine", bossToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), body(rec).Get("#").Int())
}

func TestMarketplaceOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user("alice@farm.io", model.RoleUser, nil)
	_, bob := env.user("bob@farm.io", model.RoleUser, nil)

	rec := env.do(http.MethodPost, "/api/marketplace", alice, listingPayload("Harrow", "Machinery", "Sale", ""))
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("/api/marketplace/%d", body(rec).Get("id").Uint())

	// Active listings are public to read but private to change
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, path, bob, listingPayload("Mine now", "Machinery", "Sale", "")).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, path, bob, nil).Code)

	rec = env.do(http.MethodPut, path, alice, listingPayload("Disc harrow", "Machinery", "Rent", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Disc harrow", body(rec).Get("item_name").String())

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/marketplace", alice, listingPayload("X", "Machinery", "Swap", "")).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPatch, path+"/status", alice, echo.Map{"status": "Gone"}).Code)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, path, alice, nil).Code)
}

func TestUpdateListingKeepsStatusWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	_, seller := env.user("seller@farm.io", model.RoleUser, nil)

	payload := listingPayload("Baler", "Machinery", "Sale", "Round baler")
	rec := env.do(http.MethodPost, "/api/marketplace", seller, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.ListingActive, body(rec).Get("listing_status").String())
	path := fmt.Sprintf("/api/marketplace/%d", body(rec).Get("id").Uint())

	rec = env.do(http.MethodPatch, path+"/status", seller, echo.Map{"status": "Sold"})
	require.Equal(t, http.StatusOK, rec.Code)

	payload["description"] = "Round baler, fixed typo"
	rec = env.do(http.MethodPut, path, seller, payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.ListingSold, body(rec).Get("listing_status").String())
	assert.Equal(t, "Round baler, fixed typo", body(rec).Get("description").String())

	rec = env.do(http.MethodGet, "/api/marketplace", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), body(rec).Get("#").Int())
}
