package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"agrocore-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plantPayload(name string) echo.Map {
	return echo.Map{
		"name":                    name,
		"plant_type":              "Carrot",
		"planted_date":            time.Now().AddDate(0, 0, -10).Format(dateLayout),
		"expected_harvest_date":   time.Now().AddDate(0, 0, 10).Format(dateLayout),
		"soil_type":               "Clay",
		"sunlight_exposure":       "Full Sun",
		"avg_temperature_celsius": 18,
		"watering_frequency_days": 3,
	}
}

func TestPlantCRUDWithSuitability(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("grower@farm.io", model.RoleUser, nil)

	rec := env.do(http.MethodPost, "/api/plants", token, plantPayload("North bed"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := body(rec)
	id := res.Get("id").Uint()
	assert.Equal(t, model.PlantActive, res.Get("status").String())
	assert.Equal(t, int64(70), res.Get("suitability.score").Int())
	assert.Equal(t, "Clay soil restricts root growth for this crop.", res.Get("suitability.message").String())
	assert.InDelta(t, 50, res.Get("time_progress").Int(), 5)
	assert.Equal(t, "Root & Tuber Crops", res.Get("category").String())
	assert.True(t, res.Get("owner_user_id").Exists())
	assert.False(t, res.Get("company_id").Exists())

	update := plantPayload("North bed")
	update["soil_type"] = "Loam"
	update["status"] = "Harvested"
	rec = env.do(http.MethodPut, fmt.Sprintf("/api/plants/%d", id), token, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(100), body(rec).Get("suitability.score").Int())
	assert.Equal(t, "Harvested", body(rec).Get("status").String())

	rec = env.do(http.MethodGet, "/api/plants?status=Harvested", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), body(rec).Get("#").Int())

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, fmt.Sprintf("/api/plants/%d", id), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, fmt.Sprintf("/api/plants/%d", id), token, nil).Code)
}

func TestPlantValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("grower@farm.io", model.RoleUser, nil)

	bad := plantPayload("Hot bed")
	bad["avg_temperature_celsius"] = 75
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/plants", token, bad).Code)

	bad = plantPayload("Odd bed")
	bad["status"] = "Sleeping"
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/plants", token, bad).Code)

	bad = plantPayload("Growth")
	bad["growth_stage_percent"] = 101
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/plants", token, bad).Code)
}

func TestTenantScopingOfPlants(t *testing.T) {
	env := newTestEnv(t)
	co, _, bossToken := env.company("Acme", "boss@acme.io")
	_, empToken := env.user("emp@acme.io", model.RoleEmployee, &co.ID)
	_, soloToken := env.user("solo@farm.io", model.RoleUser, nil)
	_, _, rivalToken := env.company("Rival", "boss@rival.io")

	// Created by an employee, stamped with the company
	rec := env.do(http.MethodPost, "/api/plants", empToken, plantPayload("Company field"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body(rec).Get("id").Uint()
	assert.Equal(t, uint64(co.ID), body(rec).Get("company_id").Uint())
	assert.False(t, body(rec).Get("owner_user_id").Exists())

	rec = env.do(http.MethodPost, "/api/plants", soloToken, plantPayload("Backyard"))
	require.Equal(t, http.StatusCreated, rec.Code)
	soloID := body(rec).Get("id").Uint()

	path := fmt.Sprintf("/api/plants/%d", id)

	// Boss sees the employee's plant
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, bossToken, nil).Code)
	rec = env.do(http.MethodGet, "/api/plants", bossToken, nil)
	assert.Equal(t, int64(1), body(rec).Get("#").Int())

	// Others get 404, not 403
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, soloToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, rivalToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, path, rivalToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, fmt.Sprintf("/api/plants/%d", soloID), bossToken, nil).Code)

	// Employees may edit but not delete
	assert.Equal(t, http.StatusOK, env.do(http.MethodPut, path, empToken, plantPayload("Renamed")).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, path, empToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, path, bossToken, nil).Code)
}

func TestEvaluateAndCatalog(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("grower@farm.io", model.RoleUser, nil)

	rec := env.do(http.MethodPost, "/api/crops/evaluate", token, echo.Map{
		"crop_type":               "Tomato",
		"sunlight_exposure":       "Full Shade",
		"avg_temperature_celsius": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(50), body(rec).Get("score").Int())
	assert.Equal(t, "Temperature is low for growth. This crop needs more sun.", body(rec).Get("message").String())

	rec = env.do(http.MethodGet, "/api/crops", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(8), body(rec).Get("categories.#").Int())
}

func TestUpdatePlantKeepsStatusWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("grower@farm.io", model.RoleUser, nil)

	rec := env.do(http.MethodPost, "/api/plants", token, plantPayload("South bed"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	path := fmt.Sprintf("/api/plants/%d", body(rec).Get("id").Uint())

	failed := plantPayload("South bed")
	failed["status"] = model.PlantFailed
	rec = env.do(http.MethodPut, path, token, failed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPut, path, token, plantPayload("South bed, row 2"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.PlantFailed, body(rec).Get("status").String())
	assert.Equal(t, "South bed, row 2", body(rec).Get("name").String())
}
