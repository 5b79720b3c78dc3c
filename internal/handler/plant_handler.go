package handler

import (
	"net/http"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/crop"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PlantRequest creates or updates a plant
type PlantRequest struct {
	Name                  string   `json:"name" validate:"required,max=100"`
	PlantType             string   `json:"plant_type" validate:"required,max=50"`
	PlantedDate           string   `json:"planted_date" validate:"required,datetime=2006-01-02"`
	ExpectedHarvestDate   string   `json:"expected_harvest_date" validate:"omitempty,datetime=2006-01-02"`
	GrowthStagePercent    int      `json:"growth_stage_percent" validate:"gte=0,lte=100"`
	NextTask              string   `json:"next_task" validate:"max=200"`
	Notes                 string   `json:"notes"`
	Location              string   `json:"location" validate:"max=100"`
	Status                string   `json:"status" validate:"omitempty,oneof=Active Harvested Failed"`
	SoilType              string   `json:"soil_type" validate:"max=50"`
	SunlightExposure      string   `json:"sunlight_exposure" validate:"max=50"`
	IsIndoor              bool     `json:"is_indoor"`
	AvgTemperatureCelsius *float64 `json:"avg_temperature_celsius" validate:"omitempty,gte=-50,lte=60"`
	WateringFrequencyDays *int     `json:"watering_frequency_days" validate:"omitempty,gte=0,lte=365"`
}

// EvaluateRequest describes growing conditions to score without saving a plant
type EvaluateRequest struct {
	CropType              string   `json:"crop_type" validate:"required"`
	SoilType              string   `json:"soil_type"`
	AvgTemperatureCelsius *float64 `json:"avg_temperature_celsius" validate:"omitempty,gte=-50,lte=60"`
	IsIndoor              bool     `json:"is_indoor"`
	WateringFrequencyDays *int     `json:"watering_frequency_days" validate:"omitempty,gte=0,lte=365"`
	SunlightExposure      string   `json:"sunlight_exposure"`
}

// PlantResponse is a plant with its derived suitability and progress
type PlantResponse struct {
	model.Plant
	Category     string           `json:"category,omitempty"`
	Suitability  crop.Suitability `json:"suitability"`
	TimeProgress int              `json:"time_progress"`
}

func plantResponse(p model.Plant, now time.Time) PlantResponse {
	resp := PlantResponse{
		Plant: p,
		Suitability: crop.CalculateGrowthSuitability(crop.Conditions{
			CropType:              p.PlantType,
			SoilType:              p.SoilType,
			AvgTemperatureCelsius: p.AvgTemperatureCelsius,
			IsIndoor:              p.IsIndoor,
			WateringFrequencyDays: p.WateringFrequencyDays,
			SunlightExposure:      p.SunlightExposure,
		}),
		TimeProgress: crop.CalculateTimeProgress(p.PlantedDate, p.ExpectedHarvestDate, now),
	}
	if catalog, err := crop.Default(); err == nil {
		resp.Category, _ = catalog.CategoryOf(p.PlantType)
	}
	return resp
}

func (req PlantRequest) apply(p *model.Plant) {
	p.Name = req.Name
	p.PlantType = req.PlantType
	p.PlantedDate, _ = time.ParseInLocation(dateLayout, req.PlantedDate, time.UTC)
	p.ExpectedHarvestDate = parseOptionalDate(req.ExpectedHarvestDate)
	p.GrowthStagePercent = req.GrowthStagePercent
	p.NextTask = req.NextTask
	p.Notes = req.Notes
	p.Location = req.Location
	if req.Status != "" {
		p.Status = req.Status
	} else if p.Status == "" {
		p.Status = model.PlantActive
	}
	p.SoilType = req.SoilType
	p.SunlightExposure = req.SunlightExposure
	p.IsIndoor = req.IsIndoor
	p.AvgTemperatureCelsius = req.AvgTemperatureCelsius
	p.WateringFrequencyDays = req.WateringFrequencyDays
}

// parseOptionalDate parses a validated yyyy-mm-dd string, nil when empty
func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// ListPlants returns the plants in the caller's scope
func ListPlants(c echo.Context) error {
	scope := currentScope(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := scope.Apply(dbFor(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var plants []model.Plant
	if err := query.Order("planted_date DESC").Order("id DESC").Find(&plants).Error; err != nil {
		return internalError(c, "failed to load plants", err)
	}

	now := time.Now()
	out := make([]PlantResponse, 0, len(plants))
	for _, p := range plants {
		out = append(out, plantResponse(p, now))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlant returns one plant of the caller's scope
func GetPlant(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var plant model.Plant
	if err := findScoped(c, &plant, id, "plant"); err != nil {
		return done(err)
	}
	return c.JSON(http.StatusOK, plantResponse(plant, time.Now()))
}

// CreatePlant adds a plant stamped with the caller's ownership
func CreatePlant(c echo.Context) error {
	if err := authorize(c, "plant", access.ActionCreate); err != nil {
		return done(err)
	}

	var req PlantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	plant := model.Plant{Ownership: currentScope(c).Stamp()}
	req.apply(&plant)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := dbFor(c).Create(&plant).Error; err != nil {
		return internalError(c, "failed to create plant", err)
	}

	prometheus.RecordOperation("plant", "create")
	logger.FromContext(c).Info("Plant created", zap.Uint("plant_id", plant.ID), zap.String("plant_type", plant.PlantType))
	return c.JSON(http.StatusCreated, plantResponse(plant, time.Now()))
}

// UpdatePlant replaces the editable fields of a plant
func UpdatePlant(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var plant model.Plant
	if err := findScoped(c, &plant, id, "plant"); err != nil {
		return done(err)
	}
	if err := authorize(c, "plant", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req PlantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	req.apply(&plant)

	if err := dbFor(c).Save(&plant).Error; err != nil {
		return internalError(c, "failed to update plant", err)
	}

	prometheus.RecordOperation("plant", "update")
	logger.FromContext(c).Info("Plant updated", zap.Uint("plant_id", plant.ID))
	return c.JSON(http.StatusOK, plantResponse(plant, time.Now()))
}

// DeletePlant removes a plant of the caller's scope
func DeletePlant(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var plant model.Plant
	if err := findScoped(c, &plant, id, "plant"); err != nil {
		return done(err)
	}
	if err := authorize(c, "plant", access.ActionDelete); err != nil {
		return done(err)
	}

	if err := dbFor(c).Delete(&plant).Error; err != nil {
		return internalError(c, "failed to delete plant", err)
	}

	prometheus.RecordOperation("plant", "delete")
	logger.FromContext(c).Info("Plant deleted", zap.Uint("plant_id", plant.ID))
	return c.NoContent(http.StatusNoContent)
}

// EvaluateSuitability scores growing conditions without persisting anything
func EvaluateSuitability(c echo.Context) error {
	var req EvaluateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	result := crop.CalculateGrowthSuitability(crop.Conditions{
		CropType:              req.CropType,
		SoilType:              req.SoilType,
		AvgTemperatureCelsius: req.AvgTemperatureCelsius,
		IsIndoor:              req.IsIndoor,
		WateringFrequencyDays: req.WateringFrequencyDays,
		SunlightExposure:      req.SunlightExposure,
	})
	return c.JSON(http.StatusOK, result)
}

// ListCrops returns the crop catalog
func ListCrops(c echo.Context) error {
	catalog, err := crop.Default()
	if err != nil {
		return internalError(c, "failed to load crop catalog", err)
	}
	return c.JSON(http.StatusOK, catalog)
}
