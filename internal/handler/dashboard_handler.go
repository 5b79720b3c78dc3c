package handler

import (
	"fmt"
	"net/http"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"
	"agrocore-service/prometheus"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// maxActiveCrops bounds the crop list on the dashboard
const maxActiveCrops = 6

// ActiveCrop is a dashboard line for a growing plant
type ActiveCrop struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	PlantType          string `json:"plant_type"`
	GrowthStagePercent int    `json:"growth_stage_percent"`
	TimeProgress       int    `json:"time_progress"`
	SuitabilityScore   int    `json:"suitability_score"`
}

// DashboardSummary counts the records of a scope
type DashboardSummary struct {
	ActivePlants int64        `json:"active_plants"`
	Resources    int64        `json:"resources"`
	Machinery    int64        `json:"machinery"`
	LowStock     int64        `json:"low_stock"`
	ServiceDue   int64        `json:"service_due"`
	ActiveCrops  []ActiveCrop `json:"active_crops"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

var dashboards = expirable.NewLRU[string, DashboardSummary](256, nil, 15*time.Second)

// Configure applies runtime settings to the handlers
func Configure(cfg *config.Config) {
	size := cfg.Cache.DashboardSize
	if size <= 0 {
		size = 256
	}
	dashboards = expirable.NewLRU[string, DashboardSummary](size, nil, cfg.Cache.DashboardTTL)
	if cfg.Scheduler.ServiceDueHorizonDays > 0 {
		serviceDueHorizonDays = cfg.Scheduler.ServiceDueHorizonDays
	}
}

func scopeKey(s access.Scope) string {
	if s.CompanyID != nil {
		return fmt.Sprintf("company:%d", *s.CompanyID)
	}
	return fmt.Sprintf("user:%d", s.UserID)
}

// GetDashboard summarises the caller's scope
func GetDashboard(c echo.Context) error {
	scope := currentScope(c)
	key := scopeKey(scope)

	if summary, ok := dashboards.Get(key); ok {
		return c.JSON(http.StatusOK, summary)
	}

	summary, err := buildDashboard(dbFor(c), scope, time.Now())
	if err != nil {
		return internalError(c, "failed to build dashboard", err)
	}
	dashboards.Add(key, summary)
	return c.JSON(http.StatusOK, summary)
}

func buildDashboard(db *gorm.DB, scope access.Scope, now time.Time) (DashboardSummary, error) {
	defer prometheus.TrackDBOperation("dashboard")(time.Now())
	summary := DashboardSummary{GeneratedAt: now}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&model.Plant{}, "status = ?", []interface{}{model.PlantActive}, &summary.ActivePlants},
		{&model.Resource{}, "", nil, &summary.Resources},
		{&model.Machinery{}, "", nil, &summary.Machinery},
		{&model.Resource{}, "quantity <= low_stock_threshold", nil, &summary.LowStock},
		{&model.Machinery{}, "next_service_date IS NOT NULL AND next_service_date <= ?", []interface{}{now.AddDate(0, 0, serviceDueHorizonDays)}, &summary.ServiceDue},
	}
	for _, q := range counts {
		tx := scope.Apply(db.Model(q.model))
		if q.where != "" {
			tx = tx.Where(q.where, q.args...)
		}
		if err := tx.Count(q.dest).Error; err != nil {
			return summary, fmt.Errorf("count %T: %w", q.model, err)
		}
	}

	var plants []model.Plant
	if err := scope.Apply(db).Where("status = ?", model.PlantActive).
		Order("planted_date DESC").Order("id DESC").Limit(maxActiveCrops).Find(&plants).Error; err != nil {
		return summary, fmt.Errorf("load active crops: %w", err)
	}

	summary.ActiveCrops = make([]ActiveCrop, 0, len(plants))
	for _, p := range plants {
		resp := plantResponse(p, now)
		summary.ActiveCrops = append(summary.ActiveCrops, ActiveCrop{
			ID:                 p.ID,
			Name:               p.Name,
			PlantType:          p.PlantType,
			GrowthStagePercent: p.GrowthStagePercent,
			TimeProgress:       resp.TimeProgress,
			SuitabilityScore:   resp.Suitability.Score,
		})
	}
	return summary, nil
}
