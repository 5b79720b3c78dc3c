package handler

import (
	"errors"
	"net/http"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResourceRequest creates or updates an inventory item
type ResourceRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Category          string  `json:"category" validate:"required,max=50"`
	Quantity          float64 `json:"quantity" validate:"gte=0"`
	Unit              string  `json:"unit" validate:"max=20"`
	LowStockThreshold float64 `json:"low_stock_threshold" validate:"gte=0"`
	Supplier          string  `json:"supplier" validate:"max=100"`
}

// AdjustRequest changes a quantity by a signed amount
type AdjustRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

// UsageRequest records consumption of a resource
type UsageRequest struct {
	QuantityUsed float64 `json:"quantity_used" validate:"required,gt=0"`
	UsageDate    string  `json:"usage_date" validate:"omitempty,datetime=2006-01-02"`
	PlantID      *uint   `json:"plant_id"`
	FieldName    string  `json:"field_name" validate:"max=100"`
	Notes        string  `json:"notes"`
}

var (
	errInsufficientStock = errors.New("insufficient stock")
	errPlantNotFound     = errors.New("plant not found")
)

// ResourceResponse is a resource with its low stock flag
type ResourceResponse struct {
	model.Resource
	IsLowStock bool `json:"is_low_stock"`
}

func resourceResponse(r model.Resource) ResourceResponse {
	return ResourceResponse{Resource: r, IsLowStock: r.IsLowStock()}
}

func (req ResourceRequest) apply(r *model.Resource) {
	r.Name = req.Name
	r.Category = req.Category
	r.Quantity = req.Quantity
	r.Unit = req.Unit
	r.LowStockThreshold = req.LowStockThreshold
	r.Supplier = req.Supplier
}

// ListResources returns the inventory of the caller's scope
func ListResources(c echo.Context) error {
	scope := currentScope(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := scope.Apply(dbFor(c))
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var resources []model.Resource
	if err := query.Order("name").Find(&resources).Error; err != nil {
		return internalError(c, "failed to load resources", err)
	}

	out := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, resourceResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// ListLowStock returns the resources at or below their alert threshold
func ListLowStock(c echo.Context) error {
	scope := currentScope(c)

	var resources []model.Resource
	if err := scope.Apply(dbFor(c)).Where("quantity <= low_stock_threshold").
		Order("name").Find(&resources).Error; err != nil {
		return internalError(c, "failed to load resources", err)
	}

	out := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, resourceResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetResource returns one resource of the caller's scope
func GetResource(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}
	return c.JSON(http.StatusOK, resourceResponse(resource))
}

// CreateResource adds an inventory item
func CreateResource(c echo.Context) error {
	if err := authorize(c, "resource", access.ActionCreate); err != nil {
		return done(err)
	}

	var req ResourceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	resource := model.Resource{Ownership: currentScope(c).Stamp()}
	req.apply(&resource)
	if err := dbFor(c).Create(&resource).Error; err != nil {
		return internalError(c, "failed to create resource", err)
	}

	prometheus.RecordOperation("resource", "create")
	logger.FromContext(c).Info("Resource created", zap.Uint("resource_id", resource.ID))
	return c.JSON(http.StatusCreated, resourceResponse(resource))
}

// UpdateResource replaces the editable fields of a resource
func UpdateResource(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}
	if err := authorize(c, "resource", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req ResourceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	req.apply(&resource)

	if err := dbFor(c).Save(&resource).Error; err != nil {
		return internalError(c, "failed to update resource", err)
	}

	prometheus.RecordOperation("resource", "update")
	return c.JSON(http.StatusOK, resourceResponse(resource))
}

// DeleteResource removes a resource of the caller's scope
func DeleteResource(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}
	if err := authorize(c, "resource", access.ActionDelete); err != nil {
		return done(err)
	}

	if err := dbFor(c).Delete(&resource).Error; err != nil {
		return internalError(c, "failed to delete resource", err)
	}

	prometheus.RecordOperation("resource", "delete")
	logger.FromContext(c).Info("Resource deleted", zap.Uint("resource_id", resource.ID))
	return c.NoContent(http.StatusNoContent)
}

// AdjustQuantity adds a signed delta to the stock, never going below zero
func AdjustQuantity(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}
	if err := authorize(c, "resource", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req AdjustRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	resource.Quantity += req.Delta
	if resource.Quantity < 0 {
		resource.Quantity = 0
	}
	if err := dbFor(c).Model(&resource).Update("quantity", resource.Quantity).Error; err != nil {
		return internalError(c, "failed to adjust quantity", err)
	}

	prometheus.RecordOperation("resource", "adjust")
	logger.FromContext(c).Info("Resource quantity adjusted",
		zap.Uint("resource_id", resource.ID),
		zap.Float64("delta", req.Delta),
		zap.Float64("quantity", resource.Quantity))
	return c.JSON(http.StatusOK, resourceResponse(resource))
}

// RecordUsage consumes stock, optionally against a plant of the same scope
func RecordUsage(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}
	if err := authorize(c, "resource", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req UsageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	usage := model.ResourceUsage{
		ResourceID:   resource.ID,
		QuantityUsed: req.QuantityUsed,
		UsageDate:    time.Now().UTC(),
		PlantID:      req.PlantID,
		FieldName:    req.FieldName,
		Notes:        req.Notes,
	}
	if d := parseOptionalDate(req.UsageDate); d != nil {
		usage.UsageDate = *d
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = dbFor(c).Transaction(func(tx *gorm.DB) error {
		if req.PlantID != nil {
			var count int64
			if err := scope.Apply(tx.Model(&model.Plant{})).Where("id = ?", *req.PlantID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return errPlantNotFound
			}
		}

		// Conditional decrement so concurrent usages cannot overdraw
		result := tx.Model(&model.Resource{}).
			Where("id = ? AND quantity >= ?", resource.ID, req.QuantityUsed).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", req.QuantityUsed))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errInsufficientStock
		}

		return tx.Create(&usage).Error
	})

	switch {
	case errors.Is(err, errPlantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, errInsufficientStock):
		log.Warn("Usage exceeds stock",
			zap.Uint("resource_id", resource.ID),
			zap.Float64("requested", req.QuantityUsed),
			zap.Float64("available", resource.Quantity))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case err != nil:
		return internalError(c, "failed to record usage", err)
	}

	prometheus.RecordOperation("resource", "usage")
	log.Info("Resource usage recorded", zap.Uint("resource_id", resource.ID), zap.Float64("quantity_used", req.QuantityUsed))
	return c.JSON(http.StatusCreated, usage)
}

// ListUsages returns the usage history of a resource, newest first
func ListUsages(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var resource model.Resource
	if err := findScoped(c, &resource, id, "resource"); err != nil {
		return done(err)
	}

	var usages []model.ResourceUsage
	if err := dbFor(c).Where("resource_id = ?", resource.ID).
		Order("usage_date DESC").Order("id DESC").Find(&usages).Error; err != nil {
		return internalError(c, "failed to load usages", err)
	}
	return c.JSON(http.StatusOK, usages)
}
