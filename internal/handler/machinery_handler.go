package handler

import (
	"net/http"
	"strconv"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MachineryRequest creates or updates a machine
type MachineryRequest struct {
	Name            string   `json:"name" validate:"required,max=100"`
	Type            string   `json:"type" validate:"required,max=50"`
	PurchaseDate    string   `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Status          string   `json:"status" validate:"max=20"`
	PurchasePrice   *float64 `json:"purchase_price" validate:"omitempty,gte=0"`
	LastServiceDate string   `json:"last_service_date" validate:"omitempty,datetime=2006-01-02"`
	NextServiceDate string   `json:"next_service_date" validate:"omitempty,datetime=2006-01-02"`
	EngineHours     *float64 `json:"engine_hours" validate:"omitempty,gte=0"`
}

// MaintenanceRequest records a service event
type MaintenanceRequest struct {
	ServiceDate string   `json:"service_date" validate:"required,datetime=2006-01-02"`
	ServiceType string   `json:"service_type" validate:"required,max=100"`
	Cost        *float64 `json:"cost" validate:"omitempty,gte=0"`
	Notes       string   `json:"notes"`
}

// serviceDueHorizonDays is the default look-ahead of ListServiceDue
var serviceDueHorizonDays = 14

// ServiceDueItem is a machine with a human-readable due date
type ServiceDueItem struct {
	model.Machinery
	Due     string `json:"due"`
	Overdue bool   `json:"overdue"`
}

func (req MachineryRequest) apply(m *model.Machinery) {
	m.Name = req.Name
	m.Type = req.Type
	m.PurchaseDate = parseOptionalDate(req.PurchaseDate)
	m.Status = req.Status
	m.PurchasePrice = req.PurchasePrice
	m.LastServiceDate = parseOptionalDate(req.LastServiceDate)
	m.NextServiceDate = parseOptionalDate(req.NextServiceDate)
	m.EngineHours = req.EngineHours
}

// ListMachinery returns the machines of the caller's scope
func ListMachinery(c echo.Context) error {
	scope := currentScope(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var machines []model.Machinery
	if err := scope.Apply(dbFor(c)).Order("name").Find(&machines).Error; err != nil {
		return internalError(c, "failed to load machinery", err)
	}
	return c.JSON(http.StatusOK, machines)
}

// GetMachinery returns one machine of the caller's scope
func GetMachinery(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}
	return c.JSON(http.StatusOK, machine)
}

// CreateMachinery adds a machine
func CreateMachinery(c echo.Context) error {
	if err := authorize(c, "machinery", access.ActionCreate); err != nil {
		return done(err)
	}

	var req MachineryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	machine := model.Machinery{Ownership: currentScope(c).Stamp()}
	req.apply(&machine)
	if err := dbFor(c).Create(&machine).Error; err != nil {
		return internalError(c, "failed to create machinery", err)
	}

	prometheus.RecordOperation("machinery", "create")
	logger.FromContext(c).Info("Machinery created", zap.Uint("machinery_id", machine.ID))
	return c.JSON(http.StatusCreated, machine)
}

// UpdateMachinery replaces the editable fields of a machine
func UpdateMachinery(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}
	if err := authorize(c, "machinery", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req MachineryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	req.apply(&machine)

	if err := dbFor(c).Save(&machine).Error; err != nil {
		return internalError(c, "failed to update machinery", err)
	}

	prometheus.RecordOperation("machinery", "update")
	return c.JSON(http.StatusOK, machine)
}

// DeleteMachinery removes a machine and its maintenance history
func DeleteMachinery(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}
	if err := authorize(c, "machinery", access.ActionDelete); err != nil {
		return done(err)
	}

	err = dbFor(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machinery_id = ?", machine.ID).Delete(&model.MaintenanceHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&machine).Error
	})
	if err != nil {
		return internalError(c, "failed to delete machinery", err)
	}

	prometheus.RecordOperation("machinery", "delete")
	logger.FromContext(c).Info("Machinery deleted", zap.Uint("machinery_id", machine.ID))
	return c.NoContent(http.StatusNoContent)
}

// AddMaintenance records a service and moves the last service date forward
func AddMaintenance(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}
	if err := authorize(c, "machinery", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req MaintenanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	serviceDate := *parseOptionalDate(req.ServiceDate)

	entry := model.MaintenanceHistory{
		MachineryID: machine.ID,
		ServiceDate: serviceDate,
		ServiceType: req.ServiceType,
		Cost:        req.Cost,
		Notes:       req.Notes,
	}

	err = dbFor(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if machine.LastServiceDate == nil || serviceDate.After(*machine.LastServiceDate) {
			machine.LastServiceDate = &serviceDate
			return tx.Model(&machine).Update("last_service_date", serviceDate).Error
		}
		return nil
	})
	if err != nil {
		return internalError(c, "failed to record maintenance", err)
	}

	prometheus.RecordOperation("machinery", "maintenance")
	logger.FromContext(c).Info("Maintenance recorded",
		zap.Uint("machinery_id", machine.ID),
		zap.String("service_type", entry.ServiceType))
	return c.JSON(http.StatusCreated, entry)
}

// ListMaintenance returns the service history of a machine, newest first
func ListMaintenance(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}

	var history []model.MaintenanceHistory
	if err := dbFor(c).Where("machinery_id = ?", machine.ID).
		Order("service_date DESC").Order("id DESC").Find(&history).Error; err != nil {
		return internalError(c, "failed to load maintenance history", err)
	}
	return c.JSON(http.StatusOK, history)
}

// ListServiceDue returns machines whose next service falls within the horizon, overdue ones included
func ListServiceDue(c echo.Context) error {
	scope := currentScope(c)

	days := serviceDueHorizonDays
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be a non-negative integer"})
		}
		days = n
	}

	now := time.Now()
	var machines []model.Machinery
	if err := scope.Apply(dbFor(c)).
		Where("next_service_date IS NOT NULL AND next_service_date <= ?", now.AddDate(0, 0, days)).
		Order("next_service_date").Find(&machines).Error; err != nil {
		return internalError(c, "failed to load machinery", err)
	}

	out := make([]ServiceDueItem, 0, len(machines))
	for _, m := range machines {
		out = append(out, ServiceDueItem{
			Machinery: m,
			Due:       humanize.RelTime(*m.NextServiceDate, now, "ago", "from now"),
			Overdue:   m.NextServiceDate.Before(now),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListForSale publishes a machine on the marketplace
func ListForSale(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var machine model.Machinery
	if err := findScoped(c, &machine, id, "machinery"); err != nil {
		return done(err)
	}
	if err := authorize(c, "marketplace", access.ActionCreate); err != nil {
		return done(err)
	}

	var req ListingRequest
	if req.ItemName == "" {
		req.ItemName = machine.Name
	}
	if req.Category == "" {
		req.Category = "Machinery"
	}
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	listing := model.MarketplaceListing{Ownership: machine.Ownership}
	req.apply(&listing)
	listing.MachineryID = &machine.ID
	listing.EngineHours = machine.EngineHours

	if err := dbFor(c).Create(&listing).Error; err != nil {
		return internalError(c, "failed to create listing", err)
	}

	prometheus.RecordOperation("marketplace", "list_machinery")
	log.Info("Machinery listed for sale",
		zap.Uint("machinery_id", machine.ID),
		zap.Uint("listing_id", listing.ID))
	return c.JSON(http.StatusCreated, listing)
}
