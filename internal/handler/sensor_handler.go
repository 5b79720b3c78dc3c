package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultReadingLimit = 50
	maxReadingLimit     = 500
)

// SensorRequest creates or updates a sensor
type SensorRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	SensorType       string `json:"sensor_type" validate:"required,max=20"`
	Location         string `json:"location" validate:"max=100"`
	InstallationDate string `json:"installation_date" validate:"omitempty,datetime=2006-01-02"`
}

// ReadingRequest is one sample reported by a sensor
type ReadingRequest struct {
	Timestamp       *time.Time `json:"timestamp"`
	HumidityPercent *float64   `json:"humidity_percent" validate:"omitempty,gte=0,lte=100"`
	TemperatureC    *float64   `json:"temperature_c" validate:"omitempty,gte=-50,lte=60"`
}

func (req SensorRequest) apply(s *model.Sensor) {
	s.Name = req.Name
	s.SensorType = req.SensorType
	s.Location = req.Location
	if d := parseOptionalDate(req.InstallationDate); d != nil {
		s.InstallationDate = *d
	} else if s.InstallationDate.IsZero() {
		s.InstallationDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
}

// ListSensors returns the sensors of the caller's scope
func ListSensors(c echo.Context) error {
	scope := currentScope(c)

	var sensors []model.Sensor
	if err := scope.Apply(dbFor(c)).Order("name").Find(&sensors).Error; err != nil {
		return internalError(c, "failed to load sensors", err)
	}
	return c.JSON(http.StatusOK, sensors)
}

// GetSensor returns one sensor of the caller's scope
func GetSensor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}
	return c.JSON(http.StatusOK, sensor)
}

// CreateSensor registers a sensor
func CreateSensor(c echo.Context) error {
	if err := authorize(c, "sensor", access.ActionCreate); err != nil {
		return done(err)
	}

	var req SensorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	sensor := model.Sensor{Ownership: currentScope(c).Stamp()}
	req.apply(&sensor)
	if err := dbFor(c).Create(&sensor).Error; err != nil {
		return internalError(c, "failed to create sensor", err)
	}

	prometheus.RecordOperation("sensor", "create")
	logger.FromContext(c).Info("Sensor created", zap.Uint("sensor_id", sensor.ID))
	return c.JSON(http.StatusCreated, sensor)
}

// UpdateSensor replaces the editable fields of a sensor
func UpdateSensor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}
	if err := authorize(c, "sensor", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req SensorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	req.apply(&sensor)

	if err := dbFor(c).Save(&sensor).Error; err != nil {
		return internalError(c, "failed to update sensor", err)
	}

	prometheus.RecordOperation("sensor", "update")
	return c.JSON(http.StatusOK, sensor)
}

// DeleteSensor removes a sensor and its readings
func DeleteSensor(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}
	if err := authorize(c, "sensor", access.ActionDelete); err != nil {
		return done(err)
	}

	err = dbFor(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sensor_id = ?", sensor.ID).Delete(&model.SensorReading{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sensor).Error
	})
	if err != nil {
		return internalError(c, "failed to delete sensor", err)
	}

	prometheus.RecordOperation("sensor", "delete")
	logger.FromContext(c).Info("Sensor deleted", zap.Uint("sensor_id", sensor.ID))
	return c.NoContent(http.StatusNoContent)
}

// RecordReading stores a sample, stamped now unless a timestamp is given
func RecordReading(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}
	if err := authorize(c, "sensor", access.ActionCreate); err != nil {
		return done(err)
	}

	var req ReadingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	reading := model.SensorReading{
		SensorID:        sensor.ID,
		Timestamp:       time.Now().UTC(),
		HumidityPercent: req.HumidityPercent,
		TemperatureC:    req.TemperatureC,
	}
	if req.Timestamp != nil {
		reading.Timestamp = req.Timestamp.UTC()
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := dbFor(c).Create(&reading).Error; err != nil {
		return internalError(c, "failed to record reading", err)
	}

	prometheus.RecordOperation("sensor", "reading")
	return c.JSON(http.StatusCreated, reading)
}

// ListReadings returns the newest readings of a sensor
func ListReadings(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}

	limit := defaultReadingLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}
	if limit > maxReadingLimit {
		limit = maxReadingLimit
	}

	var readings []model.SensorReading
	if err := dbFor(c).Where("sensor_id = ?", sensor.ID).
		Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&readings).Error; err != nil {
		return internalError(c, "failed to load readings", err)
	}
	return c.JSON(http.StatusOK, readings)
}

// LatestReading returns the most recent reading of a sensor
func LatestReading(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var sensor model.Sensor
	if err := findScoped(c, &sensor, id, "sensor"); err != nil {
		return done(err)
	}

	var reading model.SensorReading
	err = dbFor(c).Where("sensor_id = ?", sensor.ID).
		Order("timestamp DESC").Order("id DESC").First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no readings yet"})
	}
	if err != nil {
		return internalError(c, "failed to load reading", err)
	}
	return c.JSON(http.StatusOK, reading)
}
