package handler

import (
	"errors"
	"net/http"
	"time"

	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyRequest creates or renames a company
type CompanyRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	LogoPath string `json:"logo_path" validate:"omitempty,max=255"`
}

// CreateCompany makes the caller the Boss of a new company
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)

	var req CompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	if scope.CompanyID != nil {
		log.Warn("Caller already belongs to a company")
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already belong to a company"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	company := model.Company{
		Name:            req.Name,
		LogoPath:        req.LogoPath,
		CreatedByUserID: scope.UserID,
	}
	err := dbFor(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", scope.UserID).Updates(map[string]interface{}{
			"company_id": company.ID,
			"role":       model.RoleBoss,
		}).Error
	})
	if err != nil {
		return internalError(c, "failed to create company", err)
	}

	identity.Invalidate(scope.UserID)
	prometheus.RecordOperation("company", "create")
	log.Info("Company created", zap.Uint("company_id", company.ID), zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, company)
}

// GetMyCompany returns the caller's company
func GetMyCompany(c echo.Context) error {
	scope := currentScope(c)

	db := dbFor(c)
	var company model.Company
	if err := loadCompany(c, db, *scope.CompanyID, &company); err != nil {
		return done(err)
	}

	var staff int64
	if err := db.Model(&model.User{}).Where("company_id = ?", company.ID).Count(&staff).Error; err != nil {
		return internalError(c, "failed to count staff", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":                 company.ID,
		"name":               company.Name,
		"logo_path":          company.LogoPath,
		"created_by_user_id": company.CreatedByUserID,
		"created_at":         company.CreatedAt,
		"staff_count":        staff,
	})
}

// UpdateMyCompany renames the caller's company and replaces its logo path
func UpdateMyCompany(c echo.Context) error {
	scope := currentScope(c)

	var req CompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	db := dbFor(c)
	var company model.Company
	if err := loadCompany(c, db, *scope.CompanyID, &company); err != nil {
		return done(err)
	}

	company.Name = req.Name
	if req.LogoPath != "" {
		company.LogoPath = req.LogoPath
	}
	if err := db.Save(&company).Error; err != nil {
		return internalError(c, "failed to update company", err)
	}

	prometheus.RecordOperation("company", "update")
	logger.FromContext(c).Info("Company updated", zap.Uint("company_id", company.ID))
	return c.JSON(http.StatusOK, company)
}

// loadCompany responds 404 when the caller's company row is gone
func loadCompany(c echo.Context, db *gorm.DB, id uint, company *model.Company) error {
	err := db.First(company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.FromContext(c).Warn("Company of caller not found", zap.Uint("company_id", id))
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		return errResponded
	}
	if err != nil {
		_ = internalError(c, "failed to load company", err)
		return errResponded
	}
	return nil
}
