package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"agrocore-service/internal/access"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListingRequest creates or updates a marketplace listing
type ListingRequest struct {
	ItemName          string   `json:"item_name" validate:"required,max=100"`
	Category          string   `json:"category" validate:"required,max=50"`
	ConditionStatus   string   `json:"condition_status" validate:"required,max=20"`
	Description       string   `json:"description"`
	SalePrice         *float64 `json:"sale_price" validate:"omitempty,gte=0"`
	RentalPricePerDay *float64 `json:"rental_price_per_day" validate:"omitempty,gte=0"`
	SellerName        string   `json:"seller_name" validate:"required,max=100"`
	SellerPhone       string   `json:"seller_phone" validate:"required,max=20"`
	ImageURL          string   `json:"image_url" validate:"omitempty,max=255"`
	ListingType       string   `json:"listing_type" validate:"required,oneof=Sale Rent 'Sale or Rent'"`
	ListingStatus     string   `json:"listing_status" validate:"omitempty,oneof=Active Sold Expired Deactivated"`
	EngineHours       *float64 `json:"engine_hours" validate:"omitempty,gte=0"`
}

// ListingStatusRequest changes the status of a listing
type ListingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Sold Expired Deactivated"`
}

func (req ListingRequest) apply(l *model.MarketplaceListing) {
	l.ItemName = req.ItemName
	l.Category = req.Category
	l.ConditionStatus = req.ConditionStatus
	l.Description = req.Description
	l.SalePrice = req.SalePrice
	l.RentalPricePerDay = req.RentalPricePerDay
	l.SellerName = req.SellerName
	l.SellerPhone = req.SellerPhone
	l.ImageURL = req.ImageURL
	l.ListingType = req.ListingType
	// an omitted status keeps the stored one; new listings start Active
	if req.ListingStatus != "" {
		l.ListingStatus = req.ListingStatus
	} else if l.ListingStatus == "" {
		l.ListingStatus = model.ListingActive
	}
	l.EngineHours = req.EngineHours
}

// BrowseListings returns active listings of every tenant
func BrowseListings(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := dbFor(c).Where("listing_status = ?", model.ListingActive)
	if category := c.QueryParam("category"); category != "" && category != "All" {
		query = query.Where("category = ?", category)
	}
	if listingType := c.QueryParam("listing_type"); listingType != "" {
		query = query.Where("listing_type = ?", listingType)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(item_name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var listings []model.MarketplaceListing
	if err := query.Order("created_at DESC").Order("id DESC").Find(&listings).Error; err != nil {
		return internalError(c, "failed to load listings", err)
	}
	return c.JSON(http.StatusOK, listings)
}

// ListMyListings returns every listing of the caller's scope regardless of status
func ListMyListings(c echo.Context) error {
	scope := currentScope(c)

	var listings []model.MarketplaceListing
	if err := scope.Apply(dbFor(c)).Order("created_at DESC").Order("id DESC").Find(&listings).Error; err != nil {
		return internalError(c, "failed to load listings", err)
	}
	return c.JSON(http.StatusOK, listings)
}

// GetListing returns an active listing, or an inactive one of the caller's scope
func GetListing(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var listing model.MarketplaceListing
	err = dbFor(c).Preload("Machinery").First(&listing, id).Error
	if err == nil && listing.ListingStatus != model.ListingActive && !scope.Owns(listing.Ownership) {
		err = gorm.ErrRecordNotFound
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}
	if err != nil {
		return internalError(c, "failed to load listing", err)
	}

	// Machine details are private to the owner
	if !scope.Owns(listing.Ownership) {
		listing.Machinery = nil
	}
	return c.JSON(http.StatusOK, listing)
}

// CreateListing publishes a listing owned by the caller's scope
func CreateListing(c echo.Context) error {
	if err := authorize(c, "marketplace", access.ActionCreate); err != nil {
		return done(err)
	}

	var req ListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	listing := model.MarketplaceListing{Ownership: currentScope(c).Stamp()}
	req.apply(&listing)
	if err := dbFor(c).Create(&listing).Error; err != nil {
		return internalError(c, "failed to create listing", err)
	}

	prometheus.RecordOperation("marketplace", "create")
	logger.FromContext(c).Info("Listing created", zap.Uint("listing_id", listing.ID))
	return c.JSON(http.StatusCreated, listing)
}

// UpdateListing replaces the editable fields of a listing
func UpdateListing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var listing model.MarketplaceListing
	if err := findScoped(c, &listing, id, "listing"); err != nil {
		return done(err)
	}
	if err := authorize(c, "marketplace", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req ListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	req.apply(&listing)

	if err := dbFor(c).Save(&listing).Error; err != nil {
		return internalError(c, "failed to update listing", err)
	}

	prometheus.RecordOperation("marketplace", "update")
	return c.JSON(http.StatusOK, listing)
}

// SetListingStatus marks a listing Active, Sold, Expired or Deactivated
func SetListingStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var listing model.MarketplaceListing
	if err := findScoped(c, &listing, id, "listing"); err != nil {
		return done(err)
	}
	if err := authorize(c, "marketplace", access.ActionUpdate); err != nil {
		return done(err)
	}

	var req ListingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	if err := dbFor(c).Model(&listing).Update("listing_status", req.Status).Error; err != nil {
		return internalError(c, "failed to change listing status", err)
	}
	listing.ListingStatus = req.Status

	prometheus.RecordOperation("marketplace", "status")
	logger.FromContext(c).Info("Listing status changed",
		zap.Uint("listing_id", listing.ID),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, listing)
}

// DeleteListing removes a listing of the caller's scope
func DeleteListing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var listing model.MarketplaceListing
	if err := findScoped(c, &listing, id, "listing"); err != nil {
		return done(err)
	}
	if err := authorize(c, "marketplace", access.ActionDelete); err != nil {
		return done(err)
	}

	if err := dbFor(c).Delete(&listing).Error; err != nil {
		return internalError(c, "failed to delete listing", err)
	}

	prometheus.RecordOperation("marketplace", "delete")
	logger.FromContext(c).Info("Listing deleted", zap.Uint("listing_id", listing.ID))
	return c.NoContent(http.StatusNoContent)
}
