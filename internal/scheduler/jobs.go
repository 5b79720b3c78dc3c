package scheduler

import (
	"context"
	"fmt"
	"time"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"
	"agrocore-service/prometheus"

	"gorm.io/gorm"
)

// Job names as reported in logs and metrics
const (
	JobSalaryReset   = "salary_reset"
	JobListingExpiry = "listing_expiry"
	JobGaugeRefresh  = "gauge_refresh"
)

var (
	defaultRecordRun = prometheus.RecordJobRun
	recordRun        = defaultRecordRun
)

// ResetSalaryFlags clears the paid flag of every user at the start of a pay period
func ResetSalaryFlags(ctx context.Context, db *gorm.DB) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	result := db.WithContext(ctx).Model(&model.User{}).
		Where("is_salary_paid = ?", true).
		Update("is_salary_paid", false)
	if result.Error != nil {
		return 0, fmt.Errorf("reset salary flags: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ExpireListings marks active listings created more than ttlDays before now as Expired
func ExpireListings(ctx context.Context, db *gorm.DB, ttlDays int, now time.Time) (int64, error) {
	if ttlDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -ttlDays)

	defer prometheus.TrackDBOperation("update")(time.Now())
	// UpdateColumn skips the ownership hook, which needs a loaded record
	result := db.WithContext(ctx).Model(&model.MarketplaceListing{}).
		Where("listing_status = ? AND created_at < ?", model.ListingActive, cutoff).
		UpdateColumn("listing_status", model.ListingExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("expire listings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RefreshGauges recomputes the low stock and active listing gauges
func RefreshGauges(ctx context.Context, db *gorm.DB) (lowStock, activeListings int64, err error) {
	db = db.WithContext(ctx)

	if err = db.Model(&model.Resource{}).Where("quantity <= low_stock_threshold").Count(&lowStock).Error; err != nil {
		return 0, 0, fmt.Errorf("count low stock: %w", err)
	}
	if err = db.Model(&model.MarketplaceListing{}).Where("listing_status = ?", model.ListingActive).Count(&activeListings).Error; err != nil {
		return 0, 0, fmt.Errorf("count active listings: %w", err)
	}

	prometheus.UpdateLowStock(lowStock)
	prometheus.UpdateActiveListings(activeListings)
	return lowStock, activeListings, nil
}

// RegisterJobs schedules every housekeeping job
func RegisterJobs(s *Scheduler, db *gorm.DB, cfg *config.SchedulerConfig) error {
	jobs := []struct {
		name string
		spec string
		fn   func(ctx context.Context) error
	}{
		{JobSalaryReset, cfg.SalaryResetSpec, func(ctx context.Context) error {
			_, err := ResetSalaryFlags(ctx, db)
			return err
		}},
		{JobListingExpiry, cfg.ListingExpirySpec, func(ctx context.Context) error {
			_, err := ExpireListings(ctx, db, cfg.ListingTTLDays, time.Now())
			return err
		}},
		{JobGaugeRefresh, cfg.GaugeRefreshSpec, func(ctx context.Context) error {
			_, _, err := RefreshGauges(ctx, db)
			return err
		}},
	}

	for _, j := range jobs {
		if _, err := s.AddJob(j.name, j.spec, j.fn); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
	}
	return nil
}
