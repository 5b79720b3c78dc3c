package handler

import (
	"errors"
	"net/http"
	"time"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToggleLeaveRequest names the calendar day to toggle
type ToggleLeaveRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// bossAssignedReason is recorded on leave days set from the staff calendar
const bossAssignedReason = "Boss Assigned"

// GetLeaveDates returns a staff member's leave days as calendar entries
func GetLeaveDates(c echo.Context) error {
	user, err := loadStaffMember(c, true)
	if err != nil {
		return done(err)
	}

	var records []model.LeaveRecord
	if err := dbFor(c).Where("user_id = ?", user.ID).Order("leave_date").Find(&records).Error; err != nil {
		return internalError(c, "failed to load leave records", err)
	}

	events := make([]echo.Map, 0, len(records))
	for _, r := range records {
		events = append(events, echo.Map{
			"title": "Leave",
			"start": r.LeaveDate.Format(dateLayout),
		})
	}
	return c.JSON(http.StatusOK, events)
}

// ToggleLeaveDate adds or removes a leave day and keeps the used counter in step
func ToggleLeaveDate(c echo.Context) error {
	log := logger.FromContext(c)
	user, err := loadStaffMember(c, true)
	if err != nil {
		return done(err)
	}

	var req ToggleLeaveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}
	day, _ := time.ParseInLocation(dateLayout, req.Date, time.UTC)

	onLeave := false
	err = dbFor(c).Transaction(func(tx *gorm.DB) error {
		var existing model.LeaveRecord
		err := tx.Where("user_id = ? AND leave_date >= ? AND leave_date < ?", user.ID, day, day.AddDate(0, 0, 1)).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if user.LeaveDaysUsed > 0 {
				user.LeaveDaysUsed--
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := model.LeaveRecord{
				UserID:     user.ID,
				LeaveDate:  day,
				Reason:     bossAssignedReason,
				IsApproved: true,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			user.LeaveDaysUsed++
			onLeave = true
		default:
			return err
		}
		return tx.Model(&user).Update("leave_days_used", user.LeaveDaysUsed).Error
	})
	if err != nil {
		return internalError(c, "failed to toggle leave", err, zap.Uint("target_user_id", user.ID))
	}

	prometheus.RecordOperation("leave", "toggle")
	log.Info("Leave toggled",
		zap.Uint("target_user_id", user.ID),
		zap.String("date", req.Date),
		zap.Bool("on_leave", onLeave))

	return c.JSON(http.StatusOK, echo.Map{
		"date":      req.Date,
		"on_leave":  onLeave,
		"used":      user.LeaveDaysUsed,
		"remaining": user.LeaveDaysRemaining(),
	})
}
