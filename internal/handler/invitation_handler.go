package handler

import (
	"errors"
	"net/http"

	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AcceptInvitationRequest carries the invitation token
type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

var (
	errInvitationNotFound = errors.New("invitation not found")
	errAlreadyEmployed    = errors.New("you already belong to a company")
)

// ListMyInvitations returns the pending invitations addressed to the caller
func ListMyInvitations(c echo.Context) error {
	scope := currentScope(c)

	var invitations []model.CompanyInvitation
	if err := dbFor(c).Preload("Company").
		Where("LOWER(email) = ? AND is_used = ?", model.NormalizeEmail(scope.Email), false).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return internalError(c, "failed to load invitations", err)
	}
	return c.JSON(http.StatusOK, invitations)
}

// AcceptInvitation joins the inviting company with the offered role and terms
func AcceptInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)

	var req AcceptInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	var invitation model.CompanyInvitation
	err := dbFor(c).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("token = ? AND LOWER(email) = ? AND is_used = ?", req.Token, model.NormalizeEmail(scope.Email), false).
			First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvitationNotFound
		}
		if err != nil {
			return err
		}

		var user model.User
		if err := tx.First(&user, scope.UserID).Error; err != nil {
			return err
		}
		if user.CompanyID != nil {
			return errAlreadyEmployed
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"company_id":       invitation.CompanyID,
			"role":             invitation.Role,
			"salary":           invitation.Salary,
			"leave_days_total": invitation.LeaveDays,
			"leave_days_used":  0,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&invitation).Update("is_used", true).Error
	})

	switch {
	case errors.Is(err, errInvitationNotFound):
		log.Warn("Invitation token not valid for caller")
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, errAlreadyEmployed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case err != nil:
		return internalError(c, "failed to accept invitation", err)
	}

	identity.Invalidate(scope.UserID)
	prometheus.RecordOperation("invitation", "accept")
	log.Info("Invitation accepted",
		zap.Uint("invitation_id", invitation.ID),
		zap.Uint("company_id", invitation.CompanyID),
		zap.String("role", invitation.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "invitation accepted",
		"company_id": invitation.CompanyID,
		"role":       invitation.Role,
	})
}

// DeclineInvitation marks a pending invitation addressed to the caller as used
func DeclineInvitation(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	result := dbFor(c).Model(&model.CompanyInvitation{}).
		Where("id = ? AND LOWER(email) = ? AND is_used = ?", id, model.NormalizeEmail(scope.Email), false).
		Update("is_used", true)
	if result.Error != nil {
		return internalError(c, "failed to decline invitation", result.Error)
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": errInvitationNotFound.Error()})
	}

	prometheus.RecordOperation("invitation", "decline")
	logger.FromContext(c).Info("Invitation declined", zap.Uint("invitation_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation declined"})
}
