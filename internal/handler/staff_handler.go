package handler

import (
	"errors"
	"net/http"
	"time"

	"agrocore-service/internal/identity"
	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InviteRequest offers a company position to an email address
type InviteRequest struct {
	Email     string  `json:"email" validate:"required,email,max=100"`
	Role      string  `json:"role" validate:"required,oneof=Manager Employee"`
	Salary    float64 `json:"salary" validate:"gte=0"`
	LeaveDays *int    `json:"leave_days" validate:"omitempty,gte=0"`
}

// EmployeeDetailsRequest updates pay and leave of a staff member
type EmployeeDetailsRequest struct {
	Salary         float64 `json:"salary" validate:"gte=0"`
	LeaveDaysTotal int     `json:"leave_days_total" validate:"gte=0"`
	IsSalaryPaid   bool    `json:"is_salary_paid"`
}

// PromoteRequest sets a staff member's role
type PromoteRequest struct {
	Role string `json:"role" validate:"required,oneof=Manager Employee"`
}

func staffView(u model.User) echo.Map {
	return echo.Map{
		"id":                   u.ID,
		"email":                u.Email,
		"full_name":            u.FullName(),
		"role":                 u.Role,
		"salary":               u.Salary,
		"is_salary_paid":       u.IsSalaryPaid,
		"leave_days_total":     u.LeaveDaysTotal,
		"leave_days_used":      u.LeaveDaysUsed,
		"leave_days_remaining": u.LeaveDaysRemaining(),
	}
}

// ListStaff returns the caller's colleagues and the pending invitations
func ListStaff(c echo.Context) error {
	scope := currentScope(c)
	db := dbFor(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var users []model.User
	if err := db.Where("company_id = ? AND id <> ?", *scope.CompanyID, scope.UserID).
		Order("id").Find(&users).Error; err != nil {
		return internalError(c, "failed to load staff", err)
	}

	var invitations []model.CompanyInvitation
	if err := db.Where("company_id = ? AND is_used = ?", *scope.CompanyID, false).
		Order("created_at DESC").Find(&invitations).Error; err != nil {
		return internalError(c, "failed to load invitations", err)
	}

	staff := make([]echo.Map, 0, len(users))
	for _, u := range users {
		staff = append(staff, staffView(u))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"staff":               staff,
		"pending_invitations": invitations,
	})
}

// InviteStaff creates an invitation, or returns the pending one for the same email
func InviteStaff(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)

	var req InviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	req.Email = model.NormalizeEmail(req.Email)

	db := dbFor(c)
	var existing model.CompanyInvitation
	err := db.Where("LOWER(email) = ? AND company_id = ? AND is_used = ?", req.Email, *scope.CompanyID, false).
		First(&existing).Error
	if err == nil {
		log.Info("Pending invitation already exists", zap.Uint("invitation_id", existing.ID))
		return c.JSON(http.StatusOK, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internalError(c, "failed to check invitations", err)
	}

	leaveDays := model.DefaultLeaveDays
	if req.LeaveDays != nil {
		leaveDays = *req.LeaveDays
	}

	invitation := model.CompanyInvitation{
		Email:     req.Email,
		CompanyID: *scope.CompanyID,
		Role:      req.Role,
		Token:     uuid.New().String(),
		Salary:    req.Salary,
		LeaveDays: leaveDays,
	}
	if err := db.Create(&invitation).Error; err != nil {
		return internalError(c, "failed to create invitation", err)
	}

	prometheus.RecordOperation("staff", "invite")
	log.Info("Invitation created",
		zap.Uint("invitation_id", invitation.ID),
		zap.String("email", invitation.Email),
		zap.String("role", invitation.Role))
	return c.JSON(http.StatusCreated, invitation)
}

// CancelInvitation deletes a pending invitation of the caller's company
func CancelInvitation(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	result := dbFor(c).Where("id = ? AND company_id = ? AND is_used = ?", id, *scope.CompanyID, false).
		Delete(&model.CompanyInvitation{})
	if result.Error != nil {
		return internalError(c, "failed to cancel invitation", result.Error)
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}

	prometheus.RecordOperation("staff", "cancel_invitation")
	logger.FromContext(c).Info("Invitation cancelled", zap.Uint("invitation_id", id))
	return c.NoContent(http.StatusNoContent)
}

// loadStaffMember finds a member of the caller's company.
// allowSelf controls whether the caller may target themselves.
func loadStaffMember(c echo.Context, allowSelf bool) (model.User, error) {
	scope := currentScope(c)
	var user model.User

	id, err := paramID(c, "id")
	if err != nil {
		return user, err
	}
	if !allowSelf && id == scope.UserID {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot perform this action on yourself"})
		return user, errResponded
	}

	err = dbFor(c).Where("id = ? AND company_id = ?", id, *scope.CompanyID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.FromContext(c).Warn("Staff member not in company", zap.Uint("target_user_id", id))
		prometheus.RecordAccessDenied("staff", "other_company")
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
		return user, errResponded
	}
	if err != nil {
		_ = internalError(c, "failed to load staff member", err)
		return user, errResponded
	}
	return user, nil
}

// UpdateEmployeeDetails sets salary, leave allowance and the paid flag
func UpdateEmployeeDetails(c echo.Context) error {
	user, err := loadStaffMember(c, true)
	if err != nil {
		return done(err)
	}

	var req EmployeeDetailsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	user.Salary = req.Salary
	user.LeaveDaysTotal = req.LeaveDaysTotal
	user.IsSalaryPaid = req.IsSalaryPaid
	if err := dbFor(c).Model(&user).
		Select("salary", "leave_days_total", "is_salary_paid").
		Updates(&user).Error; err != nil {
		return internalError(c, "failed to update staff member", err)
	}

	identity.Invalidate(user.ID)
	prometheus.RecordOperation("staff", "update")
	logger.FromContext(c).Info("Staff details updated", zap.Uint("target_user_id", user.ID))
	return c.JSON(http.StatusOK, staffView(user))
}

// RemoveStaff detaches a member from the company
func RemoveStaff(c echo.Context) error {
	user, err := loadStaffMember(c, false)
	if err != nil {
		return done(err)
	}

	if err := dbFor(c).Model(&user).Updates(map[string]interface{}{
		"company_id":      nil,
		"role":            model.RoleUser,
		"salary":          0,
		"leave_days_used": 0,
		"is_salary_paid":  false,
	}).Error; err != nil {
		return internalError(c, "failed to remove staff member", err)
	}

	identity.Invalidate(user.ID)
	prometheus.RecordOperation("staff", "remove")
	logger.FromContext(c).Info("Staff member removed", zap.Uint("target_user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "staff member removed"})
}

// PromoteStaff sets a member's role to Manager or Employee
func PromoteStaff(c echo.Context) error {
	user, err := loadStaffMember(c, false)
	if err != nil {
		return done(err)
	}

	var req PromoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	return setStaffRole(c, user, req.Role)
}

// DemoteStaff turns a Manager into an Employee and leaves other roles alone
func DemoteStaff(c echo.Context) error {
	user, err := loadStaffMember(c, false)
	if err != nil {
		return done(err)
	}

	role := user.Role
	if role == model.RoleManager {
		role = model.RoleEmployee
	}
	return setStaffRole(c, user, role)
}

func setStaffRole(c echo.Context, user model.User, role model.Role) error {
	if user.Role != role {
		if err := dbFor(c).Model(&user).Update("role", role).Error; err != nil {
			return internalError(c, "failed to change role", err)
		}
		user.Role = role
		identity.Invalidate(user.ID)
		prometheus.RecordOperation("staff", "role")
		logger.FromContext(c).Info("Staff role changed",
			zap.Uint("target_user_id", user.ID),
			zap.String("role", role))
	}
	return c.JSON(http.StatusOK, staffView(user))
}
