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

// SetRoleRequest assigns any application role to a user
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=SystemAdmin ITSupport Boss Manager Employee User"`
}

// RoleCount is one row of the role distribution
type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// CompanyOverview is a company with its owner and head counts
type CompanyOverview struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	OwnerEmail string    `json:"owner_email"`
	StaffCount int64     `json:"staff_count"`
	PlantCount int64     `json:"plant_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdminDashboard returns system totals, the role distribution and recent sign-ups
func AdminDashboard(c echo.Context) error {
	db := dbFor(c)
	defer prometheus.TrackDBOperation("admin_dashboard")(time.Now())

	totals := echo.Map{}
	for name, m := range map[string]interface{}{
		"users":     &model.User{},
		"companies": &model.Company{},
		"plants":    &model.Plant{},
		"resources": &model.Resource{},
		"machinery": &model.Machinery{},
	} {
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			return internalError(c, "failed to count "+name, err)
		}
		totals[name] = n
	}

	var roles []RoleCount
	if err := db.Model(&model.User{}).Select("role, COUNT(*) AS count").
		Group("role").Order("role").Scan(&roles).Error; err != nil {
		return internalError(c, "failed to load role distribution", err)
	}

	var recentUsers []model.User
	if err := db.Order("created_at DESC").Order("id DESC").Limit(5).Find(&recentUsers).Error; err != nil {
		return internalError(c, "failed to load recent users", err)
	}
	users := make([]echo.Map, 0, len(recentUsers))
	for _, u := range recentUsers {
		users = append(users, userView(u))
	}

	var recentCompanies []model.Company
	if err := db.Order("created_at DESC").Order("id DESC").Limit(5).Find(&recentCompanies).Error; err != nil {
		return internalError(c, "failed to load recent companies", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totals":           totals,
		"roles":            roles,
		"recent_users":     users,
		"recent_companies": recentCompanies,
	})
}

// ListUsers returns every user with the name of their company
func ListUsers(c echo.Context) error {
	var users []model.User
	if err := dbFor(c).Preload("Company").Order("id").Find(&users).Error; err != nil {
		return internalError(c, "failed to load users", err)
	}

	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		view := userView(u)
		view["locked"] = u.Locked
		view["created_at"] = u.CreatedAt
		if u.Company != nil {
			view["company_name"] = u.Company.Name
		}
		out = append(out, view)
	}
	return c.JSON(http.StatusOK, out)
}

func loadUser(c echo.Context) (model.User, error) {
	var user model.User
	id, err := paramID(c, "id")
	if err != nil {
		return user, err
	}

	err = dbFor(c).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		return user, errResponded
	}
	if err != nil {
		_ = internalError(c, "failed to load user", err)
		return user, errResponded
	}
	return user, nil
}

// SetUserRole assigns a role to any user
func SetUserRole(c echo.Context) error {
	user, err := loadUser(c)
	if err != nil {
		return done(err)
	}

	var req SetRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	if err := dbFor(c).Model(&user).Update("role", req.Role).Error; err != nil {
		return internalError(c, "failed to change role", err)
	}
	user.Role = req.Role

	identity.Invalidate(user.ID)
	prometheus.RecordOperation("admin", "role")
	logger.FromContext(c).Info("User role changed",
		zap.Uint("target_user_id", user.ID),
		zap.String("role", req.Role))
	return c.JSON(http.StatusOK, userView(user))
}

// LockUser prevents a user from logging in or using existing tokens
func LockUser(c echo.Context) error {
	return setLocked(c, true)
}

// UnlockUser lifts a lock
func UnlockUser(c echo.Context) error {
	return setLocked(c, false)
}

func setLocked(c echo.Context, locked bool) error {
	scope := currentScope(c)
	user, err := loadUser(c)
	if err != nil {
		return done(err)
	}

	if locked && user.ID == scope.UserID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot lock your own account"})
	}

	if err := dbFor(c).Model(&user).Update("locked", locked).Error; err != nil {
		return internalError(c, "failed to update lock", err)
	}

	identity.Invalidate(user.ID)
	prometheus.RecordOperation("admin", "lock")
	logger.FromContext(c).Info("User lock changed",
		zap.Uint("target_user_id", user.ID),
		zap.Bool("locked", locked))
	return c.JSON(http.StatusOK, echo.Map{"id": user.ID, "locked": locked})
}

// ListCompanies returns every company with its owner and head counts
func ListCompanies(c echo.Context) error {
	db := dbFor(c)

	var companies []model.Company
	if err := db.Order("id").Find(&companies).Error; err != nil {
		return internalError(c, "failed to load companies", err)
	}

	out := make([]CompanyOverview, 0, len(companies))
	for _, co := range companies {
		row := CompanyOverview{ID: co.ID, Name: co.Name, CreatedAt: co.CreatedAt}

		var owner model.User
		if err := db.Select("email").First(&owner, co.CreatedByUserID).Error; err == nil {
			row.OwnerEmail = owner.Email
		}
		if err := db.Model(&model.User{}).Where("company_id = ?", co.ID).Count(&row.StaffCount).Error; err != nil {
			return internalError(c, "failed to count staff", err)
		}
		if err := db.Model(&model.Plant{}).Where("company_id = ?", co.ID).Count(&row.PlantCount).Error; err != nil {
			return internalError(c, "failed to count plants", err)
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, out)
}
