package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/jwtutil"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest is the payload of a new account
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=100"`
	Username        string `json:"username" validate:"omitempty,max=100"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"max=100"`
	LastName        string `json:"last_name" validate:"max=100"`
}

// LoginRequest accepts either an email or a username
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileRequest updates the caller's display name
type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func userView(u model.User) echo.Map {
	return echo.Map{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"full_name":  u.FullName(),
		"role":       u.Role,
		"company_id": u.CompanyID,
	}
}

func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuthEvent("register")

	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return done(err)
	}
	req.Email = model.NormalizeEmail(req.Email)
	if req.Username == "" {
		req.Username = req.Email
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	db := dbFor(c)

	var count int64
	if err := db.Model(&model.User{}).Where("LOWER(email) = ? OR username = ?", req.Email, req.Username).Count(&count).Error; err != nil {
		return internalError(c, "registration failed", err)
	}
	if count > 0 {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		prometheus.RecordAuthError("password_hash_failed")
		return internalError(c, "registration failed", err)
	}

	user := model.User{
		Email:          req.Email,
		Username:       req.Username,
		Password:       string(hashedPassword),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           model.RoleUser,
		LeaveDaysTotal: model.DefaultLeaveDays,
	}
	if err := db.Create(&user).Error; err != nil {
		return internalError(c, "registration failed", err, zap.String("email", req.Email))
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, userView(user))
}

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuthEvent("login")

	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return done(err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := findLoginUser(dbFor(c), strings.TrimSpace(req.Login))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("User not found", zap.String("login", req.Login))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return internalError(c, "login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("login", req.Login))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if user.Locked {
		log.Warn("Locked account tried to log in", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("locked")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is locked"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		prometheus.RecordAuthError("token_generation_failed")
		return internalError(c, "token error", err)
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  userView(user),
	})
}

// findLoginUser looks a login up by email when it looks like one, then by username
func findLoginUser(db *gorm.DB, login string) (model.User, error) {
	var user model.User
	if strings.Contains(login, "@") {
		err := db.Where("LOWER(email) = ?", model.NormalizeEmail(login)).First(&user).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return user, err
		}
	}
	err := db.Where("username = ?", login).First(&user).Error
	return user, err
}

// Logout is stateless; the client discards its token
func Logout(c echo.Context) error {
	prometheus.DecreaseActiveTokens()
	prometheus.RecordAuthEvent("logout")
	logger.FromContext(c).Info("User logged out")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func GetProfile(c echo.Context) error {
	scope := currentScope(c)

	var user model.User
	if err := dbFor(c).Preload("Company").First(&user, scope.UserID).Error; err != nil {
		return internalError(c, "failed to load profile", err)
	}

	view := userView(user)
	view["salary"] = user.Salary
	view["is_salary_paid"] = user.IsSalaryPaid
	view["leave_days_total"] = user.LeaveDaysTotal
	view["leave_days_used"] = user.LeaveDaysUsed
	view["leave_days_remaining"] = user.LeaveDaysRemaining()
	if user.Company != nil {
		view["company_name"] = user.Company.Name
	}
	return c.JSON(http.StatusOK, view)
}

func UpdateProfile(c echo.Context) error {
	scope := currentScope(c)

	var req ProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	db := dbFor(c)
	var user model.User
	if err := db.First(&user, scope.UserID).Error; err != nil {
		return internalError(c, "failed to load profile", err)
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := db.Model(&user).Select("first_name", "last_name").Updates(&user).Error; err != nil {
		return internalError(c, "failed to update profile", err)
	}

	logger.FromContext(c).Info("Profile updated")
	return c.JSON(http.StatusOK, userView(user))
}

func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	db := dbFor(c)
	var user model.User
	if err := db.First(&user, scope.UserID).Error; err != nil {
		return internalError(c, "failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		log.Warn("Current password mismatch")
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password is incorrect"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, "failed to change password", err)
	}
	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return internalError(c, "failed to change password", err)
	}

	log.Info("Password changed")
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
