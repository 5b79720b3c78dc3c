// Package seed creates the built-in administrator accounts.
package seed

import (
	"context"
	"errors"
	"fmt"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type account struct {
	email    string
	username string
	password string
	role     model.Role
	first    string
	last     string
}

// Run makes sure the SystemAdmin and ITSupport accounts exist.
// Existing accounts keep their password but get their role restored.
func Run(ctx context.Context, db *gorm.DB, cfg *config.SeedConfig, log *zap.Logger) error {
	accounts := []account{
		{cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword, model.RoleSystemAdmin, "System", "Admin"},
		{cfg.SupportEmail, cfg.SupportUsername, cfg.SupportPassword, model.RoleITSupport, "IT", "Support"},
	}

	for _, a := range accounts {
		if err := ensure(ctx, db, a, log); err != nil {
			return err
		}
	}
	return nil
}

func ensure(ctx context.Context, db *gorm.DB, a account, log *zap.Logger) error {
	db = db.WithContext(ctx)
	a.email = model.NormalizeEmail(a.email)

	var user model.User
	err := db.Where("LOWER(email) = ?", a.email).First(&user).Error
	if err == nil {
		if user.Role != a.role {
			if err := db.Model(&user).Update("role", a.role).Error; err != nil {
				return fmt.Errorf("restore role of %s: %w", a.email, err)
			}
			log.Info("Seed account role restored", zap.String("email", a.email), zap.String("role", a.role))
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up %s: %w", a.email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password of %s: %w", a.email, err)
	}

	user = model.User{
		Email:          a.email,
		Username:       a.username,
		Password:       string(hashed),
		FirstName:      a.first,
		LastName:       a.last,
		Role:           a.role,
		LeaveDaysTotal: model.DefaultLeaveDays,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create %s: %w", a.email, err)
	}

	log.Info("Seed account created", zap.String("email", a.email), zap.String("role", a.role))
	return nil
}
