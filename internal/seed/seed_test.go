package seed

import (
	"context"
	"testing"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Company{}, &model.User{}))

	cfg := &config.SeedConfig{
		AdminEmail: "admin@gmail.com", AdminUsername: "admin", AdminPassword: "Admin123!",
		SupportEmail: "it@gmail.com", SupportUsername: "it_support", SupportPassword: "It123!",
	}

	require.NoError(t, Run(context.Background(), db, cfg, zap.NewNop()))

	var admin model.User
	require.NoError(t, db.Where("email = ?", "admin@gmail.com").First(&admin).Error)
	assert.Equal(t, model.RoleSystemAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("Admin123!")))

	// A demoted seed account gets its role back
	require.NoError(t, db.Model(&model.User{}).Where("email = ?", "it@gmail.com").Update("role", model.RoleUser).Error)
	require.NoError(t, Run(context.Background(), db, cfg, zap.NewNop()))

	var it model.User
	require.NoError(t, db.Where("email = ?", "it@gmail.com").First(&it).Error)
	assert.Equal(t, model.RoleITSupport, it.Role)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRunStoresNormalizedEmails(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_case_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Company{}, &model.User{}))

	cfg := &config.SeedConfig{
		AdminEmail: " Admin@Farm.IO", AdminUsername: "admin", AdminPassword: "Admin123!",
		SupportEmail: "IT@farm.io", SupportUsername: "it_support", SupportPassword: "It123!",
	}
	require.NoError(t, Run(context.Background(), db, cfg, zap.NewNop()))
	require.NoError(t, Run(context.Background(), db, cfg, zap.NewNop()))

	var emails []string
	require.NoError(t, db.Model(&model.User{}).Order("id").Pluck("email", &emails).Error)
	assert.Equal(t, []string{"admin@farm.io", "it@farm.io"}, emails)
}
