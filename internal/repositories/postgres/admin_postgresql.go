package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type AdminPostgreSQL struct {
	db *gorm.DB
}

func NewAdminPostgreSQL(db *gorm.DB) repositories.AdminRepository {
	return &AdminPostgreSQL{db: db}
}

func (a *AdminPostgreSQL) Create(ctx context.Context, admin *models.Admin) error {
	return handleDBError(a.db.WithContext(ctx).Create(admin).Error, "create admin")
}

func (a *AdminPostgreSQL) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, handleDBError(err, "get admin")
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := a.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&admin).Error
	if err != nil {
		return nil, handleDBError(err, "get admin by email")
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	err := a.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	return handleDBError(err, "update admin last login")
}

func (a *AdminPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count admins")
	}
	return count, nil
}
