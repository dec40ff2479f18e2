package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"gorm.io/gorm"
)

// Repository implements auth.UserRepository over the users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var row struct {
		ID           int64
		PasswordHash string
	}

	err := r.db.Table("users").
		Select("id, password_hash").
		Where("email = ? AND is_active = true", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}

	return row.PasswordHash, row.ID, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User

	err := r.db.WithContext(ctx).Table("users").
		Select("id, username, email").
		Where("id = ? AND is_active = true", userID).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	return &user, nil
}

type userRow struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"column:username"`
	Email        string `gorm:"column:email"`
	PasswordHash string `gorm:"column:password_hash"`
	IsActive     bool   `gorm:"column:is_active"`
}

func (userRow) TableName() string { return "users" }

func (r *Repository) CreateUser(username, email, passwordHash string) (int64, error) {
	row := userRow{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := r.db.Create(&row).Error; err != nil {
		return 0, err
	}

	return row.ID, nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	if err := r.db.Table("users").Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
