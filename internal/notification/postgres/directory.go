package postgres

import (
	"context"

	"github.com/Yaroslav326/TaskManagement/internal/notification"
	"gorm.io/gorm"
)

// Directory implements the notification.Directory interface using GORM
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) notification.Directory {
	return &Directory{db: db}
}

func (d *Directory) CustomerEmailForTask(ctx context.Context, taskID int64) (string, error) {
	var email string
	err := d.db.WithContext(ctx).
		Table("tasks").
		Select("users.email").
		Joins("JOIN users ON users.id = tasks.customer_id").
		Where("tasks.id = ?", taskID).
		Scan(&email).Error
	return email, err
}
