package postgres

import (
	"context"

	"github.com/Yaroslav326/TaskManagement/internal/chat"
	"gorm.io/gorm"
)

// MessageStore implements the chat.Store interface using GORM
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) chat.Store {
	return &MessageStore{db: db}
}

func (s *MessageStore) Append(ctx context.Context, m *chat.Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// Recent returns the scope's last messages in ascending id order. The
// inner query selects the tail descending, the outer flips it back.
func (s *MessageStore) Recent(ctx context.Context, key chat.ScopeKey, limit int) ([]chat.Message, error) {
	q := s.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("company_id = ?", key.CompanyID)

	if ref := key.DepartmentRef(); ref != nil {
		q = q.Where("department_id = ?", *ref)
	} else {
		q = q.Where("department_id IS NULL")
	}

	var ids []int64
	if err := q.Order("id DESC").Limit(limit).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []chat.Message{}, nil
	}

	var msgs []chat.Message
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}
