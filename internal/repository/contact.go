package repository

import (
	"context"

	"hosting-storefront/internal/model"

	"gorm.io/gorm"
)

const contactListLimit = 100

type ContactRepository interface {
	Create(ctx context.Context, message *model.ContactMessage) error
	// ListRecent returns the newest messages first, capped at 100.
	ListRecent(ctx context.Context) ([]*model.ContactMessage, error)
	MarkRead(ctx context.Context, messageID string) error
	CountUnread(ctx context.Context) (int64, error)
}

type contactRepoImpl struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepoImpl{
		db: db,
	}
}

func (r *contactRepoImpl) Create(ctx context.Context, message *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *contactRepoImpl) ListRecent(ctx context.Context) ([]*model.ContactMessage, error) {
	var messages []*model.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(contactListLimit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead is idempotent; it only fails when the message does not exist.
func (r *contactRepoImpl) MarkRead(ctx context.Context, messageID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("message_id = ?", messageID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("message_id = ?", messageID).
		Update("is_read", true).Error
}

func (r *contactRepoImpl) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
