package repository

import (
	"context"
	"time"

	"hosting-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records the event inside tx and reports false when it was
	// already recorded by an earlier delivery.
	MarkProcessed(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) (bool, error)
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *webhookEventRepositoryImpl) MarkProcessed(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) (bool, error) {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now().UTC()
	}

	result := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
