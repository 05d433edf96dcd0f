package repository

import (
	"context"
	"time"

	"hosting-storefront/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Payment, error)
	FindLatestByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Payment, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, paymentID, transactionID string) (bool, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, paymentID, transactionID string) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return conn(r.db, tx).WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Payment, error) {
	var payment model.Payment
	err := conn(r.db, tx).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindLatestByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := conn(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// MarkPaid transitions a pending payment to paid and records the processor's
// transaction id. It reports whether this call performed the transition.
func (r *paymentRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, paymentID, transactionID string) (bool, error) {
	return r.transition(ctx, tx, paymentID, transactionID, model.PaymentPaid)
}

func (r *paymentRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, paymentID, transactionID string) (bool, error) {
	return r.transition(ctx, tx, paymentID, transactionID, model.PaymentFailed)
}

func (r *paymentRepoImpl) transition(ctx context.Context, tx *gorm.DB, paymentID, transactionID string, status model.PaymentStatus) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}

	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_id = ? AND status = ?", paymentID, model.PaymentPending).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
