package repository

import (
	"context"
	"time"

	"hosting-storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuses an order may be settled from. A failed attempt leaves the order
// open to a later successful one only while it has not been closed.
var (
	settleablePaymentStatuses = []model.PaymentStatus{model.PaymentPending, model.PaymentFailed}
	closedOrderStatuses       = []model.OrderStatus{model.OrderCompleted, model.OrderCancelled}
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	PaidAmounts(ctx context.Context) ([]decimal.Decimal, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := conn(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkPaid moves an open, unpaid order to completed/paid. It reports false
// when the order was not in a settleable state, e.g. a concurrent delivery
// already paid it.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where(`
			order_id = ?
			AND payment_status IN ?
			AND status NOT IN ?
		`,
			orderID,
			settleablePaymentStatuses,
			closedOrderStatuses,
		).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentPaid,
			"status":         model.OrderCompleted,
			"updated_at":     time.Now().UTC(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// MarkFailed moves a pending order to cancelled/failed. Paid or closed orders
// are left untouched and false is returned.
func (r *orderRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where(`
			order_id = ?
			AND payment_status = ?
			AND status NOT IN ?
		`,
			orderID,
			model.PaymentPending,
			closedOrderStatuses,
		).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentFailed,
			"status":         model.OrderCancelled,
			"updated_at":     time.Now().UTC(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

func (r *orderRepoImpl) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_status = ?", status).
		Count(&count).Error

	return count, err
}

func (r *orderRepoImpl) PaidAmounts(ctx context.Context) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentPaid).
		Pluck("amount", &amounts).Error

	if err != nil {
		return nil, err
	}

	return amounts, nil
}
