package repository

import (
	"context"
	"time"

	"hosting-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error
	FindByID(ctx context.Context, invoiceID string) (*model.Invoice, error)
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Invoice, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Invoice, error)
	ListAll(ctx context.Context) ([]*model.Invoice, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	// NextNumber increments the named sequence and returns the new value. The
	// row lock taken by the update serializes concurrent issuers until tx ends.
	NextNumber(ctx context.Context, tx *gorm.DB, sequence string) (int64, error)
}

type invoiceRepoImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepoImpl{
		db: db,
	}
}

func (r *invoiceRepoImpl) Create(ctx context.Context, tx *gorm.DB, invoice *model.Invoice) error {
	return conn(r.db, tx).WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepoImpl) FindByID(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&invoice).Error

	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepoImpl) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := conn(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&invoice).Error

	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Invoice, error) {
	var invoices []*model.Invoice
	err := r.db.WithContext(ctx).
		Select("invoices.*").
		Joins("JOIN orders ON orders.order_id = invoices.order_id").
		Where("orders.user_id = ?", userID).
		Order("invoices.created_at DESC").
		Find(&invoices).Error

	if err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepoImpl) ListAll(ctx context.Context) ([]*model.Invoice, error) {
	var invoices []*model.Invoice
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&invoices).Error

	if err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepoImpl) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Count(&count).Error

	return count, err
}

func (r *invoiceRepoImpl) NextNumber(ctx context.Context, tx *gorm.DB, sequence string) (int64, error) {
	db := conn(r.db, tx).WithContext(ctx)

	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.InvoiceSequence{Name: sequence, LastValue: 0}).Error
	if err != nil {
		return 0, err
	}

	err = db.Model(&model.InvoiceSequence{}).
		Where("name = ?", sequence).
		Updates(map[string]interface{}{
			"last_value": gorm.Expr("last_value + ?", 1),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return 0, err
	}

	var seq model.InvoiceSequence
	if err := db.Where("name = ?", sequence).First(&seq).Error; err != nil {
		return 0, err
	}

	return seq.LastValue, nil
}
