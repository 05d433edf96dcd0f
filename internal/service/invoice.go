package service

import (
	"context"
	"errors"
	"fmt"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceSequence = "invoice"

// InvoiceRenderer turns an issued invoice into a printable document.
type InvoiceRenderer interface {
	Render(invoice *model.Invoice) ([]byte, error)
}

type InvoiceService interface {
	// IssueForOrder creates the invoice for a paid order, or returns the one
	// already issued. A nil tx runs the issuance in its own transaction.
	IssueForOrder(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (*model.Invoice, error)
	Get(ctx context.Context, requester model.Requester, invoiceID string) (*model.Invoice, error)
	ListForUser(ctx context.Context, requester model.Requester) ([]*model.Invoice, error)
	ListAll(ctx context.Context, requester model.Requester) ([]*model.Invoice, error)
	RenderPDF(ctx context.Context, requester model.Requester, invoiceID string) (*model.Invoice, []byte, error)
}

type invoiceServiceImpl struct {
	db          *gorm.DB
	cfg         config.Invoice
	renderer    InvoiceRenderer
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	log         *zap.Logger
}

func NewInvoiceService(
	db *gorm.DB,
	cfg config.Invoice,
	renderer InvoiceRenderer,
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	log *zap.Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		db:          db,
		cfg:         cfg,
		renderer:    renderer,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		log:         log,
	}
}

func (s *invoiceServiceImpl) IssueForOrder(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (*model.Invoice, error) {
	if tx == nil {
		var invoice *model.Invoice
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			invoice, err = s.issue(ctx, tx, orderID, paymentID)
			return err
		})
		return invoice, err
	}

	return s.issue(ctx, tx, orderID, paymentID)
}

func (s *invoiceServiceImpl) issue(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (*model.Invoice, error) {
	existing, err := s.invoiceRepo.FindByOrderID(ctx, tx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing invoice: %w", err)
	}

	order, err := s.orderRepo.FindByOrderID(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	seq, err := s.invoiceRepo.NextNumber(ctx, tx, invoiceSequence)
	if err != nil {
		return nil, fmt.Errorf("next invoice number: %w", err)
	}

	subtotal := order.Amount
	tax := s.taxFor(subtotal)

	invoice := &model.Invoice{
		InvoiceID:     newID("INV"),
		InvoiceNumber: FormatInvoiceNumber(s.cfg.Prefix, s.cfg.Digits, seq),
		OrderID:       order.OrderID,
		PaymentID:     paymentID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		ProductName:   order.ProductName,
		BillingPeriod: order.BillingPeriod,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		Currency:      order.Currency,
		Status:        model.PaymentPaid,
	}

	if err := s.invoiceRepo.Create(ctx, tx, invoice); err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}

	s.log.Info("Invoice issued",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
		zap.String("total", invoice.Total.StringFixed(2)),
	)

	return invoice, nil
}

func (s *invoiceServiceImpl) taxFor(subtotal decimal.Decimal) decimal.Decimal {
	if s.cfg.TaxPercent == 0 {
		return decimal.Zero
	}
	return subtotal.
		Mul(decimal.NewFromFloat(s.cfg.TaxPercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// FormatInvoiceNumber renders seq zero padded to digits, e.g. IG-0007.
func FormatInvoiceNumber(prefix string, digits int, seq int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, digits, seq)
}

func (s *invoiceServiceImpl) Get(ctx context.Context, requester model.Requester, invoiceID string) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("invoice %s not found", invoiceID)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	if requester.IsAdmin() {
		return invoice, nil
	}

	order, err := s.orderRepo.FindByOrderID(ctx, nil, invoice.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load invoice order: %w", err)
	}
	if order == nil || order.UserID != requester.UserID {
		return nil, apperror.Forbidden("not allowed to access invoice %s", invoiceID)
	}

	return invoice, nil
}

func (s *invoiceServiceImpl) ListForUser(ctx context.Context, requester model.Requester) ([]*model.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByUser(ctx, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceServiceImpl) ListAll(ctx context.Context, requester model.Requester) ([]*model.Invoice, error) {
	if !requester.IsAdmin() {
		return nil, apperror.Forbidden("admin access required")
	}

	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *invoiceServiceImpl) RenderPDF(ctx context.Context, requester model.Requester, invoiceID string) (*model.Invoice, []byte, error) {
	invoice, err := s.Get(ctx, requester, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.renderer.Render(invoice)
	if err != nil {
		return nil, nil, fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	return invoice, doc, nil
}
