package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/client"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paymentMethodCard = "card"

type PaymentService interface {
	CreateSession(ctx context.Context, requester model.Requester, orderID string) (*dto.PaymentSessionResponse, error)
	CompleteMock(ctx context.Context, requester model.Requester, paymentID string) (*dto.InvoiceRef, error)
	HandleWebhook(ctx context.Context, body []byte, signatureHeader string) error
	GatewayStatus(ctx context.Context) *dto.GatewayStatusResponse
}

type paymentServiceImpl struct {
	db               *gorm.DB
	gateway          client.GatewayClient
	invoices         InvoiceService
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	webhookEventRepo repository.WebhookEventRepository
	log              *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	gateway client.GatewayClient,
	invoices InvoiceService,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	webhookEventRepo repository.WebhookEventRepository,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		gateway:          gateway,
		invoices:         invoices,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		webhookEventRepo: webhookEventRepo,
		log:              log,
	}
}

func (s *paymentServiceImpl) CreateSession(ctx context.Context, requester model.Requester, orderID string) (*dto.PaymentSessionResponse, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != requester.UserID {
		return nil, apperror.NotFound("order %s not found", orderID)
	}

	if order.PaymentStatus == model.PaymentPaid {
		return nil, apperror.Conflict("order %s is already paid", orderID)
	}
	if order.Status == model.OrderCancelled || order.Status == model.OrderCompleted {
		return nil, apperror.Conflict("order %s is %s", orderID, order.Status)
	}

	payment := &model.Payment{
		PaymentID:     newID("PAY"),
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Status:        model.PaymentPending,
		PaymentMethod: paymentMethodCard,
	}
	if err := s.paymentRepo.Create(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	resp := &dto.PaymentSessionResponse{
		PaymentID: payment.PaymentID,
		OrderID:   order.OrderID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	}

	if !s.gateway.Configured() {
		resp.MockMode = true
		resp.Message = fmt.Sprintf("Gateway not configured. Complete the payment with POST /api/payments/mock-complete/%s", payment.PaymentID)

		s.log.Info("Mock payment session created",
			zap.String("payment_id", payment.PaymentID),
			zap.String("order_id", order.OrderID),
		)
		return resp, nil
	}

	session, err := s.gateway.CreateSession(ctx, &model.GatewaySessionRequest{
		MerchantID:      s.gateway.MerchantID(),
		MerchantOrderID: order.OrderID,
		Amount:          MinorUnits(order),
		Currency:        order.Currency,
		CustomerEmail:   order.CustomerEmail,
		Description:     "Payment for " + order.ProductName,
	})
	if err != nil {
		s.log.Error("Gateway session failed",
			zap.String("payment_id", payment.PaymentID),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)

		// The attempt is dead; a retry opens a new payment.
		if _, markErr := s.paymentRepo.MarkFailed(ctx, nil, payment.PaymentID, ""); markErr != nil {
			s.log.Error("Failed to mark payment attempt failed", zap.String("payment_id", payment.PaymentID), zap.Error(markErr))
		}
		return nil, err
	}

	resp.SessionID = session.ID
	resp.PaymentURL = session.RedirectURL

	s.log.Info("Gateway payment session created",
		zap.String("payment_id", payment.PaymentID),
		zap.String("order_id", order.OrderID),
		zap.String("session_id", session.ID),
	)

	return resp, nil
}

// MinorUnits converts the order amount to the integer minor currency units the
// gateway expects.
func MinorUnits(order *model.Order) int64 {
	return order.Amount.Shift(2).Round(0).IntPart()
}

func (s *paymentServiceImpl) CompleteMock(ctx context.Context, requester model.Requester, paymentID string) (*dto.InvoiceRef, error) {
	var invoice *model.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByID(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("payment %s not found", paymentID)
			}
			return fmt.Errorf("get payment: %w", err)
		}

		order, err := s.orderRepo.FindByOrderID(ctx, tx, payment.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order %s not found", payment.OrderID)
			}
			return fmt.Errorf("get order: %w", err)
		}
		if order.UserID != requester.UserID {
			return apperror.NotFound("payment %s not found", paymentID)
		}

		switch payment.Status {
		case model.PaymentPaid:
			invoice, err = s.invoices.IssueForOrder(ctx, tx, order.OrderID, payment.PaymentID)
			return err
		case model.PaymentPending:
		default:
			return apperror.Conflict("payment %s is %s", paymentID, payment.Status)
		}

		invoice, err = s.settle(ctx, tx, payment, newID("MOCK"))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.InvoiceRef{
		Message:       "Payment completed",
		InvoiceID:     invoice.InvoiceID,
		InvoiceNumber: invoice.InvoiceNumber,
	}, nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, body []byte, signatureHeader string) error {
	if !s.gateway.VerifiesSignatures() {
		s.log.Warn("Gateway api key missing, accepting webhook without signature check")
	}
	if err := s.gateway.VerifyWebhook(body, signatureHeader); err != nil {
		s.log.Warn("Webhook signature mismatch", zap.Error(err))
		return apperror.Unauthorized("invalid webhook signature")
	}

	var event model.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperror.BadRequest("invalid webhook payload")
	}
	if event.MerchantOrderID == "" {
		return apperror.BadRequest("merchant_order_id is required")
	}

	status := model.PaymentFailed
	if event.Status == model.GatewayStatusSuccess {
		status = model.PaymentPaid
	}

	eventID := fmt.Sprintf("%s:%s:%s", event.MerchantOrderID, event.TransactionID, event.Status)

	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.log.Info("Duplicate webhook delivery ignored", zap.String("event_id", eventID))
		return nil
	}

	// A concurrent delivery can pass the check above; MarkProcessed settles it.
	duplicate := false

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recorded, err := s.webhookEventRepo.MarkProcessed(ctx, tx, &model.WebhookEvent{
			EventID: eventID,
			OrderID: event.MerchantOrderID,
			Status:  event.Status,
		})
		if err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}
		if !recorded {
			duplicate = true
			return nil
		}

		payment, err := s.paymentRepo.FindLatestByOrderID(ctx, tx, event.MerchantOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("no payment for order %s", event.MerchantOrderID)
			}
			return fmt.Errorf("get payment: %w", err)
		}

		if status == model.PaymentPaid {
			_, err := s.settle(ctx, tx, payment, event.TransactionID)
			if errors.Is(err, apperror.ErrConflict) {
				// Acknowledge so the gateway stops retrying; nothing was written.
				s.log.Warn("Payment confirmation not applied",
					zap.String("order_id", event.MerchantOrderID),
					zap.String("payment_id", payment.PaymentID),
					zap.String("transaction_id", event.TransactionID),
					zap.Error(err),
				)
				return nil
			}
			return err
		}

		return s.fail(ctx, tx, payment, event.TransactionID)
	})
	if err != nil {
		return err
	}

	if duplicate {
		s.log.Info("Concurrent webhook delivery ignored", zap.String("event_id", eventID))
		return nil
	}

	s.log.Info("Webhook processed",
		zap.String("order_id", event.MerchantOrderID),
		zap.String("status", string(status)),
	)
	return nil
}

// settle moves the order to paid first and only then the payment, so a
// second attempt on an already paid order is never marked paid. Both the
// already paid and the closed order cases return a Conflict and write
// nothing.
func (s *paymentServiceImpl) settle(ctx context.Context, tx *gorm.DB, payment *model.Payment, transactionID string) (*model.Invoice, error) {
	orderChanged, err := s.orderRepo.MarkPaid(ctx, tx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	if !orderChanged {
		order, err := s.orderRepo.FindByOrderID(ctx, tx, payment.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("order %s not found", payment.OrderID)
			}
			return nil, fmt.Errorf("reload order: %w", err)
		}
		if order.PaymentStatus == model.PaymentPaid {
			return nil, apperror.Conflict("order %s is already paid", order.OrderID)
		}
		return nil, apperror.Conflict("order %s is %s", order.OrderID, order.Status)
	}

	paymentChanged, err := s.paymentRepo.MarkPaid(ctx, tx, payment.PaymentID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("mark payment paid: %w", err)
	}
	if !paymentChanged {
		s.log.Info("Payment was not pending when confirmed",
			zap.String("payment_id", payment.PaymentID),
			zap.String("status", string(payment.Status)),
		)
	}

	return s.invoices.IssueForOrder(ctx, tx, payment.OrderID, payment.PaymentID)
}

func (s *paymentServiceImpl) fail(ctx context.Context, tx *gorm.DB, payment *model.Payment, transactionID string) error {
	if _, err := s.paymentRepo.MarkFailed(ctx, tx, payment.PaymentID, transactionID); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}

	changed, err := s.orderRepo.MarkFailed(ctx, tx, payment.OrderID)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if !changed {
		s.log.Info("Order not pending, failure notice ignored", zap.String("order_id", payment.OrderID))
	}
	return nil
}

func (s *paymentServiceImpl) GatewayStatus(ctx context.Context) *dto.GatewayStatusResponse {
	resp := &dto.GatewayStatusResponse{
		Connected:  s.gateway.Configured(),
		MerchantID: s.gateway.MerchantID(),
		Mode:       s.gateway.Mode(),
	}
	if !resp.Connected {
		resp.Error = "gateway credentials are not configured"
	}
	return resp
}
