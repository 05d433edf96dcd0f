package service

import (
	"context"
	"errors"
	"fmt"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultCurrency = "EGP"

type OrderService interface {
	CreateOrder(ctx context.Context, requester model.Requester, req *dto.CreateOrderRequest) (*model.Order, error)
	SetStatus(ctx context.Context, requester model.Requester, orderID string, status model.OrderStatus) (*model.Order, error)
	Get(ctx context.Context, requester model.Requester, orderID string) (*model.Order, error)
	ListForUser(ctx context.Context, requester model.Requester) ([]*model.Order, error)
	ListAll(ctx context.Context, requester model.Requester) ([]*model.Order, error)
}

type orderServiceImpl struct {
	catalog   CatalogService
	orderRepo repository.OrderRepository
	log       *zap.Logger
}

func NewOrderService(catalog CatalogService, orderRepo repository.OrderRepository, log *zap.Logger) OrderService {
	return &orderServiceImpl{
		catalog:   catalog,
		orderRepo: orderRepo,
		log:       log,
	}
}

// CreateOrder prices the order from the catalog once. The amount stored here
// is what every later payment and invoice uses.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, requester model.Requester, req *dto.CreateOrderRequest) (*model.Order, error) {
	period := model.BillingPeriod(req.PlanDuration)

	product, price, err := s.catalog.Lookup(ctx, req.ProductID, period)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:       newID("ORD"),
		UserID:        requester.UserID,
		ProductID:     product.ID,
		ProductName:   product.NameAr,
		BillingPeriod: period,
		Amount:        price,
		Currency:      DefaultCurrency,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentPending,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	}

	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
		zap.String("amount", order.Amount.StringFixed(2)),
	)

	return order, nil
}

func (s *orderServiceImpl) SetStatus(ctx context.Context, requester model.Requester, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperror.Forbidden("admin access required")
	}
	if !status.Valid() {
		return nil, apperror.BadRequest("unknown order status %q", status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.log.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("status", string(status)),
		zap.String("by", requester.UserID),
	)

	return s.orderRepo.FindByOrderID(ctx, nil, orderID)
}

// Get returns the order to its owner or an admin. Other callers get NotFound
// so order ids cannot be enumerated.
func (s *orderServiceImpl) Get(ctx context.Context, requester model.Requester, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperror.NotFound("order %s not found", orderID)
	}

	return order, nil
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, requester model.Requester) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) ListAll(ctx context.Context, requester model.Requester) ([]*model.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperror.Forbidden("admin access required")
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
