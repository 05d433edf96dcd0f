package service

import (
	"context"
	"errors"
	"fmt"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogService interface {
	List(ctx context.Context, category string, activeOnly bool) ([]*model.Product, error)
	Get(ctx context.Context, productID string) (*model.Product, error)
	Create(ctx context.Context, req *dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, productID string, req *dto.ProductUpdateRequest) (*model.Product, error)
	Delete(ctx context.Context, productID string) error
	Seed(ctx context.Context) (int, error)
	// Lookup resolves a product and its price for the billing period.
	Lookup(ctx context.Context, productID string, period model.BillingPeriod) (*model.Product, decimal.Decimal, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewCatalogService(productRepo repository.ProductRepository, log *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
		log:         log,
	}
}

func (s *catalogServiceImpl) List(ctx context.Context, category string, activeOnly bool) ([]*model.Product, error) {
	cat := model.ProductCategory(category)
	if cat != "" && !cat.Valid() {
		return nil, apperror.BadRequest("unknown category %q", category)
	}

	products, err := s.productRepo.List(ctx, cat, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) Create(ctx context.Context, req *dto.ProductRequest) (*model.Product, error) {
	if err := validatePrices(req.PriceMonthly, req.PriceYearly); err != nil {
		return nil, err
	}

	features := req.Features
	if features == nil {
		features = []string{}
	}

	product := &model.Product{
		ID:            newSlugID("prod"),
		NameAr:        req.NameAr,
		NameEn:        req.NameEn,
		DescriptionAr: req.DescriptionAr,
		DescriptionEn: req.DescriptionEn,
		Category:      model.ProductCategory(req.Category),
		PriceMonthly:  req.PriceMonthly,
		PriceYearly:   req.PriceYearly,
		Features:      features,
		IsActive:      true,
		IsPopular:     req.IsPopular,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}

	s.log.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.NameEn))
	return product, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, productID string, req *dto.ProductUpdateRequest) (*model.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.NameAr != nil {
		product.NameAr = *req.NameAr
	}
	if req.NameEn != nil {
		product.NameEn = *req.NameEn
	}
	if req.DescriptionAr != nil {
		product.DescriptionAr = *req.DescriptionAr
	}
	if req.DescriptionEn != nil {
		product.DescriptionEn = *req.DescriptionEn
	}
	if req.Category != nil {
		product.Category = model.ProductCategory(*req.Category)
	}
	if req.PriceMonthly != nil {
		product.PriceMonthly = *req.PriceMonthly
	}
	if req.PriceYearly != nil {
		product.PriceYearly = *req.PriceYearly
	}
	if req.Features != nil {
		product.Features = req.Features
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsPopular != nil {
		product.IsPopular = *req.IsPopular
	}

	if err := validatePrices(product.PriceMonthly, product.PriceYearly); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", productID)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	// Existing orders keep the amount captured when they were placed.
	s.log.Info("Product updated", zap.String("product_id", productID))
	return product, nil
}

func (s *catalogServiceImpl) Delete(ctx context.Context, productID string) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("product %s not found", productID)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.log.Info("Product deleted", zap.String("product_id", productID))
	return nil
}

func (s *catalogServiceImpl) Seed(ctx context.Context) (int, error) {
	products := repository.DefaultCatalog()
	for _, p := range products {
		p.ID = newSlugID("prod")
	}

	n, err := s.productRepo.Seed(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return n, nil
}

func (s *catalogServiceImpl) Lookup(ctx context.Context, productID string, period model.BillingPeriod) (*model.Product, decimal.Decimal, error) {
	if !period.Valid() {
		return nil, decimal.Zero, apperror.BadRequest("plan_duration must be monthly or yearly")
	}

	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	price, err := product.PriceFor(period)
	if err != nil {
		return nil, decimal.Zero, apperror.BadRequest("%s", err.Error())
	}

	return product, price, nil
}

func validatePrices(prices ...decimal.Decimal) error {
	for _, p := range prices {
		if p.IsNegative() {
			return apperror.BadRequest("prices must not be negative")
		}
	}
	return nil
}
