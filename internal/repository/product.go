package repository

import (
	"context"

	"hosting-storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Seed(ctx context.Context, products []*model.Product) (int, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	List(ctx context.Context, category model.ProductCategory, activeOnly bool) ([]*model.Product, error)
	Count(ctx context.Context) (int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

// Seed inserts products only into an empty catalog and reports how many were
// created.
func (r *productRepoImpl) Seed(ctx context.Context, products []*model.Product) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Create(&products).Error; err != nil {
		return 0, err
	}
	return len(products), nil
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update writes every column of product except created_at, zero values
// included.
func (r *productRepoImpl) Update(ctx context.Context, product *model.Product) error {
	result := r.db.WithContext(ctx).
		Model(product).
		Select("*").
		Omit("id", "created_at").
		Updates(product)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the product row. Orders and invoices keep their own copy of
// the product name and price.
func (r *productRepoImpl) Delete(ctx context.Context, productID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) List(ctx context.Context, category model.ProductCategory, activeOnly bool) ([]*model.Product, error) {
	var products []*model.Product

	query := r.db.WithContext(ctx).Order("created_at ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}

// DefaultCatalog is the starter set of hosting plans used by Seed.
func DefaultCatalog() []*model.Product {
	return []*model.Product{
		{
			NameAr:        "استضافة البداية",
			NameEn:        "Starter Hosting",
			DescriptionAr: "مثالية للمواقع الشخصية والمدونات الصغيرة",
			DescriptionEn: "Perfect for personal sites and small blogs",
			Category:      model.CategoryHosting,
			PriceMonthly:  decimal.NewFromInt(49),
			PriceYearly:   decimal.NewFromInt(490),
			Features:      []string{"5 GB SSD Storage", "10 GB Bandwidth", "1 Website", "Free SSL", "24/7 Support"},
			IsActive:      true,
		},
		{
			NameAr:        "استضافة الأعمال",
			NameEn:        "Business Hosting",
			DescriptionAr: "للشركات الصغيرة والمتوسطة",
			DescriptionEn: "For small and medium businesses",
			Category:      model.CategoryHosting,
			PriceMonthly:  decimal.NewFromInt(99),
			PriceYearly:   decimal.NewFromInt(990),
			Features:      []string{"50 GB SSD Storage", "Unlimited Bandwidth", "10 Websites", "Free SSL", "Daily Backups"},
			IsActive:      true,
			IsPopular:     true,
		},
		{
			NameAr:        "تصميم موقع",
			NameEn:        "Website Design",
			DescriptionAr: "تصميم موقع احترافي متجاوب",
			DescriptionEn: "Professional responsive website design",
			Category:      model.CategoryDesign,
			PriceMonthly:  decimal.NewFromInt(299),
			PriceYearly:   decimal.NewFromInt(2990),
			Features:      []string{"Responsive Layout", "5 Pages", "Contact Form", "SEO Basics"},
			IsActive:      true,
		},
		{
			NameAr:        "التسويق الرقمي",
			NameEn:        "Digital Marketing",
			DescriptionAr: "إدارة حملات التواصل الاجتماعي",
			DescriptionEn: "Social media campaign management",
			Category:      model.CategoryMarketing,
			PriceMonthly:  decimal.NewFromInt(199),
			PriceYearly:   decimal.NewFromInt(1990),
			Features:      []string{"3 Platforms", "Monthly Report", "Ad Management"},
			IsActive:      true,
		},
	}
}
