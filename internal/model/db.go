package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `gorm:"primaryKey;size:64;not null" json:"product_id"`
	NameAr        string          `gorm:"size:255;not null" json:"name_ar"`
	NameEn        string          `gorm:"size:255;not null" json:"name_en"`
	DescriptionAr string          `gorm:"type:text" json:"description_ar"`
	DescriptionEn string          `gorm:"type:text" json:"description_en"`
	Category      ProductCategory `gorm:"size:32;index;not null" json:"category"`
	PriceMonthly  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_monthly"`
	PriceYearly   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_yearly"`
	Features      []string        `gorm:"serializer:json;type:text" json:"features"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	IsPopular     bool            `gorm:"not null;default:false" json:"is_popular"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type User struct {
	ID           string    `gorm:"primaryKey;size:64;not null" json:"user_id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Order struct {
	OrderID       string          `gorm:"primaryKey;size:64;not null" json:"order_id"`
	UserID        string          `gorm:"size:64;index;not null" json:"user_id"`
	ProductID     string          `gorm:"size:64;index;not null" json:"product_id"`
	ProductName   string          `gorm:"size:255;not null" json:"product_name"`
	BillingPeriod BillingPeriod   `gorm:"size:16;not null" json:"plan_duration"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // fixed at creation
	Currency      string          `gorm:"size:8;not null" json:"currency"`
	Status        OrderStatus     `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:32;index;not null" json:"payment_status"`
	CustomerName  string          `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string          `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string          `gorm:"size:64" json:"customer_phone,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Payment struct {
	PaymentID     string          `gorm:"primaryKey;size:64;not null" json:"payment_id"`
	OrderID       string          `gorm:"size:64;index;not null" json:"order_id"` // FK → orders.order_id
	TransactionID *string         `gorm:"size:128" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:8;not null" json:"currency"`
	Status        PaymentStatus   `gorm:"size:32;index;not null" json:"status"`
	PaymentMethod string          `gorm:"size:32;not null" json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Invoice copies customer and product details from the order at issuance so
// later edits to either never change a historical invoice.
type Invoice struct {
	InvoiceID     string          `gorm:"primaryKey;size:64;not null" json:"invoice_id"`
	InvoiceNumber string          `gorm:"size:32;uniqueIndex;not null" json:"invoice_number"`
	OrderID       string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	PaymentID     string          `gorm:"size:64;index;not null" json:"payment_id"`
	CustomerName  string          `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string          `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string          `gorm:"size:64" json:"customer_phone,omitempty"`
	ProductName   string          `gorm:"size:255;not null" json:"product_name"`
	BillingPeriod BillingPeriod   `gorm:"size:16;not null" json:"plan_duration"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency      string          `gorm:"size:8;not null" json:"currency"`
	Status        PaymentStatus   `gorm:"size:32;not null" json:"status"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

type InvoiceSequence struct {
	Name      string `gorm:"primaryKey;size:32;not null"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:255;not null"`
	OrderID     string `gorm:"size:64;index"`
	Status      string `gorm:"size:32"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type ContactMessage struct {
	MessageID string    `gorm:"primaryKey;size:64;not null" json:"message_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
