package dto

import (
	"hosting-storefront/internal/model"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type ProductRequest struct {
	NameAr        string          `json:"name_ar" validate:"required"`
	NameEn        string          `json:"name_en" validate:"required"`
	DescriptionAr string          `json:"description_ar"`
	DescriptionEn string          `json:"description_en"`
	Category      string          `json:"category" validate:"required,oneof=hosting design marketing"`
	PriceMonthly  decimal.Decimal `json:"price_monthly"`
	PriceYearly   decimal.Decimal `json:"price_yearly"`
	Features      []string        `json:"features"`
	IsPopular     bool            `json:"is_popular"`
}

type ProductUpdateRequest struct {
	NameAr        *string          `json:"name_ar"`
	NameEn        *string          `json:"name_en"`
	DescriptionAr *string          `json:"description_ar"`
	DescriptionEn *string          `json:"description_en"`
	Category      *string          `json:"category" validate:"omitempty,oneof=hosting design marketing"`
	PriceMonthly  *decimal.Decimal `json:"price_monthly"`
	PriceYearly   *decimal.Decimal `json:"price_yearly"`
	Features      []string         `json:"features"`
	IsActive      *bool            `json:"is_active"`
	IsPopular     *bool            `json:"is_popular"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// MessageResponse acknowledges an action that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	PlanDuration  string `json:"plan_duration" validate:"required,oneof=monthly yearly"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

type PaymentSessionRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// PaymentSessionResponse describes where the customer pays. MockMode is true
// when no gateway is configured; the client must then finish the payment via
// the mock completion endpoint.
type PaymentSessionResponse struct {
	PaymentID  string          `json:"payment_id"`
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	MockMode   bool            `json:"mock_mode"`
	SessionID  string          `json:"session_id,omitempty"`
	PaymentURL string          `json:"payment_url,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type InvoiceRef struct {
	Message       string `json:"message"`
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

type GatewayStatusResponse struct {
	Connected  bool   `json:"connected"`
	MerchantID string `json:"merchant_id,omitempty"`
	Mode       string `json:"mode"`
	Error      string `json:"error,omitempty"`
}

type StatsResponse struct {
	TotalOrders    int64           `json:"total_orders"`
	PaidOrders     int64           `json:"paid_orders"`
	PendingOrders  int64           `json:"pending_orders"`
	TotalProducts  int64           `json:"total_products"`
	TotalUsers     int64           `json:"total_users"`
	UnreadMessages int64           `json:"unread_messages"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

type DailySales struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

type SalesReportResponse struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	OrdersCount       int             `json:"orders_count"`
	PaidOrders        int             `json:"paid_orders"`
	PendingOrders     int             `json:"pending_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	InvoicesCount     int64           `json:"invoices_count"`
	DailyBreakdown    []DailySales    `json:"daily_breakdown"`
	FromDate          string          `json:"from_date"`
	ToDate            string          `json:"to_date"`
}
