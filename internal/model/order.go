package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

func (p BillingPeriod) Valid() bool {
	return p == BillingMonthly || p == BillingYearly
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type ProductCategory string

const (
	CategoryHosting   ProductCategory = "hosting"
	CategoryDesign    ProductCategory = "design"
	CategoryMarketing ProductCategory = "marketing"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryHosting, CategoryDesign, CategoryMarketing:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Requester is the authenticated caller of an operation.
type Requester struct {
	UserID string
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// PriceFor resolves the catalog price of the product for a billing period.
func (p *Product) PriceFor(period BillingPeriod) (decimal.Decimal, error) {
	switch period {
	case BillingMonthly:
		return p.PriceMonthly, nil
	case BillingYearly:
		return p.PriceYearly, nil
	}
	return decimal.Zero, fmt.Errorf("unknown billing period %q", period)
}
