package model

// Wire types of the payment gateway.

type GatewaySessionRequest struct {
	MerchantID      string `json:"merchant_id"`
	MerchantOrderID string `json:"merchant_order_id"`
	Amount          int64  `json:"amount"` // minor currency units
	Currency        string `json:"currency"`
	CustomerEmail   string `json:"customer_email"`
	Description     string `json:"description"`
}

type GatewaySessionResult struct {
	Status      bool   `json:"status"`
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
}

type GatewayWebhookEvent struct {
	MerchantOrderID string `json:"merchant_order_id"`
	TransactionID   string `json:"transaction_id"`
	Status          string `json:"status"`
}

const GatewayStatusSuccess = "success"
