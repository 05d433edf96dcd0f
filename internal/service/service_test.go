package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/client"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"
	"hosting-storefront/internal/signature"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testGatewayKey = "test-api-key"

type fakeGateway struct {
	merchantID string
	apiKey     string
	requests   []*model.GatewaySessionRequest
	result     *model.GatewaySessionResult
	err        error
}

func (g *fakeGateway) Configured() bool { return g.merchantID != "" && g.apiKey != "" }
func (g *fakeGateway) VerifiesSignatures() bool { return g.apiKey != "" }
func (g *fakeGateway) MerchantID() string { return g.merchantID }
func (g *fakeGateway) Mode() string { return config.GatewayModeSandbox }

func (g *fakeGateway) CreateSession(_ context.Context, req *model.GatewaySessionRequest) (*model.GatewaySessionResult, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *fakeGateway) VerifyWebhook(body []byte, sig string) error {
	if !g.VerifiesSignatures() {
		return nil
	}
	return signature.Verify(g.apiKey, body, sig)
}

type fakeRenderer struct{}

func (fakeRenderer) Render(invoice *model.Invoice) ([]byte, error) {
	return []byte("%PDF-" + invoice.InvoiceNumber), nil
}

type testEnv struct {
	db          *gorm.DB
	gateway     *fakeGateway
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	catalog     CatalogService
	orders      OrderService
	invoices    InvoiceService
	payments    PaymentService
	auth        AuthService
	reports     ReportService
	contact     ContactService
}

func newTestEnv(t *testing.T, gateway *fakeGateway) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, gateway, zap.NewNop())
}

func newTestEnvWithLogger(t *testing.T, gateway *fakeGateway, log *zap.Logger) *testEnv {
	t.Helper()

	db, err := client.InitDatabase(config.Database{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "service.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	env := &testEnv{
		db:          db,
		gateway:     gateway,
		orderRepo:   repository.NewOrderRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		invoiceRepo: repository.NewInvoiceRepository(db),
	}

	env.catalog = NewCatalogService(productRepo, log)
	env.orders = NewOrderService(env.catalog, env.orderRepo, log)
	env.invoices = NewInvoiceService(db, config.Invoice{Prefix: "IG", Digits: 4}, fakeRenderer{}, env.orderRepo, env.invoiceRepo, log)
	env.payments = NewPaymentService(db, gateway, env.invoices, env.orderRepo, env.paymentRepo, repository.NewWebhookEventRepository(db), log)
	env.auth = NewAuthService(config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}, userRepo, log)
	contactRepo := repository.NewContactRepository(db)
	env.reports = NewReportService(env.orderRepo, env.invoiceRepo, productRepo, userRepo, contactRepo)
	env.contact = NewContactService(contactRepo, log)

	return env
}

var (
	alice = model.Requester{UserID: "user_alice", Role: model.RoleCustomer}
	bob   = model.Requester{UserID: "user_bob", Role: model.RoleCustomer}
	admin = model.Requester{UserID: "user_admin", Role: model.RoleAdmin}
)

func (e *testEnv) product(t *testing.T, monthly, yearly int64) *model.Product {
	t.Helper()

	p, err := e.catalog.Create(context.Background(), &dto.ProductRequest{
		NameAr:       "استضافة",
		NameEn:       "Business Hosting",
		Category:     string(model.CategoryHosting),
		PriceMonthly: decimal.NewFromInt(monthly),
		PriceYearly:  decimal.NewFromInt(yearly),
		Features:     []string{"SSD"},
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) order(t *testing.T, requester model.Requester, productID string, period model.BillingPeriod) *model.Order {
	t.Helper()

	o, err := e.orders.CreateOrder(context.Background(), requester, &dto.CreateOrderRequest{
		ProductID:     productID,
		PlanDuration:  string(period),
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
	})
	require.NoError(t, err)
	return o
}

func (e *testEnv) reload(t *testing.T, orderID string) *model.Order {
	t.Helper()

	o, err := e.orderRepo.FindByOrderID(context.Background(), nil, orderID)
	require.NoError(t, err)
	return o
}

func (e *testEnv) invoiceCount(t *testing.T) int {
	t.Helper()

	invoices, err := e.invoiceRepo.ListAll(context.Background())
	require.NoError(t, err)
	return len(invoices)
}

func signedWebhook(t *testing.T, secret string, event model.GatewayWebhookEvent) ([]byte, string) {
	t.Helper()

	body, err := json.Marshal(event)
	require.NoError(t, err)
	sig, err := signature.Sign(secret, body)
	require.NoError(t, err)
	return body, sig
}

func requireAppError(t *testing.T, err error, target *apperror.Error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
}

func productRequest(monthly, yearly string) *dto.ProductRequest {
	return &dto.ProductRequest{
		NameAr:       "استضافة",
		NameEn:       "Business Hosting",
		Category:     string(model.CategoryHosting),
		PriceMonthly: decimal.RequireFromString(monthly),
		PriceYearly:  decimal.RequireFromString(yearly),
	}
}
