package server

import (
	"context"
	"errors"
	"net/http"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/handler"
	"hosting-storefront/internal/logger"
	authmw "hosting-storefront/internal/middleware"
	"hosting-storefront/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Services struct {
	Auth     service.AuthService
	Catalog  service.CatalogService
	Orders   service.OrderService
	Payments service.PaymentService
	Invoices service.InvoiceService
	Reports  service.ReportService
	Contact  service.ContactService
}

type Options struct {
	// EnableMockPayments registers the mock completion route. It must stay off
	// in production.
	EnableMockPayments bool
}

type Server struct {
	echo           *echo.Echo
	log            *zap.Logger
	opts           Options
	authService    service.AuthService
	authHandler    *handler.AuthHandler
	productHandler *handler.ProductHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	invoiceHandler *handler.InvoiceHandler
	adminHandler   *handler.AdminHandler
	contactHandler *handler.ContactHandler
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(services Services, log *zap.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		log:            log,
		opts:           opts,
		authService:    services.Auth,
		authHandler:    handler.NewAuthHandler(services.Auth),
		productHandler: handler.NewProductHandler(services.Catalog),
		orderHandler:   handler.NewOrderHandler(services.Orders),
		paymentHandler: handler.NewPaymentHandler(services.Payments),
		invoiceHandler: handler.NewInvoiceHandler(services.Invoices),
		adminHandler:   handler.NewAdminHandler(services.Reports),
		contactHandler: handler.NewContactHandler(services.Contact),
	}

	e.HTTPErrorHandler = s.handleError

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := authmw.AuthMiddleware(s.authService)

	// -------- auth --------
	api.POST("/auth/register", s.authHandler.Register)
	api.POST("/auth/login", s.authHandler.Login)
	api.GET("/auth/me", s.authHandler.Me, auth)

	// -------- catalog --------
	api.GET("/products", s.productHandler.ListProducts)
	api.GET("/products/:id", s.productHandler.GetProduct)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.CreateOrder)
	orders.GET("", s.orderHandler.ListMyOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)

	// -------- payments --------
	api.POST("/payments/session", s.paymentHandler.CreateSession, auth)
	if s.opts.EnableMockPayments {
		api.POST("/payments/mock-complete/:id", s.paymentHandler.CompleteMock, auth)
	}
	// gateway callback, authenticated by X-Signature
	api.POST("/payments/webhook", s.paymentHandler.Webhook)

	// -------- invoices --------
	invoices := api.Group("/invoices", auth)
	invoices.GET("", s.invoiceHandler.ListMyInvoices)
	invoices.GET("/:id", s.invoiceHandler.GetInvoice)
	invoices.GET("/:id/pdf", s.invoiceHandler.DownloadPDF)

	// -------- contact --------
	api.POST("/contact", s.contactHandler.Submit)

	// -------- admin --------
	admin := api.Group("/admin", auth, authmw.RequireAdmin())
	admin.POST("/products", s.productHandler.CreateProduct)
	admin.PUT("/products/:id", s.productHandler.UpdateProduct)
	admin.DELETE("/products/:id", s.productHandler.DeleteProduct)
	admin.GET("/orders", s.orderHandler.ListAllOrders)
	admin.PUT("/orders/:id/status", s.orderHandler.UpdateOrderStatus)
	admin.GET("/invoices", s.invoiceHandler.ListAllInvoices)
	admin.GET("/stats", s.adminHandler.Stats)
	admin.GET("/sales-report", s.adminHandler.SalesReport)
	admin.GET("/gateway", s.paymentHandler.GatewayStatus)
	admin.GET("/contact", s.contactHandler.List)
	admin.PUT("/contact/:id/read", s.contactHandler.MarkRead)
}

// handleError writes every error as {"error": message}. Unclassified errors
// are logged and hidden behind a generic message.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperror.HTTPStatus(err)
	message := apperror.PublicMessage(err)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, map[string]string{"error": message})
	}
	if err != nil {
		s.log.Error("Failed to write error response", zap.Error(err))
	}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
