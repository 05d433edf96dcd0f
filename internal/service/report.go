package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dateLayout          = "2006-01-02"
	defaultReportWindow = 30 * 24 * time.Hour
)

type ReportService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	// SalesReport summarizes orders created in [from, to]. Both bounds accept
	// RFC3339 or YYYY-MM-DD; empty bounds default to the last 30 days.
	SalesReport(ctx context.Context, from, to string) (*dto.SalesReportResponse, error)
}

type reportServiceImpl struct {
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	contactRepo repository.ContactRepository
	now         func() time.Time
}

func NewReportService(
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	contactRepo repository.ContactRepository,
) ReportService {
	return &reportServiceImpl{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		contactRepo: contactRepo,
		now:         time.Now,
	}
}

func (s *reportServiceImpl) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var (
		stats dto.StatsResponse
		err   error
	)

	if stats.TotalOrders, err = s.orderRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if stats.PaidOrders, err = s.orderRepo.CountByPaymentStatus(ctx, model.PaymentPaid); err != nil {
		return nil, fmt.Errorf("count paid orders: %w", err)
	}
	if stats.PendingOrders, err = s.orderRepo.CountByPaymentStatus(ctx, model.PaymentPending); err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.UnreadMessages, err = s.contactRepo.CountUnread(ctx); err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}

	amounts, err := s.orderRepo.PaidAmounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	stats.TotalRevenue = decimal.Sum(decimal.Zero, amounts...)

	return &stats, nil
}

func (s *reportServiceImpl) SalesReport(ctx context.Context, from, to string) (*dto.SalesReportResponse, error) {
	now := s.now().UTC()

	start := now.Add(-defaultReportWindow)
	if from != "" {
		t, _, err := parseReportTime(from)
		if err != nil {
			return nil, apperror.BadRequest("invalid from date %q", from)
		}
		start = t
	}

	end := now
	if to != "" {
		t, dateOnly, err := parseReportTime(to)
		if err != nil {
			return nil, apperror.BadRequest("invalid to date %q", to)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
	}

	if end.Before(start) {
		return nil, apperror.BadRequest("from date must not be after to date")
	}

	orders, err := s.orderRepo.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	invoices, err := s.invoiceRepo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	report := &dto.SalesReportResponse{
		TotalSales:        decimal.Zero,
		OrdersCount:       len(orders),
		AverageOrderValue: decimal.Zero,
		InvoicesCount:     invoices,
		DailyBreakdown:    []dto.DailySales{},
		FromDate:          start.Format(time.RFC3339),
		ToDate:            end.Format(time.RFC3339),
	}

	daily := map[string]*dto.DailySales{}
	for _, o := range orders {
		switch o.PaymentStatus {
		case model.PaymentPending:
			report.PendingOrders++
			continue
		case model.PaymentPaid:
		default:
			continue
		}

		report.PaidOrders++
		report.TotalSales = report.TotalSales.Add(o.Amount)

		day := o.CreatedAt.UTC().Format(dateLayout)
		d, ok := daily[day]
		if !ok {
			d = &dto.DailySales{Date: day, Amount: decimal.Zero}
			daily[day] = d
		}
		d.Orders++
		d.Amount = d.Amount.Add(o.Amount)
	}

	if report.PaidOrders > 0 {
		report.AverageOrderValue = report.TotalSales.
			Div(decimal.NewFromInt(int64(report.PaidOrders))).
			Round(2)
	}

	for _, d := range daily {
		report.DailyBreakdown = append(report.DailyBreakdown, *d)
	}
	sort.Slice(report.DailyBreakdown, func(i, j int) bool {
		return report.DailyBreakdown[i].Date > report.DailyBreakdown[j].Date
	})

	return report, nil
}

func parseReportTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
