package service

import (
	"context"
	"testing"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "IG-0001", FormatInvoiceNumber("IG", 4, 1))
	assert.Equal(t, "IG-0042", FormatInvoiceNumber("IG", 4, 42))
	assert.Equal(t, "IG-12345", FormatInvoiceNumber("IG", 4, 12345))
}

func TestInvoiceNumbersIncrease(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	p := env.product(t, 99, 990)

	var numbers []string
	for i := 0; i < 3; i++ {
		o := env.order(t, alice, p.ID, model.BillingMonthly)
		session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
		require.NoError(t, err)
		ref, err := env.payments.CompleteMock(ctx, alice, session.PaymentID)
		require.NoError(t, err)
		numbers = append(numbers, ref.InvoiceNumber)
	}

	assert.Equal(t, []string{"IG-0001", "IG-0002", "IG-0003"}, numbers)
}

func TestIssueForOrderSnapshotsAndTax(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 200, 2000).ID, model.BillingMonthly)

	issuer := NewInvoiceService(env.db, config.Invoice{Prefix: "INVC", Digits: 6, TaxPercent: 14}, fakeRenderer{}, env.orderRepo, env.invoiceRepo, zap.NewNop())

	invoice, err := issuer.IssueForOrder(ctx, nil, o.OrderID, "PAY-TEST")
	require.NoError(t, err)

	assert.Equal(t, "INVC-000001", invoice.InvoiceNumber)
	assert.Regexp(t, `^INV-[0-9A-F]{8}$`, invoice.InvoiceID)
	assert.Equal(t, "Alice", invoice.CustomerName)
	assert.Equal(t, "استضافة", invoice.ProductName)
	assert.Equal(t, model.BillingMonthly, invoice.BillingPeriod)
	assert.Equal(t, model.PaymentPaid, invoice.Status)
	assert.True(t, decimal.NewFromInt(200).Equal(invoice.Subtotal))
	assert.True(t, decimal.NewFromInt(28).Equal(invoice.Tax))
	assert.True(t, decimal.NewFromInt(228).Equal(invoice.Total))

	again, err := issuer.IssueForOrder(ctx, nil, o.OrderID, "PAY-OTHER")
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceID, again.InvoiceID)
	assert.Equal(t, "PAY-TEST", again.PaymentID)

	_, err = issuer.IssueForOrder(ctx, nil, "ORD-MISSING", "PAY-TEST")
	requireAppError(t, err, apperror.ErrNotFound)
}

func TestInvoiceAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)
	ref, err := env.payments.CompleteMock(ctx, alice, session.PaymentID)
	require.NoError(t, err)

	_, err = env.invoices.Get(ctx, alice, ref.InvoiceID)
	require.NoError(t, err)
	_, err = env.invoices.Get(ctx, admin, ref.InvoiceID)
	require.NoError(t, err)

	_, err = env.invoices.Get(ctx, bob, ref.InvoiceID)
	requireAppError(t, err, apperror.ErrForbidden)
	_, _, err = env.invoices.RenderPDF(ctx, bob, ref.InvoiceID)
	requireAppError(t, err, apperror.ErrForbidden)

	_, err = env.invoices.Get(ctx, alice, "INV-MISSING")
	requireAppError(t, err, apperror.ErrNotFound)

	invoice, doc, err := env.invoices.RenderPDF(ctx, alice, ref.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, ref.InvoiceNumber, invoice.InvoiceNumber)
	assert.Equal(t, "%PDF-"+ref.InvoiceNumber, string(doc))

	mine, err := env.invoices.ListForUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := env.invoices.ListForUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = env.invoices.ListAll(ctx, alice)
	requireAppError(t, err, apperror.ErrForbidden)
}
