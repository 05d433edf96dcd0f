package service

import (
	"context"
	"testing"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCreateSessionMockMode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	assert.True(t, session.MockMode)
	assert.Regexp(t, `^PAY-[0-9A-F]{8}$`, session.PaymentID)
	assert.Equal(t, o.OrderID, session.OrderID)
	assert.Equal(t, "EGP", session.Currency)
	assert.Empty(t, session.PaymentURL)

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Nil(t, payment.TransactionID)
	assert.Empty(t, env.gateway.requests)
}

func TestCreateSessionWithGateway(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		merchantID: "MID-1",
		apiKey:     testGatewayKey,
		result:     &model.GatewaySessionResult{Status: true, ID: "sess_1", RedirectURL: "https://pay.example/sess_1"},
	}
	env := newTestEnv(t, gw)

	p, err := env.catalog.Create(ctx, productRequest("99.50", "995"))
	require.NoError(t, err)
	o := env.order(t, alice, p.ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	assert.False(t, session.MockMode)
	assert.Equal(t, "sess_1", session.SessionID)
	assert.Equal(t, "https://pay.example/sess_1", session.PaymentURL)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(9950), gw.requests[0].Amount)
	assert.Equal(t, "MID-1", gw.requests[0].MerchantID)
	assert.Equal(t, o.OrderID, gw.requests[0].MerchantOrderID)
	assert.Equal(t, "Payment for استضافة", gw.requests[0].Description)
}

func TestCreateSessionGatewayError(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		merchantID: "MID-1",
		apiKey:     testGatewayKey,
		err:        &apperror.GatewayError{StatusCode: 400, Message: "invalid amount"},
	}
	env := newTestEnv(t, gw)
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	_, err := env.payments.CreateSession(ctx, alice, o.OrderID)

	var gwErr *apperror.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "invalid amount", gwErr.Message)

	payment, err := env.paymentRepo.FindLatestByOrderID(ctx, nil, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, payment.Status)
	assert.Equal(t, model.PaymentPending, env.reload(t, o.OrderID).PaymentStatus)
}

func TestCreateSessionRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	_, err := env.payments.CreateSession(ctx, alice, "ORD-MISSING")
	requireAppError(t, err, apperror.ErrNotFound)

	_, err = env.payments.CreateSession(ctx, bob, o.OrderID)
	requireAppError(t, err, apperror.ErrNotFound)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)
	_, err = env.payments.CompleteMock(ctx, alice, session.PaymentID)
	require.NoError(t, err)

	_, err = env.payments.CreateSession(ctx, alice, o.OrderID)
	requireAppError(t, err, apperror.ErrConflict)
}

func TestCompleteMockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	first, err := env.payments.CompleteMock(ctx, alice, session.PaymentID)
	require.NoError(t, err)
	second, err := env.payments.CompleteMock(ctx, alice, session.PaymentID)
	require.NoError(t, err)

	assert.Equal(t, first.InvoiceID, second.InvoiceID)
	assert.Equal(t, "IG-0001", first.InvoiceNumber)
	assert.Equal(t, 1, env.invoiceCount(t))

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.Regexp(t, `^MOCK-[0-9A-F]{8}$`, *payment.TransactionID)

	reloaded := env.reload(t, o.OrderID)
	assert.Equal(t, model.OrderCompleted, reloaded.Status)
	assert.Equal(t, model.PaymentPaid, reloaded.PaymentStatus)
}

func TestCompleteMockRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	_, err := env.payments.CompleteMock(ctx, alice, "PAY-MISSING")
	requireAppError(t, err, apperror.ErrNotFound)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	_, err = env.payments.CompleteMock(ctx, bob, session.PaymentID)
	requireAppError(t, err, apperror.ErrNotFound)

	_, err = env.orders.SetStatus(ctx, admin, o.OrderID, model.OrderCancelled)
	require.NoError(t, err)

	_, err = env.payments.CompleteMock(ctx, alice, session.PaymentID)
	requireAppError(t, err, apperror.ErrConflict)

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status, "rejected completion rolls back")
	assert.Zero(t, env.invoiceCount(t))
}

func TestWebhookSuccessSettlesOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{merchantID: "MID-1", apiKey: testGatewayKey, result: &model.GatewaySessionResult{Status: true, ID: "s"}})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	body, sig := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_1",
		Status:          "success",
	})
	require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "txn_1", *payment.TransactionID)

	reloaded := env.reload(t, o.OrderID)
	assert.Equal(t, model.OrderCompleted, reloaded.Status)
	assert.Equal(t, model.PaymentPaid, reloaded.PaymentStatus)

	invoice, err := env.invoiceRepo.FindByOrderID(ctx, nil, o.OrderID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(99).Equal(invoice.Total))
	assert.Equal(t, "EGP", invoice.Currency)
	assert.Equal(t, session.PaymentID, invoice.PaymentID)

	t.Run("redelivery", func(t *testing.T) {
		require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))
		assert.Equal(t, 1, env.invoiceCount(t))
	})

	t.Run("second success for a paid order", func(t *testing.T) {
		body, sig := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
			MerchantOrderID: o.OrderID,
			TransactionID:   "txn_2",
			Status:          "success",
		})
		require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))
		assert.Equal(t, 1, env.invoiceCount(t))
	})

	t.Run("late failure does not unpay", func(t *testing.T) {
		body, sig := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
			MerchantOrderID: o.OrderID,
			TransactionID:   "txn_3",
			Status:          "failed",
		})
		require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))
		assert.Equal(t, model.PaymentPaid, env.reload(t, o.OrderID).PaymentStatus)
	})
}

func TestWebhookInvalidSignatureChangesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{merchantID: "MID-1", apiKey: testGatewayKey, result: &model.GatewaySessionResult{Status: true, ID: "s"}})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	body, _ := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_1",
		Status:          "success",
	})
	_, forged := signedWebhook(t, "wrong-key", model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_1",
		Status:          "success",
	})

	for _, sig := range []string{"", "nothex", forged} {
		err := env.payments.HandleWebhook(ctx, body, sig)
		requireAppError(t, err, apperror.ErrUnauthorized)
	}

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, model.PaymentPending, env.reload(t, o.OrderID).PaymentStatus)
	assert.Zero(t, env.invoiceCount(t))
}

func TestWebhookFailureCancelsOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	session, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	// No api key configured: signature check is skipped.
	body, _ := signedWebhook(t, "unused", model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_9",
		Status:          "declined",
	})
	require.NoError(t, env.payments.HandleWebhook(ctx, body, ""))

	payment, err := env.paymentRepo.FindByID(ctx, nil, session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, payment.Status)

	reloaded := env.reload(t, o.OrderID)
	assert.Equal(t, model.OrderCancelled, reloaded.Status)
	assert.Equal(t, model.PaymentFailed, reloaded.PaymentStatus)

	body, _ = signedWebhook(t, "unused", model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_10",
		Status:          "success",
	})
	require.NoError(t, env.payments.HandleWebhook(ctx, body, ""))
	assert.Zero(t, env.invoiceCount(t), "closed orders are not invoiced")
}

func TestWebhookRejectsBadPayloads(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})

	err := env.payments.HandleWebhook(ctx, []byte(`not json`), "")
	requireAppError(t, err, apperror.ErrBadRequest)

	err = env.payments.HandleWebhook(ctx, []byte(`{"status":"success"}`), "")
	requireAppError(t, err, apperror.ErrBadRequest)

	err = env.payments.HandleWebhook(ctx, []byte(`{"merchant_order_id":"ORD-NONE","transaction_id":"t","status":"success"}`), "")
	requireAppError(t, err, apperror.ErrNotFound)
}

func TestGatewayStatus(t *testing.T) {
	env := newTestEnv(t, &fakeGateway{merchantID: "MID-1", apiKey: testGatewayKey})
	status := env.payments.GatewayStatus(context.Background())
	assert.True(t, status.Connected)
	assert.Equal(t, "MID-1", status.MerchantID)
	assert.Empty(t, status.Error)

	env = newTestEnv(t, &fakeGateway{})
	status = env.payments.GatewayStatus(context.Background())
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Error)
}

func TestCompleteMockSecondAttemptOnPaidOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	first, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)
	second, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	_, err = env.payments.CompleteMock(ctx, alice, first.PaymentID)
	require.NoError(t, err)

	_, err = env.payments.CompleteMock(ctx, alice, second.PaymentID)
	requireAppError(t, err, apperror.ErrConflict)

	paid, err := env.paymentRepo.FindByID(ctx, nil, first.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.Status)

	stale, err := env.paymentRepo.FindByID(ctx, nil, second.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, stale.Status)
	assert.Nil(t, stale.TransactionID)

	assert.Equal(t, 1, env.invoiceCount(t))
	invoice, err := env.invoiceRepo.FindByOrderID(ctx, nil, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentID, invoice.PaymentID)
}

func TestWebhookSuccessForOtherAttemptOnPaidOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{})
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	first, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)
	second, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	_, err = env.payments.CompleteMock(ctx, alice, first.PaymentID)
	require.NoError(t, err)

	// The latest attempt for the order is the second one.
	body, _ := signedWebhook(t, "unused", model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_late",
		Status:          "success",
	})
	require.NoError(t, env.payments.HandleWebhook(ctx, body, ""))

	stale, err := env.paymentRepo.FindByID(ctx, nil, second.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, stale.Status)
	assert.Nil(t, stale.TransactionID)

	assert.Equal(t, 1, env.invoiceCount(t))
	assert.Equal(t, model.PaymentPaid, env.reload(t, o.OrderID).PaymentStatus)
}

func TestWebhookRedeliveryShortCircuits(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	gw := &fakeGateway{merchantID: "MID-1", apiKey: testGatewayKey, result: &model.GatewaySessionResult{Status: true, ID: "s"}}
	env := newTestEnvWithLogger(t, gw, zap.New(core))
	o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)

	_, err := env.payments.CreateSession(ctx, alice, o.OrderID)
	require.NoError(t, err)

	body, sig := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
		MerchantOrderID: o.OrderID,
		TransactionID:   "txn_1",
		Status:          "success",
	})
	require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))

	seen, err := repository.NewWebhookEventRepository(env.db).Exists(ctx, o.OrderID+":txn_1:success")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))

	assert.Equal(t, 1, logs.FilterMessage("Webhook processed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Duplicate webhook delivery ignored").Len())
	assert.Zero(t, logs.FilterMessage("Concurrent webhook delivery ignored").Len())
	assert.Equal(t, 1, env.invoiceCount(t))
}

func TestWebhookUnverifiedWarning(t *testing.T) {
	ctx := context.Background()
	const warning = "Gateway api key missing, accepting webhook without signature check"

	t.Run("key without merchant id", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		env := newTestEnvWithLogger(t, &fakeGateway{apiKey: testGatewayKey}, zap.New(core))
		o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)
		_, err := env.payments.CreateSession(ctx, alice, o.OrderID)
		require.NoError(t, err)

		body, sig := signedWebhook(t, testGatewayKey, model.GatewayWebhookEvent{
			MerchantOrderID: o.OrderID,
			TransactionID:   "txn_1",
			Status:          "success",
		})
		require.NoError(t, env.payments.HandleWebhook(ctx, body, sig))
		assert.Zero(t, logs.FilterMessage(warning).Len())

		err = env.payments.HandleWebhook(ctx, body, "00")
		requireAppError(t, err, apperror.ErrUnauthorized)
	})

	t.Run("no key", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		env := newTestEnvWithLogger(t, &fakeGateway{}, zap.New(core))
		o := env.order(t, alice, env.product(t, 99, 990).ID, model.BillingMonthly)
		_, err := env.payments.CreateSession(ctx, alice, o.OrderID)
		require.NoError(t, err)

		body, _ := signedWebhook(t, "unused", model.GatewayWebhookEvent{
			MerchantOrderID: o.OrderID,
			TransactionID:   "txn_1",
			Status:          "success",
		})
		require.NoError(t, env.payments.HandleWebhook(ctx, body, ""))
		assert.Equal(t, 1, logs.FilterMessage(warning).Len())
	})
}
