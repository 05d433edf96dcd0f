package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/signature"
)

const sessionPath = "/api/v1/payment/session"

type GatewayClient interface {
	// Configured reports whether merchant credentials are present. When they
	// are not, callers must use mock sessions instead of CreateSession.
	Configured() bool
	// VerifiesSignatures reports whether VerifyWebhook checks anything.
	VerifiesSignatures() bool
	MerchantID() string
	Mode() string
	CreateSession(ctx context.Context, req *model.GatewaySessionRequest) (*model.GatewaySessionResult, error)
	// VerifyWebhook checks the X-Signature of a webhook body. It accepts any
	// body when no api key is configured.
	VerifyWebhook(body []byte, signatureHeader string) error
}

type gatewayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	merchantID string
	apiKey     string
	mode       string
	timeout    time.Duration
}

func NewGatewayClient(gatewayCfg *config.Gateway) GatewayClient {
	timeout := gatewayCfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseApiURL: gatewayCfg.BaseURL(),
		merchantID: gatewayCfg.MerchantID,
		apiKey:     gatewayCfg.APIKey,
		mode:       gatewayCfg.Mode,
		timeout:    timeout,
	}
}

func (c *gatewayClientImpl) Configured() bool {
	return c.merchantID != "" && c.apiKey != ""
}

func (c *gatewayClientImpl) VerifiesSignatures() bool {
	return c.apiKey != ""
}

func (c *gatewayClientImpl) MerchantID() string {
	return c.merchantID
}

func (c *gatewayClientImpl) Mode() string {
	return c.mode
}

func (c *gatewayClientImpl) CreateSession(ctx context.Context, payload *model.GatewaySessionRequest) (*model.GatewaySessionResult, error) {
	sig, err := signature.Sign(c.apiKey, payload)
	if err != nil {
		return nil, fmt.Errorf("sign session request: %w", err)
	}

	body, err := signature.CanonicalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+sessionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperror.GatewayError{
			Message:   transportMessage(err),
			Retryable: true,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &apperror.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "reading gateway response failed",
			Retryable:  true,
			Err:        err,
		}
	}

	var result model.GatewaySessionResult
	decodeErr := json.Unmarshal(respBody, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || !result.Status {
		message := result.Message
		if message == "" {
			message = "Payment session failed"
		}
		return nil, &apperror.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500,
			Err:        decodeErr,
		}
	}

	return &result, nil
}

func (c *gatewayClientImpl) VerifyWebhook(body []byte, signatureHeader string) error {
	if !c.VerifiesSignatures() {
		return nil
	}
	return signature.Verify(c.apiKey, body, signatureHeader)
}

func transportMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "payment gateway timed out, please retry"
	}
	return "payment gateway unreachable, please retry"
}
