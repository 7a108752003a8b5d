package paysofter

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	keyStatusPath           = "/api/get-api-key-status/"
	debitFundAccountPath    = "/api/send-debit-fund-account-otp/"
	verifyOTPPath           = "/api/verify-otp/"
	initiateTransactionPath = "/api/initiate-transaction/"
)

type Config struct {
	BaseURL        string
	RequestTimeout int // seconds, 0 means the 30s default
}

type Client struct {
	BaseURL    string
	HttpClient *http.Client
}

type IClient interface {
	GetAPIKeyStatus(ctx context.Context, publicAPIKey string) (enum.KeyStatusEnum, error)
	SendDebitFundAccountOTP(ctx context.Context, req *DebitFundAccountRequest) error
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error
	InitiateTransaction(ctx context.Context, req *InitiateTransactionRequest) error
}

func Setup(cfg *Config) *Client {
	timeout := 30 * time.Second
	if cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &Client{
		BaseURL: cfg.BaseURL,
		HttpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// APIError is a structured rejection from the Paysofter API; Detail carries
// the backend's human-readable message.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("paysofter api error: status %d", e.StatusCode)
}

// ErrorMessage normalizes any client error to a display string: the
// backend-provided detail when present, otherwise the transport error text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

type KeyStatusRequest struct {
	PublicAPIKey string `json:"public_api_key"`
}

type KeyStatusResponse struct {
	APIKeyStatus string `json:"api_key_status"`
}

type DebitFundAccountRequest struct {
	AccountID    string          `json:"account_id"`
	SecurityCode string          `json:"security_code"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	PublicAPIKey string          `json:"public_api_key"`
	BuyerEmail   string          `json:"buyer_email"`
}

type VerifyOTPRequest struct {
	OTP          string          `json:"otp"`
	AccountID    string          `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	PublicAPIKey string          `json:"public_api_key"`
	BuyerEmail   string          `json:"buyer_email"`
}

type InitiateTransactionRequest struct {
	BuyerEmail    string          `json:"buyer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	AccountID     string          `json:"account_id"`
	PublicAPIKey  string          `json:"public_api_key"`
	Qty           int             `json:"qty"`
	ProductName   string          `json:"product_name"`
	ReferenceID   string          `json:"reference_id"`
	CreatedAt     string          `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	Duration      string          `json:"duration,omitempty"`
}

// GetAPIKeyStatus resolves whether a merchant public key is live or test.
func (c *Client) GetAPIKeyStatus(ctx context.Context, publicAPIKey string) (enum.KeyStatusEnum, error) {
	var result KeyStatusResponse
	err := c.post(ctx, keyStatusPath, &KeyStatusRequest{PublicAPIKey: publicAPIKey}, &result)
	if err != nil {
		return enum.KEY_STATUS_UNKNOWN, err
	}

	status := enum.KeyStatusEnum(result.APIKeyStatus)
	if !status.IsValid() {
		return enum.KEY_STATUS_UNKNOWN, &APIError{
			StatusCode: http.StatusOK,
			Detail:     fmt.Sprintf("unexpected api key status %q", result.APIKeyStatus),
		}
	}

	return status, nil
}

// SendDebitFundAccountOTP asks the backend to debit-check the payer's fund
// account and issue an OTP to the account owner.
func (c *Client) SendDebitFundAccountOTP(ctx context.Context, req *DebitFundAccountRequest) error {
	return c.post(ctx, debitFundAccountPath, req, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error {
	return c.post(ctx, verifyOTPPath, req, nil)
}

func (c *Client) InitiateTransaction(ctx context.Context, req *InitiateTransactionRequest) error {
	return c.post(ctx, initiateTransactionPath, req, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug.Printf("POST %s", req.URL.String())

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
