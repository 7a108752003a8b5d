package paysofter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Setup()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := Setup(&Config{BaseURL: srv.URL})
	return client
}

func TestGetAPIKeyStatus(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/get-api-key-status/", r.URL.Path)

			var body KeyStatusRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "live_key_abc", body.PublicAPIKey)

			_ = json.NewEncoder(w).Encode(KeyStatusResponse{APIKeyStatus: "live"})
		})

		status, err := client.GetAPIKeyStatus(context.Background(), "live_key_abc")
		require.NoError(t, err)
		assert.Equal(t, enum.KEY_STATUS_LIVE, status)
	})

	t.Run("test", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(KeyStatusResponse{APIKeyStatus: "test"})
		})

		status, err := client.GetAPIKeyStatus(context.Background(), "test_key")
		require.NoError(t, err)
		assert.Equal(t, enum.KEY_STATUS_TEST, status)
	})

	t.Run("rejection carries backend detail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid API key"})
		})

		status, err := client.GetAPIKeyStatus(context.Background(), "bogus")
		require.Error(t, err)
		assert.Equal(t, enum.KEY_STATUS_UNKNOWN, status)
		assert.Equal(t, "Invalid API key", ErrorMessage(err))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("unexpected status value", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(KeyStatusResponse{APIKeyStatus: "sandbox"})
		})

		status, err := client.GetAPIKeyStatus(context.Background(), "key")
		require.Error(t, err)
		assert.Equal(t, enum.KEY_STATUS_UNKNOWN, status)
	})

	t.Run("transport error", func(t *testing.T) {
		client := Setup(&Config{BaseURL: "http://127.0.0.1:1"})

		status, err := client.GetAPIKeyStatus(context.Background(), "key")
		require.Error(t, err)
		assert.Equal(t, enum.KEY_STATUS_UNKNOWN, status)
		// no backend detail, the transport error text is the message
		assert.NotEmpty(t, ErrorMessage(err))
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got VerifyOTPRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/verify-otp/", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "verified"})
		})

		err := client.VerifyOTP(context.Background(), &VerifyOTPRequest{
			OTP:          "123456",
			AccountID:    "1209334573",
			Amount:       decimal.NewFromInt(5000),
			Currency:     "NGN",
			PublicAPIKey: "test_key",
			BuyerEmail:   "buyer@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "123456", got.OTP)
		assert.Equal(t, "1209334573", got.AccountID)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("wrong code", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid OTP. Please try again."})
		})

		err := client.VerifyOTP(context.Background(), &VerifyOTPRequest{OTP: "000000"})
		require.Error(t, err)
		assert.Equal(t, "Invalid OTP. Please try again.", ErrorMessage(err))
	})
}

func TestInitiateTransaction(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/initiate-transaction/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.InitiateTransaction(context.Background(), &InitiateTransactionRequest{
		BuyerEmail:    "buyer@example.com",
		Amount:        decimal.NewFromInt(5000),
		Currency:      "NGN",
		AccountID:     "1209334573",
		PublicAPIKey:  "test_key",
		Qty:           1,
		ProductName:   "Headphones",
		ReferenceID:   "ref-001",
		CreatedAt:     "Friday, August 28, 2026 at 09:15:04 AM UTC",
		PaymentMethod: "Paysofter Account Fund",
		Duration:      "Within 1 day",
	})
	require.NoError(t, err)

	// the wire field names are fixed by the settlement backend
	assert.Equal(t, "buyer@example.com", got["buyer_email"])
	assert.Equal(t, "Paysofter Account Fund", got["payment_method"])
	assert.Equal(t, "ref-001", got["reference_id"])
	assert.Equal(t, "Within 1 day", got["duration"])
	assert.Contains(t, got, "created_at")
}

func TestSendDebitFundAccountOTP(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-debit-fund-account-otp/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendDebitFundAccountOTP(context.Background(), &DebitFundAccountRequest{
		AccountID:    "1209334573",
		SecurityCode: "1180",
		Amount:       decimal.NewFromInt(5000),
		Currency:     "NGN",
		PublicAPIKey: "live_key",
		BuyerEmail:   "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "1209334573", got["account_id"])
	assert.Equal(t, "1180", got["security_code"])
}
