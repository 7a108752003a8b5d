package checkout

import (
	"context"
	"net/http"
	"testing"

	"paysofter-checkout/internal/common/enum"
	"paysofter-checkout/internal/common/models"
	"paysofter-checkout/internal/pkg/paysofter"
	"paysofter-checkout/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(backend *stubBackend) IService {
	return NewService(
		context.Background(),
		repository.IRepository{},
		backend,
		NewMemoryFundSessionStore(),
		nil,
		nil,
		testOptions(),
	)
}

// stubSettlementRepo serves a fixed set of settlement rows.
type stubSettlementRepo struct {
	rows map[string]*models.Settlement
}

func (r *stubSettlementRepo) Create(ctx context.Context, stl *models.Settlement) error {
	r.rows[stl.SessionID] = stl
	return nil
}

func (r *stubSettlementRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Settlement, error) {
	stl, ok := r.rows[sessionID]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return stl, nil
}

func (r *stubSettlementRepo) FindByReferenceID(ctx context.Context, referenceID string) (*models.Settlement, error) {
	for _, stl := range r.rows {
		if stl.ReferenceID == referenceID {
			return stl, nil
		}
	}
	return nil, ErrReceiptNotFound
}

func (r *stubSettlementRepo) List(ctx context.Context, limit, offset int) ([]models.Settlement, int64, error) {
	var rows []models.Settlement
	for _, stl := range r.rows {
		rows = append(rows, *stl)
	}
	return rows, int64(len(rows)), nil
}

// stubS3 answers presign requests without touching any bucket.
type stubS3 struct {
	presigned []string
}

func (s *stubS3) GetBucketName() string { return "receipts-test" }

func (s *stubS3) UploadFile(fileName string, fileBytes []byte, contentType string) error {
	return nil
}

func (s *stubS3) GetPresignedURL(key string) (string, error) {
	s.presigned = append(s.presigned, key)
	return "https://receipts-test.example.com/" + key + "?sig=abc", nil
}

func openServiceSession(t *testing.T, svc IService) SessionState {
	t.Helper()
	resp := svc.OpenSession(&OpenSessionRequest{
		Amount:       decimal.NewFromInt(5000),
		Currency:     "NGN",
		Email:        "buyer@example.com",
		PublicApiKey: "test_pk_abc",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	return resp.Data.(SessionState)
}

func TestServiceOpenSessionDefaults(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	svc := newTestService(backend)

	state := openServiceSession(t, svc)
	assert.NotEmpty(t, state.Id)
	assert.Equal(t, "test", state.Mode)
	// omitted toggles default to every option enabled
	assert.Equal(t, []string{"promise", "card", "fund"}, state.EnabledOptions)
	assert.Equal(t, defaultPromises, state.Promises)
}

func TestServiceOpenSessionInvalidKey(t *testing.T) {
	backend := &stubBackend{
		keyErr: &paysofter.APIError{StatusCode: http.StatusUnauthorized, Detail: "Invalid API key"},
	}
	svc := newTestService(backend)

	resp := svc.OpenSession(&OpenSessionRequest{
		Amount:       decimal.NewFromInt(5000),
		Currency:     "NGN",
		Email:        "buyer@example.com",
		PublicApiKey: "bogus",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.EqualError(t, resp.Error, "Invalid API key")
}

func TestServiceUnknownSession(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	svc := newTestService(backend)

	resp := svc.GetState("cs_missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// closing an unknown session is not an error
	resp = svc.CloseSession("cs_missing")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestServiceFullFlow(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	svc := newTestService(backend)

	state := openServiceSession(t, svc)
	id := state.Id

	// the terms gate rejects a premature submit
	resp := svc.SubmitPromise(id)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = svc.AcceptTerms(id)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = svc.SetDuration(id, &SetDurationRequest{Duration: "2 days"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = svc.SubmitPromise(id)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = svc.FundAccount(id, &FundAccountRequest{AccountId: "1209334573", SecurityCode: "1180"})
	require.Equal(t, http.StatusOK, resp.Code)
	otp := resp.Data.(SessionState).GeneratedOtp
	require.Len(t, otp, 6)

	resp = svc.VerifyOTP(id, &VerifyOTPRequest{OTP: otp})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, string(FLOW_SETTLED), resp.Data.(SessionState).FlowState)
	assert.Equal(t, "2 days", backend.lastInitiate.Duration)

	// closing removes the session from the registry
	resp = svc.CloseSession(id)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, http.StatusNotFound, svc.GetState(id).Code)
}

func TestServiceGetReceipt(t *testing.T) {
	rp := repository.IRepository{
		Settlement: &stubSettlementRepo{rows: map[string]*models.Settlement{
			"cs_settled": {
				SessionID:  "cs_settled",
				ReceiptKey: "receipts/cs_settled.json",
			},
			"cs_unarchived": {
				SessionID: "cs_unarchived",
			},
		}},
	}
	s3 := &stubS3{}
	svc := NewService(
		context.Background(),
		rp,
		&stubBackend{keyStatus: enum.KEY_STATUS_TEST},
		NewMemoryFundSessionStore(),
		nil,
		s3,
		testOptions(),
	)

	resp := svc.GetReceipt("cs_settled")
	require.Equal(t, http.StatusOK, resp.Code)
	receipt := resp.Data.(ReceiptResponse)
	assert.Equal(t, "cs_settled", receipt.SessionId)
	assert.Contains(t, receipt.Url, "receipts/cs_settled.json")
	assert.Equal(t, []string{"receipts/cs_settled.json"}, s3.presigned)

	// a settlement recorded without an archived receipt has nothing to sign
	assert.Equal(t, http.StatusNotFound, svc.GetReceipt("cs_unarchived").Code)
	assert.Equal(t, http.StatusNotFound, svc.GetReceipt("cs_missing").Code)
}

func TestServiceGetReceiptWithoutArchive(t *testing.T) {
	svc := newTestService(&stubBackend{keyStatus: enum.KEY_STATUS_TEST})

	resp := svc.GetReceipt("cs_settled")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.ErrorIs(t, resp.Error, ErrReceiptNotFound)
}

func TestServiceResendCooldownCode(t *testing.T) {
	backend := &stubBackend{keyStatus: enum.KEY_STATUS_TEST}
	svc := newTestService(backend)

	state := openServiceSession(t, svc)
	id := state.Id

	require.Equal(t, http.StatusOK, svc.AcceptTerms(id).Code)
	require.Equal(t, http.StatusOK, svc.SubmitPromise(id).Code)
	require.Equal(t, http.StatusOK, svc.FundAccount(id, &FundAccountRequest{AccountId: "1209334573", SecurityCode: "1180"}).Code)

	require.Equal(t, http.StatusOK, svc.ResendOTP(id).Code)
	assert.Equal(t, http.StatusTooManyRequests, svc.ResendOTP(id).Code)
}
