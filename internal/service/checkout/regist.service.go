package checkout

import (
	"context"
	"sync"
	"time"

	"paysofter-checkout/internal/common/enum"
	types "paysofter-checkout/internal/common/type"
	"paysofter-checkout/internal/pkg/paysofter"
	"paysofter-checkout/internal/pkg/rabbitmq"
	s3aws "paysofter-checkout/internal/pkg/storage/s3"
	"paysofter-checkout/internal/repository"

	"github.com/shopspring/decimal"
)

// SettledQueue carries one event per settled checkout. The settlement
// worker consumes it and records the settlement.
const SettledQueue = "checkout.settled"

// SettledEvent is the payload published to SettledQueue.
type SettledEvent struct {
	SessionId     string          `json:"session_id"`
	ReferenceId   string          `json:"reference_id"`
	BuyerEmail    string          `json:"buyer_email"`
	BuyerName     string          `json:"buyer_name"`
	BuyerPhone    string          `json:"buyer_phone"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProductName   string          `json:"product_name"`
	Qty           int             `json:"qty"`
	PaymentMethod string          `json:"payment_method"`
	PaymentOption string          `json:"payment_option"`
	KeyMode       string          `json:"key_mode"`
	Duration      string          `json:"duration,omitempty"`
	SettledAt     time.Time       `json:"settled_at"`
}

type Service struct {
	ctx       context.Context
	rp        repository.IRepository
	backend   paysofter.IClient
	store     IFundSessionStore
	publisher *rabbitmq.Publisher
	s3        s3aws.Is3
	opts      EngineOptions

	mu       sync.RWMutex
	sessions map[string]*Session
}

type IService interface {
	OpenSession(req *OpenSessionRequest) *types.Response
	GetState(sessionId string) *types.Response
	SelectOption(sessionId string, req *SelectOptionRequest) *types.Response
	AcceptTerms(sessionId string) *types.Response
	SetDuration(sessionId string, req *SetDurationRequest) *types.Response
	SubmitPromise(sessionId string) *types.Response
	FundAccount(sessionId string, req *FundAccountRequest) *types.Response
	VerifyOTP(sessionId string, req *VerifyOTPRequest) *types.Response
	ResendOTP(sessionId string) *types.Response
	CloseSession(sessionId string) *types.Response
	ListSettlements(req *ListSettlementsRequest) *types.Response
	GetReceipt(sessionId string) *types.Response
}

func NewService(ctx context.Context, rp repository.IRepository, backend paysofter.IClient, store IFundSessionStore, publisher *rabbitmq.Publisher, s3 s3aws.Is3, opts EngineOptions) IService {
	return &Service{
		ctx:       ctx,
		rp:        rp,
		backend:   backend,
		store:     store,
		publisher: publisher,
		s3:        s3,
		opts:      opts,
		sessions:  map[string]*Session{},
	}
}

// Request/Response DTOs

type OpenSessionRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency" binding:"required"`
	Email        string          `json:"email" binding:"required,email"`
	PublicApiKey string          `json:"paysofter_public_key" binding:"required"`
	ReferenceId  string          `json:"reference_id"`
	Qty          int             `json:"qty"`
	ProductName  string          `json:"product_name"`
	BuyerName    string          `json:"buyer_name"`
	BuyerPhone   string          `json:"buyer_phone"`
	Promises     []string        `json:"promises"`

	// option toggles default to enabled when omitted
	ShowPromiseOption *bool `json:"show_promise_option"`
	ShowCardOption    *bool `json:"show_card_option"`
	ShowFundOption    *bool `json:"show_fund_option"`
}

type SelectOptionRequest struct {
	Option enum.PayOptionEnum `json:"option" binding:"required,enum"`
}

type SetDurationRequest struct {
	Duration string `json:"duration" binding:"required"`
}

type FundAccountRequest struct {
	AccountId    string `json:"account_id" binding:"required"`
	SecurityCode string `json:"security_code" binding:"required"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required,len=6,numeric"`
}

type ListSettlementsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type ListSettlementsResponse struct {
	Total int64 `json:"total"`
	Rows  any   `json:"rows"`
}

type ReceiptResponse struct {
	SessionId string `json:"session_id"`
	Url       string `json:"url"`
}
