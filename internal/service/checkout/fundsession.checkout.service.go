package checkout

import (
	"encoding/json"
	"sync"
	"time"

	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/redis"

	"github.com/shopspring/decimal"
)

const fundSessionKeyPrefix = "checkout:fund:"

// FundSession is the debit context persisted between the fund-account step
// and settlement. It is cleared on success and on abandon.
type FundSession struct {
	AccountId    string          `json:"account_id"`
	Email        string          `json:"email"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	PublicApiKey string          `json:"public_api_key"`
}

type IFundSessionStore interface {
	Save(sessionId string, fs *FundSession) error
	Load(sessionId string) (*FundSession, error)
	Clear(sessionId string) error
}

// RedisFundSessionStore keeps fund sessions in redis with a TTL so abandoned
// checkouts age out on their own.
type RedisFundSessionStore struct {
	rds redis.IRedis
	ttl time.Duration
}

func NewRedisFundSessionStore(rds redis.IRedis, ttl time.Duration) IFundSessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisFundSessionStore{rds: rds, ttl: ttl}
}

func (s *RedisFundSessionStore) Save(sessionId string, fs *FundSession) error {
	return s.rds.Set(fundSessionKeyPrefix+sessionId, fs, s.ttl)
}

func (s *RedisFundSessionStore) Load(sessionId string) (*FundSession, error) {
	raw, err := s.rds.Get(fundSessionKeyPrefix + sessionId)
	if err != nil {
		if err == redis.NilType {
			return nil, nil
		}
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var fs FundSession
	if err := json.Unmarshal([]byte(raw), &fs); err != nil {
		logger.Warning.Printf("discarding malformed fund session %s: %v", sessionId, err)
		return nil, nil
	}
	return &fs, nil
}

func (s *RedisFundSessionStore) Clear(sessionId string) error {
	return s.rds.Del(fundSessionKeyPrefix + sessionId)
}

// MemoryFundSessionStore backs sessions when redis is not configured, and
// doubles as the test store.
type MemoryFundSessionStore struct {
	mu   sync.Mutex
	data map[string]*FundSession
}

func NewMemoryFundSessionStore() *MemoryFundSessionStore {
	return &MemoryFundSessionStore{data: map[string]*FundSession{}}
}

func (s *MemoryFundSessionStore) Save(sessionId string, fs *FundSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *fs
	s.data[sessionId] = &cp
	return nil
}

func (s *MemoryFundSessionStore) Load(sessionId string) (*FundSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.data[sessionId]
	if !ok {
		return nil, nil
	}
	cp := *fs
	return &cp, nil
}

func (s *MemoryFundSessionStore) Clear(sessionId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionId)
	return nil
}
