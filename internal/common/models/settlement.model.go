package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// JSONB is a custom type for GORM to handle JSONB columns
type JSONB json.RawMessage

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB("null")
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = JSONB(v)
	case string:
		*j = JSONB(v)
	default:
		return errors.New("unsupported type for JSONB")
	}
	return nil
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("JSONB: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// Settlement is the durable record written once a checkout session reaches
// the settled state. The engine itself only emits the event; the settlement
// worker owns this table.
type Settlement struct {
	ID            string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID     string          `json:"session_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	ReferenceID   string          `json:"reference_id" gorm:"type:varchar(100);index;not null"`
	BuyerEmail    string          `json:"buyer_email" gorm:"type:varchar(255)"`
	BuyerName     string          `json:"buyer_name" gorm:"type:varchar(255)"`
	BuyerPhone    string          `json:"buyer_phone" gorm:"type:varchar(50)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(20,2);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(10);not null"`
	ProductName   string          `json:"product_name" gorm:"type:varchar(255)"`
	Qty           int             `json:"qty"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(100)"`
	PaymentOption string          `json:"payment_option" gorm:"type:varchar(20);index"`
	KeyMode       string          `json:"key_mode" gorm:"type:varchar(10)"`
	Duration      string          `json:"duration" gorm:"type:varchar(50)"`
	Payload       JSONB           `json:"payload" gorm:"type:jsonb"`
	ReceiptKey    string          `json:"receipt_key" gorm:"type:text"`
	SettledAt     time.Time       `json:"settled_at" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Settlement) TableName() string {
	return "settlements"
}
