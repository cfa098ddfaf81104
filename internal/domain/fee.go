package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeInterval charges FeeAmount for every overdue open day whose 1-based
// index lies in [From, To]. A nil To leaves the interval unbounded.
type FeeInterval struct {
	From      int             `json:"from"`
	To        *int            `json:"to,omitempty"`
	FeeAmount decimal.Decimal `json:"fee_amount"`
}

// Contains reports whether day falls in the interval. An interval whose upper
// bound is below its lower bound never matches.
func (i FeeInterval) Contains(day int) bool {
	if day < i.From {
		return false
	}
	return i.To == nil || day <= *i.To
}

// FeeSchedule is the overdue fee definition of a circulation policy
type FeeSchedule struct {
	Intervals          []FeeInterval    `json:"intervals"`
	MaximumTotalAmount *decimal.Decimal `json:"maximum_total_amount,omitempty"`
}

// Scan implements sql.Scanner for schedules stored as JSON.
func (s *FeeSchedule) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = FeeSchedule{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FeeSchedule", src)
	}
	return json.Unmarshal(raw, s)
}

// Value implements driver.Valuer.
func (s FeeSchedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Accrual is the fee added on one overdue open day
type Accrual struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type OverdueFeeResponse struct {
	LoanID      string          `json:"loan_id"`
	OverdueDays int             `json:"overdue_days"`
	Amount      decimal.Decimal `json:"amount"`
	Accruals    []Accrual       `json:"accruals"`
}

// IntPtr is a helper for bounded fee intervals.
func IntPtr(v int) *int {
	return &v
}
