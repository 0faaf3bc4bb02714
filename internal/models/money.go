package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "USD"
	minorExponent   = 2
)

// Money is an amount in minor units (cents) plus an ISO currency code.
// It serializes as {"amount": <major units>, "currency": "..."}.
type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(minor int64, currency string) Money {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: minor, Currency: currency}
}

// MoneyFromMajor converts a major-unit amount back to minor units.
func MoneyFromMajor(amount decimal.Decimal, currency string) Money {
	return NewMoney(amount.Shift(minorExponent).Round(0).IntPart(), currency)
}

// Major returns the amount in major units, exact.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.Amount, -minorExponent)
}

func (m Money) Less(other Money) bool {
	return m.Amount < other.Amount
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(minorExponent), m.Currency)
}

type moneyJSON struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   json.Number(m.Major().String()),
		Currency: m.Currency,
	})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", raw.Amount, err)
	}
	*m = MoneyFromMajor(amount, raw.Currency)
	return nil
}
