package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// Amount represents a monetary amount as sent by the API: a decimal string
// and an ISO 4217 currency code.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ToMoney converts the decimal string into minor units of the currency.
func (a Amount) ToMoney() (*money.Money, error) {
	currency := money.GetCurrency(a.Currency)
	if currency == nil {
		return nil, fmt.Errorf("unknown currency %q", a.Currency)
	}

	parts := strings.SplitN(strings.TrimSpace(a.Value), ".", 2)
	whole := parts[0]
	fraction := ""
	if len(parts) == 2 {
		fraction = parts[1]
	}

	// Дополняем или обрезаем дробную часть до точности валюты
	if len(fraction) < currency.Fraction {
		fraction += strings.Repeat("0", currency.Fraction-len(fraction))
	} else {
		fraction = fraction[:currency.Fraction]
	}

	minor, err := strconv.ParseInt(whole+fraction, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", a.Value, err)
	}

	return money.New(minor, currency.Code), nil
}

// String renders the amount for humans, falling back to the raw value when
// it cannot be parsed.
func (a Amount) String() string {
	m, err := a.ToMoney()
	if err != nil {
		return strings.TrimSpace(a.Value + " " + a.Currency)
	}
	return m.Display()
}
