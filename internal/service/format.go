package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is ISO 4217 code used when none is configured
const DefaultCurrency = "INR"

// MoneyFormatter renders amounts for notification messages
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoneyFormatter creates formatter for ISO 4217 currency code
func NewMoneyFormatter(code string) (*MoneyFormatter, error) {
	if code == "" {
		code = DefaultCurrency
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}

	return &MoneyFormatter{
		unit:    unit,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Format returns amount with currency symbol
func (f *MoneyFormatter) Format(amount decimal.Decimal) string {
	if f == nil {
		return amount.StringFixed(2)
	}
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount.Round(2).InexactFloat64())))
}

// Currency returns ISO code of formatter currency
func (f *MoneyFormatter) Currency() string {
	if f == nil {
		return DefaultCurrency
	}
	return f.unit.String()
}
