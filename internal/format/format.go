// Package format renders money, numbers and dates for people, using the
// configured locale and business time zone.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"tailor-backend/internal/timeutil"
)

type Formatter struct {
	tag      language.Tag
	printer  *message.Printer
	currency currency.Unit
}

// New builds a formatter for a BCP 47 locale and a default ISO 4217 currency.
func New(locale, defaultCurrency string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(defaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", defaultCurrency, err)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag), currency: unit}, nil
}

// Currency resolves an ISO code, falling back to the default currency when
// code is empty or unknown.
func (f *Formatter) Currency(code string) currency.Unit {
	if code == "" {
		return f.currency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return f.currency
	}
	return unit
}

// Money renders amount with the currency's local symbol, e.g. "$ 1,250.00".
func (f *Formatter) Money(amount decimal.Decimal, code string) string {
	return f.printer.Sprint(currency.Symbol(f.Currency(code).Amount(amount.InexactFloat64())))
}

// MoneyISO renders amount with the ISO code, e.g. "INR 1,250.00". Used where
// only Latin-1 glyphs are available.
func (f *Formatter) MoneyISO(amount decimal.Decimal, code string) string {
	return f.printer.Sprint(currency.ISO(f.Currency(code).Amount(amount.InexactFloat64())))
}

// Number renders a measurement value with up to two decimals.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func (f *Formatter) Date(t time.Time) string {
	return timeutil.Format(t, timeutil.DisplayDate)
}

func (f *Formatter) DateTime(t time.Time) string {
	return timeutil.Format(t, timeutil.DisplayLayout)
}
