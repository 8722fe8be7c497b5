package render

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter prints whole amounts in one fixed locale and currency.
type CurrencyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func NewCurrencyFormatter(locale, code string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("display locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("display currency %q: %w", code, err)
	}
	return &CurrencyFormatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Format renders v as "<ISO code> <grouped integer>" using the locale's digits
// and separators. Fractions are rounded away.
func (f *CurrencyFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.unit.String() + " -"
	}
	amount := f.printer.Sprintf("%v", number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
	return f.unit.String() + " " + amount
}

func (f *CurrencyFormatter) Code() string { return f.unit.String() }
