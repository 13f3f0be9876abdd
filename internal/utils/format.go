package utils

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators (1234567 -> 1,234,567).
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat renders v with thousands separators and at most prec decimals.
func FormatFloat(v float64, prec int) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(prec)))
}

// FormatDuration rounds d for reports.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
