package savings

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rental-savings/domain"
)

// Round rounds to cents, half away from zero
func Round(amount domain.Amount) decimal.Decimal {
	return decimal.NewFromFloat(float64(amount)).Round(2)
}

// Fixed two-decimal text without grouping, e.g. "1234.50"
func Fixed(amount domain.Amount) string {
	return Round(amount).StringFixed(2)
}

// FormatUSD e.g. "$4.19"
func FormatUSD(amount domain.Amount) string {
	return "$" + Fixed(amount)
}

// Format renders amount with the currency symbol, two decimals and comma
// thousands separators, e.g. "₹1,234.50". Grouping follows en-US, like the
// browser's toLocaleString.
func Format(amount domain.Amount, info domain.CurrencyInfo) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return info.Symbol + p.Sprintf("%.2f", Round(amount).InexactFloat64())
}
