package domain

import "strings"

// CurrencyInfo display data for a currency. Rate is units per 1 USD from the
// built-in snapshot, 0 when there is none.
type CurrencyInfo struct {
	Code   Currency `json:"code"`
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	Rate   Rate     `json:"rate,omitempty"`
}

// staticRates approximate rates per 1 USD for the featured currencies
var staticRates = Rates{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"INR": 83.5,
	"AED": 3.67,
	"SAR": 3.75,
	"CAD": 1.36,
	"AUD": 1.53,
	"JPY": 149.5,
	"KRW": 1320,
	"BRL": 4.97,
	"MXN": 17.15,
	"TRY": 30.2,
	"NGN": 1550,
	"ZAR": 18.5,
	"PKR": 278,
	"BDT": 110,
	"EGP": 30.9,
	"PHP": 56,
	"THB": 35.5,
}

var featured = []Currency{
	"USD", "EUR", "GBP", "INR", "AED", "SAR", "CAD", "AUD", "JPY", "KRW",
	"BRL", "MXN", "TRY", "NGN", "ZAR", "PKR", "BDT", "EGP", "PHP", "THB",
}

var catalog = []CurrencyInfo{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "MX$"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	{Code: "PLN", Name: "Polish Zloty", Symbol: "zł"},
	{Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp"},
	{Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
	{Code: "PHP", Name: "Philippine Peso", Symbol: "₱"},
	{Code: "CZK", Name: "Czech Koruna", Symbol: "Kč"},
	{Code: "ILS", Name: "Israeli Shekel", Symbol: "₪"},
	{Code: "CLP", Name: "Chilean Peso", Symbol: "CL$"},
	{Code: "PEN", Name: "Peruvian Sol", Symbol: "S/."},
	{Code: "COP", Name: "Colombian Peso", Symbol: "CO$"},
	{Code: "ARS", Name: "Argentine Peso", Symbol: "AR$"},
	{Code: "TWD", Name: "Taiwan Dollar", Symbol: "NT$"},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "﷼"},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
	{Code: "EGP", Name: "Egyptian Pound", Symbol: "E£"},
	{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
	{Code: "VND", Name: "Vietnamese Dong", Symbol: "₫"},
	{Code: "BDT", Name: "Bangladeshi Taka", Symbol: "৳"},
	{Code: "PKR", Name: "Pakistani Rupee", Symbol: "₨"},
	{Code: "HUF", Name: "Hungarian Forint", Symbol: "Ft"},
	{Code: "RON", Name: "Romanian Leu", Symbol: "lei"},
	{Code: "BGN", Name: "Bulgarian Lev", Symbol: "лв"},
	{Code: "HRK", Name: "Croatian Kuna", Symbol: "kn"},
	{Code: "ISK", Name: "Icelandic Krona", Symbol: "kr"},
	{Code: "UAH", Name: "Ukrainian Hryvnia", Symbol: "₴"},
	{Code: "GEL", Name: "Georgian Lari", Symbol: "₾"},
	{Code: "KZT", Name: "Kazakh Tenge", Symbol: "₸"},
	{Code: "QAR", Name: "Qatari Riyal", Symbol: "﷼"},
	{Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "د.ك"},
	{Code: "BHD", Name: "Bahraini Dinar", Symbol: "BD"},
	{Code: "OMR", Name: "Omani Rial", Symbol: "﷼"},
	{Code: "JOD", Name: "Jordanian Dinar", Symbol: "JD"},
	{Code: "LKR", Name: "Sri Lankan Rupee", Symbol: "Rs"},
	{Code: "MMK", Name: "Myanmar Kyat", Symbol: "K"},
	{Code: "KES", Name: "Kenyan Shilling", Symbol: "KSh"},
	{Code: "GHS", Name: "Ghanaian Cedi", Symbol: "₵"},
	{Code: "TZS", Name: "Tanzanian Shilling", Symbol: "TSh"},
	{Code: "UGX", Name: "Ugandan Shilling", Symbol: "USh"},
	{Code: "MAD", Name: "Moroccan Dirham", Symbol: "MAD"},
	{Code: "DZD", Name: "Algerian Dinar", Symbol: "د.ج"},
	{Code: "TND", Name: "Tunisian Dinar", Symbol: "د.ت"},
	{Code: "XOF", Name: "West African CFA", Symbol: "CFA"},
	{Code: "XAF", Name: "Central African CFA", Symbol: "FCFA"},
}

var byCode = func() map[Currency]CurrencyInfo {
	m := make(map[Currency]CurrencyInfo, len(catalog))
	for _, c := range catalog {
		c.Rate = staticRates[c.Code]
		m[c.Code] = c
	}
	return m
}()

// AllCurrencies the full picker list, in display order
func AllCurrencies() []CurrencyInfo {
	out := make([]CurrencyInfo, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, byCode[c.Code])
	}
	return out
}

// FeaturedCurrencies the calculator list; every entry carries a static rate
func FeaturedCurrencies() []CurrencyInfo {
	out := make([]CurrencyInfo, 0, len(featured))
	for _, code := range featured {
		out = append(out, byCode[code])
	}
	return out
}

// StaticRates a copy of the built-in rates per 1 USD
func StaticRates() Rates {
	out := make(Rates, len(staticRates))
	for k, v := range staticRates {
		out[k] = v
	}
	return out
}

// LookupCurrency returns the catalog entry for code. Unknown codes get an
// entry that uses the code as both name and symbol.
func LookupCurrency(code Currency) (CurrencyInfo, bool) {
	c, ok := byCode[code]
	if !ok {
		return CurrencyInfo{Code: code, Name: string(code), Symbol: string(code)}, false
	}
	return c, true
}

// SearchCurrencies filters list by a case-insensitive substring of the code
// or name. An empty query matches everything.
func SearchCurrencies(list []CurrencyInfo, q string) []CurrencyInfo {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list
	}
	var out []CurrencyInfo
	for _, c := range list {
		if strings.Contains(strings.ToLower(string(c.Code)), q) || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
