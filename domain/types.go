package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Currency a currency code
type Currency string

// USD the currency every static rate is quoted against
const USD Currency = "USD"

// Amount a monetary amount... which should be a float...
type Amount float64

// Rate an exchange rate
type Rate float64

// Rates maps a currency to its rate relative to some base currency
type Rates map[Currency]Rate

// Exchanged result of a plain currency conversion
type Exchanged struct {
	Rate   Rate
	Amount Amount
}

// ParseCurrency normalises user input into a currency code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether c looks like an ISO 4217 code.
func (c Currency) Valid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads the leading number in s. Anything that does not start
// with a number, or that is negative or not finite, is 0.
func ParseAmount(s string) Amount {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return Amount(f).Sanitize()
}

// Sanitize coerces negative, NaN and infinite amounts to 0.
func (a Amount) Sanitize() Amount {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return a
}

// Tier fraction of the original price that is charged
type Tier float64

const (
	Tier70 Tier = 0.70
	Tier80 Tier = 0.80
)

// Tiers every offered tier, cheapest first
var Tiers = []Tier{Tier70, Tier80}

var ErrUnknownTier = errors.New("unknown discount tier")

// ParseTier accepts "0.7", "0.70", "70", "70%" and the same forms for 80.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrUnknownTier
	}
	if f > 1 {
		f /= 100
	}
	for _, t := range Tiers {
		if math.Abs(f-float64(t)) < 1e-9 {
			return t, nil
		}
	}
	return 0, ErrUnknownTier
}

// Percent the tier as a whole percentage, e.g. 70
func (t Tier) Percent() int {
	return int(math.Round(float64(t) * 100))
}

// Snapshot a table of rates for one base currency, as fetched at UpdatedAt
type Snapshot struct {
	Base      Currency  `json:"base"`
	Rates     Rates     `json:"rates"`
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source"`
}

// Rate looks up the rate from the snapshot base into to. The base itself is
// always 1.
func (s Snapshot) Rate(to Currency) (Rate, bool) {
	if to == s.Base {
		return 1, true
	}
	r, ok := s.Rates[to]
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

// QuoteRequest a discounted price to work out
type QuoteRequest struct {
	Amount Amount
	Base   Currency
	Target Currency
	Tier   Tier
}

// Quote what the customer pays and saves for a QuoteRequest. The target
// figures are nil when Target equals Base or no rate is known.
type Quote struct {
	Tier             Tier     `json:"tier"`
	Amount           Amount   `json:"amount"`
	Base             Currency `json:"base"`
	Target           Currency `json:"target"`
	Payable          Amount   `json:"payable"`
	Saved            Amount   `json:"saved"`
	Rate             Rate     `json:"rate,omitempty"`
	PayableInTarget  *Amount  `json:"payableInTarget,omitempty"`
	SavedInTarget    *Amount  `json:"savedInTarget,omitempty"`
	RatesUnavailable bool     `json:"ratesUnavailable,omitempty"`
}
