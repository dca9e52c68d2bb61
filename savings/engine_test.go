package savings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-savings/domain"
)

var amounts = []domain.Amount{0, 0.01, 1, 3.99, 5.99, 10, 19.99, 49.5, 1234.56, 1e6}

func TestApply_PayablePlusSavedIsAmount(t *testing.T) {
	for _, tier := range domain.Tiers {
		for _, amount := range amounts {
			payable, saved := Apply(amount, tier)
			assert.InDelta(t, float64(amount), float64(payable+saved), 1e-9, "amount %v tier %v", amount, tier)
		}
	}
}

func TestApply_Zero(t *testing.T) {
	for _, tier := range domain.Tiers {
		payable, saved := Apply(0, tier)
		assert.Equal(t, domain.Amount(0), payable)
		assert.Equal(t, domain.Amount(0), saved)
	}
}

func TestApply_HigherTierPaysMore(t *testing.T) {
	for _, amount := range amounts[1:] {
		p70, s70 := Apply(amount, domain.Tier70)
		p80, s80 := Apply(amount, domain.Tier80)
		assert.Greater(t, float64(p80), float64(p70), "amount %v", amount)
		assert.Less(t, float64(s80), float64(s70), "amount %v", amount)
	}
}

func TestApply_InvalidAmountsAreZero(t *testing.T) {
	for _, amount := range []domain.Amount{-5, domain.Amount(math.NaN()), domain.Amount(math.Inf(1))} {
		payable, saved := Apply(amount, domain.Tier70)
		assert.Equal(t, domain.Amount(0), payable)
		assert.Equal(t, domain.Amount(0), saved)
	}
}

func TestApply_Examples(t *testing.T) {
	tests := []struct {
		amount  domain.Amount
		tier    domain.Tier
		payable string
		saved   string
	}{
		{5.99, domain.Tier70, "4.19", "1.80"},
		{5.99, domain.Tier80, "4.79", "1.20"},
		{3.99, domain.Tier70, "2.79", "1.20"},
		{3.99, domain.Tier80, "3.19", "0.80"},
		{19.99, domain.Tier70, "13.99", "6.00"},
		{19.99, domain.Tier80, "15.99", "4.00"},
	}
	for _, tt := range tests {
		payable, saved := Apply(tt.amount, tt.tier)
		assert.Equal(t, tt.payable, Fixed(payable), "payable %v @ %v", tt.amount, tt.tier)
		assert.Equal(t, tt.saved, Fixed(saved), "saved %v @ %v", tt.amount, tt.tier)
	}
	payable, _ := Apply(5.99, domain.Tier70)
	assert.InDelta(t, 4.193, float64(payable), 1e-9)
}

func TestConvert_RoundTrip(t *testing.T) {
	for _, rate := range []domain.Rate{0.79, 0.92, 83.5, 149.5, 1550} {
		for _, amount := range amounts {
			back := Convert(Convert(amount, rate), Reciprocal(rate))
			assert.Equal(t, Fixed(amount), Fixed(back), "amount %v rate %v", amount, rate)
		}
	}
	assert.Equal(t, domain.Rate(0), Reciprocal(0))
}

func TestCompute(t *testing.T) {
	t.Run("same currency has no target figures", func(t *testing.T) {
		q := Compute(domain.QuoteRequest{Amount: 10, Base: "USD", Target: "USD", Tier: domain.Tier70}, 0, false)
		assert.InDelta(t, 7.0, float64(q.Payable), 1e-9)
		assert.InDelta(t, 3.0, float64(q.Saved), 1e-9)
		assert.Nil(t, q.PayableInTarget)
		assert.Nil(t, q.SavedInTarget)
		assert.False(t, q.RatesUnavailable)
		assert.Equal(t, domain.Rate(1), q.Rate)
	})

	t.Run("empty target means base", func(t *testing.T) {
		q := Compute(domain.QuoteRequest{Amount: 10, Base: "EUR", Tier: domain.Tier80}, 0, false)
		assert.Equal(t, domain.Currency("EUR"), q.Target)
		assert.Nil(t, q.PayableInTarget)
	})

	t.Run("converted", func(t *testing.T) {
		q := Compute(domain.QuoteRequest{Amount: 10, Base: "USD", Target: "INR", Tier: domain.Tier80}, 83.5, true)
		require.NotNil(t, q.PayableInTarget)
		require.NotNil(t, q.SavedInTarget)
		assert.InDelta(t, 668.0, float64(*q.PayableInTarget), 1e-9)
		assert.InDelta(t, 167.0, float64(*q.SavedInTarget), 1e-9)
		assert.Equal(t, domain.Rate(83.5), q.Rate)
	})

	t.Run("rates unavailable keeps base figures", func(t *testing.T) {
		q := Compute(domain.QuoteRequest{Amount: 5.99, Base: "USD", Target: "EUR", Tier: domain.Tier70}, 0, false)
		assert.True(t, q.RatesUnavailable)
		assert.Nil(t, q.PayableInTarget)
		assert.Equal(t, "4.19", Fixed(q.Payable))
		assert.Equal(t, "1.80", Fixed(q.Saved))
	})

	t.Run("negative amount", func(t *testing.T) {
		q := Compute(domain.QuoteRequest{Amount: -3, Base: "USD", Target: "USD", Tier: domain.Tier70}, 1, true)
		assert.Equal(t, domain.Amount(0), q.Amount)
		assert.Equal(t, domain.Amount(0), q.Payable)
	})
}
