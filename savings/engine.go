package savings

import "rental-savings/domain"

// Apply splits amount into what is paid at tier and what is saved.
// Invalid amounts count as 0.
func Apply(amount domain.Amount, tier domain.Tier) (payable, saved domain.Amount) {
	amount = amount.Sanitize()
	payable = domain.Amount(float64(amount) * float64(tier))
	saved = amount - payable
	return payable, saved
}

// Convert amount at rate
func Convert(amount domain.Amount, rate domain.Rate) domain.Amount {
	return domain.Amount(float64(amount) * float64(rate))
}

// Reciprocal the rate for the opposite direction; 0 stays 0
func Reciprocal(rate domain.Rate) domain.Rate {
	if rate == 0 {
		return 0
	}
	return 1 / rate
}

// Compute builds the quote for req. rate is the Base->Target rate and ok
// reports whether one is known. Without a usable rate the target figures
// are left out and the quote is flagged RatesUnavailable.
func Compute(req domain.QuoteRequest, rate domain.Rate, ok bool) domain.Quote {
	amount := req.Amount.Sanitize()
	payable, saved := Apply(amount, req.Tier)

	q := domain.Quote{
		Tier:    req.Tier,
		Amount:  amount,
		Base:    req.Base,
		Target:  req.Target,
		Payable: payable,
		Saved:   saved,
	}

	switch {
	case req.Target == "" || req.Target == req.Base:
		q.Target = req.Base
		q.Rate = 1
	case ok && rate > 0:
		inTarget := Convert(payable, rate)
		savedInTarget := Convert(saved, rate)
		q.Rate = rate
		q.PayableInTarget = &inTarget
		q.SavedInTarget = &savedInTarget
	default:
		q.RatesUnavailable = true
	}
	return q
}
