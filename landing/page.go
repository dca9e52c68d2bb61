package landing

import (
	"context"
	"html/template"
	"net/url"
	"strings"

	"rental-savings/domain"
	"rental-savings/savings"
)

// Params the page state carried in the query string, so every widget works
// without scripts
type Params struct {
	// savings calculator
	Price         string
	Currency      domain.Currency
	CurrencyQuery string

	// currency converter
	Amount  string
	Base    domain.Currency
	Target  domain.Currency
	Refresh bool

	// availability browser
	Platform string
	Country  string
}

// ParseParams reads Params from a query, falling back to defaults for
// anything missing or malformed
func ParseParams(q url.Values, defaultBase domain.Currency) Params {
	p := Params{
		Price:         q.Get("price"),
		Currency:      currencyOr(q.Get("currency"), domain.USD),
		CurrencyQuery: strings.TrimSpace(q.Get("cq")),
		Amount:        q.Get("amount"),
		Base:          currencyOr(q.Get("base"), defaultBase),
		Target:        currencyOr(q.Get("target"), defaultTarget),
		Refresh:       q.Get("refresh") == "1",
		Platform:      strings.ToLower(strings.TrimSpace(q.Get("platform"))),
		Country:       strings.TrimSpace(q.Get("country")),
	}
	if p.Price == "" {
		p.Price = defaultPrice
	}
	if p.Amount == "" {
		p.Amount = defaultAmount
	}
	if _, ok := domain.PlatformByID(p.Platform); !ok {
		p.Platform = domain.DefaultPlatform
	}
	return p
}

func currencyOr(s string, fallback domain.Currency) domain.Currency {
	c := domain.ParseCurrency(s)
	if !c.Valid() {
		return fallback
	}
	return c
}

// Values encodes p back into a query
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("price", p.Price)
	v.Set("currency", string(p.Currency))
	if p.CurrencyQuery != "" {
		v.Set("cq", p.CurrencyQuery)
	}
	v.Set("amount", p.Amount)
	v.Set("base", string(p.Base))
	v.Set("target", string(p.Target))
	v.Set("platform", p.Platform)
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	return v
}

// TierView formatted figures for one tier. Local figures are empty when not
// shown.
type TierView struct {
	Percent   int
	Pay       string
	Save      string
	PayLocal  string
	SaveLocal string
}

type Example struct {
	Title    string
	Original string
	Tiers    []TierView
}

type Calculator struct {
	Price            string
	Currency         domain.CurrencyInfo
	Query            string
	Options          []domain.CurrencyInfo
	Tiers            []TierView
	ShowLocal        bool
	RatesUnavailable bool
}

type ConverterTier struct {
	Percent int
	Base    string
	Target  string
	USD     string
}

type Converter struct {
	Amount     string
	Base       domain.CurrencyInfo
	Target     domain.CurrencyInfo
	Currencies []domain.CurrencyInfo
	UpdatedAt  string
	Error      string
	Original   string
	Converted  string
	USD        string
	Tiers      []ConverterTier
	// Save the range saved across tiers, smallest first; SaveUSD the same
	// in USD when the base is not USD
	Save       string
	SaveUSD    string
	SwapHref   template.URL
	RetryHref  template.URL
}

type Country struct {
	Name string
	Flag string
}

type Tab struct {
	ID     string
	Label  string
	Active bool
	Href   template.URL
}

type Availability struct {
	Tabs      []Tab
	Active    domain.Platform
	Query     string
	Countries []Country
}

// Page everything the landing template renders
type Page struct {
	Steps        []Step
	Examples     []Example
	Calculator   Calculator
	Converter    Converter
	Availability Availability
}

// Builder assembles pages from the savings service
type Builder struct {
	savings savings.Service
}

func NewBuilder(s savings.Service) *Builder {
	return &Builder{savings: s}
}

// Build never fails; rate problems show up as notices on the page
func (b *Builder) Build(ctx context.Context, p Params) Page {
	return Page{
		Steps:        steps,
		Examples:     examples(),
		Calculator:   b.calculator(ctx, p),
		Converter:    b.converter(ctx, p),
		Availability: availability(p),
	}
}

func examples() []Example {
	out := make([]Example, 0, len(samples))
	for _, s := range samples {
		e := Example{Title: s.Title, Original: savings.FormatUSD(s.Original)}
		for _, tier := range domain.Tiers {
			pay, save := savings.Apply(s.Original, tier)
			e.Tiers = append(e.Tiers, TierView{
				Percent: tier.Percent(),
				Pay:     savings.FormatUSD(pay),
				Save:    savings.FormatUSD(save),
			})
		}
		out = append(out, e)
	}
	return out
}

func (b *Builder) calculator(ctx context.Context, p Params) Calculator {
	options := domain.FeaturedCurrencies()
	info, _ := domain.LookupCurrency(p.Currency)
	if info.Rate == 0 {
		info, _ = domain.LookupCurrency(domain.USD)
	}

	c := Calculator{
		Price:     p.Price,
		Currency:  info,
		Query:     p.CurrencyQuery,
		Options:   domain.SearchCurrencies(options, p.CurrencyQuery),
		ShowLocal: info.Code != domain.USD,
	}

	quotes := b.savings.Compare(ctx, domain.ParseAmount(p.Price), domain.USD, info.Code)
	for _, q := range quotes {
		tv := TierView{
			Percent: q.Tier.Percent(),
			Pay:     savings.FormatUSD(q.Payable),
			Save:    savings.FormatUSD(q.Saved),
		}
		if q.PayableInTarget != nil {
			tv.PayLocal = savings.Format(*q.PayableInTarget, info)
			tv.SaveLocal = savings.Format(*q.SavedInTarget, info)
		}
		c.RatesUnavailable = c.RatesUnavailable || q.RatesUnavailable
		c.Tiers = append(c.Tiers, tv)
	}
	return c
}

func (b *Builder) converter(ctx context.Context, p Params) Converter {
	base, _ := domain.LookupCurrency(p.Base)
	target, _ := domain.LookupCurrency(p.Target)
	amount := domain.ParseAmount(p.Amount)

	c := Converter{
		Amount:     p.Amount,
		Base:       base,
		Target:     target,
		Currencies: domain.AllCurrencies(),
		Original:   savings.Format(amount, base),
	}

	swapped := p
	swapped.Base, swapped.Target = p.Target, p.Base
	c.SwapHref = href(swapped.Values(), "converter")
	retry := p.Values()
	retry.Set("refresh", "1")
	c.RetryHref = href(retry, "converter")

	snap, err := b.savings.Rates(ctx, p.Base, p.Refresh)
	if err != nil {
		c.Error = ratesErrorNotice
	} else {
		c.UpdatedAt = snap.UpdatedAt.Format("2 Jan 2006 15:04 MST")
	}

	targetRate, targetOK := snap.Rate(p.Target)
	usdRate, usdOK := snap.Rate(domain.USD)
	usd, _ := domain.LookupCurrency(domain.USD)

	if err == nil && targetOK {
		c.Converted = savings.Format(savings.Convert(amount, targetRate), target)
	}
	if err == nil && usdOK && p.Base != domain.USD {
		c.USD = savings.Format(savings.Convert(amount, usdRate), usd)
	}

	var saved []domain.Amount
	for _, tier := range domain.Tiers {
		q := savings.Compute(domain.QuoteRequest{Amount: amount, Base: p.Base, Target: p.Target, Tier: tier}, targetRate, err == nil && targetOK)
		ct := ConverterTier{
			Percent: tier.Percent(),
			Base:    savings.Format(q.Payable, base),
		}
		if q.PayableInTarget != nil {
			ct.Target = savings.Format(*q.PayableInTarget, target)
		}
		if err == nil && usdOK && p.Base != domain.USD {
			ct.USD = savings.Format(savings.Convert(q.Payable, usdRate), usd)
		}
		c.Tiers = append(c.Tiers, ct)
		saved = append(saved, q.Saved)
	}

	// higher tiers save less, so the last tier bounds the range from below
	low, high := saved[len(saved)-1], saved[0]
	c.Save = savings.Format(low, base) + " – " + savings.Format(high, base)
	if err == nil && usdOK && p.Base != domain.USD {
		c.SaveUSD = savings.Format(savings.Convert(low, usdRate), usd) + " – " + savings.Format(savings.Convert(high, usdRate), usd)
	}
	return c
}

func availability(p Params) Availability {
	active, _ := domain.PlatformByID(p.Platform)

	a := Availability{
		Active: active,
		Query:  p.Country,
	}
	for _, pl := range domain.Platforms() {
		v := p.Values()
		v.Set("platform", pl.ID)
		v.Del("country")
		a.Tabs = append(a.Tabs, Tab{
			ID:     pl.ID,
			Label:  pl.Label,
			Active: pl.ID == active.ID,
			Href:   href(v, "availability"),
		})
	}
	for _, name := range domain.SearchCountries(active, p.Country) {
		a.Countries = append(a.Countries, Country{Name: name, Flag: domain.Flag(name)})
	}
	return a
}

func href(v url.Values, anchor string) template.URL {
	return template.URL("/?" + v.Encode() + "#" + anchor)
}
