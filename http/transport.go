package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rental-savings/domain"
	"rental-savings/landing"
	"rental-savings/ratesapi"
	"rental-savings/savings"
)

// Options optional server dependencies. Zero values disable the feature.
type Options struct {
	// DefaultBase base currency when a request names none, USD if empty
	DefaultBase domain.Currency
	// RefreshLimiter throttles forced rate refreshes per client
	RefreshLimiter *RateLimiter
	// Metrics served on /metrics
	Metrics http.Handler
	// CORSOrigins allowed origins for the JSON API
	CORSOrigins []string
}

// Server dependencies for HTTP Server functions
type Server struct {
	Service savings.Service
	Pages   *landing.Builder
	logger  log.Logger
	opts    Options
	router  chi.Router
}

func NewServer(s savings.Service, pages *landing.Builder, logger log.Logger, opts Options) *Server {
	if pages == nil {
		pages = landing.NewBuilder(s)
	}
	if opts.DefaultBase == "" {
		opts.DefaultBase = domain.USD
	}
	server := &Server{
		Service: s,
		Pages:   pages,
		logger:  logger,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.page())
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(landing.Assets()))))
	s.router.Get("/healthz", s.healthz())
	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		if len(s.opts.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.opts.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Get("/quote", s.quote())
		r.Post("/quote", s.quote())
		r.Post("/convert", s.convert())
		r.Get("/rates/{base}", s.rates())
		r.Get("/currencies", s.currencies())
		r.Get("/availability", s.availability())
		r.Get("/availability/countries/{country}", s.country())
	})
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func fail(rw http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(rw, r, errorResponse{Error: msg})
}

// flexAmount accepts a JSON number or a numeric string. Anything that does
// not parse becomes 0.
type flexAmount domain.Amount

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*a = flexAmount(domain.Amount(x).Sanitize())
	case string:
		*a = flexAmount(domain.ParseAmount(x))
	default:
		*a = 0
	}
	return nil
}

// flexTier accepts 0.7, 70, "70%" and friends; empty means every tier
type flexTier string

func (t *flexTier) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*t = flexTier(strconv.FormatFloat(x, 'f', -1, 64))
	case string:
		*t = flexTier(x)
	default:
		*t = ""
	}
	return nil
}

// page renders the landing page. Rate failures show up on the page itself.
func (s *Server) page() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		p := landing.ParseParams(r.URL.Query(), s.opts.DefaultBase)
		if p.Refresh && !allowed(s.opts.RefreshLimiter, r) {
			// over the limit: serve the cached rates instead
			p.Refresh = false
		}
		page := s.Pages.Build(r.Context(), p)

		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := landing.Render(rw, page); err != nil {
			level.Error(s.logger).Log("msg", "render failed", "err", err)
			http.Error(rw, "internal error", http.StatusInternalServerError)
		}
	}
}

func (s *Server) healthz() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		render.JSON(rw, r, map[string]string{"status": "ok"})
	}
}

// quote prices an amount at one tier, or at every tier when none is named
func (s *Server) quote() http.HandlerFunc {

	// request for unmarshalling quote requests, from JSON or the query string
	type request struct {
		Amount flexAmount `json:"amount"`
		Base   string     `json:"base"`
		Target string     `json:"target"`
		Tier   flexTier   `json:"tier"`
	}

	type quote struct {
		domain.Quote
		PayableText         string `json:"payableText"`
		SavedText           string `json:"savedText"`
		PayableInTargetText string `json:"payableInTargetText,omitempty"`
		SavedInTargetText   string `json:"savedInTargetText,omitempty"`
	}

	type response struct {
		Quotes           []quote `json:"quotes"`
		RatesUnavailable bool    `json:"ratesUnavailable"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if r.Method == http.MethodPost {
			if err := render.DecodeJSON(r.Body, &req); err != nil {
				fail(rw, r, http.StatusBadRequest, "invalid json")
				return
			}
		} else {
			q := r.URL.Query()
			req = request{
				Amount: flexAmount(domain.ParseAmount(q.Get("amount"))),
				Base:   q.Get("base"),
				Target: q.Get("target"),
				Tier:   flexTier(q.Get("tier")),
			}
		}

		base, ok := s.currency(req.Base)
		if !ok {
			fail(rw, r, http.StatusBadRequest, "invalid base currency")
			return
		}
		target, ok := s.currency(req.Target)
		if !ok {
			fail(rw, r, http.StatusBadRequest, "invalid target currency")
			return
		}
		if strings.TrimSpace(req.Target) == "" {
			target = base
		}

		var quotes []domain.Quote
		if strings.TrimSpace(string(req.Tier)) == "" {
			quotes = s.Service.Compare(r.Context(), domain.Amount(req.Amount), base, target)
		} else {
			tier, err := domain.ParseTier(string(req.Tier))
			if err != nil {
				fail(rw, r, http.StatusBadRequest, err.Error())
				return
			}
			quotes = []domain.Quote{s.Service.Quote(r.Context(), domain.QuoteRequest{
				Amount: domain.Amount(req.Amount),
				Base:   base,
				Target: target,
				Tier:   tier,
			})}
		}

		baseInfo, _ := domain.LookupCurrency(base)
		targetInfo, _ := domain.LookupCurrency(target)
		resp := response{Quotes: make([]quote, 0, len(quotes))}
		for _, q := range quotes {
			v := quote{
				Quote:       q,
				PayableText: savings.Format(q.Payable, baseInfo),
				SavedText:   savings.Format(q.Saved, baseInfo),
			}
			if q.PayableInTarget != nil {
				v.PayableInTargetText = savings.Format(*q.PayableInTarget, targetInfo)
				v.SavedInTargetText = savings.Format(*q.SavedInTarget, targetInfo)
			}
			resp.RatesUnavailable = resp.RatesUnavailable || q.RatesUnavailable
			resp.Quotes = append(resp.Quotes, v)
		}
		render.JSON(rw, r, resp)
	}
}

// currency parses a request currency; empty means the default base
func (s *Server) currency(raw string) (domain.Currency, bool) {
	if strings.TrimSpace(raw) == "" {
		return s.opts.DefaultBase, true
	}
	c := domain.ParseCurrency(raw)
	return c, c.Valid()
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency domain.Currency
		ToCurrency   domain.Currency
		Amount       flexAmount
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange domain.Rate   `json:"exchange"`
		Amount   domain.Amount `json:"amount"`
		Original domain.Amount `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if err := render.DecodeJSON(r.Body, &request); err != nil {
			fail(rw, r, http.StatusBadRequest, "invalid json")
			return
		}

		from := domain.ParseCurrency(string(request.FromCurrency))
		to := domain.ParseCurrency(string(request.ToCurrency))
		if !from.Valid() || !to.Valid() {
			fail(rw, r, http.StatusBadRequest, "invalid currency")
			return
		}

		result, err := s.Service.Convert(r.Context(), domain.Amount(request.Amount), from, to)
		switch {
		case errors.Is(err, savings.ErrUnknownCurrency), errors.Is(err, ratesapi.ErrUnsupported):
			fail(rw, r, http.StatusBadRequest, "failed conversion")
			return
		case err != nil:
			level.Warn(s.logger).Log("msg", "conversion failed", "from", from, "to", to, "err", err)
			fail(rw, r, http.StatusBadGateway, "Failed to load exchange rates. Please try again.")
			return
		}

		render.JSON(rw, r, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: domain.Amount(request.Amount),
		})
	}
}

// rates returns the snapshot for a base; refresh=1 forces a refetch
func (s *Server) rates() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		base := domain.ParseCurrency(chi.URLParam(r, "base"))
		if !base.Valid() {
			fail(rw, r, http.StatusBadRequest, "invalid base currency")
			return
		}

		refresh := r.URL.Query().Get("refresh") == "1"
		if refresh && limited(s.opts.RefreshLimiter, rw, r) {
			return
		}

		snap, err := s.Service.Rates(r.Context(), base, refresh)
		switch {
		case errors.Is(err, ratesapi.ErrUnsupported):
			fail(rw, r, http.StatusNotFound, err.Error())
			return
		case err != nil:
			level.Warn(s.logger).Log("msg", "rates unavailable", "base", base, "err", err)
			fail(rw, r, http.StatusBadGateway, "Failed to load exchange rates. Please try again.")
			return
		}
		render.JSON(rw, r, snap)
	}
}

func (s *Server) currencies() http.HandlerFunc {
	type response struct {
		Currencies []domain.CurrencyInfo `json:"currencies"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list := domain.AllCurrencies()
		if q.Get("featured") == "1" {
			list = domain.FeaturedCurrencies()
		}
		found := domain.SearchCurrencies(list, q.Get("q"))
		if found == nil {
			found = []domain.CurrencyInfo{}
		}
		render.JSON(rw, r, response{Currencies: found})
	}
}

// availability lists every platform, or the countries of one platform
// filtered by q
func (s *Server) availability() http.HandlerFunc {
	type country struct {
		Name string `json:"name"`
		Flag string `json:"flag"`
	}

	type response struct {
		Platforms []domain.Platform `json:"platforms,omitempty"`
		Platform  *domain.Platform  `json:"platform,omitempty"`
		Countries []country         `json:"countries,omitempty"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("platform")
		if id == "" {
			render.JSON(rw, r, response{Platforms: domain.Platforms()})
			return
		}

		p, ok := domain.PlatformByID(id)
		if !ok {
			fail(rw, r, http.StatusNotFound, "unknown platform")
			return
		}
		resp := response{Platform: &p, Countries: []country{}}
		for _, name := range domain.SearchCountries(p, q.Get("q")) {
			resp.Countries = append(resp.Countries, country{Name: name, Flag: domain.Flag(name)})
		}
		render.JSON(rw, r, resp)
	}
}

// country lists the platforms available in one country
func (s *Server) country() http.HandlerFunc {
	type response struct {
		Country   string   `json:"country"`
		Flag      string   `json:"flag"`
		Platforms []string `json:"platforms"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "country")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}

		platforms := domain.PlatformsIn(name)
		if len(platforms) == 0 {
			fail(rw, r, http.StatusNotFound, "no platforms in "+name)
			return
		}

		resp := response{Country: name}
		for _, c := range platforms[0].Countries {
			if strings.EqualFold(c, strings.TrimSpace(name)) {
				resp.Country = c
			}
		}
		resp.Flag = domain.Flag(resp.Country)
		for _, p := range platforms {
			resp.Platforms = append(resp.Platforms, p.ID)
		}
		render.JSON(rw, r, resp)
	}
}
