package http

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/render"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter allows n calls per window for each client. Idle clients are
// forgotten after a window, by which time their bucket would be full again.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *gocache.Cache
}

func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Every(window / time.Duration(n)),
		burst:   n,
		clients: gocache.New(window, 2*window),
	}
}

// Allow takes a token for key, reporting false when none are left
func (r *RateLimiter) Allow(key string) bool {
	return r.allowAt(key, time.Now())
}

func (r *RateLimiter) allowAt(key string, now time.Time) bool {
	l := r.limiter(key)
	r.clients.Set(key, l, gocache.DefaultExpiration)
	return l.AllowN(now, 1)
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := r.clients.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(r.limit, r.burst)
	if err := r.clients.Add(key, l, gocache.DefaultExpiration); err != nil {
		// lost the race to another request from the same client
		if v, ok := r.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// clientKey the caller's IP, without port
func clientKey(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// allowed a nil limiter allows everything
func allowed(limiter *RateLimiter, r *http.Request) bool {
	return limiter == nil || limiter.Allow(clientKey(r))
}

// limited rejects requests over the limit with 429
func limited(limiter *RateLimiter, w http.ResponseWriter, r *http.Request) bool {
	if allowed(limiter, r) {
		return false
	}
	render.Status(r, http.StatusTooManyRequests)
	render.JSON(w, r, errorResponse{Error: "rate limit exceeded, try again shortly"})
	return true
}
