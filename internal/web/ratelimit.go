package web

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every client of the handler.
// A nil limiter allows all requests.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter refilling requestsPerSecond tokens per
// second with the given burst. It returns nil when requestsPerSecond is not
// positive.
func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow reports whether a request may proceed now.
func (l *RateLimiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Middleware calls rejected instead of next when no token is available.
func (l *RateLimiter) Middleware(next http.Handler, rejected http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			rejected(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
