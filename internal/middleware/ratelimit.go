package middleware

import (
	"sync" // Guards the limiter map

	"golang.org/x/time/rate" // Token bucket rate limiter
)

// PhoneLimiter hands out one rate limiter per phone number so OTP sends
// can't be hammered for a single number
type PhoneLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

// NewPhoneLimiter allows r sends per second with the given burst per phone
func NewPhoneLimiter(r rate.Limit, burst int) *PhoneLimiter {
	return &PhoneLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

// Allow reports whether a send to the phone is permitted right now
func (p *PhoneLimiter) Allow(phone string) bool {
	p.mu.Lock()
	lim, ok := p.limiters[phone]
	if !ok {
		lim = rate.NewLimiter(p.r, p.burst)
		p.limiters[phone] = lim
	}
	p.mu.Unlock()
	return lim.Allow()
}
