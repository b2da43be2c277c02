// Package throttle applies per-role request-rate limits. Each throttle owns
// one scope (customer, seller, admin, anon); a principal outside the scope
// produces no key and is never counted or limited under it. Throttling is a
// non-critical safety control: any internal error defaults to allow.
package throttle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

// RateLimiter is the injected counter backend (redis in production,
// miniredis in tests).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, per time.Duration) (bool, error)
}

// Throttle decides whether a request is allowed under one scope.
type Throttle interface {
	Scope() string
	Limit() int
	// AllowRequest never fails: out-of-scope principals and backend errors
	// both come back as allowed.
	AllowRequest(ctx context.Context, principal *model.User, clientIP string) bool
}

// UserRateThrottle limits authenticated principals of one role scope, keyed
// by user identity.
type UserRateThrottle struct {
	scope   string
	limit   int
	window  time.Duration
	limiter RateLimiter
	inScope func(*model.User) bool
}

func NewCustomerThrottle(limiter RateLimiter, limit int, window time.Duration) *UserRateThrottle {
	return &UserRateThrottle{
		scope:   "customer",
		limit:   limit,
		window:  window,
		limiter: limiter,
		inScope: func(u *model.User) bool { return u.IsAuthenticated() && u.IsCustomer() },
	}
}

func NewSellerThrottle(limiter RateLimiter, limit int, window time.Duration) *UserRateThrottle {
	return &UserRateThrottle{
		scope:   "seller",
		limit:   limit,
		window:  window,
		limiter: limiter,
		inScope: func(u *model.User) bool { return u.IsAuthenticated() && u.IsSeller() },
	}
}

func NewAdminThrottle(limiter RateLimiter, limit int, window time.Duration) *UserRateThrottle {
	return &UserRateThrottle{
		scope:   "admin",
		limit:   limit,
		window:  window,
		limiter: limiter,
		inScope: func(u *model.User) bool { return u.IsAuthenticated() && u.IsAdmin() },
	}
}

func (t *UserRateThrottle) Scope() string { return t.scope }
func (t *UserRateThrottle) Limit() int    { return t.limit }

// Key computes the bucket for a principal, or "" when the principal is not
// in this throttle's scope. An empty key must never count against any
// bucket.
func (t *UserRateThrottle) Key(principal *model.User) string {
	if principal == nil || !t.inScope(principal) {
		return ""
	}
	return fmt.Sprintf("throttle_%s_%s", t.scope, principal.ID)
}

func (t *UserRateThrottle) AllowRequest(ctx context.Context, principal *model.User, clientIP string) bool {
	key := t.Key(principal)
	if key == "" {
		// No throttling for principals outside this scope.
		return true
	}

	allowed, err := t.limiter.Allow(ctx, key, t.limit, t.window)
	if err != nil {
		// Availability over strict enforcement.
		logger.Error("Throttle backend error, allowing request",
			zap.String("scope", t.scope),
			zap.String("key", key),
			zap.Error(err))
		return true
	}
	return allowed
}

// AnonRateThrottle limits unauthenticated requests, keyed by client IP.
// Authenticated principals are out of scope.
type AnonRateThrottle struct {
	limit   int
	window  time.Duration
	limiter RateLimiter
}

func NewAnonThrottle(limiter RateLimiter, limit int, window time.Duration) *AnonRateThrottle {
	return &AnonRateThrottle{limit: limit, window: window, limiter: limiter}
}

func (t *AnonRateThrottle) Scope() string { return "anon" }
func (t *AnonRateThrottle) Limit() int    { return t.limit }

func (t *AnonRateThrottle) AllowRequest(ctx context.Context, principal *model.User, clientIP string) bool {
	if principal != nil || clientIP == "" {
		return true
	}
	key := fmt.Sprintf("throttle_anon_%s", clientIP)

	allowed, err := t.limiter.Allow(ctx, key, t.limit, t.window)
	if err != nil {
		logger.Error("Throttle backend error, allowing request",
			zap.String("scope", "anon"),
			zap.String("key", key),
			zap.Error(err))
		return true
	}
	return allowed
}
