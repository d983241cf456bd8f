// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and stores read them
// without importing net/http. Tests inject values directly, including a fixed
// request time for expiry-boundary assertions.
package requestcontext

import (
	"context"
	"time"

	id "tradegate/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	buyerIDKey     struct{}
	sellerIDKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceKey      struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyBuyerID     = buyerIDKey{}
	ContextKeySellerID    = sellerIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyDevice      = deviceKey{}
)

// BuyerID retrieves the authenticated buyer ID from the context.
// Returns the zero value if not set.
func BuyerID(ctx context.Context) id.BuyerID {
	if v, ok := ctx.Value(ContextKeyBuyerID).(id.BuyerID); ok {
		return v
	}
	return id.BuyerID{}
}

// WithBuyerID injects a buyer ID into the context.
func WithBuyerID(ctx context.Context, buyerID id.BuyerID) context.Context {
	return context.WithValue(ctx, ContextKeyBuyerID, buyerID)
}

// SellerID retrieves the authenticated seller ID from the context.
// Returns the zero value if not set.
func SellerID(ctx context.Context) id.SellerID {
	if v, ok := ctx.Value(ContextKeySellerID).(id.SellerID); ok {
		return v
	}
	return id.SellerID{}
}

// WithSellerID injects a seller ID into the context.
func WithSellerID(ctx context.Context, sellerID id.SellerID) context.Context {
	return context.WithValue(ctx, ContextKeySellerID, sellerID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests that
// don't care about time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Expiry rules read time
// through here, so tests can pin the clock around the 48-hour cutoff.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// Device retrieves the parsed device summary (browser/platform) from the context.
func Device(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client IP, User-Agent, and device summary into a
// context. Useful for service unit tests that skip the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent, device string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	ctx = context.WithValue(ctx, ContextKeyDevice, device)
	return ctx
}
