package auth

import (
	"context"
	"reflect"

	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

// Session carries the WarEra credentials used for authenticated API calls
type Session struct {
	Token       string
	Fingerprint string
}

// IsZero reports whether no token is present
func (s Session) IsZero() bool {
	return s.Token == ""
}

// Context keys for passing authentication data through context
type authContextKey int

const (
	sessionKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithSession injects session credentials into the context
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext extracts session credentials from context
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey).(Session)
	if !ok || session.IsZero() {
		return Session{}, false
	}
	return session, true
}

// SessionMiddleware injects credentials into the context for every request.
// A request carrying its own Token (and optionally Fingerprint) string field
// overrides the configured fallback session.
func SessionMiddleware(fallback Session) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		session := extractSession(request)
		if session.IsZero() {
			session = fallback
		} else if session.Fingerprint == "" {
			session.Fingerprint = fallback.Fingerprint
		}

		if !session.IsZero() {
			ctx = WithSession(ctx, session)
		}

		return next(ctx, request)
	}
}

// extractSession uses reflection to read Token/Fingerprint fields from a request
func extractSession(request mediator.Request) Session {
	requestValue := reflect.ValueOf(request)
	if requestValue.Kind() == reflect.Ptr {
		if requestValue.IsNil() {
			return Session{}
		}
		requestValue = requestValue.Elem()
	}

	if requestValue.Kind() != reflect.Struct {
		return Session{}
	}

	var session Session
	if field := requestValue.FieldByName("Token"); field.IsValid() && field.Kind() == reflect.String {
		session.Token = field.String()
	}
	if field := requestValue.FieldByName("Fingerprint"); field.IsValid() && field.Kind() == reflect.String {
		session.Fingerprint = field.String()
	}
	return session
}
