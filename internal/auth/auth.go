// Package auth resolves the caller of user-scoped endpoints from an HS256
// bearer token and checks the shared cron secret.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid bearer token")
	ErrNotConfigured = errors.New("no signing secret configured")
)

// Resolver validates access tokens issued by the auth provider. The
// subject claim is the user id.
type Resolver struct {
	secret []byte
	issuer string
}

// NewResolver returns a resolver for HS256 tokens signed with secret. An
// empty issuer skips the iss check.
func NewResolver(secret, issuer string) *Resolver {
	return &Resolver{secret: []byte(secret), issuer: issuer}
}

// UserID validates token and returns its subject. Without a signing secret
// every call fails with ErrNotConfigured, whatever the token.
func (r *Resolver) UserID(token string) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrNotConfigured
	}
	if token == "" {
		return "", ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// FromRequest resolves the user id from the Authorization header.
func (r *Resolver) FromRequest(req *http.Request) (string, error) {
	return r.UserID(BearerToken(req))
}

// BearerToken returns the token from "Authorization: Bearer <token>", or "".
func BearerToken(req *http.Request) string {
	h := strings.TrimSpace(req.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CronSecretHeader carries the scheduler's shared secret.
const CronSecretHeader = "X-Cron-Secret"

// ValidCronSecret reports whether req carries secret in X-Cron-Secret or as
// a bearer token. It always fails when secret is empty.
func ValidCronSecret(req *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	got := req.Header.Get(CronSecretHeader)
	if got == "" {
		got = BearerToken(req)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

type ctxKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFrom returns the user id stored by WithUserID.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
