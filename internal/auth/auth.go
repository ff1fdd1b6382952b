// Package auth verifies bearer identities issued by the external auth provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	applog "finsimples/internal/log"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token revoked")
)

// defaultRevocationTTL applies to tokens without an exp claim.
const defaultRevocationTTL = 24 * time.Hour

// Identity is the authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims is the token payload: sub is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against a shared secret and keeps a list of
// tokens revoked by sign-out.
type Verifier struct {
	secret  []byte
	revoked *gocache.Cache
	now     func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:  []byte(secret),
		revoked: gocache.New(defaultRevocationTTL, 10*time.Minute),
		now:     time.Now,
	}
}

// Verify parses token and returns its identity.
func (v *Verifier) Verify(token string) (Identity, *Claims, error) {
	if token == "" {
		return Identity{}, nil, ErrMissingToken
	}
	if _, revoked := v.revoked.Get(token); revoked {
		return Identity{}, nil, ErrRevokedToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return Identity{ID: claims.Subject, Email: claims.Email}, claims, nil
}

// Revoke rejects token until it would have expired anyway.
func (v *Verifier) Revoke(token string, claims *Claims) {
	ttl := defaultRevocationTTL
	if claims != nil && claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(v.now())
	}
	if ttl <= 0 {
		return
	}
	v.revoked.Set(token, struct{}{}, ttl)
}

// RevokedCount is the number of tokens currently on the revocation list.
func (v *Verifier) RevokedCount() int {
	return v.revoked.ItemCount()
}

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity placed by Middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ID != ""
}

type verifiedToken struct {
	raw    string
	claims *Claims
}

// TokenFromContext returns the verified raw token and its claims.
func TokenFromContext(ctx context.Context) (string, *Claims, bool) {
	t, ok := ctx.Value(tokenKey).(verifiedToken)
	return t.raw, t.claims, ok
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Middleware attaches the identity of a valid bearer token to the request.
// Requests without one continue anonymously; handlers decide what that means.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, claims, err := v.Verify(raw)
			if err != nil {
				applog.FromContext(r.Context()).WarnContext(r.Context(), "Bearer token rejected",
					applog.FieldError, err.Error())
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = context.WithValue(ctx, tokenKey, verifiedToken{raw: raw, claims: claims})
			logger := applog.FromContext(ctx).With(applog.FieldOwnerID, id.ID)
			ctx = applog.WithLogger(ctx, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
