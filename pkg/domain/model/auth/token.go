package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID identifies a portal session
type TokenID string

// TokenSecret is the bearer secret paired with a token ID
type TokenSecret string

// Credential is the base64 Basic credential forwarded to the downstream
// tracker on every proxied call. Redacted from logs via the masq tag.
type Credential string

// TokenTTL is the session lifetime
const TokenTTL = 24 * time.Hour

// Validate checks the token ID is present
func (id TokenID) Validate() error {
	if id == "" {
		return goerr.New("token ID is empty")
	}
	return nil
}

// Token is one authenticated portal session. The downstream credential is
// kept server-side only; cookies carry just the ID/secret pair.
type Token struct {
	ID         TokenID
	Secret     TokenSecret `masq:"secret"`
	Username   string
	Credential Credential `masq:"secret"`
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// NewToken mints a session token for the given user and downstream credential
func NewToken(username string, cred Credential) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:         TokenID(uuid.NewString()),
		Secret:     TokenSecret(uuid.NewString()),
		Username:   username,
		Credential: cred,
		ExpiresAt:  now.Add(TokenTTL),
		CreatedAt:  now,
	}
}

// Validate checks the token is well-formed
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Secret == "" {
		return goerr.New("token secret is empty", goerr.V("token_id", t.ID))
	}
	if t.Username == "" {
		return goerr.New("token username is empty", goerr.V("token_id", t.ID))
	}
	return nil
}

// IsExpired reports whether the session has passed its lifetime
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// MatchSecret compares the presented secret in constant time
func (t *Token) MatchSecret(secret TokenSecret) bool {
	return subtle.ConstantTimeCompare([]byte(t.Secret), []byte(secret)) == 1
}

type ctxTokenKey struct{}

// ContextWithToken attaches the session token to the context
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the session token attached to the context, or nil
func TokenFromContext(ctx context.Context) *Token {
	token, _ := ctx.Value(ctxTokenKey{}).(*Token)
	return token
}
