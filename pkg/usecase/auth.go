package usecase

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model/auth"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

// AuthUseCase handles session lifecycle. Credentials are never stored as
// username/password; only the encoded Basic pair lives on the server-side
// token, and the tracker remains the authority on whether it is valid.
type AuthUseCase struct {
	repo    interfaces.Repository
	tracker interfaces.Tracker
	cache   *authCache
}

func NewAuthUseCase(repo interfaces.Repository, tracker interfaces.Tracker) *AuthUseCase {
	return &AuthUseCase{
		repo:    repo,
		tracker: tracker,
		cache:   newAuthCache(),
	}
}

// Login verifies the username/password pair against the downstream tracker
// and mints a session token on success.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	if username == "" || password == "" {
		return nil, goerr.Wrap(ErrAuthFailed, "username and password are required")
	}

	cred := auth.Credential(base64.StdEncoding.EncodeToString([]byte(username + ":" + password)))
	if err := uc.tracker.Verify(ctx, cred); err != nil {
		return nil, goerr.Wrap(ErrAuthFailed, "credential verification failed",
			goerr.V("username", username), goerr.V("cause", err.Error()))
	}

	token := auth.NewToken(username, cred)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store session token", goerr.V("username", username))
	}

	logging.From(ctx).Info("session created", "username", username, "token_id", token.ID)
	return token, nil
}

// ValidateToken resolves a cookie pair to a live session token
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if token, ok := uc.cache.get(tokenID); ok {
		if !token.MatchSecret(tokenSecret) {
			return nil, goerr.Wrap(ErrAuthFailed, "token secret mismatch")
		}
		if token.IsExpired(time.Now()) {
			uc.cache.remove(tokenID)
			return nil, goerr.Wrap(ErrAuthFailed, "session expired")
		}
		return token, nil
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(ErrAuthFailed, "unknown session", goerr.V("cause", err.Error()))
	}

	if !token.MatchSecret(tokenSecret) {
		return nil, goerr.Wrap(ErrAuthFailed, "token secret mismatch")
	}

	if token.IsExpired(time.Now()) {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(ErrAuthFailed, "session expired")
	}

	uc.cache.set(token)
	return token, nil
}

// Logout deletes the session
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	uc.cache.remove(tokenID)
	return uc.repo.DeleteToken(ctx, tokenID)
}
