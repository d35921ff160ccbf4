package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"sphere/internal/apiclient"
	"sphere/internal/metrics"
	"sphere/internal/model"
)

// SessionStore is the slice of the session store the gateway mutates.
type SessionStore interface {
	HasToken(ctx context.Context) bool
	Token(ctx context.Context) (string, bool)
	SetSession(ctx context.Context, token string, user *model.User) error
	ClearSession(ctx context.Context) error
	CachedUser(ctx context.Context) (*model.User, bool)
}

// API is the backend transport used by the gateway.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) (*apiclient.Envelope, error)
	Post(ctx context.Context, path string, body, out any) (*apiclient.Envelope, error)
}

// Credentials are the sign-in form values.
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResult is what a successful sign-in returns.
type LoginResult struct {
	User         *model.User `json:"user"`
	Token        string      `json:"-"`
	RefreshToken string      `json:"-"`
	TokenType    string      `json:"token_type,omitempty"`
	ExpiresIn    int         `json:"expires_in,omitempty"`
}

// Verification is the backend's verdict on the current token.
// Valid=false means the backend rejected the credential; transport problems
// are reported as errors instead.
type Verification struct {
	Valid bool        `json:"valid"`
	User  *model.User `json:"user,omitempty"`
}

type loginData struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
}

// Gateway is the only component that creates or destroys a session.
type Gateway struct {
	api    API
	store  SessionStore
	logger *zap.Logger
}

// NewGateway creates a gateway over the given transport and session store.
func NewGateway(api API, store SessionStore, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{api: api, store: store, logger: logger}
}

// Login authenticates against the backend and stores the new session.
// A failed login leaves the existing session untouched and is never retried.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var data loginData
	env, err := g.api.Post(apiclient.WithoutToken(ctx), "/auth/login", creds, &data)
	if err != nil {
		metrics.RecordLogin(loginResult(err))
		return nil, apiclient.Describe(err, "Login failed")
	}
	if err := apiclient.Expect(env, "Login failed"); err != nil {
		metrics.RecordLogin("rejected")
		return nil, err
	}
	if data.AccessToken == "" {
		metrics.RecordLogin("error")
		return nil, &apiclient.APIError{StatusCode: http.StatusOK, Message: "Login failed"}
	}

	user := data.User
	if err := g.store.SetSession(ctx, data.AccessToken, &user); err != nil {
		metrics.RecordLogin("error")
		return nil, fmt.Errorf("store session: %w", err)
	}
	metrics.RecordLogin("success")
	g.logger.Info("signed in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role.Slug)))

	return &LoginResult{
		User:         &user,
		Token:        data.AccessToken,
		RefreshToken: data.RefreshToken,
		TokenType:    data.TokenType,
		ExpiresIn:    data.ExpiresIn,
	}, nil
}

func loginResult(err error) string {
	switch apiclient.StatusOf(err) {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusBadRequest, http.StatusForbidden:
		return "rejected"
	default:
		return "error"
	}
}

// VerifyToken asks the backend to re-validate the current token.
// An explicit rejection yields Verification{Valid: false} and clears the
// local session; transport failures and server errors are returned as errors
// and leave the session alone.
func (g *Gateway) VerifyToken(ctx context.Context) (*Verification, error) {
	var data Verification
	env, err := g.api.Get(ctx, "/auth/verify-token", nil, &data)
	if err != nil {
		switch apiclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			g.invalidate(ctx, "verify_failed")
			return &Verification{Valid: false}, nil
		}
		return nil, apiclient.Describe(err, "Token verification failed")
	}
	if !env.Success || !data.Valid {
		g.invalidate(ctx, "verify_failed")
		return &Verification{Valid: false}, nil
	}

	token, ok := g.store.Token(ctx)
	if ok {
		if err := g.store.SetSession(ctx, token, data.User); err != nil {
			g.logger.Warn("refresh cached user", zap.Error(err))
		}
	}
	return &Verification{Valid: true, User: data.User}, nil
}

// Logout asks the backend to revoke the token and always clears the local
// session, whatever the outcome of that call. It never fails.
func (g *Gateway) Logout(ctx context.Context) {
	defer g.invalidate(context.WithoutCancel(ctx), "logout")

	if _, err := g.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		g.logger.Warn("logout request failed", zap.Error(err))
	}
}

// IsAuthenticated is a cheap local check: a token is stored. It does not
// prove the token is valid.
func (g *Gateway) IsAuthenticated(ctx context.Context) bool {
	return g.store.HasToken(ctx)
}

// CurrentUser fetches the profile of the signed-in user.
func (g *Gateway) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	env, err := g.api.Get(ctx, "/auth/user-info", nil, &user)
	if err != nil {
		return nil, apiclient.Describe(err, "Failed to get user info")
	}
	if err := apiclient.Expect(env, "Failed to get user info"); err != nil {
		return nil, err
	}
	return &user, nil
}

// CachedUser returns the stored profile for optimistic display. It must not
// be used for authorization.
func (g *Gateway) CachedUser(ctx context.Context) (*model.User, bool) {
	return g.store.CachedUser(ctx)
}

func (g *Gateway) invalidate(ctx context.Context, reason string) {
	if err := g.store.ClearSession(ctx); err != nil {
		g.logger.Error("clear session", zap.String("reason", reason), zap.Error(err))
		return
	}
	metrics.RecordSessionInvalidation(reason)
}
