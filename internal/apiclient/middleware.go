package apiclient

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"sphere/internal/metrics"
	"sphere/internal/redirect"
)

// Doer performs one HTTP exchange.
type Doer func(*http.Request) (*http.Response, error)

// Middleware wraps a Doer with a cross-cutting behaviour.
type Middleware func(Doer) Doer

// Chain wraps d so that mws[0] is the outermost middleware.
func Chain(d Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// TokenSource provides the current bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// SessionClearer drops the local session.
type SessionClearer interface {
	ClearSession(ctx context.Context) error
}

type withoutTokenKey struct{}

// WithoutToken marks ctx so AttachToken sends no credential, as for a
// sign-in request that must not carry a previous session's token.
func WithoutToken(ctx context.Context) context.Context {
	return context.WithValue(ctx, withoutTokenKey{}, true)
}

func tokenSuppressed(ctx context.Context) bool {
	v, _ := ctx.Value(withoutTokenKey{}).(bool)
	return v
}

// AttachToken sets the Authorization header from tokens when a token is stored.
func AttachToken(tokens TokenSource) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			if tokenSuppressed(req.Context()) {
				return next(req)
			}
			if tok, ok := tokens.Token(req.Context()); ok {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			return next(req)
		}
	}
}

// HandleUnauthorized clears the session and forces navigation to signinPath
// whenever the backend answers 401 to a request that carried a bearer
// credential. Both side effects happen before the response is handed back,
// so callers never see a stale token after a 401. Clearing failures are
// reported through onClearErr when it is non-nil.
func HandleUnauthorized(sess SessionClearer, nav redirect.Navigator, signinPath string, onClearErr func(error)) Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized || req.Header.Get("Authorization") == "" {
				return resp, err
			}
			if clearErr := sess.ClearSession(req.Context()); clearErr != nil {
				if onClearErr != nil {
					onClearErr(clearErr)
				}
			} else {
				metrics.RecordSessionInvalidation("unauthorized")
			}
			nav.ForceNavigate(signinPath)
			return resp, nil
		}
	}
}

// Instrument records request counts and latency per method and status.
func Instrument() Middleware {
	return func(next Doer) Doer {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			metrics.RecordBackendRequest(req.Method, status, time.Since(start))
			return resp, err
		}
	}
}
