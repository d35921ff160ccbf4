package router

import (
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sphere/internal/apiclient"
	"sphere/internal/auth"
	"sphere/internal/config"
	"sphere/internal/guard"
	"sphere/internal/handler"
	"sphere/internal/redirect"
	"sphere/internal/session"
)

const sessionClaimsKey = "session_claims"

// Portal holds the process-wide pieces every request scope is built from.
type Portal struct {
	Signer   *auth.SessionSigner
	Sessions session.Backend
	Guards   *guard.Registry
	Policy   redirect.Policy
	Logger   *zap.Logger
	// Transport is the HTTP client used for backend calls; nil means a
	// client with the configured backend timeout.
	Transport *http.Client
}

// sessionCookie parses the signed session cookie when one is present.
// A missing or invalid cookie is not an error here; establishSession mints
// a fresh session for it.
func sessionCookie(signer *auth.SessionSigner) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.SessionCookieName,
		ContextKey:  sessionClaimsKey,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return signer.Parse(raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// establishSession makes sure the visitor has a session id, re-issuing the
// cookie when it is missing or past half its lifetime, and attaches the
// request scope.
func establishSession(cfg *config.Config, p *Portal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(sessionClaimsKey).(*auth.SessionClaims)

			var sid string
			if claims != nil {
				sid = claims.SessionID
			}
			if sid == "" || claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) < p.Signer.TTL()/2 {
				if sid == "" {
					sid = auth.NewSessionID()
				}
				if err := issueCookie(c, cfg, p.Signer, sid); err != nil {
					p.Logger.Error("issue session cookie", zap.Error(err))
					return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
				}
			}

			scope := newScope(cfg, p, sid)
			handler.SetScope(c, scope)

			err := next(c)
			if scope.Nav.Forced() && !c.Response().Committed {
				// the backend rejected the session token mid-request
				return c.Redirect(http.StatusFound, scope.Nav.Location())
			}
			return err
		}
	}
}

func issueCookie(c echo.Context, cfg *config.Config, signer *auth.SessionSigner, sid string) error {
	value, err := signer.Sign(sid)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func newScope(cfg *config.Config, p *Portal, sid string) *handler.Scope {
	store := session.New(p.Sessions, sid)
	nav := redirect.NewRecorder("")

	hc := p.Transport
	if hc == nil {
		hc = &http.Client{Timeout: cfg.BackendTimeout}
	}
	client := apiclient.New(cfg.APIBaseURL, cfg.BackendTimeout,
		apiclient.WithHTTPClient(hc),
		apiclient.WithMiddleware(
			apiclient.Instrument(),
			apiclient.AttachToken(store),
			apiclient.HandleUnauthorized(store, nav, p.Policy.SigninLocation(), func(err error) {
				p.Logger.Error("clear session after 401", zap.String("session_id", sid), zap.Error(err))
			}),
		),
	)

	return &handler.Scope{
		SessionID: sid,
		Session:   store,
		Nav:       nav,
		API:       client,
		Gateway:   auth.NewGateway(client, store, p.Logger),
	}
}
