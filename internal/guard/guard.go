// Package guard decides whether a navigation to a protected screen may
// proceed.
//
// Every attempt runs Init -> Verifying -> (Authorized | Redirecting). Attempts
// are numbered; only the most recent one may change state or navigate, so a
// slow verification that resolves after a newer navigation is dropped.
package guard

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"sphere/internal/auth"
	"sphere/internal/metrics"
	"sphere/internal/model"
	"sphere/internal/redirect"
)

// Phase is a step of the guard state machine.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseVerifying
	PhaseAuthorized
	PhaseRedirecting
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseVerifying:
		return "verifying"
	case PhaseAuthorized:
		return "authorized"
	case PhaseRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// View is what the protected screen shows in a given state.
type View int

const (
	// ViewPlaceholder is the non-interactive loading state.
	ViewPlaceholder View = iota
	// ViewContent is the protected screen itself.
	ViewContent
	// ViewNothing is rendered while a redirect is under way.
	ViewNothing
)

// State is the observable guard state. Target is set when redirecting;
// User is set once authorized.
type State struct {
	Phase  Phase
	Target string
	User   *model.User
}

// View maps the state to its rendering. Content is only ever shown after a
// successful verification.
func (s State) View() View {
	switch s.Phase {
	case PhaseAuthorized:
		return ViewContent
	case PhaseRedirecting:
		return ViewNothing
	default:
		return ViewPlaceholder
	}
}

// Decision is the outcome of one Check. Current is false when a newer
// attempt started before this one finished; such a decision was not applied
// and State holds whatever the guard shows now.
type Decision struct {
	Current bool
	State   State
}

// Authenticator is what the guard needs from the auth gateway.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	VerifyToken(ctx context.Context) (*auth.Verification, error)
}

// Guard serializes navigation attempts of one browser session.
type Guard struct {
	policy redirect.Policy
	logger *zap.Logger

	mu    sync.Mutex
	gen   uint64
	state State

	lastUsed atomic.Int64 // unix nanoseconds of the latest Registry.For
}

// New creates a guard that redirects according to policy.
func New(policy redirect.Policy, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{policy: policy, logger: logger}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Check runs one navigation attempt requiring at least the given role.
// RoleUnknown means any valid session is enough. Every failure resolves to a
// redirect; Check never returns an error.
func (g *Guard) Check(ctx context.Context, authn Authenticator, nav redirect.Navigator, required model.RoleSlug) Decision {
	gen := g.begin()

	next, ok := verdict(ctx, g.policy, g.logger, authn, required, func() bool {
		return g.advance(gen, State{Phase: PhaseVerifying})
	})
	if !ok {
		return g.superseded()
	}
	return g.finish(gen, nav, next)
}

// Authorize runs the same checks as Guard.Check for a request that is not a
// navigation. Nothing supersedes it, so the decision is always current and
// always applied to nav.
func Authorize(ctx context.Context, policy redirect.Policy, logger *zap.Logger, authn Authenticator, nav redirect.Navigator, required model.RoleSlug) Decision {
	if logger == nil {
		logger = zap.NewNop()
	}
	next, _ := verdict(ctx, policy, logger, authn, required, func() bool { return true })
	apply(policy, nav, next)
	return Decision{Current: true, State: next}
}

// verdict decides the final state of one attempt. verifying is called before
// the backend round trip; when it reports false the attempt is abandoned.
func verdict(ctx context.Context, policy redirect.Policy, logger *zap.Logger, authn Authenticator, required model.RoleSlug, verifying func() bool) (State, bool) {
	toSignin := State{Phase: PhaseRedirecting, Target: policy.SigninPath}

	if !authn.IsAuthenticated(ctx) {
		return toSignin, true
	}
	if !verifying() {
		return State{}, false
	}

	v, err := authn.VerifyToken(ctx)
	switch {
	case err != nil:
		logger.Warn("token verification failed", zap.Error(err))
		return toSignin, true
	case v == nil || !v.Valid:
		return toSignin, true
	}

	if v.User.RoleSlug().Satisfies(required) {
		return State{Phase: PhaseAuthorized, User: v.User}, true
	}
	logger.Info("insufficient role",
		zap.String("role", string(v.User.RoleSlug())),
		zap.String("required", string(required)))
	return State{Phase: PhaseRedirecting, Target: policy.MainMenuPath}, true
}

// apply records the decision and performs its navigation.
func apply(policy redirect.Policy, nav redirect.Navigator, next State) {
	switch {
	case next.Phase == PhaseAuthorized:
		metrics.RecordGuardDecision("authorized")
	case next.Target == policy.MainMenuPath:
		metrics.RecordGuardDecision("main_menu")
		policy.RedirectToMainMenu(nav)
	default:
		metrics.RecordGuardDecision("signin")
		policy.RedirectToSignin(nav)
	}
}

func (g *Guard) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.state = State{Phase: PhaseInit}
	return g.gen
}

func (g *Guard) advance(gen uint64, next State) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return false
	}
	g.state = next
	return true
}

// finish applies next and its navigation only if gen is still the latest
// attempt. The lock is held across the navigation so a newer attempt cannot
// interleave between the check and the side effect.
func (g *Guard) finish(gen uint64, nav redirect.Navigator, next State) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		metrics.RecordGuardDecision("superseded")
		return Decision{Current: false, State: g.state}
	}

	g.state = next
	apply(g.policy, nav, next)
	return Decision{Current: true, State: next}
}

func (g *Guard) superseded() Decision {
	metrics.RecordGuardDecision("superseded")
	return Decision{Current: false, State: g.State()}
}
