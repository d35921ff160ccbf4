package redirect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEffectivePath(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"hash route wins", Location{Pathname: "/", Hash: "#/signin"}, "/signin"},
		{"no hash", Location{Pathname: "/main-menu"}, "/main-menu"},
		{"hash without slash", Location{Pathname: "/", Hash: "#logs"}, "/logs"},
		{"bare marker", Location{Pathname: "/logs", Hash: "#"}, "/"},
		{"hash without marker ignored", Location{Pathname: "/logs", Hash: "signin"}, "/logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEffectivePath(tt.loc))
		})
	}
}

func TestNormalizeHash(t *testing.T) {
	assert.Equal(t, "#/signin", NormalizeHash("/signin"))
	assert.Equal(t, "#/signin", NormalizeHash("signin"))
	assert.Equal(t, "#/signin", NormalizeHash("#/signin"))
}

func TestPolicy_RedirectToSignin(t *testing.T) {
	nav := NewRecorder("#/logs")

	DefaultPolicy().RedirectToSignin(nav)

	assert.Equal(t, "/signin", nav.Path())
	assert.Equal(t, "#/signin", nav.Hash())
	assert.Equal(t, "/signin#/signin", nav.Location())
	assert.False(t, nav.Forced())
}

func TestEnsureHash_OnlyWhenDifferent(t *testing.T) {
	nav := &countingNavigator{hash: "#/signin"}

	EnsureHash(nav, "/signin")
	assert.Zero(t, nav.setHashCalls)

	EnsureHash(nav, "/main-menu")
	assert.Equal(t, 1, nav.setHashCalls)
	assert.Equal(t, "#/main-menu", nav.hash)
}

func TestPolicy_RedirectToMainMenuDropsFragment(t *testing.T) {
	nav := NewRecorder("#/department-manage")

	DefaultPolicy().RedirectToMainMenu(nav)

	assert.Equal(t, "/main-menu", nav.Location())
}

func TestRecorder_ForcedNavigationWins(t *testing.T) {
	nav := NewRecorder("")
	policy := DefaultPolicy()

	nav.ForceNavigate(policy.SigninLocation())
	policy.RedirectToMainMenu(nav)

	assert.True(t, nav.Forced())
	assert.Equal(t, "/signin#/signin", nav.Location())
	assert.Equal(t, 1, nav.Calls())
}

type countingNavigator struct {
	hash         string
	setHashCalls int
}

func (n *countingNavigator) Navigate(string)      {}
func (n *countingNavigator) ForceNavigate(string) {}
func (n *countingNavigator) Hash() string         { return n.hash }
func (n *countingNavigator) SetHash(h string) {
	n.hash = h
	n.setHashCalls++
}
