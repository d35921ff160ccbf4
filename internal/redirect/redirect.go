// Package redirect owns the one canonical way of sending a visitor to sign-in.
//
// The portal may be served behind hosts that cannot route deep paths, so
// every logical route also has a fragment form ("#/signin"). Navigations set
// both, and route resolution prefers the fragment when one is present.
package redirect

import "strings"

const (
	// SigninPath is the sign-in route.
	SigninPath = "/signin"
	// MainMenuPath is the neutral screen for valid but under-privileged users.
	MainMenuPath = "/main-menu"
)

// Navigator is the navigation capability handed to the core.
// Navigate is an in-app route change; ForceNavigate abandons any in-app state.
type Navigator interface {
	Navigate(path string)
	ForceNavigate(path string)
	Hash() string
	SetHash(hash string)
}

// Location is the address-bar view of the current route.
type Location struct {
	Pathname string
	Hash     string
}

// NormalizeHash converts a route path into its fragment form.
func NormalizeHash(path string) string {
	switch {
	case strings.HasPrefix(path, "#"):
		return path
	case strings.HasPrefix(path, "/"):
		return "#" + path
	default:
		return "#/" + path
	}
}

// EnsureHash sets nav's fragment to the fragment form of path, only when it differs.
func EnsureHash(nav Navigator, path string) {
	normalized := NormalizeHash(path)
	if nav.Hash() != normalized {
		nav.SetHash(normalized)
	}
}

// ResolveEffectivePath returns the logical route of loc: the fragment path
// when a fragment is present, the pathname otherwise.
func ResolveEffectivePath(loc Location) string {
	if strings.HasPrefix(loc.Hash, "#") {
		hashPath := loc.Hash[1:]
		if strings.HasPrefix(hashPath, "/") {
			return hashPath
		}
		return "/" + hashPath
	}
	return loc.Pathname
}

// Policy decides where the guard and entry points send visitors.
type Policy struct {
	SigninPath   string
	MainMenuPath string
}

// DefaultPolicy uses the portal's standard routes.
func DefaultPolicy() Policy {
	return Policy{SigninPath: SigninPath, MainMenuPath: MainMenuPath}
}

// RedirectToSignin navigates to sign-in and keeps the fragment in sync so a
// hard reload lands on the same screen.
func (p Policy) RedirectToSignin(nav Navigator) {
	nav.Navigate(p.SigninPath)
	EnsureHash(nav, p.SigninPath)
}

// RedirectToMainMenu sends a valid visitor to the neutral landing screen.
func (p Policy) RedirectToMainMenu(nav Navigator) {
	nav.Navigate(p.MainMenuPath)
}

// SigninLocation is the hard-navigation target for an invalidated session.
func (p Policy) SigninLocation() string {
	return p.SigninPath + NormalizeHash(p.SigninPath)
}
