package redirect

import "sync"

// Recorder is a Navigator that remembers the navigation it was asked to make.
// The HTTP layer turns the recorded target into a redirect response; the CLI
// and tests inspect it directly.
type Recorder struct {
	mu     sync.Mutex
	path   string
	hash   string
	forced bool
	calls  int
}

var _ Navigator = (*Recorder)(nil)

// NewRecorder returns a Recorder whose current fragment is hash.
func NewRecorder(hash string) *Recorder {
	return &Recorder{hash: hash}
}

// Navigate records an in-app route change. Like a router push, it drops the
// current fragment.
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forced {
		return
	}
	r.path = path
	r.hash = ""
	r.calls++
}

// ForceNavigate records a hard navigation. A forced target wins over any
// later in-app navigation.
func (r *Recorder) ForceNavigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
	r.hash = ""
	r.forced = true
	r.calls++
}

func (r *Recorder) Hash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hash
}

func (r *Recorder) SetHash(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forced {
		return
	}
	r.hash = hash
}

// Pending reports whether any navigation was requested.
func (r *Recorder) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path != ""
}

// Forced reports whether the recorded navigation was a hard one.
func (r *Recorder) Forced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forced
}

// Calls counts Navigate and ForceNavigate invocations that were recorded.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Path returns the recorded target path.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Location renders the recorded target as a URL reference (path plus fragment).
func (r *Recorder) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path + r.hash
}
