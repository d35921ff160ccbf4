// Package cli implements portalctl, an operator console for the portal
// backend. It keeps its session in a YAML file and shares the session store,
// API client and auth gateway with the portal server.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sphere/internal/apiclient"
	"sphere/internal/auth"
	"sphere/internal/config"
	"sphere/internal/redirect"
	"sphere/internal/session"
)

// ErrSessionExpired is reported when the backend rejected the stored token.
// The local session has already been cleared.
var ErrSessionExpired = errors.New("session expired, run `portalctl login`")

// ErrNotSignedIn is reported when a command needs a session and none is stored.
var ErrNotSignedIn = errors.New("not signed in, run `portalctl login`")

type options struct {
	apiURL      string
	sessionFile string
	profile     string
	output      string
	timeout     time.Duration
	verbose     bool

	// httpClient overrides the backend transport in tests.
	httpClient *http.Client
}

// portalSession is everything one command needs to talk to the backend.
type portalSession struct {
	store   *session.Store
	nav     *redirect.Recorder
	client  *apiclient.Client
	gateway *auth.Gateway
}

// check turns a backend rejection of the stored token into ErrSessionExpired.
func (s *portalSession) check(err error) error {
	if s.nav.Forced() {
		return ErrSessionExpired
	}
	return err
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *options) open() *portalSession {
	store := session.New(session.NewFileBackend(o.sessionFile), o.profile)
	nav := redirect.NewRecorder("")
	logger := o.logger()

	opts := []apiclient.Option{
		apiclient.WithMiddleware(
			apiclient.AttachToken(store),
			apiclient.HandleUnauthorized(store, nav, redirect.DefaultPolicy().SigninLocation(), func(err error) {
				logger.Warn("clear session after 401", zap.Error(err))
			}),
		),
	}
	if o.httpClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(o.httpClient))
	}
	client := apiclient.New(o.apiURL, o.timeout, opts...)

	return &portalSession{
		store:   store,
		nav:     nav,
		client:  client,
		gateway: auth.NewGateway(client, store, logger),
	}
}

// render writes v in the selected output format. table draws the default
// human-readable form.
func (o *options) render(w io.Writer, v any, table func(io.Writer) error) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "", "table":
		return table(w)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "sphere", "session.yaml")
}

// NewRootCmd builds the portalctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operator console for the Sphere portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.apiURL, "api-url", cfg.APIBaseURL, "backend API base URL")
	flags.StringVar(&o.sessionFile, "session-file", defaultSessionFile(), "where the session is kept")
	flags.StringVar(&o.profile, "profile", "default", "session profile name")
	flags.StringVarP(&o.output, "output", "o", "table", "output format: table, json or yaml")
	flags.DurationVar(&o.timeout, "timeout", cfg.BackendTimeout, "backend request timeout")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log backend failures to stderr")

	root.AddCommand(
		newLoginCmd(o),
		newWhoamiCmd(o),
		newLogoutCmd(o),
		newUsersCmd(o),
		newDepartmentsCmd(o),
		newLogsCmd(o),
	)
	return root
}

// Execute runs portalctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
