package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/newsox/newsox/internal/cli/auth"
	"github.com/newsox/newsox/internal/cli/client"
	"github.com/newsox/newsox/internal/cli/config"
	"github.com/newsox/newsox/internal/cli/serverselect"
	"github.com/newsox/newsox/internal/cli/userconfig"
	appconfig "github.com/newsox/newsox/internal/config"
	"github.com/newsox/newsox/internal/session"
)

// envOptions holds the dependencies a command runs with.
// Production code leaves them empty; tests inject fakes.
type envOptions struct {
	server     *config.Server
	tokenStore auth.TokenStore
	snapshots  session.SnapshotStore
	out        io.Writer
}

// Option overrides one command dependency
type Option func(*envOptions)

// WithServer skips server resolution and uses the given server
func WithServer(server *config.Server) Option {
	return func(o *envOptions) { o.server = server }
}

// WithTokenStore replaces the OS keychain
func WithTokenStore(store auth.TokenStore) Option {
	return func(o *envOptions) { o.tokenStore = store }
}

// WithSnapshotStore replaces the user config snapshot file
func WithSnapshotStore(store session.SnapshotStore) Option {
	return func(o *envOptions) { o.snapshots = store }
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(o *envOptions) { o.out = w }
}

// sessionEnv is everything a session-aware command works with
type sessionEnv struct {
	server  *config.Server
	client  *client.Client
	session *session.Session
	tokens  auth.TokenStore
	out     io.Writer
}

// getSelectedServer loads the config and returns the selected server.
// Without a newsox.json the server from NEWSOX_API_URL is used.
func getSelectedServer(appCfg *appconfig.Config, serverAlias string) (*config.Server, error) {
	cfg, err := config.LoadOrDefault(appCfg.API.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'newsox init <api-url>' to create a configuration file", err)
	}

	return serverselect.ResolveServer(cfg, serverAlias)
}

// openSession builds the client and session for the resolved server and
// restores saved cookies. The session is not revalidated; call Start when
// the command needs a confirmed identity.
func openSession(serverAlias string, opts ...Option) (*sessionEnv, error) {
	o := &envOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.out == nil {
		o.out = os.Stdout
	}
	if o.tokenStore == nil {
		o.tokenStore = auth.Default
	}

	appCfg, err := appconfig.Load()
	if err != nil {
		return nil, err
	}

	server := o.server
	if server == nil {
		server, err = getSelectedServer(appCfg, serverAlias)
		if err != nil {
			return nil, err
		}
	}

	if o.snapshots == nil {
		o.snapshots = userconfig.SnapshotStore(server.URL)
	}

	clientOpts := []client.Option{client.WithTimeout(appCfg.API.Timeout)}
	if appCfg.API.InsecureTLS {
		clientOpts = append(clientOpts, client.WithInsecureTLS())
	}
	apiClient, err := client.New(server.URL, clientOpts...)
	if err != nil {
		return nil, err
	}

	cookies, err := o.tokenStore.LoadCookies(server.URL)
	if err != nil {
		log.Warn().Err(err).Str("server", server.URL).Msg("Ignoring saved cookies")
	} else {
		apiClient.SetCookies(cookies)
	}

	out := o.out
	sess := session.New(apiClient,
		session.WithTokenStore(auth.ForServer(o.tokenStore, server.URL)),
		session.WithSnapshotStore(o.snapshots),
		session.WithNotifier(session.NotifierFunc(func(message string) {
			fmt.Fprintln(out, message)
		})),
		session.WithNavigator(session.NavigatorFunc(func() {
			log.Debug().Str("server", server.URL).Msg("Session reset to anonymous")
		})),
		session.WithLogger(log.Logger),
	)

	return &sessionEnv{
		server:  server,
		client:  apiClient,
		session: sess,
		tokens:  o.tokenStore,
		out:     out,
	}, nil
}

// close saves whatever cookies the backend set during the command
func (e *sessionEnv) close() {
	if err := e.tokens.SaveCookies(e.server.URL, e.client.Cookies()); err != nil {
		log.Warn().Err(err).Str("server", e.server.URL).Msg("Failed to save session cookies")
	}
}

// requireLogin revalidates the session and fails when nobody is logged in
func (e *sessionEnv) requireLogin(ctx context.Context) (session.State, error) {
	st := e.session.Start(ctx)
	if !st.IsAuthenticated {
		return st, fmt.Errorf("not logged in to %s (%s). Please run 'newsox login' first", e.server.Alias, e.server.URL)
	}
	return st, nil
}

// printUser writes a short description of a member
func printUser(w io.Writer, st session.State) {
	u := st.User
	fmt.Fprintf(w, "  User: %s (%s)\n", u.Name, u.Email)
	if u.IsAdmin() {
		fmt.Fprintln(w, "  Role: Admin")
	}
	if u.Level != nil {
		fmt.Fprintf(w, "  Level: %d\n", *u.Level)
	}
	if u.Experience != nil {
		fmt.Fprintf(w, "  Experience: %d / 100\n", *u.Experience)
	}
	if st.AccessToken != "" {
		if exp, err := auth.TokenExpiry(st.AccessToken); err == nil {
			fmt.Fprintf(w, "  Auth: bearer token (expires %s)\n", exp.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintln(w, "  Auth: bearer token")
		}
	} else {
		fmt.Fprintln(w, "  Auth: session cookie")
	}
}
