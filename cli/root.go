// Package cli wires the focusctl command line: flag parsing and
// validation, defaults-file merging, and handoff to the shutdown
// orchestrator over a live XMPP transport.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jitsi-tools/focusctl/client/config"
	"github.com/jitsi-tools/focusctl/pkg/errors"
	"github.com/jitsi-tools/focusctl/shutdown"
	"github.com/jitsi-tools/focusctl/xmppclient"
)

// connectFunc establishes the transport; replaced in tests so flag
// validation can be exercised without a network.
type connectFunc func(ctx context.Context, cfg xmppclient.Config, logger zerolog.Logger) (shutdown.Transport, error)

// App holds the pieces main needs after command execution: the exit
// code of the shutdown procedure.
type App struct {
	logger   zerolog.Logger
	connect  connectFunc
	exitCode int
}

// NewApp creates the CLI application around a base logger.
func NewApp(logger zerolog.Logger) *App {
	return &App{
		logger:  logger,
		connect: dialTransport,
	}
}

// ExitCode returns the process exit code for the completed run. Zero
// until a run reports otherwise.
func (a *App) ExitCode() int {
	return a.exitCode
}

// Command builds the root command. focusctl has no subcommands; the
// root does the whole job.
func (a *App) Command() *cobra.Command {
	var (
		quiet   bool
		debug   bool
		verbose bool

		server   string
		userJID  string
		password string
		focus    string

		interval       time.Duration
		requestTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "focusctl",
		Short: "Ask a conference focus to shut down gracefully",
		Long: `focusctl sends a colibri graceful-shutdown request to a conference
focus component, then polls its stats until no conferences remain in
progress before disconnecting.

The process exits 0 when the shutdown request was accepted (or the
focus was already draining or not running), and 1 on any other
rejection or when the connection cannot be established.`,
		Version:      "0.1.0",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.logger.Level(logLevel(quiet, debug, verbose))

			defaults, err := config.Load()
			if err != nil {
				logger.Warn().Err(err).Msg("Ignoring unreadable defaults file")
				defaults = config.DefaultConfig()
			}

			if server == "" {
				server = defaults.Server
			}
			if userJID == "" {
				userJID = defaults.JID
			}
			if focus == "" {
				focus = defaults.Focus
			}
			if interval <= 0 {
				interval = defaults.PollInterval()
			}
			if requestTimeout <= 0 {
				requestTimeout = defaults.RequestTimeout()
			}

			if err := checkRequired(server, userJID, password, focus); err != nil {
				return err
			}

			transport, err := a.connect(cmd.Context(), xmppclient.Config{
				Server:         server,
				JID:            userJID,
				Password:       password,
				Focus:          focus,
				RequestTimeout: requestTimeout,
			}, logger)
			if err != nil {
				// The reference tool exited 0 here; that hid failed
				// runs from operators, so a connect failure is fatal.
				logger.Error().Err(err).Msg("Unable to connect")
				return errors.Wrap(ErrConnectFailed, err, "unable to connect")
			}

			orch := shutdown.New(transport, interval, logger)
			a.exitCode = orch.Run(cmd.Context()).ExitCode()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable wire-level logging")
	flags.StringVarP(&server, "server", "s", "", "XMPP server hostname (port 5222)")
	flags.StringVarP(&userJID, "jid", "j", "", "JID to authenticate as")
	flags.StringVarP(&password, "password", "p", "", "password for the JID")
	flags.StringVarP(&focus, "focus", "f", "", "JID of the focus component")
	flags.DurationVar(&interval, "interval", 0, "pause between stats polls (default 10s)")
	flags.DurationVar(&requestTimeout, "request-timeout", 0, "timeout for a single request (default 30s)")

	return cmd
}

// checkRequired rejects a run before any connection is attempted when
// the connection parameters are incomplete.
func checkRequired(server, userJID, password, focus string) error {
	var missing []string
	if server == "" {
		missing = append(missing, "--server")
	}
	if userJID == "" {
		missing = append(missing, "--jid")
	}
	if password == "" {
		missing = append(missing, "--password")
	}
	if focus == "" {
		missing = append(missing, "--focus")
	}

	if len(missing) > 0 {
		return errors.New(ErrMissingFlag,
			fmt.Sprintf("missing required flags: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}

// logLevel maps the verbosity flags to a zerolog level. The most
// verbose flag wins when several are set.
func logLevel(quiet, debug, verbose bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.TraceLevel
	case debug:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// dialTransport is the production connectFunc: build the XMPP client
// and establish the session.
func dialTransport(ctx context.Context, cfg xmppclient.Config, logger zerolog.Logger) (shutdown.Transport, error) {
	client, err := xmppclient.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
