// Package xmppclient implements the XMPP transport behind the shutdown
// orchestrator: one authenticated client session against the XMPP
// server, with blocking IQ round-trips to the focus component.
package xmppclient

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"mellium.im/sasl"
	"mellium.im/xmpp"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/stanza"

	"github.com/jitsi-tools/focusctl/colibri"
	"github.com/jitsi-tools/focusctl/pkg/errors"
	"github.com/jitsi-tools/focusctl/shutdown"
)

// Port is the client-to-server XMPP port. The focus tooling always
// connects there; the server flag carries only a hostname.
const Port = 5222

// DefaultRequestTimeout bounds a single IQ round-trip. The reference
// tool could hang forever waiting on a lost response; this cannot.
const DefaultRequestTimeout = 30 * time.Second

// Config holds everything needed to reach the focus component.
type Config struct {
	Server         string
	JID            string
	Password       string
	Focus          string
	RequestTimeout time.Duration
}

// Client is an authenticated XMPP session that speaks colibri to a
// single focus address. It implements shutdown.Transport.
type Client struct {
	cfg    Config
	logger zerolog.Logger
	addr   jid.JID
	focus  jid.JID

	conn    net.Conn
	session *xmpp.Session

	closeOnce sync.Once
	closeErr  error
}

// New validates the configured addresses and returns an unconnected
// client. Call Connect before issuing requests.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	addr, err := jid.Parse(cfg.JID)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidJID, err, "invalid user JID").
			AddContext("jid", cfg.JID)
	}

	focus, err := jid.Parse(cfg.Focus)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidJID, err, "invalid focus JID").
			AddContext("jid", cfg.Focus)
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		addr:   addr,
		focus:  focus,
	}, nil
}

// Connect dials the server, negotiates the client stream (opportunistic
// StartTLS, SASL, resource bind) and starts serving the session so IQ
// responses can be matched to their requests.
func (c *Client) Connect(ctx context.Context) error {
	host := net.JoinHostPort(c.cfg.Server, strconv.Itoa(Port))
	c.logger.Debug().Str("addr", host).Msg("Dialing XMPP server")

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return errors.Wrap(ErrDialFailed, err, "failed to dial XMPP server").
			AddContext("addr", host)
	}

	session, err := xmpp.NewClientSession(ctx, c.addr, conn,
		xmpp.StartTLS(&tls.Config{ServerName: c.addr.Domainpart()}),
		xmpp.SASL("", c.cfg.Password, sasl.ScramSha1Plus, sasl.ScramSha1, sasl.Plain),
		xmpp.BindResource(),
	)
	if err != nil {
		conn.Close()
		return errors.Wrap(ErrNegotiateFailed, err, "failed to negotiate XMPP session")
	}

	c.conn = conn
	c.session = session

	// Serve pumps the input stream; without it SendIQ would never see
	// a response. The nil handler answers unsolicited IQs for us.
	go func() {
		if err := session.Serve(nil); err != nil {
			c.logger.Debug().Err(err).Msg("Session serve loop ended")
		}
	}()

	c.logger.Info().
		Str("jid", c.addr.String()).
		Str("focus", c.focus.String()).
		Msg("Connected to XMPP server")
	return nil
}

// RequestShutdown sends the colibri graceful-shutdown set-IQ and blocks
// for the response. Stanza errors become a classified Response rather
// than a Go error so the orchestrator can apply the benign/fatal split.
func (c *Client) RequestShutdown(ctx context.Context) (*shutdown.Response, error) {
	if c.session == nil {
		return nil, errors.New(ErrNotConnected, "client is not connected", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	iq := stanza.IQ{
		ID:   uuid.NewString(),
		To:   c.focus,
		Type: stanza.SetIQ,
	}
	c.logger.Trace().Str("id", iq.ID).Msg("Sending graceful-shutdown IQ")

	// The accepted response carries no payload; only the IQ envelope
	// comes back.
	var result struct {
		stanza.IQ
	}
	err := c.session.UnmarshalIQ(ctx, iq.Wrap(colibri.GracefulShutdown{}.TokenReader()), &result)
	if err != nil {
		if resp, ok := classifyStanzaError(err); ok {
			c.logger.Debug().
				Str("category", string(resp.Category)).
				Str("condition", resp.Condition).
				Msg("Shutdown request rejected by focus")
			return resp, nil
		}
		return nil, errors.Wrap(ErrShutdownSendFailed, err, "graceful-shutdown exchange failed")
	}

	return &shutdown.Response{Accepted: true}, nil
}

// QueryStats sends the colibri stats get-IQ and decodes the counters
// from the response.
func (c *Client) QueryStats(ctx context.Context) (*colibri.Stats, error) {
	if c.session == nil {
		return nil, errors.New(ErrNotConnected, "client is not connected", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	iq := stanza.IQ{
		ID:   uuid.NewString(),
		To:   c.focus,
		Type: stanza.GetIQ,
	}
	c.logger.Trace().Str("id", iq.ID).Msg("Sending stats IQ")

	var result struct {
		stanza.IQ
		Stats colibri.Stats `xml:"http://jitsi.org/protocol/colibri stats"`
	}
	err := c.session.UnmarshalIQ(ctx, iq.Wrap(colibri.Stats{}.TokenReader()), &result)
	if err != nil {
		return nil, errors.Wrap(ErrStatsQueryFailed, err, "stats exchange failed")
	}

	return &result.Stats, nil
}

// DisconnectFlush closes the XMPP stream and then the socket. Stanza
// writes are synchronous, so everything sent before this call is
// already on the wire when the stream footer goes out. Runs once; later
// calls return the first outcome.
func (c *Client) DisconnectFlush() error {
	c.closeOnce.Do(func() {
		if c.session == nil {
			return
		}

		c.logger.Debug().Msg("Closing XMPP stream")
		if err := c.session.Close(); err != nil {
			c.closeErr = errors.Wrap(ErrCloseFailed, err, "failed to close XMPP stream")
		}
		if err := c.conn.Close(); err != nil && c.closeErr == nil {
			c.closeErr = errors.Wrap(ErrCloseFailed, err, "failed to close connection")
		}
	})
	return c.closeErr
}

// classifyStanzaError maps an error-type IQ response onto the
// orchestrator's category/condition taxonomy.
func classifyStanzaError(err error) (*shutdown.Response, bool) {
	var se stanza.Error
	if !stderrors.As(err, &se) {
		return nil, false
	}
	return &shutdown.Response{
		Accepted:  false,
		Category:  shutdown.ErrorCategory(se.Type),
		Condition: string(se.Condition),
	}, true
}
