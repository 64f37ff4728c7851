// Package shutdown drives the graceful-shutdown handshake against a
// conference focus: one shutdown request, then a stats poll loop that
// waits for the active conference count to drain to zero.
package shutdown

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jitsi-tools/focusctl/colibri"
)

// DefaultPollInterval is the pause between stats polls while waiting
// for conferences to drain.
const DefaultPollInterval = 10 * time.Second

// ErrorCategory classifies a rejected shutdown request. For stanza
// errors it mirrors the error type reported by the focus.
type ErrorCategory string

const (
	// CategoryWait means the focus asked us to retry later. Expected
	// while a previous shutdown is still draining; benign.
	CategoryWait ErrorCategory = "wait"

	// CategoryAuth, CategoryCancel, CategoryModify and CategoryContinue
	// mirror the remaining stanza error types.
	CategoryAuth     ErrorCategory = "auth"
	CategoryCancel   ErrorCategory = "cancel"
	CategoryModify   ErrorCategory = "modify"
	CategoryContinue ErrorCategory = "continue"

	// CategoryTransport marks failures below the stanza layer: a dead
	// stream, a write failure, a response that never arrived.
	CategoryTransport ErrorCategory = "transport"
)

// ConditionServiceUnavailable is the stanza error condition reported
// when no focus service is running at the target address. Benign.
const ConditionServiceUnavailable = "service-unavailable"

// Response is the outcome of a single shutdown request.
type Response struct {
	Accepted  bool
	Category  ErrorCategory
	Condition string
}

// Benign reports whether a rejection is an expected outcome that must
// not fail the run: the focus asked us to wait, or it is not there.
func (r *Response) Benign() bool {
	return r.Category == CategoryWait || r.Condition == ConditionServiceUnavailable
}

// Result is the outcome of a full shutdown procedure, surfaced to the
// caller instead of a mutable process-global.
type Result int

const (
	ResultOK Result = iota
	ResultFailed
)

// ExitCode maps the result to a process exit code.
func (r Result) ExitCode() int {
	if r == ResultFailed {
		return 1
	}
	return 0
}

// Transport is the request/response collaborator the orchestrator
// drives. Sessions are established before the orchestrator runs.
type Transport interface {
	// RequestShutdown performs one blocking graceful-shutdown exchange.
	// Stanza-level rejections come back as a Response; only failures
	// below the stanza layer are returned as errors.
	RequestShutdown(ctx context.Context) (*Response, error)

	// QueryStats performs one blocking stats exchange.
	QueryStats(ctx context.Context) (*colibri.Stats, error)

	// DisconnectFlush flushes queued outbound stanzas and tears down
	// the connection. Safe to call once per run.
	DisconnectFlush() error
}

// Orchestrator runs the shutdown procedure. It is strictly sequential:
// one outstanding exchange at a time, no shared state.
type Orchestrator struct {
	transport Transport
	interval  time.Duration
	logger    zerolog.Logger

	// sleep is replaced in tests to observe the poll cadence.
	sleep func(time.Duration)
}

// New creates an orchestrator polling at the given interval. A zero or
// negative interval falls back to DefaultPollInterval.
func New(transport Transport, interval time.Duration, logger zerolog.Logger) *Orchestrator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Orchestrator{
		transport: transport,
		interval:  interval,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// RequestShutdown sends the shutdown request once. There is no retry;
// the poll loop is the only retry-like behavior in the procedure, and
// it retries the stats query, not this request.
func (o *Orchestrator) RequestShutdown(ctx context.Context) *Response {
	resp, err := o.transport.RequestShutdown(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("Shutdown request did not complete")
		return &Response{
			Accepted:  false,
			Category:  CategoryTransport,
			Condition: "transport-failure",
		}
	}
	return resp
}

// PollActiveCount performs one stats exchange and extracts the
// conference counter. Any failure yields colibri.CountUnknown, which
// keeps the poll loop going; a broken poll must never read as zero.
func (o *Orchestrator) PollActiveCount(ctx context.Context) int {
	stats, err := o.transport.QueryStats(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Stats query failed, polling again")
		return colibri.CountUnknown
	}
	return stats.ConferenceCount()
}

// Run executes the full procedure: request shutdown, poll until the
// conference count is exactly zero, disconnect with a flush. The
// transport is disconnected exactly once on every path.
func (o *Orchestrator) Run(ctx context.Context) Result {
	result := ResultOK

	resp := o.RequestShutdown(ctx)
	switch {
	case resp.Accepted:
		o.logger.Info().Msg("Shutdown accepted")
		for {
			count := o.PollActiveCount(ctx)
			o.logger.Info().Int("conferences", count).Msg("Conferences in progress")
			if count == 0 {
				break
			}
			o.sleep(o.interval)
		}
		o.logger.Info().Msg("End of shutdown procedure")
	case resp.Benign():
		o.logger.Info().
			Str("category", string(resp.Category)).
			Str("condition", resp.Condition).
			Msg("Shutdown request not accepted, focus is draining or not running")
	default:
		result = ResultFailed
		o.logger.Error().
			Str("category", string(resp.Category)).
			Str("condition", resp.Condition).
			Msg("There was an error sending shutdown request")
	}

	if err := o.transport.DisconnectFlush(); err != nil {
		// The procedure outcome stands; a noisy teardown is log-only.
		o.logger.Warn().Err(err).Msg("Disconnect did not complete cleanly")
	}

	return result
}
