package xmppclient

import "github.com/jitsi-tools/focusctl/pkg/errors"

// Error codes for xmppclient package
var (
	// Address and session errors
	ErrInvalidJID      = errors.MustNewCode("xmppclient.invalid_jid")
	ErrDialFailed      = errors.MustNewCode("xmppclient.dial_failed")
	ErrNegotiateFailed = errors.MustNewCode("xmppclient.negotiation_failed")
	ErrNotConnected    = errors.MustNewCode("xmppclient.not_connected")

	// Exchange errors
	ErrShutdownSendFailed = errors.MustNewCode("xmppclient.shutdown_send_failed")
	ErrStatsQueryFailed   = errors.MustNewCode("xmppclient.stats_query_failed")

	// Teardown errors
	ErrCloseFailed = errors.MustNewCode("xmppclient.close_failed")
)
