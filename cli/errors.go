package cli

import "github.com/jitsi-tools/focusctl/pkg/errors"

// Error codes for cli package
var (
	ErrMissingFlag   = errors.MustNewCode("cli.missing_flag")
	ErrConnectFailed = errors.MustNewCode("cli.connect_failed")
)
