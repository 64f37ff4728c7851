package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jitsi-tools/focusctl/cli"
	"github.com/jitsi-tools/focusctl/utils"
)

func main() {
	logger := setupLogger()

	app := cli.NewApp(logger)
	if err := app.Command().Execute(); err != nil {
		logger.Error().Err(err).Msg("focusctl failed")
		os.Exit(1)
	}

	os.Exit(app.ExitCode())
}

// setupLogger initializes zerolog on stderr. Every line of a run
// carries the same run id so interleaved operator logs stay traceable.
func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("run_id", utils.GenerateULIDString()).
		Logger()
}
