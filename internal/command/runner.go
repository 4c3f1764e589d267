package command

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"time"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/rs/zerolog"
)

// Runner executes formatted commands and captures their standard output.
type Runner struct {
	logger    zerolog.Logger
	chunkSize int
}

// NewRunner creates a runner using the default growth increment.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{
		logger:    logger.With().Str("component", "command_runner").Logger(),
		chunkSize: buffer.DefaultChunkSize,
	}
}

// WithChunkSize returns a copy of r growing its buffers by size bytes.
func (r *Runner) WithChunkSize(size int) *Runner {
	clone := *r
	clone.chunkSize = size
	return &clone
}

// Run starts cmd without a shell and reads its stdout until EOF.
//
// A command that cannot be started yields a spawn error and no buffer. A
// command stopped by ctx after it started yields a transport error. A
// command that runs but prints nothing yields an empty buffer. The exit status
// is logged but does not turn captured output into a failure.
func (r *Runner) Run(ctx context.Context, cmd *Command) (*buffer.Buffer, error) {
	if cmd == nil || len(cmd.Args) == 0 {
		return nil, errors.New(errors.ErrorTypeSpawn, "empty HTTP command")
	}

	logger := r.logger.With().Str("program", cmd.Args[0]).Logger()
	logger.Debug().Strs("args", cmd.Args).Msg("executing HTTP command")

	proc := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	proc.Stderr = os.Stderr

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSpawn, "failed to open HTTP command output").
			WithContext("program", cmd.Args[0])
	}

	startTime := time.Now()
	if err := proc.Start(); err != nil {
		logger.Error().Err(err).Msg("failed to start HTTP command")
		return nil, errors.Wrap(err, errors.ErrorTypeSpawn, "failed to start HTTP command").
			WithContext("program", cmd.Args[0])
	}

	buf, readErr := buffer.Capture(stdout, r.chunkSize)
	// Wait closes the pipe, so it runs on every path after a successful Start.
	waitErr := proc.Wait()
	duration := time.Since(startTime)

	if readErr != nil {
		logger.Error().Err(readErr).Dur("duration", duration).Msg("failed to read HTTP command output")
		return nil, errors.Wrap(readErr, errors.ErrorTypeSpawn, "failed to read HTTP command output").
			WithContext("program", cmd.Args[0])
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Warn().Err(ctxErr).Dur("duration", duration).Msg("HTTP command interrupted")
		return nil, errors.Wrap(ctxErr, errors.ErrorTypeTransport, "HTTP command interrupted").
			WithContext("program", cmd.Args[0]).
			WithContext("interrupted", true)
	}

	if waitErr != nil {
		event := logger.Warn().Err(waitErr).Int("bytes", buf.Len())
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			event = event.Int("exit_code", exitErr.ExitCode())
		}
		event.Msg("HTTP command exited with an error")
	}

	logger.Debug().
		Int("bytes", buf.Len()).
		Dur("duration", duration).
		Msg("HTTP command completed")

	return buf, nil
}
