// Package executor runs registry tools as local subprocesses. The
// suggestion engine never calls into this package; execution only
// happens when a caller explicitly confirms a suggestion.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	apperrors "eda-copilot/internal/common/errors"
	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/common/metrics"
)

// Result captures one finished tool run.
type Result struct {
	Argv     []string      `json:"argv"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Runner executes a named tool with a rendered argv.
type Runner interface {
	Run(ctx context.Context, tool string, argv []string) (*Result, error)
}

// ExecRunner runs tools with os/exec under a per-run timeout.
type ExecRunner struct {
	timeout time.Duration
	log     logger.Logger
}

// NewExecRunner builds a runner. The timeout bounds each run; tools may
// declare a shorter one in the registry, in which case the caller passes
// a context already carrying it.
func NewExecRunner(timeout time.Duration, log logger.Logger) *ExecRunner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ExecRunner{timeout: timeout, log: log}
}

// Run executes argv[0] with the remaining arguments. A non-zero exit is
// reported in the result, not as an error; errors mean the process could
// not be run or was cut off by the deadline.
func (r *ExecRunner) Run(ctx context.Context, tool string, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, apperrors.NewToolExecutionFailedError(tool, errors.New("empty argv"))
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	metrics.ToolExecutionDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

	if runCtx.Err() == context.DeadlineExceeded {
		metrics.ToolExecutionsTotal.WithLabelValues(tool, "timeout").Inc()
		r.log.Warn("tool run timed out", map[string]interface{}{
			"tool":    tool,
			"timeout": r.timeout.String(),
		})
		return nil, apperrors.NewToolTimeoutError(tool)
	}

	res := &Result{
		Argv:     argv,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			metrics.ToolExecutionsTotal.WithLabelValues(tool, "failed").Inc()
			return res, nil
		}
		metrics.ToolExecutionsTotal.WithLabelValues(tool, "error").Inc()
		return nil, apperrors.NewToolExecutionFailedError(tool, err)
	}

	metrics.ToolExecutionsTotal.WithLabelValues(tool, "ok").Inc()
	return res, nil
}
