package builtin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/spachava753/toolbridge/internal/types"
)

// ExecuteCommandInput represents the parameters for the execute command tool
type ExecuteCommandInput struct {
	Command string  `json:"command" jsonschema:"required,description=Shell command to run"`
	Timeout flexInt `json:"timeout,omitempty" jsonschema:"description=Seconds to wait before killing the command; 0 waits indefinitely"`
}

func (t tools) executeCommand(ctx context.Context, in ExecuteCommandInput) (*types.ToolCallResult, error) {
	if strings.TrimSpace(in.Command) == "" {
		return types.ErrorResult("command parameter is required"), nil
	}
	if in.Timeout < 0 {
		return types.ErrorResult("timeout must not be negative"), nil
	}
	if in.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(in.Timeout)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", in.Command)
	cmd.Dir = t.root
	cmd.WaitDelay = 2 * time.Second
	start := time.Now()
	out, err := cmd.CombinedOutput()
	slog.Debug("executed command", "command", in.Command, "duration", time.Since(start), "err", err)

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return types.ErrorResult(fmt.Sprintf("command timed out after %ds\n%s", in.Timeout, out)), nil
		case errors.As(err, &exitErr):
			return types.ErrorResult(fmt.Sprintf("exit status %d\n%s", exitErr.ExitCode(), out)), nil
		default:
			return types.ErrorResult(fmt.Sprintf("Error running command: %s", err)), nil
		}
	}
	return types.TextResult(string(out)), nil
}
