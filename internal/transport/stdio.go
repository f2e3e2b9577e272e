package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/toolbridge/internal/types"
)

// StdioConfig configures the stdio transport. With an empty Command the
// server speaks on this process's own stdin/stdout; otherwise the command
// is spawned and the server talks to it over its pipes.
type StdioConfig struct {
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Stdio serves an MCP server over a pair of byte streams.
type Stdio struct {
	*Conn
	cfg StdioConfig
}

// NewStdio returns a stdio transport.
func NewStdio(cfg StdioConfig) *Stdio {
	return &Stdio{Conn: NewConn(KindStdio, nil), cfg: cfg}
}

func (s *Stdio) Start(ctx context.Context, server *mcp.Server) error {
	s.mu.Lock()
	running := s.session != nil
	s.mu.Unlock()
	if running {
		return nil
	}

	if s.cfg.Command == "" {
		s.t = &mcp.StdioTransport{}
		return s.Conn.Start(ctx, server)
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Env = childEnv(s.cfg.Env)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &types.TransportStartError{Transport: KindStdio, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &types.TransportStartError{Transport: KindStdio, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &types.TransportStartError{Transport: KindStdio, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &types.TransportStartError{Transport: KindStdio, Err: fmt.Errorf("spawning %s: %w", s.cfg.Command, err)}
	}
	go logStderr(s.cfg.Command, stderr)

	s.t = &mcp.IOTransport{Reader: stdout, Writer: stdin}
	if err := s.Conn.Start(ctx, server); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}
	s.mu.Lock()
	s.onClose = func() error { return stopChild(cmd, stdin) }
	s.mu.Unlock()
	return nil
}

// childEnv is env plus the parent's PATH, so the command can still be found
// and can find its own helpers.
func childEnv(env map[string]string) []string {
	out := make([]string, 0, len(env)+1)
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	if _, ok := env["PATH"]; !ok {
		out = append(out, "PATH="+os.Getenv("PATH"))
	}
	return out
}

func logStderr(command string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		slog.Debug("stdio child stderr", "command", command, "line", scanner.Text())
	}
}

// stopChild closes the child's stdin and waits briefly for it to exit
// before killing it.
func stopChild(cmd *exec.Cmd, stdin io.Closer) error {
	_ = stdin.Close()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("waiting for stdio child: %w", err)
		}
		return nil
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-done
		return nil
	}
}
