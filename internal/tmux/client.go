// pattern: Imperative Shell

package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"projmux/internal/config"
	"projmux/internal/logging"
)

// Executor runs a tmux subcommand and returns its stdout.
type Executor func(ctx context.Context, args []string) (string, error)

// InteractiveExecutor runs a tmux subcommand attached to the caller's terminal.
type InteractiveExecutor func(ctx context.Context, args []string) error

// Client drives a local tmux server.
type Client struct {
	socket      string
	exec        Executor
	interactive InteractiveExecutor
	insideTmux  bool
	logger      *logging.ScopedLogger
}

// NewClient creates a Client that shells out to the configured tmux binary.
func NewClient(cfg config.TmuxConfig, logger *logging.ScopedLogger) *Client {
	binary := cfg.Binary
	if binary == "" {
		binary = "tmux"
	}
	return NewClientWithExecutor(cfg, logger, commandExecutor(binary), interactiveExecutor(binary))
}

// NewClientWithExecutor creates a new Client with the given executors (for testing).
func NewClientWithExecutor(cfg config.TmuxConfig, logger *logging.ScopedLogger, exec Executor, interactive InteractiveExecutor) *Client {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{
		socket:      cfg.Socket,
		exec:        exec,
		interactive: interactive,
		insideTmux:  os.Getenv("TMUX") != "",
		logger:      logger,
	}
}

// SetInsideTmux overrides detection of whether the caller runs inside a tmux client.
func (c *Client) SetInsideTmux(inside bool) {
	c.insideTmux = inside
}

func commandExecutor(binary string) Executor {
	return func(ctx context.Context, args []string) (string, error) {
		cmd := exec.CommandContext(ctx, binary, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if stderr.Len() > 0 {
				return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
			}
			return "", err
		}

		return stdout.String(), nil
	}
}

func interactiveExecutor(binary string) InteractiveExecutor {
	return func(ctx context.Context, args []string) error {
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
}

func (c *Client) args(args ...string) []string {
	if c.socket == "" {
		return args
	}
	return append([]string{"-S", c.socket}, args...)
}

// ListSessions returns all live sessions. A missing server means no sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	output, err := c.exec(ctx, c.args("list-sessions"))
	if err != nil {
		if isNoServer(err) {
			c.logger.Debug("no tmux server running")
			return []Session{}, nil
		}
		c.logger.Error("list-sessions failed", "error", err)
		return nil, fmt.Errorf("list tmux sessions: %w", err)
	}

	sessions := ParseListSessions(output)
	c.logger.Debug("listed sessions", "count", len(sessions))
	return sessions, nil
}

// HasSession reports whether a session with exactly this name exists.
func (c *Client) HasSession(ctx context.Context, name string) (bool, error) {
	_, err := c.exec(ctx, c.args("has-session", "-t", exactTarget(name)))
	if err == nil {
		return true, nil
	}
	if isNoServer(err) || strings.Contains(err.Error(), "can't find session") {
		return false, nil
	}
	return false, fmt.Errorf("check tmux session %q: %w", name, err)
}

// NewSession creates a detached session starting in dir.
func (c *Client) NewSession(ctx context.Context, name, dir string) error {
	if _, err := c.exec(ctx, c.args("new-session", "-d", "-s", name, "-c", dir)); err != nil {
		c.logger.Error("new-session failed", "session", name, "dir", dir, "error", err)
		return fmt.Errorf("create tmux session %q: %w", name, err)
	}
	c.logger.Info("created session", "session", name, "dir", dir)
	return nil
}

// Attach moves the user to the named session: switch-client when already
// inside tmux, attach-session otherwise.
func (c *Client) Attach(ctx context.Context, name string) error {
	if c.insideTmux {
		if _, err := c.exec(ctx, c.args("switch-client", "-t", exactTarget(name))); err != nil {
			return fmt.Errorf("switch to tmux session %q: %w", name, err)
		}
		c.logger.Info("switched client", "session", name)
		return nil
	}

	c.logger.Info("attaching session", "session", name)
	if err := c.interactive(ctx, c.args("attach-session", "-t", exactTarget(name))); err != nil {
		return fmt.Errorf("attach tmux session %q: %w", name, err)
	}
	return nil
}

// EnsureSession creates a detached session in dir unless one with this
// name already exists. It reports whether a session was created.
func (c *Client) EnsureSession(ctx context.Context, name, dir string) (bool, error) {
	exists, err := c.HasSession(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		c.logger.Debug("session exists", "session", name)
		return false, nil
	}
	if err := c.NewSession(ctx, name, dir); err != nil {
		return false, err
	}
	return true, nil
}

func isNoServer(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to")
}
