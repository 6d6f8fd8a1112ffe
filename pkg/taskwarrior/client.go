package taskwarrior

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/model"
)

const (
	// Name identifies this source in file names and logs.
	Name = "taskwarrior"

	DefaultBinary = "task"
)

// Client exports tasks by running the local Taskwarrior CLI.
type Client struct {
	binary string
	filter []string
	env    []string
}

type OptionFunc func(c *Client)

// WithFilter passes a Taskwarrior filter (e.g. "project:work", "status:pending")
// ahead of the export command.
func WithFilter(filter ...string) OptionFunc {
	return func(c *Client) {
		c.filter = append(c.filter, filter...)
	}
}

// WithEnv adds variables to the environment of the task process.
func WithEnv(env ...string) OptionFunc {
	return func(c *Client) {
		c.env = append(c.env, env...)
	}
}

func NewClient(binary string, funcs ...OptionFunc) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Client{binary: binary}
	for _, fn := range funcs {
		fn(c)
	}
	return c
}

func (c *Client) Name() string {
	return Name
}

// FetchTasks runs `task [filter] export rc.hooks=0` and decodes its output.
// The process is killed if ctx is cancelled.
func (c *Client) FetchTasks(ctx context.Context) (model.Collection, error) {
	args := append(append([]string{}, c.filter...), "export", "rc.hooks=0")
	cmd := exec.CommandContext(ctx, c.binary, args...)
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	slog.DebugContext(ctx, "running taskwarrior", slog.String("binary", c.binary), slog.Any("args", args))

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, failure.SourceUnavailable("taskwarrior export interrupted", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, failure.MalformedResponse(
				fmt.Sprintf("taskwarrior command failed: exit code %d, stderr: %s",
					exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr))),
				err,
			)
		}
		return nil, failure.SourceUnavailable(fmt.Sprintf("could not run %s", c.binary), err)
	}

	tasks, err := ParseTasks(bytes.NewReader(output))
	if err != nil {
		return nil, failure.MalformedResponse("failed to decode taskwarrior output", err)
	}

	slog.DebugContext(ctx, "taskwarrior export decoded", slog.Int("tasks", len(tasks)))

	return tasks, nil
}

// ParseTasks decodes Taskwarrior export output, which must be a single JSON
// array of task objects. Empty output is an error: task always prints "[]"
// when nothing matches.
func ParseTasks(r io.Reader) (model.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return model.ParseCollection(data)
}
