// Package pipeline runs a single export: fetch, extract projects, resolve the
// output path and write the document.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/harrisonrobin/taskdump/pkg/model"
	"github.com/harrisonrobin/taskdump/pkg/source"
	"github.com/harrisonrobin/taskdump/pkg/util"
)

// State is a step of the export.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateResolving  State = "resolving"
	StateWriting    State = "writing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// DefaultFormat returns the file name template used when none is configured.
func DefaultFormat(sourceName string) string {
	return util.DatePlaceholder + "-" + sourceName + ".json"
}

// Target is where the export goes.
type Target struct {
	// Format is the file name template; "{date}" is replaced by the export date.
	Format string
	// Directory receives the file. Empty means the current directory.
	Directory string
}

// Writer persists a document. *export.Writer implements it.
type Writer interface {
	Write(ctx context.Context, path string, doc model.Document) error
}

// Result is the outcome of a run.
type Result struct {
	RunID       string
	State       State
	Transitions []State
	Path        string
	Tasks       int
	Projects    int
	Err         error
}

type Pipeline struct {
	source source.Source
	writer Writer
	target Target
	now    func() time.Time

	runID       string
	state       State
	transitions []State
}

type OptionFunc func(p *Pipeline)

// WithClock overrides the clock used to date the export.
func WithClock(now func() time.Time) OptionFunc {
	return func(p *Pipeline) {
		p.now = now
	}
}

func New(src source.Source, writer Writer, target Target, funcs ...OptionFunc) *Pipeline {
	p := &Pipeline{
		source: src,
		writer: writer,
		target: target,
		now:    time.Now,
		state:  StateIdle,
	}
	for _, fn := range funcs {
		fn(p)
	}
	return p
}

// State returns the current state of the pipeline.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes the export once. Any failure stops the run and is returned in
// Result.Err; nothing is retried and nothing is written unless every earlier
// step succeeded.
func (p *Pipeline) Run(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString()}

	if p.state != StateIdle {
		res.State = p.state
		res.Transitions = append([]State(nil), p.transitions...)
		if p.state.Terminal() {
			res.Err = errors.Errorf("pipeline already ran (state %s)", p.state)
		} else {
			res.Err = errors.Errorf("pipeline is running (state %s)", p.state)
		}
		return res
	}

	startedAt := p.now()
	p.runID = res.RunID

	format := p.target.Format
	if format == "" {
		format = DefaultFormat(p.source.Name())
	}

	var (
		tasks    model.Collection
		projects model.Projects
		path     string
	)

	steps := []struct {
		state State
		run   func() error
	}{
		{StateFetching, func() (err error) {
			tasks, err = p.source.FetchTasks(ctx)
			return err
		}},
		{StateExtracting, func() error {
			projects = model.ExtractProjects(tasks)
			return nil
		}},
		{StateResolving, func() (err error) {
			path, err = util.ResolvePath(format, p.target.Directory, startedAt)
			return err
		}},
		{StateWriting, func() error {
			return p.writer.Write(ctx, path, model.Document{Tasks: tasks, Projects: projects})
		}},
	}

	for _, step := range steps {
		p.transition(ctx, step.state)
		if err := step.run(); err != nil {
			p.transition(ctx, StateFailed)
			slog.DebugContext(ctx, "export failed", slog.String("run_id", res.RunID), slog.Any("error", err))
			return p.result(res, path, tasks, projects, err)
		}
	}

	p.transition(ctx, StateDone)
	slog.InfoContext(ctx, "export written",
		slog.String("run_id", res.RunID),
		slog.String("source", p.source.Name()),
		slog.String("path", path),
		slog.Int("tasks", len(tasks)),
		slog.Int("projects", len(projects)),
		slog.Duration("elapsed", p.now().Sub(startedAt)),
	)

	return p.result(res, path, tasks, projects, nil)
}

func (p *Pipeline) transition(ctx context.Context, next State) {
	slog.DebugContext(ctx, "export state", slog.String("run_id", p.runID), slog.String("from", string(p.state)), slog.String("to", string(next)))
	p.state = next
	p.transitions = append(p.transitions, next)
}

func (p *Pipeline) result(res Result, path string, tasks model.Collection, projects model.Projects, err error) Result {
	res.State = p.state
	res.Transitions = append([]State(nil), p.transitions...)
	res.Tasks = len(tasks)
	res.Projects = len(projects)
	res.Err = err
	if err == nil {
		res.Path = path
	}
	return res
}
