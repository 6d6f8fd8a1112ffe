// Package source selects where tasks are fetched from.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/intheam"
	"github.com/harrisonrobin/taskdump/pkg/model"
	"github.com/harrisonrobin/taskdump/pkg/taskwarrior"
)

// Source retrieves every task from one task store.
type Source interface {
	// Name identifies the source, e.g. "taskwarrior".
	Name() string
	FetchTasks(ctx context.Context) (model.Collection, error)
}

type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Config describes which source to use and how to reach it.
type Config struct {
	Kind Kind

	// Local
	TaskBinary string
	Filter     []string

	// Remote
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// New builds the source described by cfg.
func New(cfg Config) (Source, error) {
	switch cfg.Kind {
	case KindLocal, "":
		return taskwarrior.NewClient(cfg.TaskBinary, taskwarrior.WithFilter(cfg.Filter...)), nil

	case KindRemote:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, failure.New(failure.CodeConfigInvalid, "an api key is required for the remote source (use --apiKey or `taskdump auth`)", nil)
		}
		funcs := []intheam.OptionFunc{}
		if cfg.APIURL != "" {
			baseURL, err := url.Parse(cfg.APIURL)
			if err != nil {
				return nil, failure.New(failure.CodeConfigInvalid, fmt.Sprintf("invalid api url %q", cfg.APIURL), err)
			}
			if baseURL.Scheme == "" || baseURL.Host == "" {
				return nil, failure.New(failure.CodeConfigInvalid, fmt.Sprintf("invalid api url %q: scheme and host required", cfg.APIURL), nil)
			}
			funcs = append(funcs, intheam.WithBaseURL(baseURL))
		}
		if cfg.Timeout > 0 {
			funcs = append(funcs, intheam.WithTimeout(cfg.Timeout))
		}
		return intheam.New(cfg.APIKey, funcs...), nil

	default:
		return nil, failure.New(failure.CodeConfigInvalid, fmt.Sprintf("unknown source %q (expected %q or %q)", cfg.Kind, KindLocal, KindRemote), nil)
	}
}
