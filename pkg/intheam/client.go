// Package intheam fetches tasks from a remote Taskwarrior web API such as inthe.am.
package intheam

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskdump/pkg/auth"
	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/model"
)

const (
	// Name identifies this source in file names and logs.
	Name = "intheam"

	tasksPath = "/api/v2/tasks/"

	// MaxResponseSize caps the body read from the API.
	MaxResponseSize = 64 << 20
)

type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	maxBodySize int64
}

// New returns a client authenticating every request with apiKey.
func New(apiKey string, funcs ...OptionFunc) *Client {
	opts := NewOptions(funcs...)

	httpClient := *opts.HTTPClient
	httpClient.Transport = auth.NewTransport(apiKey, opts.HTTPClient.Transport)
	httpClient.Timeout = opts.Timeout

	return &Client{
		baseURL:     opts.BaseURL,
		httpClient:  &httpClient,
		maxBodySize: MaxResponseSize,
	}
}

func (c *Client) Name() string {
	return Name
}

type tasksEnvelope struct {
	Tasks json.RawMessage `json:"tasks"`
}

// FetchTasks issues a single GET for all tasks and unwraps the response envelope.
// There is no retry.
func (c *Client) FetchTasks(ctx context.Context) (model.Collection, error) {
	endpoint := c.baseURL.JoinPath(tasksPath)

	slog.DebugContext(ctx, "new api request",
		slog.String("method", http.MethodGet),
		slog.String("path", endpoint.Path),
		slog.String("host", endpoint.Host),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, failure.SourceUnavailable("could not build tasks request", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failure.Newf(failure.CodeSourceUnavailable, err, "GET %s", endpoint.Redacted())
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, failure.Newf(failure.CodeSourceUnavailable, errors.WithStack(err),
			"GET %s: unexpected response code %d", endpoint.Redacted(), res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBodySize+1))
	if err != nil {
		return nil, failure.SourceUnavailable("could not read tasks response", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, failure.Newf(failure.CodeMalformedResponse, nil, "tasks response exceeds %d bytes", c.maxBodySize)
	}

	tasks, err := decodeEnvelope(body)
	if err != nil {
		return nil, failure.MalformedResponse("failed to decode tasks response", err)
	}

	slog.DebugContext(ctx, "api tasks decoded", slog.Int("tasks", len(tasks)))

	return tasks, nil
}

func decodeEnvelope(body []byte) (model.Collection, error) {
	var envelope tasksEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.WithStack(err)
	}
	if envelope.Tasks == nil {
		return nil, errors.New(`response has no "tasks" field`)
	}
	if !gjson.ParseBytes(envelope.Tasks).IsArray() {
		return nil, errors.New(`"tasks" must be an array`)
	}
	return model.ParseCollection(envelope.Tasks)
}
