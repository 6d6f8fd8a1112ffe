package intheam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, funcs ...OptionFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	baseURL, err := url.Parse(srv.URL)
	require.NoError(t, err)

	funcs = append([]OptionFunc{WithBaseURL(baseURL), WithHTTPClient(srv.Client())}, funcs...)
	return New("my-api-key", funcs...)
}

func TestFetchTasks(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/tasks/", r.URL.Path)
		assert.Equal(t, "Token my-api-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks":[{"uuid":"1","project":"x"},{"uuid":"2","project":"y"},{"uuid":"3"}]}`))
	})

	tasks, err := client.FetchTasks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	require.Len(t, tasks, 3)
	assert.Equal(t, model.Projects{"x", "y"}, model.ExtractProjects(tasks))
	assert.Equal(t, "3", tasks[2].Get("uuid").String())
}

func TestFetchTasks_EmptyEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[]}`))
	})

	tasks, err := client.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestFetchTasks_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var requests int
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				requests++
				http.Error(w, `{"detail":"Invalid token."}`, status)
			})

			_, err := client.FetchTasks(context.Background())
			require.Error(t, err)
			assert.Equal(t, failure.CodeSourceUnavailable, failure.CodeOf(err))
			assert.Equal(t, 1, requests, "no retry")
		})
	}
}

func TestFetchTasks_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>maintenance</html>`},
		{"bare array", `[{"uuid":"1"}]`},
		{"missing tasks field", `{"results":[]}`},
		{"tasks not an array", `{"tasks":{"uuid":"1"}}`},
		{"null tasks", `{"tasks":null}`},
		{"empty body", ``},
		{"task not an object", `{"tasks":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchTasks(context.Background())
			require.Error(t, err)
			assert.Equal(t, failure.CodeMalformedResponse, failure.CodeOf(err))
		})
	}
}

func TestFetchTasks_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()

	client := New("key", WithBaseURL(baseURL))

	_, err = client.FetchTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, failure.CodeSourceUnavailable, failure.CodeOf(err))
}

func TestFetchTasks_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.FetchTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, failure.CodeSourceUnavailable, failure.CodeOf(err))
}

func TestFetchTasks_ResponseTooLarge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[{"uuid":"1"},{"uuid":"2"}]}`))
	})
	client.maxBodySize = 16

	_, err := client.FetchTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, failure.CodeMalformedResponse, failure.CodeOf(err))
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestNew_NilHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tasks":[{"uuid":"1"}]}`))
	}))
	defer srv.Close()
	baseURL, err := url.Parse(srv.URL)
	require.NoError(t, err)

	var client *Client
	require.NotPanics(t, func() {
		client = New("key", WithBaseURL(baseURL), WithHTTPClient(nil))
	})

	tasks, err := client.FetchTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestNewOptions_Defaults(t *testing.T) {
	opts := NewOptions()

	assert.Equal(t, DefaultBaseURL, opts.BaseURL.String())
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.NotNil(t, opts.HTTPClient)
	assert.Equal(t, Name, New("k").Name())
}
