package intheam

import (
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://inthe.am"
	DefaultTimeout = time.Minute
)

type Options struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
	Timeout    time.Duration
}

type OptionFunc func(opts *Options)

func WithBaseURL(baseURL *url.URL) OptionFunc {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) OptionFunc {
	return func(opts *Options) {
		opts.HTTPClient = httpClient
	}
}

// WithTimeout bounds the whole request, body included. Zero disables the
// limit. It takes precedence over the timeout of a client set with WithHTTPClient.
func WithTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func NewOptions(funcs ...OptionFunc) *Options {
	baseURL, _ := url.Parse(DefaultBaseURL)
	opts := &Options{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Timeout:    DefaultTimeout,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return opts
}
