package client

import (
	"net/http"
	"time"
)

type Option func(*Options)

type Options struct {
	Endpoint  string
	Token     string
	UserAgent string

	// HTTP relevant options
	RequestTimeout time.Duration
	HTTPClient     *http.Client

	// Vendor-extension namespaces this service accepts
	Namespaces []string
}

func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
	}
}

func WithToken(token string) Option {
	return func(o *Options) {
		o.Token = token
	}
}

func WithUserAgent(ua string) Option {
	return func(o *Options) {
		o.UserAgent = ua
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = d
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

func WithAcceptedNamespaces(namespaces ...string) Option {
	return func(o *Options) {
		o.Namespaces = append(o.Namespaces, namespaces...)
	}
}
