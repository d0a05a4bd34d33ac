package api

import "github.com/okian/techmentor/internal/adapters/http/request"

type options struct {
	cookie         string
	maxUploadBytes int64
}

func defaultOptions() options {
	return options{
		cookie:         request.DefaultSessionCookie,
		maxUploadBytes: 10 << 20,
	}
}

// Option applies a configuration option to the Server.
type Option func(*options)

// WithSessionCookie sets the session cookie name.
func WithSessionCookie(name string) Option {
	return func(o *options) {
		if name != "" {
			o.cookie = name
		}
	}
}

// WithMaxUploadBytes bounds poster uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}
