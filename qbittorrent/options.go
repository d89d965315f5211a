package qbittorrent

import "time"

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	skipVerify bool
	basicUser  string
	basicPass  string
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *clientOptions) {
		o.skipVerify = true
	}
}

// WithBasicAuth sets credentials for a reverse proxy in front of the Web UI.
func WithBasicAuth(user, pass string) Option {
	return func(o *clientOptions) {
		o.basicUser = user
		o.basicPass = pass
	}
}
