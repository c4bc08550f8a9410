package api

import (
	"github.com/okian/lingua/pkg/logger"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used for 5xx responses.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps request bodies. Values below 1 are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
