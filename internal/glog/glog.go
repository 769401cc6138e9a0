// Package glog provides the package-level structured logger shared by the
// constraint system and gadgets.
package glog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Logger returns the shared zerolog.Logger, built once on first use.
func Logger() zerolog.Logger {
	once.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
			With().
			Timestamp().
			Str("pkg", "zk-keccak-addr").
			Logger()
	})
	return logger
}
