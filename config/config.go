package config

import "time"

type (
	Server struct {
		// Host and Port are joined into the address the server binds to. Both must be
		// presented in the configuration file, even if empty.
		Host string `test:"nullable"`
		Port string `test:"nullable"`
	}

	NET struct {
		// BufferSize is the capacity of the per-connection buffer. A single request line or
		// header line longer than that is rejected.
		BufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed. Zero disables it.
		ReadTimeout time.Duration `test:"nullable"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// ShutdownTimeout limits how long a graceful stop waits for the accepted connections
		// to be served. Connections still alive after that are closed.
		ShutdownTimeout time.Duration
	}

	Log struct {
		// Level is a name of the minimal level of messages to be written. See zerolog.ParseLevel.
		Level string
		// Format is either json or console.
		Format string
	}

	Metrics struct {
		// Addr enables the prometheus metrics endpoint at /metrics, if not empty.
		Addr string `test:"nullable"`
	}
)

// Config is a snapshot of all the settings, made once at startup. It must never be modified
// after the server started, as it's shared between all the connections without any
// synchronization.
type Config struct {
	Server  Server
	NET     NET
	Log     Log
	Metrics Metrics
}

// Default returns default config. Server address isn't set, as it is required to be passed
// explicitly.
func Default() *Config {
	return &Config{
		NET: NET{
			BufferSize:                4096,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			ShutdownTimeout:           10 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: FormatJSON,
		},
	}
}

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)
