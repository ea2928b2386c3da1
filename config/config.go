package config

import "time"

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no complete
		// request was received in this period of time, the connection is closed without
		// a response.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
	}

	Pool struct {
		// Workers is the number of long-lived workers serving connections.
		Workers int
		// QueueSize bounds the number of accepted connections waiting for a free worker.
		// Connections arriving at a full queue are closed without a single byte written.
		QueueSize int
		// UtilizationWarn is the share of busy workers above which the accept loop
		// reports the pool status.
		UtilizationWarn float64
	}

	HTTP struct {
		// MaxRequestsPerConnection caps how many requests a single keep-alive connection
		// may carry.
		MaxRequestsPerConnection int
		// MaxHeadersSize is how many bytes may be accumulated without meeting the end
		// of the headers section.
		MaxHeadersSize int
		// MaxFrameSize limits headers and the declared body taken together.
		MaxFrameSize int
		// ServerName is sent in the Server header of every response.
		ServerName string
	}

	Storage struct {
		// Root is the document root. GET requests never escape it.
		Root string
		// Uploads is where the JSON uploads are persisted. It's expected to be
		// located inside Root, so uploads are downloadable afterwards.
		Uploads string
	}
)

// Config holds settings used across the whole server, mainly restrictions and limits.
//
// Always start from Default() and modify the fields you need.
type Config struct {
	Host    string
	Port    uint16
	NET     NET
	Pool    Pool
	HTTP    HTTP
	Storage Storage
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Host: "127.0.0.1",
		Port: 8080,
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               30 * time.Second,
			AcceptLoopInterruptPeriod: 1 * time.Second,
		},
		Pool: Pool{
			Workers:         10,
			QueueSize:       50,
			UtilizationWarn: 0.7,
		},
		HTTP: HTTP{
			MaxRequestsPerConnection: 100,
			MaxHeadersSize:           8192,
			MaxFrameSize:             1024 * 1024,
			ServerName:               "Multi-threaded HTTP Server",
		},
		Storage: Storage{
			Root:    "resources",
			Uploads: "resources/uploads",
		},
	}
}
