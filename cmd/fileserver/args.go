package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/indigo-web/fileserver/config"
	"github.com/spf13/pflag"
)

const usage = `Usage: fileserver [flags] [port [host [maxThreads]]]

Positional arguments:
  port        port to listen on (default 8080)
  host        address to bind to (default 127.0.0.1)
  maxThreads  number of workers serving connections (default 10)

Flags:
`

var (
	errBadPort    = errors.New("port must be a number")
	errBadWorkers = errors.New("max threads must be a number")
)

// parseArgs builds the config out of the command line. Positional arguments may be
// omitted from the end; flags may appear anywhere.
func parseArgs(argv []string, output io.Writer) (*config.Config, error) {
	cfg := config.Default()

	flags := pflag.NewFlagSet("fileserver", pflag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&cfg.Storage.Root, "root", cfg.Storage.Root, "document root directory")
	flags.StringVar(&cfg.Storage.Uploads, "uploads", cfg.Storage.Uploads, "directory for uploaded JSON documents")
	flags.Usage = func() {
		_, _ = fmt.Fprint(output, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(argv); err != nil {
		return nil, err
	}

	positional := flags.Args()
	if len(positional) > 3 {
		return nil, fmt.Errorf("unexpected arguments: %v", positional[3:])
	}

	if len(positional) > 0 {
		port, err := strconv.ParseUint(positional[0], 10, 16)
		if err != nil {
			return nil, errBadPort
		}

		cfg.Port = uint16(port)
	}

	if len(positional) > 1 {
		cfg.Host = positional[1]
	}

	if len(positional) > 2 {
		workers, err := strconv.Atoi(positional[2])
		if err != nil || workers < 1 {
			return nil, errBadWorkers
		}

		cfg.Pool.Workers = workers
	}

	return cfg, nil
}
