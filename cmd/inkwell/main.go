package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-blog/inkwell"
	"github.com/inkwell-blog/inkwell/store"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	urlFlag            string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Article DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&urlFlag, "url", "", "Public base URL of the site (overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config := inkwell.DefaultConfig()
	if configFilenameFlag != "" {
		var err error
		if config, err = inkwell.LoadConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not load config file")
		}
	}
	if portFlag != 0 {
		config.Port = portFlag
	}
	if dbFilenameFlag != "" {
		config.DBPath = dbFilenameFlag
	}
	if urlFlag != "" {
		config.BlogURL = urlFlag
	}
	if config.DBPath == "memory" {
		config.DBPath = "file::memory:?cache=shared"
	}

	// a config that can serve nothing is a startup failure, not a
	// per-request condition
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	st, err := store.Open(config.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", config.DBPath).Msg("Could not open article store")
	}
	defer st.Close()

	server := inkwell.NewServer(config, st, &log.Logger)
	if err := server.Reload(context.Background()); err != nil {
		log.Error().Err(err).Msg("Could not populate caches, serving from store until refresh")
	}

	log.Info().Msgf("Serving %s on port %v", config.BlogURL, config.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Port), server.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
