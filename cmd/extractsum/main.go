package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localrivet/extractsum"
	"github.com/localrivet/extractsum/internal/config"
	"github.com/localrivet/extractsum/internal/errortypes"
	"github.com/localrivet/extractsum/internal/logger"
)

const usage = `Usage:
  extractsum [-config path] [-l N] [-t text]   summarize text (reads stdin without -t)
  extractsum serve [-config path]              run the web form and JSON API
  extractsum mcp [-config path]                run the MCP tool server on stdio
  extractsum init [-config path]               write a default configuration file
`

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	appLogger := setupLogging(stderr)

	command := "summarize"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "mcp" || args[0] == "init") {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("extractsum", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", config.DefaultConfigFilename, "path to the configuration file")
	var length int
	var text string
	if command == "summarize" {
		fs.IntVar(&length, "l", 0, "number of sentences to return (0 uses the configured default)")
		fs.IntVar(&length, "length", 0, "alias for -l")
		fs.StringVar(&text, "t", "", "text content to summarize")
		fs.StringVar(&text, "text_content", "", "alias for -t")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return logger.ExitOK
		}
		return logger.ExitUsage
	}

	if command == "init" {
		err := writeDefaultConfig(*configPath, stdout)
		if err != nil {
			appLogger.LogError(err)
		}
		return logger.ExitCode(err)
	}

	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		appLogger.LogError(errortypes.ConfigError(err, "failed to load configuration").WithField("path", *configPath))
		return logger.ExitFailure
	}

	appLogger = logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format, stderr)
	logger.SetDefaultLogger(appLogger)

	svc, err := extractsum.NewService(extractsum.Options{
		Config: cfg,
		Logger: logger.NewSlog(cfg.Logging.Level, cfg.Logging.Format, stderr),
	})
	if err != nil {
		appLogger.LogError(err)
		return logger.ExitCode(err)
	}
	defer svc.Close()

	switch command {
	case "serve":
		err = serve(svc, cfg, appLogger.WithContext("http"))
	case "mcp":
		err = serveMCP(svc, appLogger.WithContext("mcp"))
	default:
		err = summarize(svc, text, length, stdin, stdout)
	}

	if err != nil {
		appLogger.LogError(err)
	}
	return logger.ExitCode(err)
}

// setupLogging creates the logger used until the configuration is loaded.
func setupLogging(out io.Writer) *logger.Logger {
	logCfg := logger.DefaultConfig()
	logCfg.Output = out
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		logCfg.Level = logger.ParseLevel(levelStr)
	}

	appLogger := logger.New(logCfg)
	logger.SetDefaultLogger(appLogger)
	return appLogger
}

// writeDefaultConfig saves the default configuration to path. An existing
// file is left alone.
func writeDefaultConfig(path string, stdout io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return errortypes.ValidationError(fmt.Errorf("%s already exists", path), "refusing to overwrite configuration").
			WithField("path", path)
	}

	if err := config.NewConfig().SaveToFile(path); err != nil {
		return errortypes.ConfigError(err, "failed to write configuration").WithField("path", path)
	}
	fmt.Fprintf(stdout, "Wrote default configuration to %s\n", path)
	return nil
}

// summarize prints the summary of text, or of stdin when text is empty,
// one sentence per line.
func summarize(svc *extractsum.Service, text string, length int, stdin io.Reader, stdout io.Writer) error {
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return errortypes.InternalError(err, "failed to read standard input")
		}
		text = string(data)
	}

	summary, err := svc.SummarizeAndRecord(context.Background(), text, length)
	if err != nil {
		return err
	}

	for _, sentence := range summary.Texts() {
		if _, err := fmt.Fprintln(stdout, sentence); err != nil {
			return errortypes.InternalError(err, "failed to write summary")
		}
	}
	return nil
}

// serve runs the HTTP server until SIGINT or SIGTERM.
func serve(svc *extractsum.Service, cfg *extractsum.Config, log *logger.Logger) error {
	handler, err := svc.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errortypes.ConfigError(err, "HTTP server failed").WithField("addr", cfg.HTTP.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Received shutdown signal, terminating gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errortypes.InternalError(err, "HTTP server shutdown failed")
	}
	log.Info("Shutdown complete")
	return nil
}

// serveMCP runs the MCP tool server on stdio. A signal closes the service
// and exits, since the stdio transport only returns when stdin closes.
func serveMCP(svc *extractsum.Service, log *logger.Logger) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")
		if err := svc.Close(); err != nil {
			log.LogError(err)
			os.Exit(logger.ExitCode(err))
		}
		log.Info("Shutdown complete")
		os.Exit(logger.ExitOK)
	}()

	log.Info("Starting MCP server on stdio")
	if err := svc.StartMCP(); err != nil {
		return errortypes.InternalError(err, "MCP server failed")
	}
	return nil
}
