// extractd is the extraction-only service: it takes OCR output over HTTP and
// returns structured receipt fields.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/instant-receipts/extraction/internal/extract"
	"github.com/instant-receipts/extraction/internal/server"
)

const version = "1.0.0"

func main() {
	fs := ff.NewFlagSet("extractd")
	var (
		addr     = fs.StringLong("addr", ":8080", "HTTP listen address")
		logLevel = fs.StringLong("log-level", "info", "log level: debug, info, warn, error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EXTRACTD"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	extractor := extract.New(logger)
	srv := server.New(server.Config{
		Service: "extract",
		Version: version,
	}, nil, extractor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: *addr, Handler: srv}
	go func() {
		logger.Info("extractd.listening", "addr", *addr, "version", version)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("extractd.serve.failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("extractd.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
