// unifiedd runs OCR and extraction in one process: a receipt image upload
// comes back as structured fields plus the raw OCR text.
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
	"github.com/instant-receipts/extraction/internal/ocr"
	"github.com/instant-receipts/extraction/internal/server"
)

const version = "1.0.0"

func main() {
	fs := ff.NewFlagSet("unifiedd")
	var (
		addr      = fs.StringLong("addr", ":8080", "HTTP listen address")
		lang      = fs.StringLong("lang", "eng", "tesseract recognition language")
		tesseract = fs.StringLong("tesseract", "tesseract", "tesseract binary name or path")
		tessdata  = fs.StringLong("tessdata-dir", "", "tessdata directory (optional)")
		psm       = fs.IntLong("psm", 0, "tesseract page segmentation mode (0 = default)")
		authUser  = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass  = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel  = fs.StringLong("log-level", "info", "log level: debug, info, warn, error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("UNIFIEDD"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	engine := ocr.NewEngine(ocr.Config{
		Tesseract:   *tesseract,
		Lang:        *lang,
		TessdataDir: *tessdata,
		PSM:         *psm,
	}, logger)
	extractor := extract.New(logger)

	srv := server.New(server.Config{
		Service: "unified",
		Version: version,
		Auth:    server.BasicAuth{Username: *authUser, Password: *authPass},
	}, engine, extractor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: *addr, Handler: srv}
	go func() {
		logger.Info("unifiedd.listening", "addr", *addr, "version", version, "lang", *lang)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("unifiedd.serve.failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("unifiedd.shutting_down")
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
