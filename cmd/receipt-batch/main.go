// receipt-batch runs OCR + extraction over a directory of receipt images and
// writes an XLSX summary. With --watch it keeps processing files as they
// appear.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/instant-receipts/extraction/internal/export"
	"github.com/instant-receipts/extraction/internal/extract"
	"github.com/instant-receipts/extraction/internal/ingest"
	"github.com/instant-receipts/extraction/internal/ocr"
)

func main() {
	fs := ff.NewFlagSet("receipt-batch")
	var (
		dir       = fs.StringLong("dir", "", "directory of receipt images (required)")
		out       = fs.StringLong("out", "", "output XLSX path (default: <parent of dir>/receipts.xlsx)")
		exts      = fs.StringLong("exts", "", "comma-separated image extensions (default: jpg,jpeg,png,tif,tiff,bmp)")
		watch     = fs.BoolLong("watch", "keep watching the directory for new files")
		lang      = fs.StringLong("lang", "eng", "tesseract recognition language")
		tesseract = fs.StringLong("tesseract", "tesseract", "tesseract binary name or path")
		logLevel  = fs.StringLong("log-level", "info", "log level: debug, info, warn, error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_BATCH"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *dir == "" {
		fmt.Fprintln(os.Stderr, "error: --dir is required")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "receipts.xlsx")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*logLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	engine := ocr.NewEngine(ocr.Config{Tesseract: *tesseract, Lang: *lang}, logger)
	extractor := extract.New(logger)
	exporter := export.NewService(logger)
	extSet := ingest.ExtSet(*exts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &batchRunner{
		logger:    logger,
		engine:    engine,
		extractor: extractor,
		exporter:  exporter,
		out:       *out,
	}

	if !*watch {
		files, err := ingest.ScanDirectory(*dir, extSet)
		if err != nil {
			logger.Error("batch.scan.failed", "dir", *dir, "error", err)
			os.Exit(1)
		}
		for _, f := range files {
			runner.process(ctx, f)
		}
		if err := runner.flush(); err != nil {
			logger.Error("batch.export.failed", "out", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("batch.done", "files", len(files), "out", *out)
		return
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        *dir,
		AllowedExts: extSet,
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	})
	if err != nil {
		logger.Error("batch.watch.failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("batch.watching", "dir", *dir, "out", *out)

	for {
		select {
		case <-ctx.Done():
			if err := runner.flush(); err != nil {
				logger.Error("batch.export.failed", "out", *out, "error", err)
			}
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			runner.process(ctx, path)
			// Rewrite the workbook after each file so a reader always sees
			// the latest state.
			if err := runner.flush(); err != nil {
				logger.Error("batch.export.failed", "out", *out, "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Warn("batch.watch.error", "error", err)
			}
		}
	}
}

type batchRunner struct {
	logger    *slog.Logger
	engine    *ocr.Engine
	extractor *extract.Extractor
	exporter  *export.Service
	out       string

	rows []export.Row
	seen map[string]struct{}
}

func (b *batchRunner) process(ctx context.Context, path string) {
	if b.seen == nil {
		b.seen = map[string]struct{}{}
	}
	if _, dup := b.seen[path]; dup {
		return
	}
	b.seen[path] = struct{}{}

	doc, err := b.engine.Recognize(ctx, "", path)
	if err != nil {
		b.logger.Warn("batch.ocr.failed", "path", path, "error", err)
		return
	}
	res, err := b.extractor.Extract(doc)
	if err != nil {
		b.logger.Warn("batch.extract.failed", "path", path, "error", err)
		return
	}
	b.rows = append(b.rows, export.Row{File: path, Result: res})
	b.logger.Info("batch.file.ok",
		"path", path,
		"confidence", res.Confidence,
		"status", res.Status,
	)
}

func (b *batchRunner) flush() error {
	data, err := b.exporter.ResultsXLSX(b.rows)
	if err != nil {
		return err
	}
	return os.WriteFile(b.out, data, 0o644)
}
