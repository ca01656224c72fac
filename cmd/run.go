// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	rawzip "github.com/hashicorp/go-rawzip"
)

// CLI are the cli parameters for the gorawzip binary
type CLI struct {
	Archive           string           `arg:"" name:"archive" help:"Path to the zip/jar archive." type:"existingfile"`
	Destination       string           `arg:"" name:"destination" default:"." help:"Output directory."`
	Concurrency       int              `short:"j" optional:"" default:"10" help:"Maximum number of entries extracted at the same time."`
	CreateDestination bool             `short:"c" help:"Create destination directory if it does not exist."`
	List              bool             `short:"l" help:"List archive entries instead of extracting."`
	MaxEntrySize      int64            `optional:"" default:"1073741824" help:"Maximum decompressed size per entry (in bytes). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"1073741824" help:"Maximum input size (in bytes). (disable check: -1)"`
	NoOverwrite       bool             `short:"n" help:"Never overwrite existing files."`
	Progress          bool             `short:"p" optional:"" help:"Print extraction progress."`
	Telemetry         bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run is the entrypoint into gorawzip as a cli tool
func Run(version, commit, date string) {
	ctx := context.Background()
	var cli CLI
	kong.Parse(&cli,
		kong.Description("A raw zip/jar extraction utility"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hook
	telemetryToLog := func(ctx context.Context, td *rawzip.TelemetryData) {
		if cli.Telemetry {
			logger.Info("extraction finished", "telemetry", td)
		}
	}

	// setup progress reporting
	progressToStderr := func(completed, total int) {
		if cli.Progress {
			fmt.Fprintf(os.Stderr, "\r%d/%d", completed, total)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	// process cli params
	archive, err := rawzip.Open(cli.Archive,
		rawzip.WithConcurrency(cli.Concurrency),
		rawzip.WithCreateDestination(cli.CreateDestination),
		rawzip.WithLogger(logger),
		rawzip.WithMaxEntrySize(cli.MaxEntrySize),
		rawzip.WithMaxInputSize(cli.MaxInputSize),
		rawzip.WithOverwrite(!cli.NoOverwrite),
		rawzip.WithProgress(progressToStderr),
		rawzip.WithTelemetryHook(telemetryToLog),
	)
	if err != nil {
		logger.Error("opening archive failed", "err", err)
		os.Exit(-1)
	}

	// list entries
	if cli.List {
		for _, e := range archive.Entries() {
			fmt.Println(e.Name)
		}
		return
	}

	// extract archive
	report, err := archive.ExtractAll(ctx, cli.Destination)
	if err != nil {
		logger.Error("error during extraction", "err", err)
		os.Exit(-1)
	}
	for _, d := range report.Diagnostics {
		logger.Warn("entry skipped", "detail", d.String())
	}
	if report.Failed > 0 {
		logger.Warn("extraction finished with failures", "extracted", report.Extracted, "failed", report.Failed)
	}
}
