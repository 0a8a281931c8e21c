package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/definite-d/complendar/internal/config"
	"github.com/definite-d/complendar/internal/convert"
	appLog "github.com/definite-d/complendar/internal/log"
	"github.com/definite-d/complendar/internal/scheduler"
	"github.com/definite-d/complendar/internal/sheets"
	"github.com/definite-d/complendar/internal/table"
	"github.com/definite-d/complendar/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	link       string
	output     string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	conv := convert.New(sheets.NewFetcher(), convert.Options{
		Probes: table.Probes{Name: conf.NameProbe, Birthday: conf.BirthdayProbe},
	})

	// One-shot mode: convert a single link and exit.
	if flags.link != "" {
		if err := runOnce(conv, flags.link, flags.output); err != nil {
			appLog.Error("conversion failed", err)
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	runServer(conf, conv)
}

// runOnce fetches and converts one spreadsheet, prints the guessed
// headers, and writes the calendar file.
func runOnce(conv *convert.Converter, link, output string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("Fetching CSV from:", link)
	result, err := conv.Convert(ctx, link)
	if err != nil {
		return err
	}

	fmt.Printf("Guessed headers\n→ Name: %q\n→ Birthday: %q\n",
		result.Headers.NameColumn, result.Headers.DateColumn)

	dir, name := ".", convert.FileName()
	if output != "" {
		d, f := filepath.Split(output)
		if d != "" {
			dir = d
		}
		name = f
	}

	path, err := convert.WriteFile(dir, name, result.ICS)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Done. %d birthdays (%d rows skipped). Saved to %s\n",
		result.Events, result.Skipped, path)
	return nil
}

// runServer starts the web UI and the refresh scheduler, then blocks
// until SIGINT/SIGTERM.
func runServer(conf *config.Config, conv *convert.Converter) {
	appLog.Info("complendar starting",
		"listen", conf.Listen,
		"temp_dir", conf.TempDir,
		"output_dir", conf.OutputDir,
		"refresh", conf.RefreshCron,
		"sheets", len(conf.Sheets),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	sched := scheduler.New(conf, conv)
	if err := sched.Start(); err != nil {
		appLog.Error("failed to start scheduler", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, conv).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
		}
	}

	sched.Stop()
	appLog.Info("complendar exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./complendar.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.link, "link", "", "Spreadsheet link; convert once and exit")
	flag.StringVar(&cfg.output, "o", "", "Output file for one-shot mode (default: random name)")

	flag.Parse()

	return cfg
}
