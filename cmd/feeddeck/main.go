package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"feeddeck/internal/app"
	"feeddeck/internal/config"
	"feeddeck/internal/coordinator"
	"feeddeck/internal/feedapi"
	"feeddeck/internal/opml"
	"feeddeck/internal/stats"
	"feeddeck/internal/storage"
	"feeddeck/internal/tui"
	"feeddeck/internal/urlstate"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogPath)

	client := feedapi.NewClient(cfg.APIBaseURL, nil)

	if len(os.Args) > 1 {
		os.Exit(runCommand(os.Args[1:], client, log))
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	service := app.NewService(client, repo)
	coord := coordinator.New(service)
	defer coord.Close()

	agg := stats.New(client)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	location, err := service.LoadLocation(ctx)
	if err != nil {
		log.Warn("load saved location", "error", err)
		location = ""
	}
	cached, err := service.CachedItems(ctx, cfg.PageSize)
	cancel()
	if err != nil {
		log.Warn("load cached items", "error", err)
	}

	model := tui.NewModel(service, coord, agg, cfg.PageSize)
	model.SetLogger(log)
	model.SetCachedItems(cached)

	writer := urlstate.NewWriter(location, func(encoded string) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveLocation(saveCtx, encoded)
	})
	model.SetLocation(writer, urlstate.NewSeeder(location), location)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error("tui error", "error", err)
		os.Exit(1)
	}
}

// runCommand handles the non-interactive subcommands: OPML import with
// progress polling, and OPML export to stdout.
func runCommand(args []string, client *feedapi.Client, log *slog.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch args[0] {
	case "import":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: feeddeck import <file.opml>")
			return 2
		}
		payload, err := os.ReadFile(args[1])
		if err != nil {
			log.Error("read opml file", "path", args[1], "error", err)
			return 1
		}

		poller := opml.NewPoller(client)
		job, err := poller.Run(ctx, feedapi.ImportRequest{OPML: payload}, func(j feedapi.ImportJob) {
			if j.TotalFeeds > 0 {
				fmt.Fprintf(os.Stderr, "importing: %d/%d feeds\n", j.ProcessedFeeds, j.TotalFeeds)
			}
		})
		if err != nil {
			log.Error("opml import", "error", err)
			return 1
		}
		if job.Status == feedapi.ImportFailed {
			fmt.Fprintf(os.Stderr, "import failed: %s\n", job.Error)
			return 1
		}
		fmt.Printf("imported %d feeds\n", job.ProcessedFeeds)
		return 0

	case "export":
		payload, err := client.ExportOPML(ctx)
		if err != nil {
			log.Error("opml export", "error", err)
			return 1
		}
		if _, err := os.Stdout.Write(payload); err != nil {
			log.Error("write opml", "error", err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		return 2
	}
}

// newLogger writes structured logs to the configured file, or discards
// them so log lines never corrupt the terminal UI.
func newLogger(path string) *slog.Logger {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", path, err)
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
