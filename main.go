package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	tea "github.com/charmbracelet/bubbletea"

	"apexrun/internal/auth"
	"apexrun/internal/config"
	"apexrun/internal/export"
	"apexrun/internal/ingest"
	"apexrun/internal/server"
	"apexrun/internal/service"
	"apexrun/internal/store"
	"apexrun/internal/strava"
	"apexrun/internal/tui"
)

const usage = `apexrun - training analytics and coaching insights for runners

Usage:
  apexrun [tui]                 interactive dashboard (default)
  apexrun import PATH...        import FIT or TCX files and folders
  apexrun watch [DIR]           import new files as they appear in DIR
  apexrun sync                  fetch new runs from Strava
  apexrun serve [-addr A] [-watch DIR]
                                HTTP API (and optionally watch a folder)
  apexrun export [-o FILE]      write session metrics as Parquet
  apexrun context               print an athlete summary for an AI assistant
  apexrun logout                forget the stored Strava authorization

Flags:
  -v                            debug logging
`

// watchDebounce is how long a new file must be quiet before it is imported
const watchDebounce = 2 * time.Second

// errSetup means the user has to edit the config file first
var errSetup = errors.New("configuration required")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errSetup) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apexrun", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cmd, cmdArgs := "tui", fs.Args()
	if len(cmdArgs) > 0 {
		cmd, cmdArgs = cmdArgs[0], cmdArgs[1:]
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	cfg, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so its logs go to a file
	logOut := io.Writer(os.Stderr)
	if cmd == "tui" {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "tui":
		return runTUI(ctx, cfg, db, logger)
	case "import":
		return runImport(ctx, cfg, db, logger, cmdArgs)
	case "watch":
		return runWatch(ctx, cfg, db, logger, cmdArgs)
	case "sync":
		return runSync(ctx, cfg, db, logger)
	case "serve":
		return runServe(ctx, cfg, db, logger, cmdArgs)
	case "export":
		return runExport(ctx, cfg, db, cmdArgs)
	case "context":
		return runContext(ctx, cfg, db)
	case "logout":
		if err := db.DeleteAuth(ctx); err != nil {
			return fmt.Errorf("removing authorization: %w", err)
		}
		fmt.Println("Strava authorization removed.")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadConfig(out io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Fprintln(out, "No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(out, "\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Fprintln(out, "Add your resting and max heart rate, age and gender for accurate zones.")
		fmt.Fprintln(out, "To sync from Strava, add API credentials from https://www.strava.com/settings/api")
		return nil, errSetup
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(out, "Config validation failed: %v\n\n", err)
		fmt.Fprintf(out, "Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil, errSetup
	}
	return cfg, nil
}

func openLogFile() (*os.File, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "apexrun.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func newQueryService(cfg *config.Config, db *store.Store) *service.QueryService {
	return service.NewQueryService(db, cfg.AthleteProfile())
}

func runTUI(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger) error {
	// Strava is optional; file imports work without it
	var syncSvc *service.SyncService
	if cfg.ValidateStrava() == nil {
		client, err := stravaClient(ctx, cfg, db, os.Stdout)
		if err != nil {
			return err
		}
		syncSvc = service.NewSyncService(client, db, logger)
	}

	app := tui.NewApp(ctx, newQueryService(cfg, db), syncSvc, tui.NewUnits(cfg.Display))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger, paths []string) error {
	if len(paths) == 0 {
		return errors.New("import: no files or folders given")
	}

	svc := service.NewImportService(db, logger, cfg.Import.Workers)
	res, err := svc.Import(ctx, paths)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d new sessions from %d files (%d already stored)\n", res.Inserted, res.Files, res.Skipped)
	for _, f := range res.Failed {
		fmt.Printf("  skipped %s\n", f.Error())
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger, args []string) error {
	dir := cfg.Import.WatchDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("watch: no folder given and import.watch_dir is not set")
	}

	stopWatch, err := startWatcher(ctx, cfg, db, logger, dir)
	if err != nil {
		return err
	}
	defer stopWatch()

	fmt.Printf("Watching %s for new activity files. Press Ctrl+C to stop.\n", dir)
	<-ctx.Done()
	return nil
}

// startWatcher imports everything already in dir, then imports new files as
// they settle. The returned func stops the watcher.
func startWatcher(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger, dir string) (func(), error) {
	svc := service.NewImportService(db, logger, cfg.Import.Workers)

	if _, err := svc.Import(ctx, []string{dir}); err != nil {
		return nil, err
	}

	w, err := ingest.NewWatcher(watchDebounce, logger, func(paths []string) {
		if _, err := svc.Import(ctx, paths); err != nil {
			logger.Error("import failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	n, err := w.WatchRecursive(dir)
	if err != nil {
		w.Stop()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("watching for activity files", "dir", dir, "directories", n)

	w.Start()
	return w.Stop, nil
}

func runSync(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger) error {
	if err := cfg.ValidateStrava(); err != nil {
		return err
	}
	client, err := stravaClient(ctx, cfg, db, os.Stdout)
	if err != nil {
		return err
	}

	progress := make(chan service.SyncProgress, 16)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for p := range progress {
			if p.Phase == "streams" && p.Total > 0 {
				fmt.Printf("\r  streams %d/%d", p.Completed, p.Total)
			}
		}
	}()

	res, err := service.NewSyncService(client, db, logger).SyncAll(ctx, progress)
	<-printed
	fmt.Println()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Printf("Stored %d runs (%d with streams)\n", res.SessionsStored, res.StreamsFetched)
	if res.Remaining > 0 {
		fmt.Printf("%d runs left; run sync again to continue\n", res.Remaining)
	}
	return nil
}

// stravaClient builds an API client from the stored token, running the OAuth
// flow first when the athlete has not authorized yet
func stravaClient(ctx context.Context, cfg *config.Config, db *store.Store, out io.Writer) (*strava.Client, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	ts, err := auth.NewTokenSource(ctx, oauthCfg, db)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Fprintln(out, "No Strava authorization found. Starting OAuth flow...")
		result, authErr := auth.Authenticate(ctx, oauthCfg, out)
		if authErr != nil {
			return nil, fmt.Errorf("authentication: %w", authErr)
		}
		if err := auth.Save(ctx, db, result); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "\nSuccessfully authenticated as %s!\n", result.Athlete())
		ts, err = auth.NewTokenSource(ctx, oauthCfg, db)
	}
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	return strava.NewClient(ctx, ts), nil
}

func runServe(ctx context.Context, cfg *config.Config, db *store.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	watchDir := fs.String("watch", "", "also import new files from this folder")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(newQueryService(cfg, db), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, *addr, router, logger)
	})
	if *watchDir != "" {
		g.Go(func() error {
			stopWatch, err := startWatcher(ctx, cfg, db, logger, *watchDir)
			if err != nil {
				return err
			}
			<-ctx.Done()
			stopWatch()
			return nil
		})
	}
	return g.Wait()
}

func runExport(ctx context.Context, cfg *config.Config, db *store.Store, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "sessions.parquet", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := newQueryService(cfg, db).Report(ctx)
	if err != nil {
		return err
	}
	if err := export.SaveSessionsParquet(*out, report); err != nil {
		return err
	}
	fmt.Printf("Wrote %d sessions to %s\n", len(report.Sessions), *out)
	return nil
}

func runContext(ctx context.Context, cfg *config.Config, db *store.Store) error {
	report, err := newQueryService(cfg, db).Report(ctx)
	if err != nil {
		return err
	}
	return export.WriteContext(os.Stdout, report)
}
