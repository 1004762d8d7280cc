// Package cli is the interactive front end: a small REPL over the ledger
// service and the sync orchestrator. It is presentation only; everything it
// does goes through the core packages.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"carlog/internal/config"
	"carlog/internal/ledger"
	"carlog/internal/logging"
	"carlog/internal/remote"
	"carlog/internal/repositories/filekv"
	"carlog/internal/repositories/metadata"
	"carlog/internal/repositories/records"
	"carlog/internal/syncer"

	_ "modernc.org/sqlite"
)

type App struct {
	cfg    *config.Config
	log    logging.Logger
	svc    *ledger.Service
	orch   *syncer.Orchestrator
	poller *syncer.Poller

	reader *bufio.Reader

	// editing is true while the add/edit prompt flow is active; the
	// orchestrator defers remote adoption while it is set.
	editing atomic.Bool

	// closed flips when the REPL exits; the poller treats the session as
	// no longer visible from then on.
	closed atomic.Bool
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	kv, err := filekv.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var mirror records.Repository
	if cfg.DatabasePath != "" {
		db, err := records.OpenDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			// The mirror is resilience, not correctness; run without it.
			log.Warn(ctx, "failed to open sqlite mirror, continuing without", "error", err)
		} else {
			mirror = records.NewSQLiteRepository(db)
		}
	}

	svc := ledger.NewService(
		records.NewFileRepository(kv),
		mirror,
		metadata.NewFileRepository(kv),
		cfg.TombstoneRetention,
		log,
	)
	svc.Init(ctx)

	// A secret on the command line leaks into shell history; allow leaving
	// it out and typing it in without echo instead. An empty answer mints a
	// fresh secret and prints it so other devices can be configured with it.
	if cfg.RemoteBaseURL != "" && cfg.SyncID != "" && cfg.SyncSecret == "" {
		if secret, err := promptSecret(os.Stdout); err == nil {
			if secret == "" {
				if secret, err = remote.GenerateSecret(); err == nil {
					fmt.Printf("Generated sync secret: %s\nUse it on your other devices.\n", secret)
				}
			}
			cfg.SyncSecret = secret
		}
	}

	client := remote.NewHTTPClient(
		cfg.RemoteBaseURL, cfg.RemoteNamespace, cfg.SyncID, cfg.SyncSecret,
		cfg.RequestTimeout, log,
	)
	orch := syncer.New(svc, client, cfg, log)

	app := &App{
		cfg:    cfg,
		log:    log,
		svc:    svc,
		orch:   orch,
		reader: bufio.NewReader(os.Stdin),
	}

	svc.Status = app.printStatus
	orch.Status = app.printStatus
	orch.Editing = app.editing.Load
	app.poller = syncer.NewPoller(orch, cfg.PollInterval, func() bool { return !app.closed.Load() })

	return app, nil
}

// Run performs the initial sync, starts background polling and enters the
// REPL. It returns when the user quits or ctx is canceled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	polling := false
	if err := remote.CheckConfig(ctx, a.cfg, a.log); err == nil {
		a.orch.Sync(ctx, syncer.Options{
			PullOnly:     !a.svc.Meta().Dirty,
			ShowProgress: true,
			ShowResult:   true,
		})
		go a.poller.Start(ctx)
		polling = true
	} else {
		a.printStatus(fmt.Sprintf("Running offline: %v", err))
	}

	a.repl(ctx)

	a.closed.Store(true)
	cancel()
	if polling {
		<-a.poller.Done()
	}
}

func (a *App) printStatus(msg string) {
	fmt.Println(msg)
}
