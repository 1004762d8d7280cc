// Package syncer coordinates when the local replica pulls, merges, pushes
// or defers against the shared remote document. It is an optimistic,
// last-writer-wins scheme over a single remote slot: revision counters are
// compared, never reconciled across more than one concurrent writer, which
// is a known limitation of the single-shared-document model.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carlog/internal/config"
	"carlog/internal/ledger"
	"carlog/internal/logging"
	"carlog/internal/merge"
	"carlog/internal/models"
	"carlog/internal/remote"
)

// State describes the orchestrator's current position.
type State string

const (
	StateIdle     State = "idle"
	StateSyncing  State = "syncing"
	StateDisabled State = "disabled"
)

// Options select the behavior of one sync attempt.
type Options struct {
	// PullOnly adopts remote changes but never pushes local state.
	PullOnly bool
	// ForcePush pushes local state unconditionally, skipping the fetch.
	// Used after a backup restore, where local data must win.
	ForcePush bool
	// ShowProgress emits a status message when the attempt starts.
	ShowProgress bool
	// ShowResult emits a status message when the attempt finishes.
	ShowResult bool
}

// Orchestrator runs sync attempts with at most one in flight: a request
// arriving while one is running attaches to it and shares its outcome
// instead of starting a second.
type Orchestrator struct {
	svc    *ledger.Service
	client remote.Client
	cfg    *config.Config
	log    logging.Logger

	// Status, when set, receives user-visible one-line status messages.
	Status func(msg string)

	// Editing, when set, reports that the user is mid-edit; a sync that
	// would apply remote changes defers entirely rather than clobber the
	// form.
	Editing func() bool

	mu       sync.Mutex
	inflight *pending
	state    State
}

// pending is the shared handle attachers wait on.
type pending struct {
	done chan struct{}
	err  error
}

func New(svc *ledger.Service, client remote.Client, cfg *config.Config, log logging.Logger) *Orchestrator {
	return &Orchestrator{svc: svc, client: client, cfg: cfg, log: log, state: StateIdle}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Sync performs one sync attempt, or attaches to the attempt already in
// flight. Errors are also surfaced on the status line; local state before
// the attempt is never corrupted by a failure.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) error {
	o.mu.Lock()
	if o.inflight != nil {
		p := o.inflight
		o.mu.Unlock()
		<-p.done
		return p.err
	}
	p := &pending{done: make(chan struct{})}
	o.inflight = p
	o.state = StateSyncing
	o.mu.Unlock()

	p.err = o.run(ctx, opts)

	o.mu.Lock()
	o.inflight = nil
	if o.state == StateSyncing {
		o.state = StateIdle
	}
	o.mu.Unlock()
	close(p.done)

	return p.err
}

func (o *Orchestrator) run(ctx context.Context, opts Options) error {
	if err := remote.CheckConfig(ctx, o.cfg, o.log); err != nil {
		o.mu.Lock()
		o.state = StateDisabled
		o.mu.Unlock()
		o.status(fmt.Sprintf("Sync is off: %v", err))
		return err
	}

	if opts.ShowProgress {
		o.status("Syncing...")
	}

	if opts.ForcePush {
		return o.finish(ctx, opts, o.pushLocal(ctx))
	}

	doc, err := o.client.Fetch(ctx)
	if err != nil {
		return o.finish(ctx, opts, fmt.Errorf("fetch: %w", err))
	}

	meta := o.svc.Meta()
	if shouldApplyRemote(doc, meta) {
		if o.Editing != nil && o.Editing() {
			o.log.Info(ctx, "sync deferred, edit in progress")
			o.status("Sync deferred while you are editing.")
			return nil
		}

		if meta.Dirty && !opts.PullOnly {
			merged := merge.Merge(o.svc.All(), doc.Records)
			o.svc.ApplyMerge(ctx, merged, doc.Rev)
			o.log.Info(ctx, "merged remote changes",
				"localRev", meta.Rev, "remoteRev", doc.Rev, "records", len(merged))
			return o.finish(ctx, opts, o.pushLocal(ctx))
		}

		o.svc.AdoptRemote(ctx, doc)
		o.log.Info(ctx, "adopted remote records", "rev", doc.Rev, "records", len(doc.Records))
		return o.finish(ctx, opts, nil)
	}

	if !opts.PullOnly {
		return o.finish(ctx, opts, o.pushLocal(ctx))
	}

	return o.finish(ctx, opts, nil)
}

// pushLocal prunes tombstones, pushes the local state and, on confirmation,
// clears the dirty flag.
func (o *Orchestrator) pushLocal(ctx context.Context) error {
	doc := o.svc.BuildPush(ctx)
	if err := o.client.Push(ctx, doc); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	o.svc.ConfirmPush(ctx, doc)
	o.log.Info(ctx, "pushed local records", "rev", doc.Rev, "records", len(doc.Records))
	return nil
}

// finish reports the attempt's outcome. Failures never propagate into local
// state; the replica from before the attempt stays intact.
func (o *Orchestrator) finish(ctx context.Context, opts Options, err error) error {
	if err != nil {
		o.log.Error(ctx, "sync attempt failed", "error", err)
		if errors.Is(err, remote.ErrTimeout) {
			o.status("Sync timed out. It will be retried.")
		} else {
			o.status(fmt.Sprintf("Sync failed: %v", err))
		}
		return err
	}
	if opts.ShowResult {
		o.status("Sync complete.")
	}
	return nil
}

func (o *Orchestrator) status(msg string) {
	if o.Status != nil {
		o.Status(msg)
	}
}

// shouldApplyRemote decides whether the fetched document supersedes the
// local replica: a higher revision wins outright; an equal revision falls
// back to the document timestamp.
func shouldApplyRemote(doc *models.RemoteDocument, meta models.SyncMeta) bool {
	if doc == nil {
		return false
	}
	if doc.Rev != meta.Rev {
		return doc.Rev > meta.Rev
	}
	return models.CompareInstants(doc.UpdatedAt, meta.LastSyncUpdatedAt) > 0
}
