// Package ledger owns the in-memory record set for a session: mutations,
// listings, reports and backup, plus the bookkeeping (revision counter,
// dirty flag) that feeds synchronization.
package ledger

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"carlog/internal/logging"
	"carlog/internal/merge"
	"carlog/internal/models"
	"carlog/internal/repositories/metadata"
	"carlog/internal/repositories/records"
)

// Input carries form-level fields for create/update. Numeric fields arrive
// as strings and are validated here, at the boundary.
type Input struct {
	Date       string
	Category   string
	Amount     string
	Mileage    string
	FuelVolume string
	Memo       string
}

// Service is the session-scoped record store. All methods are safe for
// concurrent use by the REPL and the background sync poller.
//
// A mutation fully succeeds in memory before persistence starts; a
// persistence failure is logged and surfaced but never rolls the mutation
// back. The in-memory state stays authoritative until the next save.
type Service struct {
	mu      sync.Mutex
	records []models.Record
	meta    models.SyncMeta

	file      records.Repository
	mirror    records.Repository
	metaRepo  metadata.Repository
	retention time.Duration

	log logging.Logger
	now func() time.Time

	// Status, when set, receives user-visible one-line status messages.
	Status func(msg string)
}

func NewService(file, mirror records.Repository, metaRepo metadata.Repository, retention time.Duration, log logging.Logger) *Service {
	if retention <= 0 {
		retention = merge.DefaultRetention
	}
	return &Service{
		file:      file,
		mirror:    mirror,
		metaRepo:  metaRepo,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Init loads the startup snapshot and sync metadata. Records are
// re-normalized on the way in so older stored shapes stay usable.
func (s *Service) Init(ctx context.Context) {
	loaded := records.LoadInitial(ctx, s.mirror, s.file, s.log)

	now := s.now()
	normalized := make([]models.Record, len(loaded))
	for i, r := range loaded {
		normalized[i] = models.Normalize(models.RawFromRecord(r), now)
	}

	meta, err := s.metaRepo.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load sync metadata, starting fresh", "error", err)
	}

	s.mu.Lock()
	s.records = normalized
	s.meta = meta
	s.mu.Unlock()
}

// Retention returns the tombstone retention window.
func (s *Service) Retention() time.Duration {
	return s.retention
}

// Create validates input and appends a new record. The new record is
// returned; the revision counter advances and the replica is marked dirty.
func (s *Service) Create(ctx context.Context, in Input) (models.Record, error) {
	fields, err := parseInput(in)
	if err != nil {
		return models.Record{}, err
	}

	now := models.FormatInstant(s.now())
	rec := models.Record{
		ID:         models.NewID(),
		Date:       fields.date,
		Category:   fields.category,
		Amount:     fields.amount,
		Mileage:    fields.mileage,
		FuelVolume: fields.fuelVolume,
		Memo:       fields.memo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.markDirtyLocked()
	s.mu.Unlock()

	s.persist(ctx)
	return rec, nil
}

// Update validates input and overwrites the mutable fields of the record
// with the given id. CreatedAt is immutable; UpdatedAt moves to now.
func (s *Service) Update(ctx context.Context, id string, in Input) (models.Record, error) {
	fields, err := parseInput(in)
	if err != nil {
		return models.Record{}, err
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Record{}, ErrNotFound
	}

	rec := s.records[i]
	rec.Date = fields.date
	rec.Category = fields.category
	rec.Amount = fields.amount
	rec.Mileage = fields.mileage
	rec.FuelVolume = fields.fuelVolume
	rec.Memo = fields.memo
	rec.UpdatedAt = models.FormatInstant(s.now())
	s.records[i] = rec
	s.markDirtyLocked()
	s.mu.Unlock()

	s.persist(ctx)
	return rec, nil
}

// SoftDelete turns the record into a tombstone: deletedAt and updatedAt are
// stamped with the same instant, and the record disappears from listings
// while remaining visible to sync until pruned.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	now := models.FormatInstant(s.now())
	s.records[i].DeletedAt = &now
	s.records[i].UpdatedAt = now
	s.markDirtyLocked()
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Active returns the live (non-deleted) records, newest date first.
func (s *Service) Active() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Record, 0, len(s.records))
	for _, r := range s.records {
		if !r.Deleted() {
			result = append(result, r)
		}
	}
	sortDesc(result)
	return result
}

// All returns a copy of the full record set, tombstones included.
func (s *Service) All() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]models.Record, len(s.records))
	copy(result, s.records)
	return result
}

// Get returns the live record with the given id.
func (s *Service) Get(id string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.records[i], true
	}
	return models.Record{}, false
}

// Meta returns the current sync metadata.
func (s *Service) Meta() models.SyncMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// ApplyMerge replaces the record set with the merged result, pruned of
// expired tombstones. The merge itself is a local change: the revision
// advances past both replicas and the dirty flag is set until the follow-up
// push confirms.
func (s *Service) ApplyMerge(ctx context.Context, merged []models.Record, remoteRev int64) {
	pruned := merge.PruneTombstones(merged, s.now(), s.retention)

	s.mu.Lock()
	s.records = pruned
	if remoteRev > s.meta.Rev {
		s.meta.Rev = remoteRev
	}
	s.meta.Rev++
	s.meta.Dirty = true
	s.mu.Unlock()

	s.persist(ctx)
}

// AdoptRemote replaces the record set wholesale with the remote document's
// records (pruned) and takes over its revision and timestamp. Used when the
// local replica has nothing of its own to contribute.
func (s *Service) AdoptRemote(ctx context.Context, doc *models.RemoteDocument) {
	pruned := merge.PruneTombstones(doc.Records, s.now(), s.retention)

	s.mu.Lock()
	s.records = pruned
	s.meta.Rev = doc.Rev
	s.meta.LastSyncUpdatedAt = doc.UpdatedAt
	s.meta.Dirty = false
	s.meta.LastSuccessAt = models.FormatInstant(s.now())
	s.mu.Unlock()

	s.persist(ctx)
}

// BuildPush prunes expired tombstones from the local set, persists the
// pruned set, and returns the document to push: the full local record set
// stamped with the current revision and a fresh timestamp.
func (s *Service) BuildPush(ctx context.Context) *models.RemoteDocument {
	now := s.now()
	pruned := merge.PruneTombstones(s.All(), now, s.retention)

	s.mu.Lock()
	s.records = pruned
	doc := &models.RemoteDocument{
		Records:   append([]models.Record(nil), pruned...),
		UpdatedAt: models.FormatInstant(now),
		Rev:       s.meta.Rev,
	}
	s.mu.Unlock()

	s.persist(ctx)
	return doc
}

// ConfirmPush records a confirmed push: the replica is clean, and the
// pushed document's timestamp becomes the reconciliation watermark.
func (s *Service) ConfirmPush(ctx context.Context, doc *models.RemoteDocument) {
	s.mu.Lock()
	s.meta.Dirty = false
	s.meta.LastSyncUpdatedAt = doc.UpdatedAt
	s.meta.LastSuccessAt = models.FormatInstant(s.now())
	s.mu.Unlock()

	s.persist(ctx)
}

func (s *Service) indexLocked(id string) int {
	for i, r := range s.records {
		if r.ID == id && !r.Deleted() {
			return i
		}
	}
	return -1
}

func (s *Service) markDirtyLocked() {
	s.meta.Rev++
	s.meta.Dirty = true
}

// persist writes the snapshot to the primary store and the mirror, and the
// metadata alongside. Failures are logged and surfaced on the status line;
// the in-memory state is not rolled back.
func (s *Service) persist(ctx context.Context) {
	s.mu.Lock()
	recs := make([]models.Record, len(s.records))
	copy(recs, s.records)
	meta := s.meta
	s.mu.Unlock()

	failed := false
	if err := s.file.Save(ctx, recs); err != nil {
		s.log.Error(ctx, "failed to save records", "error", err)
		failed = true
	}
	if err := s.metaRepo.Save(ctx, meta); err != nil {
		s.log.Error(ctx, "failed to save sync metadata", "error", err)
		failed = true
	}
	if s.mirror != nil {
		if err := s.mirror.Save(ctx, recs); err != nil {
			s.log.Warn(ctx, "failed to update mirror", "error", err)
			failed = true
		}
	}
	if failed {
		s.status("Saved in memory, but writing durable storage failed.")
	}
}

func (s *Service) status(msg string) {
	if s.Status != nil {
		s.Status(msg)
	}
}

type parsedInput struct {
	date       string
	category   models.Category
	amount     float64
	mileage    *float64
	fuelVolume *float64
	memo       string
}

// parseInput enforces the boundary rules: date required, amount a number
// >= 0, fuel volume (when supplied) a number > 0. Mileage is lenient; a
// value that does not parse is treated as absent, mirroring the normalizer.
func parseInput(in Input) (parsedInput, error) {
	p := parsedInput{memo: strings.TrimSpace(in.Memo)}

	p.date = strings.TrimSpace(in.Date)
	if p.date == "" {
		return p, ErrValidation
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	if err != nil || amount < 0 {
		return p, ErrValidation
	}
	p.amount = amount

	p.category = models.Category(in.Category)
	if !p.category.Valid() {
		return p, ErrValidation
	}

	if v := strings.TrimSpace(in.FuelVolume); v != "" {
		fuelVolume, err := strconv.ParseFloat(v, 64)
		if err != nil || fuelVolume <= 0 {
			return p, ErrValidation
		}
		p.fuelVolume = &fuelVolume
	}

	if v := strings.TrimSpace(in.Mileage); v != "" {
		if mileage, err := strconv.ParseFloat(v, 64); err == nil {
			p.mileage = &mileage
		}
	}

	return p, nil
}

func sortDesc(recs []models.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date > recs[j].Date
		}
		return recs[i].CreatedAt > recs[j].CreatedAt
	})
}
