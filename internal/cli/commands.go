package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"carlog/internal/ledger"
	"carlog/internal/models"
	"carlog/internal/syncer"
	"carlog/internal/timex"
)

// List prints the live records, newest first, with a short index usable by
// edit/del.
func (a *App) List() {
	recs := a.svc.Active()
	if len(recs) == 0 {
		fmt.Println("No records yet. Try 'add'.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDATE\tCATEGORY\tAMOUNT\tVOLUME\tUNIT PRICE\tMILEAGE\tMEMO")
	for i, r := range recs {
		volume, unitPrice := "-", "-"
		if r.FuelVolume != nil {
			volume = fmt.Sprintf("%.2f", *r.FuelVolume)
		}
		if price, ok := r.UnitPrice(); ok {
			unitPrice = fmt.Sprintf("%.2f", price)
		}
		mileage := "-"
		if r.Mileage != nil {
			mileage = fmt.Sprintf("%.0f", *r.Mileage)
		}
		memo := r.Memo
		if memo == "" {
			memo = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1, r.Date, r.Category.Label(), r.Amount, volume, unitPrice, mileage, memo)
	}
	w.Flush()
}

// Add walks the user through a new record. The editing flag stays set for
// the whole flow so a background sync cannot swap the record set mid-entry.
func (a *App) Add(ctx context.Context) {
	a.editing.Store(true)
	defer a.editing.Store(false)

	in, err := a.readInputDefaults(ledger.Input{
		Date:     timex.DateString(time.Now()),
		Category: string(models.CategoryFuel),
	})
	if err != nil {
		return
	}

	if _, err := a.svc.Create(ctx, in); err != nil {
		a.reportInputError(err)
		return
	}
	a.editing.Store(false)
	fmt.Println("Added.")
	a.Sync(ctx, false)
}

// Edit rewrites an existing record chosen by list index or id.
func (a *App) Edit(ctx context.Context, args []string) {
	rec, ok := a.resolve(args)
	if !ok {
		return
	}

	a.editing.Store(true)
	defer a.editing.Store(false)

	current := ledger.Input{
		Date:     rec.Date,
		Category: string(rec.Category),
		Amount:   strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		Memo:     rec.Memo,
	}
	if rec.Mileage != nil {
		current.Mileage = strconv.FormatFloat(*rec.Mileage, 'f', -1, 64)
	}
	if rec.FuelVolume != nil {
		current.FuelVolume = strconv.FormatFloat(*rec.FuelVolume, 'f', -1, 64)
	}

	in, err := a.readInputDefaults(current)
	if err != nil {
		return
	}

	if _, err := a.svc.Update(ctx, rec.ID, in); err != nil {
		a.reportInputError(err)
		return
	}
	a.editing.Store(false)
	fmt.Println("Updated.")
	a.Sync(ctx, false)
}

// Delete soft-deletes a record; it disappears from listings but propagates
// as a tombstone until other devices have seen the deletion.
func (a *App) Delete(ctx context.Context, args []string) {
	rec, ok := a.resolve(args)
	if !ok {
		return
	}
	if err := a.svc.SoftDelete(ctx, rec.ID); err != nil {
		a.reportInputError(err)
		return
	}
	fmt.Println("Deleted.")
	a.Sync(ctx, false)
}

// Report prints totals and the fuel-efficiency series. An optional YYYY-MM
// argument selects the month; default is the current one.
func (a *App) Report(args []string) {
	month := ""
	if len(args) > 0 {
		month = args[0]
	}
	stats := a.svc.Stats(month)

	fmt.Printf("Records: %d\n", stats.Count)
	fmt.Printf("Total spent: %.2f\n", stats.Total)
	fmt.Printf("Spent in %s: %.2f\n", stats.Month, stats.MonthTotal)

	points := a.svc.EfficiencyPoints()
	if len(points) == 0 {
		fmt.Println("No fuel efficiency data yet (needs fuel records with mileage).")
		return
	}
	fmt.Println("Distance between fill-ups:")
	for _, p := range points {
		fmt.Printf("  %s  %.1f\n", p.Date, p.Distance)
	}
}

// Sync runs a foreground sync attempt with progress and result reporting.
func (a *App) Sync(ctx context.Context, pullOnly bool) {
	a.orch.Sync(ctx, syncer.Options{
		PullOnly:     pullOnly,
		ShowProgress: true,
		ShowResult:   true,
	})
}

// SyncStatus prints the replica's sync bookkeeping.
func (a *App) SyncStatus() {
	meta := a.svc.Meta()
	fmt.Printf("State: %s\n", a.orch.State())
	fmt.Printf("Revision: %d\n", meta.Rev)
	fmt.Printf("Unpushed changes: %v\n", meta.Dirty)
	if meta.LastSuccessAt != "" {
		fmt.Printf("Last successful sync: %s\n", meta.LastSuccessAt)
	} else {
		fmt.Println("Last successful sync: never")
	}
}

// Export writes a backup file; the optional argument overrides the
// date-stamped default name.
func (a *App) Export(args []string) {
	data, filename, err := a.svc.ExportBackup()
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	if len(args) > 0 {
		filename = args[0]
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Backup written to %s\n", filename)
}

// Import restores a backup file, replacing the local record set, and
// force-pushes so the restored data becomes authoritative remotely.
func (a *App) Import(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: import <file>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		return
	}
	count, err := a.svc.ImportBackup(ctx, data)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		return
	}
	fmt.Printf("Backup restored: %d records\n", count)

	a.orch.Sync(ctx, syncer.Options{ForcePush: true, ShowProgress: true, ShowResult: true})
}

func (a *App) readInputDefaults(defaults ledger.Input) (ledger.Input, error) {
	var in ledger.Input
	var err error

	if in.Date, err = promptDefault(a.reader, "Date (YYYY-MM-DD)", defaults.Date, os.Stdout); err != nil {
		return in, err
	}
	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}
	label := "Category (" + strings.Join(categories, "/") + ")"
	if in.Category, err = promptDefault(a.reader, label, defaults.Category, os.Stdout); err != nil {
		return in, err
	}
	if in.Amount, err = promptDefault(a.reader, "Amount", defaults.Amount, os.Stdout); err != nil {
		return in, err
	}
	if in.Mileage, err = promptDefault(a.reader, "Mileage (optional)", defaults.Mileage, os.Stdout); err != nil {
		return in, err
	}
	if models.Category(in.Category) == models.CategoryFuel {
		if in.FuelVolume, err = promptDefault(a.reader, "Fuel volume (optional)", defaults.FuelVolume, os.Stdout); err != nil {
			return in, err
		}
	}
	if in.Memo, err = promptDefault(a.reader, "Memo (optional)", defaults.Memo, os.Stdout); err != nil {
		return in, err
	}
	return in, nil
}

// resolve maps a list index or record id argument to a live record.
func (a *App) resolve(args []string) (models.Record, bool) {
	if len(args) == 0 {
		fmt.Println("Specify a record: list index or id.")
		return models.Record{}, false
	}
	arg := args[0]

	if n, err := strconv.Atoi(arg); err == nil {
		recs := a.svc.Active()
		if n < 1 || n > len(recs) {
			fmt.Printf("No record #%d; see 'list'.\n", n)
			return models.Record{}, false
		}
		return recs[n-1], true
	}

	rec, ok := a.svc.Get(arg)
	if !ok {
		fmt.Printf("No record with id %s.\n", arg)
		return models.Record{}, false
	}
	return rec, true
}

func (a *App) reportInputError(err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		fmt.Println("Invalid input: date is required, amount must be a number >= 0, fuel volume must be > 0.")
	case errors.Is(err, ledger.ErrNotFound):
		fmt.Println("Record not found.")
	default:
		fmt.Printf("Error: %v\n", err)
	}
}
