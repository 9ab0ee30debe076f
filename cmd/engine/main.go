// Command engine is the JobMill ingestion run: every enabled source
// adapter in sequence, new listings into sqlite, notification emails out
// through the rate-limited dispatch queue. Built to be driven by cron and
// by hand; loop mode exists for environments without one.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/jessevdk/go-flags"

	"jobmill-engine/internal/clock"
	"jobmill-engine/internal/config"
	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
	"jobmill-engine/internal/notify"
	"jobmill-engine/internal/scheduler"
	"jobmill-engine/internal/secrets"
	"jobmill-engine/internal/source/euractiv"
	"jobmill-engine/internal/source/eurobrussels"
	"jobmill-engine/internal/source/jobsinbrussels"
	"jobmill-engine/internal/source/storyblok"
	"jobmill-engine/internal/store"
)

type options struct {
	Config  string `long:"config" env:"JOBMILL_CONFIG" default:"config/config.yml" description:"Bundled default config, copied into the data dir on first run"`
	DataDir string `long:"data-dir" env:"JOBMILL_DATA_DIR" default:"./data" description:"Directory holding the user config, lock file and database"`
	DB      string `long:"db" env:"JOBMILL_DB" description:"Database file (default: config data_dir/db_file)"`

	Sources []string      `long:"source" description:"Run only the named source; repeat for several"`
	Every   time.Duration `long:"every" env:"JOBMILL_EVERY" description:"Loop mode: run, sleep this long, run again (e.g. 12h)"`
	DryRun  bool          `long:"dry-run" description:"Walk every source without saving or emailing"`

	PurgeSource  string `long:"purge-source" description:"Delete all listings from the named source, then exit"`
	PurgeBefore  string `long:"purge-before" description:"Delete listings created before this date (2006-01-02), then exit"`
	PurgeDays    int    `long:"purge-days" description:"Delete listings created more than N days ago, then exit"`
	PurgeExpired bool   `long:"purge-expired" description:"Delete listings past their expiry date, then exit"`

	SetMailKey bool `long:"set-mail-key" description:"Read a mail API key from stdin into the OS keyring, then exit"`
}

func (o options) wantsPurge() bool {
	return o.PurgeSource != "" || o.PurgeBefore != "" || o.PurgeDays > 0 || o.PurgeExpired
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if opts.SetMailKey {
		if err := storeMailKey(); err != nil {
			log.Fatalf("[engine] store mail key: %v", err)
		}
		log.Printf("[engine] mail API key stored in the OS keyring")
		return
	}

	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		log.Fatalf("[engine] create data dir %s: %v", opts.DataDir, err)
	}

	// one engine per data dir; an overlapping cron run would race the
	// dedupe seed and double-notify
	lock := flock.New(filepath.Join(opts.DataDir, "jobmill.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("[engine] acquire run lock: %v", err)
	}
	if !locked {
		log.Fatalf("[engine] another engine run holds %s", lock.Path())
	}
	defer lock.Unlock()

	cfgPath, err := config.EnsureUserConfig(opts.DataDir, opts.Config)
	if err != nil {
		log.Fatalf("[engine] config bootstrap: %v", err)
	}
	raw, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[engine] load config %s: %v", cfgPath, err)
	}
	cfg, validation := config.NormalizeAndValidate(raw)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("[engine] config %s is invalid", cfgPath)
	}

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = filepath.Join(cfg.App.DataDir, cfg.App.DBFile)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("[engine] create db dir: %v", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("[engine] open store: %v", err)
	}
	defer st.Close()

	schema, err := st.Migrate()
	if err != nil {
		log.Fatalf("[engine] migrate store: %v", err)
	}
	log.Printf("[engine] store ready db=%s schema=%d", dbPath, schema)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.wantsPurge() {
		if err := purge(ctx, st, opts); err != nil {
			log.Fatalf("[engine] purge: %v", err)
		}
		return
	}

	adapters := buildAdapters(cfg, newFetchClient(cfg), opts.Sources)
	if len(adapters) == 0 {
		log.Fatalf("[engine] nothing to run; check enabled sources and --source filters")
	}

	var queue *notify.Queue
	if cfg.Notify.Enabled && !opts.DryRun {
		key, err := secrets.GetMailAPIKey()
		if err != nil {
			log.Fatalf("[engine] notify is enabled: %v", err)
		}
		mailer := notify.NewMailer(cfg.Notify.BaseURL, key, cfg.Notify.From)
		queue = notify.NewQueue(mailer, clock.Real{}, cfg.Notify.BatchSize,
			time.Duration(cfg.Notify.WindowMillis)*time.Millisecond)
	} else {
		log.Printf("[engine] notifications off (enabled=%t dry_run=%t)", cfg.Notify.Enabled, opts.DryRun)
	}

	task := func(ctx context.Context) error {
		return runOnce(ctx, st, queue, cfg, adapters, opts.DryRun)
	}

	if opts.Every > 0 {
		log.Printf("[engine] loop mode: running every %s", opts.Every)
		scheduler.Loop(ctx, opts.Every, "engine", task)
		return
	}
	if err := task(ctx); err != nil {
		log.Fatalf("[engine] %v", err)
	}
}

func newFetchClient(cfg config.Config) *fetch.Client {
	return fetch.New(fetch.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		PerHostRPS: cfg.Fetch.PerHostRPS,
		Burst:      cfg.Fetch.Burst,
		Retries:    cfg.Fetch.Retries,
		Backoff:    time.Duration(cfg.Fetch.BackoffMillis) * time.Millisecond,
	})
}

// buildAdapters assembles the enabled adapters in their fixed run order,
// narrowed to any --source filters.
func buildAdapters(cfg config.Config, client *fetch.Client, only []string) []ingest.Adapter {
	var all []ingest.Adapter
	if cfg.Sources.EuroBrussels.Enabled {
		all = append(all, eurobrussels.New(eurobrussels.Config{
			BaseURL:     cfg.Sources.EuroBrussels.BaseURL,
			MaxListings: cfg.Sources.EuroBrussels.MaxListings,
		}, client))
	}
	if cfg.Sources.JobsInBrussels.Enabled {
		all = append(all, jobsinbrussels.New(jobsinbrussels.Config{
			BaseURL:       cfg.Sources.JobsInBrussels.BaseURL,
			MaxCompanies:  cfg.Sources.JobsInBrussels.MaxCompanies,
			MaxPerCompany: cfg.Sources.JobsInBrussels.MaxPerCompany,
		}, client))
	}
	if cfg.Sources.Storyblok.Enabled {
		all = append(all, storyblok.New(storyblok.Config{
			BaseURL:     cfg.Sources.Storyblok.BaseURL,
			Token:       cfg.Sources.Storyblok.Token,
			PerPage:     cfg.Sources.Storyblok.PerPage,
			MaxListings: cfg.Sources.Storyblok.MaxListings,
		}, client))
	}
	if cfg.Sources.Euractiv.Enabled {
		all = append(all, euractiv.New(euractiv.Config{
			FeedURL:     cfg.Sources.Euractiv.FeedURL,
			MaxListings: cfg.Sources.Euractiv.MaxListings,
		}, client))
	}
	if len(only) == 0 {
		return all
	}

	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var picked []ingest.Adapter
	for _, a := range all {
		if want[a.Name()] {
			picked = append(picked, a)
			delete(want, a.Name())
		}
	}
	for name := range want {
		log.Printf("[engine] --source %s matches no enabled adapter", name)
	}
	return picked
}

// runOnce is one full engine pass: seed the resolver from the store's
// current keys, run every adapter sequentially, log the summary line.
func runOnce(ctx context.Context, st *store.Store, queue *notify.Queue,
	cfg config.Config, adapters []ingest.Adapter, dryRun bool) error {
	started := time.Now()

	keys, err := st.DedupeKeys(ctx)
	if err != nil {
		return fmt.Errorf("seed dedupe keys: %w", err)
	}
	resolver := dedupe.NewResolver(keys)
	log.Printf("[engine] dedupe set seeded with %d keys", resolver.Len())

	p := ingest.NewPipeline(ingest.PipelineOptions{
		Store:      st,
		Resolver:   resolver,
		Queue:      queue,
		ExpiryDays: cfg.Expiry.DefaultDays,
		DryRun:     dryRun,
	})
	stats := ingest.RunAll(ctx, p, adapters)
	log.Printf("[engine] run finished in %s: %s",
		time.Since(started).Round(time.Millisecond), ingest.Totals(stats).String())
	return nil
}

// purge executes the requested maintenance deletes instead of a run.
func purge(ctx context.Context, st *store.Store, opts options) error {
	if opts.PurgeSource != "" {
		n, err := st.DeleteBySource(ctx, opts.PurgeSource)
		if err != nil {
			return fmt.Errorf("purge source %s: %w", opts.PurgeSource, err)
		}
		log.Printf("[engine] purged %d listings from source %s", n, opts.PurgeSource)
	}
	if opts.PurgeBefore != "" {
		cutoff, err := time.Parse("2006-01-02", opts.PurgeBefore)
		if err != nil {
			return fmt.Errorf("parse --purge-before %q: %w", opts.PurgeBefore, err)
		}
		n, err := st.DeleteCreatedBetween(ctx, time.Time{}, cutoff)
		if err != nil {
			return fmt.Errorf("purge before %s: %w", opts.PurgeBefore, err)
		}
		log.Printf("[engine] purged %d listings created before %s", n, opts.PurgeBefore)
	}
	if opts.PurgeDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -opts.PurgeDays)
		n, err := st.DeleteCreatedBetween(ctx, time.Time{}, cutoff)
		if err != nil {
			return fmt.Errorf("purge older than %d days: %w", opts.PurgeDays, err)
		}
		log.Printf("[engine] purged %d listings older than %d days", n, opts.PurgeDays)
	}
	if opts.PurgeExpired {
		n, err := st.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("purge expired: %w", err)
		}
		log.Printf("[engine] purged %d expired listings", n)
	}
	return nil
}

// storeMailKey reads one line from stdin so the key never lands in shell
// history or process listings.
func storeMailKey() error {
	fmt.Fprint(os.Stderr, "mail API key: ")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return errors.New("no key on stdin")
	}
	return secrets.SetMailAPIKey(strings.TrimSpace(sc.Text()))
}
