// Package pipeline runs the whole ETL: extract, normalize, project, check, export and
// load into the configured stores.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reshape/internal/calendar"
	"reshape/internal/config"
	"reshape/internal/document"
	"reshape/internal/export"
	"reshape/internal/extract"
	"reshape/internal/integrity"
	"reshape/internal/loadorder"
	"reshape/internal/logger"
	"reshape/internal/metrics"
	"reshape/internal/models"
	"reshape/internal/normalizer"
	"reshape/internal/snowflake"
	"reshape/internal/star"
	"reshape/internal/store"
)

// Stage names used in logs and metrics.
const (
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageCalendar  = "calendar"
	StageProject   = "project"
	StageValidate  = "validate"
	StageExport    = "export"
	StageLoad      = "load"
	StageVerify    = "verify"
)

// Result is the outcome of one run.
type Result struct {
	Tables    *models.TableSet
	Star      *models.StarSchema
	Snowflake *models.SnowflakeSchema
	Documents *models.DocumentSet
	// Exports lists the files written per layout.
	Exports map[string][]string
	// Loads counts the rows written per store and table.
	Loads      map[string]map[string]int
	RunID      string
	Dates      []models.DateRow
	Reports    []*integrity.Report
	LoadErrors []error
	Passed     bool
}

// Report returns the integrity report of a layout, or nil.
func (r *Result) Report(layout string) *integrity.Report {
	for _, rep := range r.Reports {
		if rep.Layout == layout {
			return rep
		}
	}

	return nil
}

// Runner executes pipeline runs.
type Runner struct {
	cfg        *config.Config
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	source     extract.Source
	relational *store.Relational
	documents  *store.Documents
	cache      *store.Cache
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithClock sets the clock used for order dates and manifests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithMetrics records into m instead of a private set of collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSource replaces the configured source.
func WithSource(src extract.Source) Option {
	return func(r *Runner) { r.source = src }
}

// WithRelational loads tabular layouts into rel.
func WithRelational(rel *store.Relational) Option {
	return func(r *Runner) { r.relational = rel }
}

// WithDocuments loads the document set into docs.
func WithDocuments(docs *store.Documents) Option {
	return func(r *Runner) { r.documents = docs }
}

// WithCache writes the document set into cache.
func WithCache(cache *store.Cache) Option {
	return func(r *Runner) { r.cache = cache }
}

// New creates a runner. Stores are only used when passed as options; see Connect.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg: cfg,
		log: logger.Discard(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.metrics == nil {
		r.metrics = metrics.New()
	}

	if r.source == nil {
		r.source = NewSource(cfg, r.log)
	}

	return r
}

// NewSource returns the API client when the api source is enabled, the raw directory
// reader otherwise.
func NewSource(cfg *config.Config, log *logger.Logger) extract.Source {
	src := cfg.Pipeline.Sources
	if src.API.Enabled {
		return extract.NewAPIClient(src.API.BaseURL, src.API.PageSize, &cfg.Pipeline.Retry, log)
	}

	return extract.NewFileSource(src.RawDir, log)
}

// Metrics returns the collectors the runner records into.
func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

// Run executes one run. Integrity findings and store failures do not abort it; they
// make Result.Passed false. Errors are returned for failures that leave nothing to
// report: extraction, cancellation and export.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   uuid.NewString(),
		Exports: make(map[string][]string),
		Loads:   make(map[string]map[string]int),
	}

	log := r.log.With("run_id", res.RunID)
	log.Info("starting run")

	start := r.now()

	// Phase 1: extract
	done := r.metrics.Stage(StageExtract)
	raw, err := r.source.Fetch(ctx)
	done()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageExtract, err)
	}

	if r.cfg.Pipeline.Sources.API.Enabled && r.cfg.Pipeline.Sources.API.SaveRaw {
		if err := extract.SaveRaw(r.cfg.Pipeline.Sources.RawDir, raw); err != nil {
			return nil, fmt.Errorf("%s: %w", StageExtract, err)
		}
	}

	// Phase 2: normalize
	done = r.metrics.Stage(StageNormalize)
	res.Tables, err = normalizer.NewProcessor(
		normalizer.WithSeed(r.cfg.Pipeline.Normalize.Seed),
		normalizer.WithClock(r.now),
		normalizer.WithLogger(log.Stage(StageNormalize)),
	).Process(raw)
	done()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageNormalize, err)
	}

	// Phase 3: calendar
	done = r.metrics.Stage(StageCalendar)
	res.Dates, err = BuildCalendar(r.cfg.Pipeline.Calendar, res.Tables)
	done()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageCalendar, err)
	}

	// Phase 4: project
	if err := r.project(ctx, log, res); err != nil {
		return nil, fmt.Errorf("%s: %w", StageProject, err)
	}

	// Phase 5: validate
	r.validate(res)

	// Phase 6: export
	if err := r.export(log, res); err != nil {
		return nil, fmt.Errorf("%s: %w", StageExport, err)
	}

	// Phase 7: load
	r.load(ctx, log, res)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Passed = len(res.LoadErrors) == 0
	for _, rep := range res.Reports {
		r.metrics.ObserveReport(rep)

		if !rep.Passed() {
			res.Passed = false
		}
	}

	log.Info("run complete", "passed", res.Passed, "duration", r.now().Sub(start))

	return res, nil
}

// BuildCalendar builds the date dimension of the configured range, widened to every
// order date when auto_extend is set.
func BuildCalendar(cfg config.CalendarConfig, ts *models.TableSet) ([]models.DateRow, error) {
	startYear, endYear := cfg.StartYear, cfg.EndYear

	if cfg.AutoExtend && ts != nil {
		dates := make([]time.Time, 0, len(ts.Orders))
		for _, o := range ts.Orders {
			dates = append(dates, o.OrderDate)
		}

		if lo, hi, ok := calendar.Span(dates); ok {
			startYear = min(startYear, lo)
			endYear = max(endYear, hi)
		}
	}

	return calendar.NewBuilder().Build(startYear, endYear)
}

func (r *Runner) project(ctx context.Context, log *logger.Logger, res *Result) error {
	defer r.metrics.Stage(StageProject)()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		join := star.LocationJoin(r.cfg.Pipeline.Star.LocationJoin)
		res.Star = star.NewProjector(join, log.Stage(models.LayoutStar)).Project(res.Tables, res.Dates)

		return gctx.Err()
	})

	g.Go(func() error {
		var err error
		res.Snowflake, err = snowflake.NewProjector(r.cfg.Pipeline.Snowflake.Parallel, log.Stage(models.LayoutSnowflake)).
			Project(gctx, res.Tables, res.Dates)

		return err
	})

	g.Go(func() error {
		res.Documents = document.NewProjector(log.Stage(models.LayoutDocument)).Project(res.Tables)

		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	r.metrics.ObserveTables(models.LayoutNormalized, res.Tables.Tables())
	r.metrics.ObserveTables(models.LayoutStar, res.Star.Tables())
	r.metrics.ObserveTables(models.LayoutSnowflake, res.Snowflake.Tables())
	r.metrics.ObserveTables(models.LayoutDocument, documentTables(res.Documents))

	return nil
}

func documentTables(docs *models.DocumentSet) []models.Table {
	return []models.Table{
		models.NewTable(models.CollectionUsers, docs.Users),
		models.NewTable(models.CollectionProducts, docs.Products),
		models.NewTable(models.CollectionOrders, docs.Orders),
	}
}

func (r *Runner) validate(res *Result) {
	defer r.metrics.Stage(StageValidate)()

	checker := integrity.NewChecker(r.cfg.Pipeline.Validation.FailOnWarnings)

	res.Reports = append(res.Reports,
		checker.CheckTableSet(res.Tables),
		checker.Check(models.LayoutStar, res.Star.Tables(), integrity.StarRelations),
		checker.Check(models.LayoutSnowflake, res.Snowflake.Tables(), integrity.SnowflakeRelations),
		checker.CheckDocuments(res.Documents),
	)
}

func (r *Runner) export(log *logger.Logger, res *Result) error {
	defer r.metrics.Stage(StageExport)()

	out := r.cfg.Pipeline.Output
	exp := export.New(out.BasePath, res.RunID, out.Formats, out.PrettyPrint,
		export.WithClock(r.now), export.WithLogger(log.Stage(StageExport)))

	for _, layout := range []struct {
		name   string
		tables []models.Table
	}{
		{models.LayoutNormalized, res.Tables.Tables()},
		{models.LayoutStar, res.Star.Tables()},
		{models.LayoutSnowflake, res.Snowflake.Tables()},
	} {
		written, err := exp.Export(layout.name, layout.tables)
		if err != nil {
			return err
		}

		res.Exports[layout.name] = written
	}

	written, err := exp.ExportDocuments(res.Documents)
	if err != nil {
		return err
	}

	res.Exports[models.LayoutDocument] = written

	return nil
}

func layoutTables(res *Result, layout string) []models.Table {
	switch layout {
	case models.LayoutNormalized:
		return res.Tables.Tables()
	case models.LayoutStar:
		return res.Star.Tables()
	case models.LayoutSnowflake:
		return res.Snowflake.Tables()
	default:
		return nil
	}
}

func layoutRelations(layout string) []integrity.Relation {
	switch layout {
	case models.LayoutStar:
		return integrity.StarRelations
	case models.LayoutSnowflake:
		return integrity.SnowflakeRelations
	default:
		return integrity.NormalizedRelations
	}
}

// load writes every enabled store. A failing layout or store is recorded and the
// remaining targets are still attempted.
func (r *Runner) load(ctx context.Context, log *logger.Logger, res *Result) {
	if r.relational == nil && r.documents == nil && r.cache == nil {
		return
	}

	defer r.metrics.Stage(StageLoad)()

	record := func(storeName string, loaded map[string]int, err error) {
		if res.Loads[storeName] == nil {
			res.Loads[storeName] = make(map[string]int)
		}

		for table, n := range loaded {
			res.Loads[storeName][table] = n
		}

		r.metrics.ObserveLoad(storeName, loaded)

		if err != nil {
			log.Error("load failed", "store", storeName, "error", err)
			res.LoadErrors = append(res.LoadErrors, err)
		}
	}

	if r.relational != nil {
		var loadedLayouts []string

		for _, layout := range r.cfg.RelationalLayouts() {
			graph, err := loadorder.ForLayout(layout)
			if err != nil {
				record(store.NameRelational, nil, err)
				continue
			}

			loaded, err := r.relational.Load(ctx, layout, layoutTables(res, layout), graph)
			record(store.NameRelational, loaded, err)

			if err == nil {
				loadedLayouts = append(loadedLayouts, layout)
			}
		}

		if r.cfg.Stores.Relational.Verify {
			r.verify(ctx, res, loadedLayouts)
		}
	}

	if r.documents != nil {
		loaded, err := r.documents.Load(ctx, res.Documents)
		record(store.NameDocuments, loaded, err)
	}

	if r.cache != nil {
		loaded, err := r.cache.Load(ctx, res.Documents)
		record(store.NameCache, loaded, err)
	}
}

// VerifyLayout names the report of a store-side check of a loaded layout.
func VerifyLayout(layout string) string {
	return store.NameRelational + "/" + layout
}

func (r *Runner) verify(ctx context.Context, res *Result, layouts []string) {
	defer r.metrics.Stage(StageVerify)()

	for _, layout := range layouts {
		report, err := r.relational.CheckReferences(ctx, VerifyLayout(layout), layoutRelations(layout))
		if err != nil {
			report.AddError(&integrity.LoadError{Store: store.NameRelational, Table: layout, Err: err})
		}

		res.Reports = append(res.Reports, report)
	}
}

// Stores holds the connections opened by Connect.
type Stores struct {
	Relational *store.Relational
	Mongo      *store.MongoWriter
	Cache      *store.Cache
	closers    []func() error
}

// Options returns runner options for every open store.
func (s *Stores) Options(log *logger.Logger) []Option {
	var opts []Option

	if s.Relational != nil {
		opts = append(opts, WithRelational(s.Relational))
	}

	if s.Mongo != nil {
		opts = append(opts, WithDocuments(store.NewDocuments(s.Mongo, log)))
	}

	if s.Cache != nil {
		opts = append(opts, WithCache(s.Cache))
	}

	return opts
}

// Close closes every connection, returning the joined errors.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}

	return errors.Join(errs...)
}

// Connect opens every enabled store. On failure the stores opened so far are closed.
func Connect(ctx context.Context, cfg *config.StoresConfig, log *logger.Logger) (*Stores, error) {
	if log == nil {
		log = logger.Discard()
	}

	s := &Stores{}

	if cfg.Relational.Enabled {
		rel, err := store.OpenRelational(cfg.Relational.Driver, cfg.Relational.DSN, cfg.Relational.BatchSize, log.Stage(store.NameRelational))
		if err != nil {
			return nil, err
		}

		s.Relational = rel
		s.closers = append(s.closers, rel.Close)
	}

	if cfg.Mongo.Enabled {
		mw, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.MongoTimeout())
		if err != nil {
			_ = s.Close()
			return nil, err
		}

		s.Mongo = mw
		s.closers = append(s.closers, func() error { return mw.Close(context.Background()) })
	}

	if cfg.Redis.Enabled {
		rdb, err := store.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = s.Close()
			return nil, err
		}

		s.Cache = store.NewCache(rdb, cfg.Redis.TTL.EntityTTL, log.Stage(store.NameCache))
		s.closers = append(s.closers, rdb.Close)
	}

	return s, nil
}
