// Package build provides the canonical build execution pipeline for
// docpress. All execution paths (CLI, daemon, tests) route through Runner:
// resolve routes → fetch documents → derive metadata → write pre-render
// inputs → verify links → publish.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docpress/docpress/internal/config"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/history"
	"github.com/docpress/docpress/internal/linkcheck"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/meta"
	"github.com/docpress/docpress/internal/metrics"
	"github.com/docpress/docpress/internal/nav"
	"github.com/docpress/docpress/internal/notify"
	"github.com/docpress/docpress/internal/observability"
	"github.com/docpress/docpress/internal/routes"
	"github.com/docpress/docpress/internal/search"
	"github.com/docpress/docpress/internal/store"
)

// Options modify a single build run. Zero values fall back to the
// configuration's build section.
type Options struct {
	// OutputDir overrides build.output_dir.
	OutputDir string
	// Strict makes resolution and fetch failures fail the build instead of
	// degrading it to an empty or partial output.
	Strict bool
	// Clean removes the output directory before writing.
	Clean bool
}

// Result is the outcome of one build run.
type Result struct {
	Manifest   *manifest.BuildManifest
	OutputPath string
}

// fetchedPage pairs the derived metadata of one route with its raw body.
type fetchedPage struct {
	meta *meta.PageMeta
	body []byte
}

// Runner executes builds against one configuration. The store client is
// created from the configuration unless injected; search, notify and
// history stay disabled until wired in.
type Runner struct {
	cfg      *config.Config
	store    store.Client
	recorder metrics.Recorder
	search   *search.Publisher
	notify   *notify.Publisher
	history  *history.Store
}

// NewRunner creates a build runner over the given configuration.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    store.NewHTTPClient(cfg.Store),
		recorder: metrics.NoopRecorder{},
	}
}

// WithStore injects a store client, replacing the HTTP default.
func (r *Runner) WithStore(client store.Client) *Runner {
	r.store = client
	return r
}

// WithRecorder routes build metrics to the given recorder.
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	if rec != nil {
		r.recorder = rec
	}
	return r
}

// WithSearchPublisher enables remote search index publishing. A nil
// publisher keeps the local search.json artifact only.
func (r *Runner) WithSearchPublisher(p *search.Publisher) *Runner {
	r.search = p
	return r
}

// WithNotifyPublisher enables build event notifications.
func (r *Runner) WithNotifyPublisher(p *notify.Publisher) *Runner {
	r.notify = p
	return r
}

// WithHistory records build runs and events in the given store.
func (r *Runner) WithHistory(st *history.Store) *Runner {
	r.history = st
	return r
}

// Run executes one complete build. Failure policy: by default a route
// resolution failure degrades the build to an empty route set and a
// per-document fetch failure skips that page, both recorded as manifest
// issues; with Strict either fails the run. The returned Result carries
// the manifest in every case, including failures.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = r.cfg.Build.OutputDir
	}
	if outputDir == "" {
		outputDir = "./public"
	}
	strict := opts.Strict || r.cfg.Build.Strict
	clean := opts.Clean || r.cfg.Build.Clean

	m := manifest.New(manifest.Inputs{
		Endpoint:    r.cfg.Store.Endpoint,
		Branch:      r.cfg.Store.Branch,
		ContentRoot: r.cfg.Store.ContentRoot,
		ConfigHash:  r.cfg.Snapshot(),
	})
	res := &Result{Manifest: m, OutputPath: outputDir}

	ctx = observability.WithBuildID(ctx, m.ID)
	observability.InfoContext(ctx, "Build started",
		logfields.Endpoint(r.cfg.Store.Endpoint),
		logfields.Branch(r.cfg.Store.Branch),
		slog.Bool("strict", strict))
	r.recordEvent(ctx, m.ID, "build_started", "")

	// Stage 1: resolve the route set. Strictly sequential pagination; any
	// page failure poisons the whole set.
	stageStart := time.Now()
	stageCtx := observability.WithStage(ctx, "resolve")
	resolution := routes.NewResolver(r.store, r.cfg.Store.ContentRoot).Resolve(ctx)
	r.recorder.ObserveStageDuration("resolve", time.Since(stageStart))

	params := resolution.Routes
	degraded := false
	if !resolution.Complete() {
		if strict {
			r.recorder.IncStageResult("resolve", metrics.ResultFatal)
			return r.abort(ctx, res, ferrors.BuildError("route resolution failed").
				WithCause(resolution.Err).
				Build())
		}
		observability.ErrorContext(stageCtx, "Route resolution failed, continuing with empty route set",
			logfields.Error(resolution.Err),
			logfields.Page(resolution.Pages))
		params = []routes.RouteParam{}
		m.AddIssue(fmt.Sprintf("route resolution failed: %v", resolution.Err))
		degraded = true
		r.recorder.IncStageResult("resolve", metrics.ResultWarning)
	} else {
		r.recorder.IncStageResult("resolve", metrics.ResultSuccess)
	}
	if params == nil {
		params = []routes.RouteParam{}
	}

	m.Counts.Routes = len(params)
	m.Counts.ListPages = resolution.Pages
	r.recorder.SetRoutesResolved(len(params))
	observability.InfoContext(stageCtx, "Routes resolved",
		logfields.Count(len(params)),
		logfields.Page(resolution.Pages))
	r.recordEvent(ctx, m.ID, "routes_resolved",
		fmt.Sprintf("%d routes from %d listing pages", len(params), resolution.Pages))

	// Stage 2: fetch each document and derive its metadata, one request at
	// a time; the store client owns the per-request timeout.
	stageStart = time.Now()
	stageCtx = observability.WithStage(ctx, "fetch")
	metaResolver := meta.NewResolver(r.store, r.cfg.Site, r.cfg.Store.ContentRoot)

	fetched := make([]fetchedPage, 0, len(params))
	titles := make(map[string]string, len(params))
	fetchFailures := 0

	for _, param := range params {
		select {
		case <-ctx.Done():
			r.recorder.IncStageResult("fetch", metrics.ResultCanceled)
			return r.abort(ctx, res, ctx.Err())
		default:
		}

		rec, err := metaResolver.FetchRecord(ctx, param.Slug)
		if err != nil {
			if strict {
				r.recorder.IncStageResult("fetch", metrics.ResultFatal)
				return r.abort(ctx, res, ferrors.BuildError("document fetch failed").
					WithCause(err).
					WithContext("slug", routes.JoinSlug(param.Slug)).
					Build())
			}
			observability.WarnContext(stageCtx, "Skipping unfetchable document",
				logfields.Slug(routes.JoinSlug(param.Slug)),
				logfields.Error(err))
			m.AddIssue(fmt.Sprintf("document fetch failed for %s: %v", routes.JoinSlug(param.Slug), err))
			fetchFailures++
			continue
		}

		pm := metaResolver.FromRecord(rec, param.Slug)
		fetched = append(fetched, fetchedPage{meta: pm, body: []byte(rec.Body)})
		titles[routes.JoinSlug(param.Slug)] = pm.Title
	}
	r.recorder.ObserveStageDuration("fetch", time.Since(stageStart))
	r.recorder.AddDocumentsFetched(len(fetched))
	m.Counts.Documents = len(fetched)
	if fetchFailures > 0 {
		degraded = true
		r.recorder.IncStageResult("fetch", metrics.ResultWarning)
	} else {
		r.recorder.IncStageResult("fetch", metrics.ResultSuccess)
	}
	observability.InfoContext(stageCtx, "Documents fetched",
		logfields.Count(len(fetched)),
		slog.Int("failed", fetchFailures))
	r.recordEvent(ctx, m.ID, "documents_fetched",
		fmt.Sprintf("%d fetched, %d failed", len(fetched), fetchFailures))

	// Stage 3: verify internal links against the resolved route set.
	stageStart = time.Now()
	stageCtx = observability.WithStage(ctx, "linkcheck")
	checkPages := make([]linkcheck.Page, len(fetched))
	for i, fp := range fetched {
		checkPages[i] = linkcheck.Page{Slug: fp.meta.Slug, Body: fp.body}
	}
	report := linkcheck.NewChecker(params, r.cfg.Site).Check(checkPages)
	r.recorder.ObserveStageDuration("linkcheck", time.Since(stageStart))
	r.recorder.SetBrokenLinks(len(report.Issues))
	m.Counts.BrokenLinks = len(report.Issues)
	for _, issue := range report.Issues {
		m.AddIssue(fmt.Sprintf("broken link on %s: %s (%s)", issue.Route, issue.Target, issue.Reason))
	}
	if report.Clean() {
		r.recorder.IncStageResult("linkcheck", metrics.ResultSuccess)
	} else {
		observability.WarnContext(stageCtx, "Broken internal links found",
			logfields.Count(len(report.Issues)),
			slog.Int("checked", report.Checked))
		r.recorder.IncStageResult("linkcheck", metrics.ResultWarning)
	}

	// Stage 4: write the pre-render inputs.
	stageStart = time.Now()
	stageCtx = observability.WithStage(ctx, "outputs")
	tree := nav.Build(params, titles, r.cfg.Site)
	entries := make([]search.Entry, len(fetched))
	for i, fp := range fetched {
		entries[i] = search.EntryFromPage(fp.meta, fp.body)
	}
	if err := writeOutputs(outputDir, m, outputsInput{
		params:  params,
		tree:    tree,
		pages:   fetched,
		entries: entries,
		lastMod: m.StartedAt.Format("2006-01-02"),
		clean:   clean,
	}); err != nil {
		r.recorder.ObserveStageDuration("outputs", time.Since(stageStart))
		r.recorder.IncStageResult("outputs", metrics.ResultFatal)
		return r.abort(ctx, res, err)
	}
	r.recorder.ObserveStageDuration("outputs", time.Since(stageStart))
	r.recorder.IncStageResult("outputs", metrics.ResultSuccess)
	observability.InfoContext(stageCtx, "Outputs written",
		logfields.Path(outputDir),
		slog.Int("artifacts", len(m.Outputs)))
	r.recordEvent(ctx, m.ID, "outputs_written", fmt.Sprintf("%d artifacts", len(m.Outputs)))

	// Stage 5: publish the search index. Skipped for degraded builds so a
	// failed resolution never wipes the live index.
	if r.search != nil {
		stageCtx = observability.WithStage(ctx, "publish")
		if degraded {
			observability.WarnContext(stageCtx, "Skipping search publish for degraded build",
				logfields.Index(r.search.IndexName()))
		} else {
			stageStart = time.Now()
			err := r.search.Publish(ctx, entries)
			r.recorder.ObserveStageDuration("publish", time.Since(stageStart))
			if err != nil {
				observability.ErrorContext(stageCtx, "Search publish failed",
					logfields.Index(r.search.IndexName()),
					logfields.Error(err))
				m.AddIssue(fmt.Sprintf("search publish failed: %v", err))
				degraded = true
				r.recorder.IncStageResult("publish", metrics.ResultWarning)
			} else {
				r.recorder.IncStageResult("publish", metrics.ResultSuccess)
				r.recordEvent(ctx, m.ID, "search_published",
					fmt.Sprintf("%d entries to %s", len(entries), r.search.IndexName()))
			}
		}
	}

	status := manifest.StatusCompleted
	if degraded {
		status = manifest.StatusDegraded
	}
	m.Finish(status)

	if err := writeManifest(outputDir, m); err != nil {
		return r.abort(ctx, res, err)
	}

	r.recorder.IncBuildOutcome(string(status))
	r.recorder.ObserveBuildDuration(time.Duration(m.Duration) * time.Millisecond)
	r.recordEvent(ctx, m.ID, "build_finished", string(status))
	r.logIfUnchanged(ctx, m)
	r.recordHistory(ctx, m)
	r.publishNotification(ctx, m)

	observability.InfoContext(ctx, "Build finished",
		logfields.Status(string(status)),
		logfields.Count(m.Counts.Routes),
		slog.Int("documents", m.Counts.Documents),
		slog.Int("broken_links", m.Counts.BrokenLinks),
		logfields.Duration(time.Duration(m.Duration)*time.Millisecond))
	return res, nil
}

// abort finalizes a failed run: the manifest is stamped, history and
// notify still get their records, and the original error is returned. No
// output files are written.
func (r *Runner) abort(ctx context.Context, res *Result, err error) (*Result, error) {
	m := res.Manifest
	m.AddIssue(err.Error())
	m.Finish(manifest.StatusFailed)

	r.recorder.IncBuildOutcome(string(manifest.StatusFailed))
	r.recorder.ObserveBuildDuration(time.Duration(m.Duration) * time.Millisecond)

	// The build context may already be canceled; the audit trail still
	// needs to go out.
	trailCtx := context.WithoutCancel(ctx)
	r.recordEvent(trailCtx, m.ID, "build_finished", string(manifest.StatusFailed))
	r.recordHistory(trailCtx, m)
	r.publishNotification(trailCtx, m)

	observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	return res, err
}

func (r *Runner) recordHistory(ctx context.Context, m *manifest.BuildManifest) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordBuild(ctx, m); err != nil {
		observability.WarnContext(ctx, "Failed to record build history", logfields.Error(err))
	}
}

// logIfUnchanged compares the finished manifest's content hash against the
// most recent recorded build. Scheduled daemon rebuilds usually find nothing
// new; the log line makes that visible. Must run before recordHistory, which
// would make this build its own predecessor.
func (r *Runner) logIfUnchanged(ctx context.Context, m *manifest.BuildManifest) {
	if r.history == nil {
		return
	}
	recent, err := r.history.RecentBuilds(ctx, 1)
	if err != nil || len(recent) == 0 || recent[0].Manifest == nil {
		return
	}
	prev, err := recent[0].Manifest.Hash()
	if err != nil {
		return
	}
	current, err := m.Hash()
	if err != nil {
		return
	}
	if prev == current {
		observability.InfoContext(ctx, "Build outputs identical to previous build",
			logfields.BuildID(recent[0].ID))
	}
}

func (r *Runner) recordEvent(ctx context.Context, buildID, eventType, detail string) {
	if r.history == nil {
		return
	}
	if err := r.history.AppendEvent(ctx, buildID, eventType, detail); err != nil {
		observability.WarnContext(ctx, "Failed to record build event",
			slog.String("event", eventType),
			logfields.Error(err))
	}
}

func (r *Runner) publishNotification(ctx context.Context, m *manifest.BuildManifest) {
	if r.notify == nil {
		return
	}
	if err := r.notify.PublishBuildEvent(ctx, notify.EventFromManifest(m)); err != nil {
		observability.WarnContext(ctx, "Build notification failed", logfields.Error(err))
	}
}
