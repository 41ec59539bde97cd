package build

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdpo/internal/config"
	"git.home.luguber.info/inful/mdpo/internal/docmodel"
	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/logfields"
	"git.home.luguber.info/inful/mdpo/internal/markdown"
	"git.home.luguber.info/inful/mdpo/internal/metrics"
	"git.home.luguber.info/inful/mdpo/internal/observability"
	"git.home.luguber.info/inful/mdpo/internal/source"
	"git.home.luguber.info/inful/mdpo/internal/units"
)

// Request is one extraction pass.
type Request struct {
	// Config supplies extraction and output settings.
	Config *config.Config
	// Documents are extracted in the given order.
	Documents []source.Document
	// Output is a directory receiving one template per document, or, when it
	// ends in .pot or .po, a single combined catalog.
	Output string
	// Revision is recorded in the catalog headers when documents come from git.
	Revision string
	// Force rewrites catalogs whose source fingerprint is unchanged.
	Force bool
}

// Status is the outcome of a pass.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result summarizes a pass.
type Result struct {
	Status    Status
	Written   []string // catalog paths written
	Skipped   int      // documents whose catalog was up to date
	Documents int
	Units     int
	Duration  time.Duration
}

// Extraction is the per-document product of the extract stage.
type Extraction struct {
	Document    source.Document
	Store       *units.Store
	Fingerprint string
}

// Service runs extraction passes.
type Service struct {
	recorder  metrics.Recorder
	logger    *slog.Logger
	generator string
}

// NewService creates a service with a no-op recorder and the default logger.
func NewService() *Service {
	return &Service{recorder: metrics.NoopRecorder{}, logger: slog.Default()}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithGenerator sets the X-Generator header value.
func (s *Service) WithGenerator(g string) *Service {
	s.generator = g
	return s
}

// Run extracts every document and writes the catalogs.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if observability.GetContext(ctx).RunID == "" {
		ctx = observability.WithRunID(ctx, "")
	}
	res := &Result{Documents: len(req.Documents)}
	finish := func(status Status, err error) (*Result, error) {
		res.Status = status
		res.Duration = time.Since(start)
		return res, err
	}

	if req.Config == nil {
		return finish(StatusFailed, errors.ConfigError("config required").Build())
	}
	if req.Output == "" {
		return finish(StatusFailed, errors.ValidationError("output path required").Build())
	}

	extractions, err := s.ExtractAll(observability.WithStage(ctx, metrics.StageExtract), req.Config, req.Documents)
	if err != nil {
		if ctx.Err() != nil {
			return finish(StatusCancelled, ctx.Err())
		}
		return finish(StatusFailed, err)
	}
	for _, e := range extractions {
		res.Units += e.Store.Len()
	}

	exportStart := time.Now()
	observability.Logger(observability.WithStage(ctx, metrics.StageExport), s.logger).
		Debug("Writing catalogs", logfields.Output(req.Output))
	w := &writer{cfg: req.Config, revision: req.Revision, generator: s.generator, force: req.Force}
	if isCatalogFile(req.Output) {
		err = w.combined(req.Output, extractions, res)
	} else {
		err = w.perDocument(req.Output, extractions, res)
	}
	s.recorder.ObserveStageDuration(metrics.StageExport, time.Since(exportStart))
	for range res.Skipped {
		s.recorder.IncDocumentResult(metrics.ResultSkipped)
	}
	if err != nil {
		return finish(StatusFailed, err)
	}

	observability.Logger(ctx, s.logger).Info("Extraction complete",
		logfields.Count(res.Documents),
		logfields.Units(res.Units),
		slog.Int("written", len(res.Written)),
		slog.Int("skipped", res.Skipped),
		logfields.Since(start))
	return finish(StatusSuccess, nil)
}

// ExtractAll extracts docs with at most cfg.Extract.Workers goroutines. The
// result is in input order. The first failure cancels the remaining work.
func (s *Service) ExtractAll(ctx context.Context, cfg *config.Config, docs []source.Document) ([]Extraction, error) {
	workers := max(cfg.Extract.Workers, 1)
	s.recorder.SetWorkers(workers)
	defer s.recorder.SetWorkers(0)

	extractor := markdown.NewExtractor(markdown.Options{
		OpaqueHTMLTags:  cfg.Extract.OpaqueHTMLTags,
		FrontmatterKeys: cfg.Extract.FrontmatterKeys,
	}).WithRecorder(s.recorder).WithLogger(s.logger)

	out := make([]Extraction, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			store, err := extractor.Extract(observability.WithDocument(gctx, doc.Path), doc.Path, doc.Content)
			if err != nil {
				return err
			}
			fp, err := fingerprint(doc, cfg)
			if err != nil {
				return err
			}
			out[i] = Extraction{Document: doc, Store: store, Fingerprint: fp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func fingerprint(doc source.Document, cfg *config.Config) (string, error) {
	parsed, err := docmodel.Parse(doc.Content, docmodel.Options{FrontmatterKeys: cfg.Extract.FrontmatterKeys})
	if err != nil {
		return "", err
	}
	fp, err := parsed.Fingerprint()
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return "", ce.WithContext("document", doc.Path)
		}
		return "", err
	}
	return fp, nil
}
