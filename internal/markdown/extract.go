package markdown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mdpo/internal/docmodel"
	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/logfields"
	"git.home.luguber.info/inful/mdpo/internal/metrics"
	"git.home.luguber.info/inful/mdpo/internal/observability"
	"git.home.luguber.info/inful/mdpo/internal/units"
)

// Options controls extraction.
type Options struct {
	// Document names the source in unit locations and IDs.
	Document string
	// OpaqueHTMLTags lists extra HTML block tags that are never translated.
	OpaqueHTMLTags []string
	// FrontmatterKeys lists frontmatter keys whose values are translatable.
	FrontmatterKeys []string
}

// Extract returns the translation units of a Markdown document, in document
// order. Extracting a well-formed document never fails; errors come from
// malformed frontmatter.
func Extract(src []byte, opts Options) (*units.Store, error) {
	return NewExtractor(opts).Extract(context.Background(), opts.Document, src)
}

// Extractor extracts translation units and reports them to a metrics recorder.
// An Extractor holds no per-document state and may be shared by goroutines.
type Extractor struct {
	opts     Options
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewExtractor creates an extractor with a no-op recorder and the default logger.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
}

// WithRecorder sets the metrics recorder.
func (e *Extractor) WithRecorder(r metrics.Recorder) *Extractor {
	if r != nil {
		e.recorder = r
	}
	return e
}

// WithLogger sets the logger.
func (e *Extractor) WithLogger(l *slog.Logger) *Extractor {
	if l != nil {
		e.logger = l
	}
	return e
}

// Extract splits off frontmatter, walks the body and returns the frozen store
// of units for the named document.
func (e *Extractor) Extract(ctx context.Context, name string, src []byte) (store *units.Store, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		e.recorder.ObserveStageDuration(metrics.StageExtract, time.Since(start))
		if err != nil {
			e.recorder.IncDocumentResult(metrics.ResultFailed)
		}
	}()

	doc, err := docmodel.Parse(src, docmodel.Options{FrontmatterKeys: e.opts.FrontmatterKeys})
	if err != nil {
		return nil, withDocument(err, name)
	}

	store, err = e.extractDoc(name, doc)
	if err != nil {
		return nil, withDocument(err, name)
	}

	for kind, n := range store.CountByKind() {
		e.recorder.AddUnits(string(kind), n)
	}
	e.recorder.IncDocumentResult(metrics.ResultSuccess)
	logger := observability.Logger(ctx, e.logger)
	if observability.GetContext(ctx).Document == "" {
		logger = logger.With(logfields.Document(name))
	}
	logger.Debug("Extracted translation units",
		logfields.Units(store.Len()),
		logfields.Since(start))
	return store, nil
}

func (e *Extractor) extractDoc(name string, doc *docmodel.ParsedDoc) (store *units.Store, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.ClassifiedError); ok {
				store, err = nil, ce
				return
			}
			err = errors.InternalError("extraction panicked").
				WithContext("panic", fmt.Sprint(r)).
				Build()
			store = nil
		}
	}()

	store = units.NewStore(name)
	for _, f := range doc.TranslatableFields() {
		if text := NormalizeWhitespace(f.Value); text != "" {
			store.Append(text, units.KindFrontmatter, f.Line)
		}
	}

	offset := doc.LineOffset()
	appendUnit := func(text string, kind units.Kind, line int) {
		if text == "" {
			return
		}
		if line > 0 {
			line += offset
		}
		store.Append(text, kind, line)
	}

	md := Parse(doc.Body())
	refs := newCollector(md)
	for c := range Walk(md, WalkOptions{OpaqueHTMLTags: e.opts.OpaqueHTMLTags}) {
		if def, ok := c.Node.(*LinkReferenceDefinition); ok {
			for _, p := range refs.definition(def) {
				appendUnit(p.text, p.kind, c.Line)
			}
			continue
		}
		appendUnit(c.Text, c.UnitKind(), c.Line)
		for _, p := range refs.titles(c.Links) {
			appendUnit(p.text, p.kind, c.Line)
		}
	}
	for _, def := range md.Orphans {
		for _, p := range refs.definition(def) {
			appendUnit(p.text, p.kind, 0)
		}
	}

	store.Freeze()
	return store, nil
}

func withDocument(err error, name string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("document", name)
	}
	return errors.WrapError(err, errors.CategoryParse, "failed to extract document").
		WithContext("document", name).
		Build()
}
