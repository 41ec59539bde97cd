package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdpo/internal/build"
	"git.home.luguber.info/inful/mdpo/internal/config"
	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/logfields"
	"git.home.luguber.info/inful/mdpo/internal/metrics"
	"git.home.luguber.info/inful/mdpo/internal/source"
	"git.home.luguber.info/inful/mdpo/internal/version"
	"git.home.luguber.info/inful/mdpo/internal/watch"
)

// ExtractCmd implements the 'extract' command.
type ExtractCmd struct {
	Paths []string `arg:"" optional:"" help:"Markdown files or directories (default: current directory)"`
	Out   string   `short:"o" help:"Output directory, or a .pot/.po file for one combined catalog (default: output.directory)"`
	Rev   string   `help:"Read documents from this git revision instead of the worktree"`
	Repo  string   `help:"Repository used with --rev" default:"."`
	Watch bool     `short:"w" help:"Re-extract whenever a Markdown file changes"`
	Force bool     `short:"f" help:"Rewrite catalogs even when their sources are unchanged"`
}

func (e *ExtractCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Configuration()
	if err != nil {
		return err
	}
	if e.Watch && e.Rev != "" {
		return errors.ValidationError("--watch cannot be combined with --rev").Build()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newExtractRunner(e, cfg, g)
	if err := r.run(ctx); err != nil {
		return err
	}
	if !e.Watch {
		return nil
	}

	matcher, err := source.NewMatcher(cfg.Extract.Include)
	if err != nil {
		return err
	}
	w, err := watch.New(e.paths(), matcher.Match, func(ctx context.Context, changed []string) error {
		g.logger().Info("Re-extracting", logfields.Count(len(changed)))
		return r.run(ctx)
	}, watch.WithLogger(g.logger()))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (e *ExtractCmd) paths() []string {
	if len(e.Paths) == 0 {
		return []string{"."}
	}
	return e.Paths
}

type extractRunner struct {
	cmd      *ExtractCmd
	cfg      *config.Config
	g        *Global
	service  *build.Service
	registry *prom.Registry
}

func newExtractRunner(e *ExtractCmd, cfg *config.Config, g *Global) *extractRunner {
	r := &extractRunner{cmd: e, cfg: cfg, g: g}
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		r.registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(r.registry)
	}
	r.service = build.NewService().
		WithRecorder(recorder).
		WithLogger(g.logger()).
		WithGenerator(version.Generator())
	return r
}

func (r *extractRunner) run(ctx context.Context) error {
	docs, revision, err := r.load()
	if err != nil {
		return err
	}
	out := r.cmd.Out
	if out == "" {
		out = r.cfg.Output.Directory
	}
	res, err := r.service.Run(ctx, build.Request{
		Config:    r.cfg,
		Documents: docs,
		Output:    out,
		Revision:  revision,
		Force:     r.cmd.Force,
	})
	if r.registry != nil {
		if merr := metrics.WriteTextfile(r.cfg.Metrics.Textfile, r.registry); merr != nil {
			r.g.logger().Warn("Failed to write metrics textfile", logfields.Error(merr))
		}
	}
	if err != nil {
		return err
	}
	for _, p := range res.Written {
		r.g.logger().Debug("Wrote catalog", logfields.Output(p))
	}
	return nil
}

// load reads the documents named on the command line, from the worktree or
// from the requested revision.
func (r *extractRunner) load() ([]source.Document, string, error) {
	include := r.cfg.Extract.Include
	if r.cmd.Rev != "" {
		snap, err := source.GitRevision(r.cmd.Repo, r.cmd.Rev, include)
		if err != nil {
			return nil, "", err
		}
		r.g.logger().Info("Read documents from revision",
			logfields.Revision(snap.Commit),
			logfields.Count(len(snap.Documents)))
		return filterPrefixes(snap.Documents, r.cmd.Paths), snap.Commit, nil
	}

	var docs []source.Document
	for _, p := range r.cmd.paths() {
		info, err := os.Stat(p)
		if err != nil {
			return nil, "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
				WithContext("path", p).
				Build()
		}
		if !info.IsDir() {
			doc, err := source.File(p)
			if err != nil {
				return nil, "", err
			}
			docs = append(docs, doc)
			continue
		}
		found, err := source.Dir(p, include)
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, found...)
	}
	return docs, "", nil
}

// filterPrefixes keeps documents below one of the given repository paths.
func filterPrefixes(docs []source.Document, prefixes []string) []source.Document {
	if len(prefixes) == 0 {
		return docs
	}
	var out []source.Document
	for _, d := range docs {
		for _, p := range prefixes {
			p = strings.Trim(p, "/")
			if p == "" || p == "." || d.Path == p || strings.HasPrefix(d.Path, p+"/") {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
