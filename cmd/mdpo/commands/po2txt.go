package commands

import (
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/logfields"
	"git.home.luguber.info/inful/mdpo/internal/metrics"
	"git.home.luguber.info/inful/mdpo/internal/po"
)

// Po2txtCmd implements the 'po2txt' command.
type Po2txtCmd struct {
	Template string `arg:"" help:"Plain-text template"`
	PO       string `name:"po" short:"p" required:"" help:"Translated PO catalog"`
	Output   string `short:"o" help:"Output file (default: stdout)"`
	Wrap     int    `short:"w" help:"Wrap translated text at this column (0 = no wrap)" default:"0"`
}

func (p *Po2txtCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Configuration()
	if err != nil {
		return err
	}
	var registry *prom.Registry
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	start := time.Now()
	err = p.merge(g)
	recorder.ObserveStageDuration(metrics.StageMerge, time.Since(start))
	if err != nil {
		recorder.IncDocumentResult(metrics.ResultFailed)
	} else {
		recorder.IncDocumentResult(metrics.ResultSuccess)
	}
	if registry != nil {
		if merr := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); merr != nil {
			g.logger().Warn("Failed to write metrics textfile", logfields.Error(merr))
		}
	}
	return err
}

func (p *Po2txtCmd) merge(g *Global) error {
	start := time.Now()
	template, err := os.ReadFile(p.Template) // #nosec G304 -- user supplied template
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read template").
			WithContext("path", p.Template).
			Build()
	}
	f, err := os.Open(p.PO) // #nosec G304 -- user supplied catalog
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to open catalog").
			WithContext("path", p.PO).
			Build()
	}
	defer func() { _ = f.Close() }()

	catalog, err := po.Read(f)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return ce.WithContext("path", p.PO)
		}
		return err
	}

	merged := po.MergeText(string(template), catalog, po.MergeOptions{Wrap: p.Wrap})
	if p.Output == "" {
		if _, err := g.stdout().Write([]byte(merged)); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").Build()
		}
	} else if err := os.WriteFile(p.Output, []byte(merged), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", p.Output).
			Build()
	}
	g.logger().Debug("Merged translations",
		logfields.Path(p.Template),
		logfields.Count(catalog.Len()),
		logfields.Since(start))
	return nil
}
