package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/markdown"
	"git.home.luguber.info/inful/mdpo/internal/source"
	"git.home.luguber.info/inful/mdpo/internal/units"
)

// UnitsCmd implements the 'units' command.
type UnitsCmd struct {
	Path   string `arg:"" help:"Markdown file"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

type unitJSON struct {
	Index  int    `json:"index"`
	Line   int    `json:"line,omitempty"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
	ID     string `json:"id"`
}

func (u *UnitsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Configuration()
	if err != nil {
		return err
	}
	doc, err := source.File(u.Path)
	if err != nil {
		return err
	}
	store, err := markdown.NewExtractor(markdown.Options{
		OpaqueHTMLTags:  cfg.Extract.OpaqueHTMLTags,
		FrontmatterKeys: cfg.Extract.FrontmatterKeys,
	}).WithLogger(g.logger()).Extract(context.Background(), doc.Path, doc.Content)
	if err != nil {
		return err
	}

	if u.Format == "json" {
		return writeUnitsJSON(g, store)
	}
	for _, unit := range store.All() {
		line := "-"
		if unit.Location.Line > 0 {
			line = strconv.Itoa(unit.Location.Line)
		}
		text := strings.ReplaceAll(unit.Source, "\n", `\n`)
		if _, err := fmt.Fprintf(g.stdout(), "%d\t%s\t%s\t%s\n", unit.Location.Index, line, unit.Kind, text); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write units").Build()
		}
	}
	return nil
}

func writeUnitsJSON(g *Global, store *units.Store) error {
	out := make([]unitJSON, 0, store.Len())
	for _, unit := range store.All() {
		out = append(out, unitJSON{
			Index:  unit.Location.Index,
			Line:   unit.Location.Line,
			Kind:   string(unit.Kind),
			Source: unit.Source,
			ID:     unit.ID,
		})
	}
	enc := json.NewEncoder(g.stdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.WrapError(err, errors.CategoryExport, "failed to encode units").Build()
	}
	return nil
}
