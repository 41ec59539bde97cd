package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdpo/cmd/mdpo/commands"
	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	ctx := kong.Parse(&cli,
		kong.Name("mdpo"),
		kong.Description("Extract translatable text from Markdown into gettext PO catalogs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	err := ctx.Run(global, &cli)
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	os.Exit(adapter.Report(err))
}
