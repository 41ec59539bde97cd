package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdpo/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"mdpo.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (auto, text or json); auto follows the configuration" enum:"auto,text,json" default:"auto"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Extract ExtractCmd `cmd:"" help:"Extract translation units from Markdown into PO templates"`
	Units   UnitsCmd   `cmd:"" help:"Print the translation units of a Markdown file"`
	Po2txt  Po2txtCmd  `cmd:"" name:"po2txt" help:"Merge a PO catalog into a plain-text template"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`

	cfg    *config.Config
	cfgErr error
}

// AfterApply runs after flag parsing: it loads the configuration, if any,
// and installs the logger it selects.
func (c *CLI) AfterApply(g *Global) error {
	var warnings []string
	c.cfg, warnings, c.cfgErr = c.loadConfig()

	level := config.LogLevelInfo
	format := config.LogFormatText
	if c.cfg != nil {
		level = c.cfg.Logging.Level
		format = c.cfg.Logging.Format
	}
	if c.Verbose {
		level = config.LogLevelDebug
	}
	if c.LogFormat != "" && c.LogFormat != "auto" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	g.Logger = newLogger(g.stderr(), level, format)
	slog.SetDefault(g.Logger)
	for _, w := range warnings {
		g.Logger.Warn("Configuration normalized", slog.String("detail", w))
	}
	return nil
}

// loadConfig returns the defaults when the configuration file does not exist.
func (c *CLI) loadConfig() (*config.Config, []string, error) {
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		return config.Default(), nil, nil
	}
	res, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, err
	}
	return res.Config, res.Warnings, nil
}

// Configuration returns the loaded configuration or the error that
// prevented loading it.
func (c *CLI) Configuration() (*config.Config, error) {
	return c.cfg, c.cfgErr
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
