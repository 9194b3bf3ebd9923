package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config   string `kong:"default='blackjack.hcl',type='path',help='HCL configuration file (ignored if missing)'"`
	LogLevel string `kong:"name='log-level',help='Log level: debug, info, warn or error (overrides config)'"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Run     RunCmd           `cmd:"" default:"withargs" help:"Play a blackjack session between the dealer and two players"`
	History HistoryCmd       `cmd:"" help:"List recorded sessions"`
	Player  PlayerCmd        `cmd:"" hidden:"" help:"Play one seat over inherited file descriptors"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack between a dealer and two players connected only by message channels"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
