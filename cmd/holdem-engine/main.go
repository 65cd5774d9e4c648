package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"holdem.hcl" type:"path" env:"HOLDEM_CONFIG" help:"HCL configuration file"`
	Debug    bool   `help:"Enable debug logging"`
	JSONLogs bool   `name:"json-logs" help:"Log JSON instead of console output"`
}

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Simulate    SimulateCmd      `cmd:"" help:"Run automated players across many tables and check chip conservation"`
	CheckConfig CheckConfigCmd   `cmd:"check-config" help:"Validate a configuration file"`
	Replay      ReplayCmd        `cmd:"" help:"Load a table snapshot and optionally play out its live hand"`
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-engine"),
		kong.Description("Texas Hold'em hand engine and table runner"),
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
