package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/NicolasHaas/ledgerpro/pkg/cli"
	"github.com/NicolasHaas/ledgerpro/pkg/logging"
)

func main() {
	// Optional .env in the working directory; real env vars win.
	_ = godotenv.Load()

	// Default to "warn" so command output stays clean; override with
	// LEDGERPRO_LOG_LEVEL (debug, info, warn, error).
	level := "warn"
	if v := os.Getenv("LEDGERPRO_LOG_LEVEL"); v != "" {
		level = v
	}
	format := "text"
	if v := os.Getenv("LEDGERPRO_LOG_FORMAT"); v != "" {
		format = v
	}
	_ = logging.Setup(logging.Options{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
