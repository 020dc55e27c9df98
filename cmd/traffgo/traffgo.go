package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/traffgo/traffgo/pkg/api"
	"github.com/traffgo/traffgo/pkg/manager"
	"github.com/traffgo/traffgo/pkg/source"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TRAFFGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAFFGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "traffgo",
		Description: "Single binary of truth for Traffgo - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			manager.RegisterCLI(),
			source.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
