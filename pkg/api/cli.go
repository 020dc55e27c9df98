package api

import (
	"github.com/urfave/cli/v2"

	"github.com/traffgo/traffgo/pkg/manager"
	"github.com/traffgo/traffgo/pkg/redis_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Provides the traffic web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "roads",
						Usage: "road graph file to decode against",
					},
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "file the message cache is persisted to",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					trafficManager, err := manager.Bootstrap(c.String("roads"), c.String("snapshot"))
					if err != nil {
						return err
					}
					defer trafficManager.Teardown()

					return SetupServer(c.String("listen"), trafficManager)
				},
			},
		},
	}
}
