package source

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"

	"github.com/traffgo/traffgo/pkg/redis_client"
	"github.com/traffgo/traffgo/pkg/traff"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Work with TraFF feed documents",
		Subcommands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "parse a feed file and pretty-print it",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one feed file")
					}

					file, err := os.Open(c.Args().First())
					if err != nil {
						return err
					}
					defer file.Close()

					feed, err := traff.ParseFeed(file)
					if err != nil {
						return err
					}

					pretty.Println(feed)
					fmt.Printf("%d messages\n", len(feed))

					return nil
				},
			},
			{
				Name:      "push",
				Usage:     "publish a feed file to the feed queue",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one feed file")
					}

					document, err := os.ReadFile(c.Args().First())
					if err != nil {
						return err
					}

					// parse first so broken documents never hit the queue
					feed, err := traff.ParseFeed(bytes.NewReader(document))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := PublishFeed(string(document)); err != nil {
						return err
					}

					fmt.Printf("published %d messages\n", len(feed))

					return nil
				},
			},
		},
	}
}
