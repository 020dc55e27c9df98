package manager

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/traffgo/traffgo/pkg/config"
	"github.com/traffgo/traffgo/pkg/consumer"
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/redis_client"
	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/source"
	"github.com/traffgo/traffgo/pkg/storage"
)

// Bootstrap builds a manager in server mode: road graph from a file (or an
// empty one), registered sources from data/trafficsources/, traffic enabled
// for the whole graph.
func Bootstrap(roadsFile string, snapshotFile string) (*Manager, error) {
	var graph *roadgraph.MemGraph
	var registry *mwm.MemRegistry
	var err error

	if roadsFile != "" {
		graph, registry, err = roadgraph.LoadFile(roadsFile)
		if err != nil {
			return nil, err
		}
	} else {
		graph = roadgraph.NewMemGraph()
		registry = mwm.NewMemRegistry()
	}

	var store storage.Storage
	if snapshotFile != "" {
		store = storage.NewLocalStorage(snapshotFile)
	}

	registeredSources, err := config.GetRegisteredSources()
	if err != nil {
		return nil, err
	}

	for _, registered := range registeredSources {
		if registered.Transport == "queue" {
			if redis_client.Client == nil {
				if err := redis_client.Connect(); err != nil {
					return nil, err
				}
			}
			go consumer.StartStatsServer(source.FeedQueueName, ":3333")
			break
		}
	}

	m := New(Options{
		Registry: registry,
		Graph:    graph,
		Router:   graph,
		Storage:  store,
	})
	registry.OnDeregister(m.OnMwmDeregistered)

	for _, registered := range registeredSources {
		src, err := source.FromConfig(registered, m)
		if err != nil {
			m.Teardown()
			return nil, err
		}
		m.AddSource(src)
	}

	m.SetEnabled(true)
	m.UpdateViewport(geo.RectLatLon{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180})

	return m, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Provides the traffic worker",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the traffic worker",
				Flags: []cli.Flag{
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
					trafficManager, err := Bootstrap(c.String("roads"), c.String("snapshot"))
					if err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					trafficManager.Teardown()

					return nil
				},
			},
		},
	}
}
