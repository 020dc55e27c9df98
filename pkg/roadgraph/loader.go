package roadgraph

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
)

// ParseHighwayType maps a classification string back to its HighwayType.
func ParseHighwayType(value string) HighwayType {
	for t := HighwayMotorway; t <= HighwayFerry; t++ {
		if t.String() == value {
			return t
		}
	}
	return HighwayUnknown
}

type graphFile struct {
	LeftHandTraffic bool `yaml:"lefthandtraffic,omitempty"`

	Tiles []struct {
		Name    string `yaml:"name"`
		Version int64  `yaml:"version"`
		Bounds  struct {
			MinLat float64 `yaml:"minlat"`
			MinLon float64 `yaml:"minlon"`
			MaxLat float64 `yaml:"maxlat"`
			MaxLon float64 `yaml:"maxlon"`
		} `yaml:"bounds"`
	} `yaml:"tiles"`

	Roads []struct {
		Tile       string      `yaml:"tile"`
		Fid        uint32      `yaml:"fid"`
		Highway    string      `yaml:"highway"`
		OneWay     bool        `yaml:"oneway,omitempty"`
		Roundabout bool        `yaml:"roundabout,omitempty"`
		Refs       []string    `yaml:"refs,omitempty"`
		Maxspeed   float64     `yaml:"maxspeed,omitempty"`
		Points     [][]float64 `yaml:"points"`
	} `yaml:"roads"`
}

// LoadFile reads a road graph description from a YAML file into a MemGraph
// and a tile registry for it. Used by the demo commands; a real deployment
// would plug in its own Graph and Router.
func LoadFile(path string) (*MemGraph, *mwm.MemRegistry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var parsed graphFile
	if err := yaml.NewDecoder(file).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	registry := mwm.NewMemRegistry()
	tiles := map[string]mwm.ID{}
	for _, tile := range parsed.Tiles {
		id := mwm.ID{Name: tile.Name, Version: tile.Version}
		tiles[tile.Name] = id
		registry.Register(id, geo.RectLatLon{
			MinLat: tile.Bounds.MinLat,
			MinLon: tile.Bounds.MinLon,
			MaxLat: tile.Bounds.MaxLat,
			MaxLon: tile.Bounds.MaxLon,
		})
	}

	graph := NewMemGraph()
	graph.LeftHandTraffic = parsed.LeftHandTraffic
	for _, road := range parsed.Roads {
		id, found := tiles[road.Tile]
		if !found {
			return nil, nil, fmt.Errorf("%s: road %d references unknown tile %q", path, road.Fid, road.Tile)
		}

		var points []geo.PointLatLon
		for _, point := range road.Points {
			if len(point) != 2 {
				return nil, nil, fmt.Errorf("%s: road %d has a malformed point", path, road.Fid)
			}
			points = append(points, geo.PointLatLon{Lat: point[0], Lon: point[1]})
		}
		if len(points) < 2 {
			return nil, nil, fmt.Errorf("%s: road %d needs at least two points", path, road.Fid)
		}

		graph.AddRoad(Road{
			MwmID:        id,
			Fid:          road.Fid,
			Points:       points,
			Highway:      ParseHighwayType(road.Highway),
			OneWay:       road.OneWay,
			Roundabout:   road.Roundabout,
			Refs:         road.Refs,
			MaxspeedKmPH: road.Maxspeed,
		})
	}

	log.Info().Msgf("Loaded road graph from %s (%d tiles, %d roads)", path, len(parsed.Tiles), len(parsed.Roads))
	return graph, registry, nil
}
