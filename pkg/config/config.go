package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"

	"github.com/traffgo/traffgo/pkg/util"
)

const defaultSourcesDir = "data/trafficsources/"

// RegisteredSource describes one traffic source, loaded from a YAML file
// under data/trafficsources/.
type RegisteredSource struct {
	Identifier string `yaml:"identifier"`
	Name       string `yaml:"name"`

	// Transport is one of http, queue or mock.
	Transport string `yaml:"transport"`

	// Endpoint is the request URL for http sources.
	Endpoint string `yaml:"endpoint,omitempty"`
	// Path is the feed file for mock sources.
	Path string `yaml:"path,omitempty"`

	// PollInterval and RequestTimeout are ISO 8601 durations, e.g. PT1M.
	PollInterval   string `yaml:"pollinterval,omitempty"`
	RequestTimeout string `yaml:"requesttimeout,omitempty"`
}

func (s RegisteredSource) Validate() error {
	switch s.Transport {
	case "http":
		if s.Endpoint == "" {
			return fmt.Errorf("source %s: http transport needs an endpoint", s.Identifier)
		}
	case "mock":
		if s.Path == "" {
			return fmt.Errorf("source %s: mock transport needs a path", s.Identifier)
		}
	case "queue":
	default:
		return fmt.Errorf("source %s: unknown transport %q", s.Identifier, s.Transport)
	}
	return nil
}

// PollIntervalDuration resolves the source's poll interval, falling back to
// the given default when unset or unparseable.
func (s RegisteredSource) PollIntervalDuration(defaultInterval time.Duration) time.Duration {
	return parseDuration(s.PollInterval, defaultInterval)
}

func (s RegisteredSource) RequestTimeoutDuration(defaultTimeout time.Duration) time.Duration {
	return parseDuration(s.RequestTimeout, defaultTimeout)
}

// GetRegisteredSources walks the traffic sources directory and loads every
// YAML file in it. The directory defaults to data/trafficsources/ and can be
// overridden with TRAFFGO_TRAFFICSOURCES.
func GetRegisteredSources() ([]RegisteredSource, error) {
	dir := defaultSourcesDir
	env := util.GetEnvironmentVariables()
	if env["TRAFFGO_TRAFFICSOURCES"] != "" {
		dir = env["TRAFFGO_TRAFFICSOURCES"]
	}

	var registeredSources []RegisteredSource

	err := filepath.Walk(dir,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() {
				return nil
			}
			if filepath.Ext(path) != ".yaml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading traffic source file")

			sourceYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(sourceYaml))

			for {
				var registeredSource RegisteredSource
				if decoder.Decode(&registeredSource) != nil {
					break
				}

				if err := registeredSource.Validate(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				registeredSources = append(registeredSources, registeredSource)
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return registeredSources, nil
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	parsed, err := iso8601.ParseISO8601(value)
	if err != nil {
		log.Warn().Err(err).Msgf("Invalid duration %q, using default", value)
		return defaultValue
	}
	now := time.Now()
	result := parsed.Shift(now).Sub(now)
	if result <= 0 {
		return defaultValue
	}
	return result
}
