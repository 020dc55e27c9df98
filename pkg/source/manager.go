package source

import (
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/traffgo/traffgo/pkg/config"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// Manager owns the registered sources and fans subscription changes, polls
// and unsubscribes out to them. It carries no retry policy; failures surface
// through each source's availability.
type Manager struct {
	mu      sync.Mutex
	sources []Source
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a source to the manager.
func (m *Manager) Register(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, src)
}

// FromConfig builds a source from its registered configuration. Queue
// sources also start their consumers, which requires a connected redis
// client.
func FromConfig(registered config.RegisteredSource, host Host) (Source, error) {
	var src Source
	switch registered.Transport {
	case "http":
		httpSource := NewHTTPSource(host, registered.Endpoint)
		httpSource.SetRequestTimeout(registered.RequestTimeoutDuration(0))
		httpSource.SetPollInterval(registered.PollIntervalDuration(0))
		src = httpSource
	case "mock":
		mockSource := NewMockSource(host, registered.Path)
		mockSource.SetPollInterval(registered.PollIntervalDuration(0))
		src = mockSource
	case "queue":
		queueSource := NewQueueSource(host)
		if err := queueSource.StartConsumers(); err != nil {
			return nil, err
		}
		src = queueSource
	default:
		return nil, fmt.Errorf("source %s: unknown transport %q", registered.Identifier, registered.Transport)
	}

	return src, nil
}

// Sources returns a snapshot of the registered sources.
func (m *Manager) Sources() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	return sources
}

// SubscribeOrChangeSubscription pushes the tile set to every source that is
// not subscribed yet, or to all of them when the set changed. The calls fan
// out concurrently; sources fold the results into their own state.
func (m *Manager) SubscribeOrChangeSubscription(mwms []mwm.ID, changed bool) {
	if len(mwms) == 0 {
		return
	}

	var wg conc.WaitGroup
	for _, src := range m.Sources() {
		src := src
		if changed || !src.IsSubscribed() {
			wg.Go(func() {
				src.SubscribeOrChangeSubscription(mwms)
			})
		}
	}
	wg.Wait()
}

// Poll polls every subscribed source that is due. With force, being
// subscribed is enough.
func (m *Manager) Poll(force bool) {
	var wg conc.WaitGroup
	for _, src := range m.Sources() {
		src := src
		if !src.IsSubscribed() {
			continue
		}
		if force || src.IsPollNeeded() {
			wg.Go(src.Poll)
		}
	}
	wg.Wait()
}

// Unsubscribe cancels all subscriptions.
func (m *Manager) Unsubscribe() {
	for _, src := range m.Sources() {
		src.Unsubscribe()
	}
}

// Availability folds the per-source availabilities into one value. A single
// working source is enough for IsAvailable.
func (m *Manager) Availability() traffic.Availability {
	result := traffic.AvailabilityUnknown
	for _, src := range m.Sources() {
		availability := src.LastAvailability()
		if availability == traffic.IsAvailable {
			return traffic.IsAvailable
		}
		if result == traffic.AvailabilityUnknown {
			result = availability
		}
	}
	return result
}
