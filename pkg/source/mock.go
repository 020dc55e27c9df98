package source

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// MockSource serves a feed from a local file. Subscriptions are simulated;
// every poll re-reads the file.
type MockSource struct {
	base

	filePath string
}

func NewMockSource(host Host, filePath string) *MockSource {
	return &MockSource{
		base:     base{host: host},
		filePath: filePath,
	}
}

func (s *MockSource) Name() string {
	return "mock:" + s.filePath
}

func (s *MockSource) SubscribeOrChangeSubscription(mwms []mwm.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filterList := s.mwmFilters(mwms)
	if s.subscriptionID == "" {
		log.Info().Msgf("Would subscribe to:\n%s", filterList)
		s.subscriptionID = "placeholder_subscription_id"
	} else {
		log.Info().Msgf("Would change subscription %s to:\n%s", s.subscriptionID, filterList)
	}
	s.nextRequestTime = time.Now()
}

func (s *MockSource) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptionID == "" {
		return
	}
	log.Info().Msgf("Would unsubscribe from %s", s.subscriptionID)
	s.subscriptionID = ""
}

func (s *MockSource) IsPollNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.nextRequestTime.After(time.Now())
}

func (s *MockSource) Poll() {
	file, err := os.Open(s.filePath)
	if err != nil {
		log.Warn().Err(err).Msgf("Cannot open feed file %s", s.filePath)
		s.setAvailability(traffic.TransportError)
		return
	}
	defer file.Close()

	s.mu.Lock()
	s.lastRequestTime = time.Now()
	s.mu.Unlock()

	feed, err := traff.ParseFeed(file)
	if err != nil {
		log.Warn().Err(err).Msg("An error occurred parsing the feed")
		s.setAvailability(traffic.TransportError)
		// static files usually do not change, back off anyway
		s.mu.Lock()
		s.nextRequestTime = time.Now().Add(updateInterval)
		s.mu.Unlock()
		return
	}

	s.onFeedReceived(feed, 0)
}
