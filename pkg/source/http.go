package source

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

const httpRequestTimeout = 30 * time.Second

// HTTPSource talks to a TraFF source over HTTP POST requests. Requests run
// in their own goroutines; responses are folded back into the source state
// when they arrive.
type HTTPSource struct {
	base

	url    string
	client *http.Client
}

func NewHTTPSource(host Host, url string) *HTTPSource {
	return &HTTPSource{
		base:   base{host: host},
		url:    url,
		client: &http.Client{Timeout: httpRequestTimeout},
	}
}

func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// SetRequestTimeout overrides the HTTP client timeout for this source.
func (s *HTTPSource) SetRequestTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.client.Timeout = timeout
	}
}

func (s *HTTPSource) post(data string) traff.Response {
	log.Debug().Msgf("Sending request:\n%s", data)

	var body []byte
	operation := func() error {
		response, err := s.client.Post(s.url, "application/xml", strings.NewReader(data))
		if err != nil {
			return err
		}
		defer response.Body.Close()
		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", response.StatusCode)
		}
		body, err = io.ReadAll(response.Body)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)); err != nil {
		log.Warn().Err(err).Msgf("Request to %s failed", s.url)
		return traff.Response{Status: traff.StatusInternalError}
	}
	return traff.ParseResponse(body)
}

func (s *HTTPSource) SubscribeOrChangeSubscription(mwms []mwm.ID) {
	s.mu.Lock()
	subscriptionID := s.subscriptionID
	filterList := s.mwmFilters(mwms)
	s.mu.Unlock()

	var data string
	if subscriptionID == "" {
		data = traff.SubscribeRequest(filterList)
		go func() {
			response := s.post(data)
			s.onSubscribeResponse(response)
		}()
	} else {
		data = traff.SubscriptionChangeRequest(subscriptionID, filterList)
		go func() {
			response := s.post(data)
			s.onChangeSubscriptionResponse(response)
		}()
	}
}

func (s *HTTPSource) onSubscribeResponse(response traff.Response) {
	if response.Status != traff.StatusOk && response.Status != traff.StatusPartiallyCovered {
		log.Warn().Msgf("Subscribe request failed: %v", response.Status)
		s.onRequestFailed(response.Status)
		return
	}
	if response.SubscriptionID == "" {
		log.Warn().Msgf("Server replied with %v but subscription ID is empty; ignoring", response.Status)
		return
	}

	s.mu.Lock()
	s.subscriptionID = response.SubscriptionID
	s.mu.Unlock()

	if len(response.Feed) > 0 {
		s.onFeedReceived(response.Feed, time.Duration(response.Timeout)*time.Second)
	} else {
		s.Poll()
	}
}

func (s *HTTPSource) onChangeSubscriptionResponse(response traff.Response) {
	switch {
	case response.Status == traff.StatusOk || response.Status == traff.StatusPartiallyCovered:
		if len(response.Feed) > 0 {
			s.onFeedReceived(response.Feed, time.Duration(response.Timeout)*time.Second)
		} else {
			s.Poll()
		}
	case response.Status == traff.StatusSubscriptionUnknown:
		log.Warn().Msgf("Change subscription returned %v, removing subscription", response.Status)
		s.dropSubscription()
	default:
		log.Warn().Msgf("Change subscription request failed: %v", response.Status)
		s.onRequestFailed(response.Status)
	}
}

func (s *HTTPSource) Unsubscribe() {
	s.mu.Lock()
	subscriptionID := s.subscriptionID
	s.mu.Unlock()
	if subscriptionID == "" {
		return
	}

	data := traff.UnsubscribeRequest(subscriptionID)
	go func() {
		response := s.post(data)
		if response.Status != traff.StatusOk && response.Status != traff.StatusSubscriptionUnknown {
			log.Warn().Msgf("Unsubscribe returned %v, removing subscription anyway", response.Status)
		}
		s.dropSubscription()
	}()
}

func (s *HTTPSource) IsPollNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.nextRequestTime.After(time.Now())
}

func (s *HTTPSource) Poll() {
	s.mu.Lock()
	subscriptionID := s.subscriptionID
	s.lastRequestTime = time.Now()
	s.mu.Unlock()
	if subscriptionID == "" {
		return
	}

	data := traff.PollRequest(subscriptionID)
	go func() {
		response := s.post(data)
		s.onPollResponse(response)
	}()
}

func (s *HTTPSource) onPollResponse(response traff.Response) {
	switch {
	case response.Status == traff.StatusOk:
		if len(response.Feed) > 0 {
			s.onFeedReceived(response.Feed, time.Duration(response.Timeout)*time.Second)
		}
	case response.Status == traff.StatusSubscriptionUnknown:
		log.Warn().Msgf("Poll returned %v, removing subscription", response.Status)
		s.dropSubscription()
	default:
		log.Warn().Msgf("Poll returned %v", response.Status)
		s.onRequestFailed(response.Status)
	}
}

func (s *HTTPSource) dropSubscription() {
	s.mu.Lock()
	s.subscriptionID = ""
	s.mu.Unlock()
}

func (s *HTTPSource) onRequestFailed(status traff.ResponseStatus) {
	availability := traffic.TransportError
	switch status {
	case traff.StatusSubscriptionRejected:
		availability = traffic.SubscriptionRejected
	case traff.StatusNotCovered:
		availability = traffic.NotCovered
	}
	s.setAvailability(availability)
}
