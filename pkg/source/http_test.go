package source

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

type wireRequest struct {
	XMLName        xml.Name `xml:"request"`
	Operation      string   `xml:"operation,attr"`
	SubscriptionID string   `xml:"subscription_id,attr"`
}

// traffServer is a minimal TraFF endpoint: it accepts subscriptions, answers
// polls with a canned feed and records the operations it saw.
type traffServer struct {
	t *testing.T

	operations chan string
	feed       string
}

func (s *traffServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.t.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var request wireRequest
	if err := xml.Unmarshal(body, &request); err != nil {
		s.t.Errorf("unparseable request: %s", body)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.operations <- request.Operation

	switch request.Operation {
	case "SUBSCRIBE":
		io.WriteString(w, `<response status="OK" subscription_id="sub-1" timeout="60"/>`)
	case "SUBSCRIPTION_CHANGE", "UNSUBSCRIBE":
		if request.SubscriptionID != "sub-1" {
			s.t.Errorf("unexpected subscription id %q", request.SubscriptionID)
		}
		io.WriteString(w, `<response status="OK"/>`)
	case "POLL":
		io.WriteString(w, `<response status="OK"><feed>`)
		io.WriteString(w, s.feed)
		io.WriteString(w, `</feed></response>`)
	default:
		s.t.Errorf("unexpected operation %q", request.Operation)
		w.WriteHeader(http.StatusBadRequest)
	}
}

func waitForOperation(t *testing.T, operations chan string, expected string) {
	t.Helper()
	select {
	case operation := <-operations:
		if operation != expected {
			t.Fatalf("operation = %q, expected %q", operation, expected)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", expected)
	}
}

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for " + description)
}

const messageXml = `<message id="msg-1"
  receive_time="2021-04-12T16:37:02Z"
  update_time="2021-04-12T16:37:02Z"
  expiration_time="2021-04-12T17:37:02Z">
  <location directionality="ONE_DIRECTION">
    <from>+50.77661 +6.08752</from>
    <to>+50.79388 +6.10973</to>
  </location>
  <events>
    <event class="CONGESTION" type="CONGESTION_QUEUE"/>
  </events>
</message>`

func TestHTTPSourceLifecycle(t *testing.T) {
	backend := &traffServer{t: t, operations: make(chan string, 16), feed: messageXml}
	server := httptest.NewServer(backend)
	defer server.Close()

	host := newTestHost()
	host.bounds[mwm.ID{Name: "Testland", Version: 1}] = geo.RectLatLon{
		MinLat: 49.5, MinLon: 5.5, MaxLat: 50.5, MaxLon: 6.5,
	}
	src := NewHTTPSource(host, server.URL)

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	waitForOperation(t, backend.operations, "SUBSCRIBE")

	// the subscribe response carried no feed, so the source polls right away
	waitForOperation(t, backend.operations, "POLL")
	waitFor(t, "feed delivery", func() bool { return len(host.receivedFeeds()) > 0 })

	feeds := host.receivedFeeds()
	if len(feeds[0]) != 1 || feeds[0][0].ID != "msg-1" {
		t.Fatalf("feed = %v", feeds)
	}
	if src.LastAvailability() != traffic.IsAvailable {
		t.Errorf("availability = %v", src.LastAvailability())
	}
	if !src.IsSubscribed() {
		t.Error("source not subscribed")
	}
	// the server suggested a 60s timeout, so no poll is due yet
	if src.IsPollNeeded() {
		t.Error("poll should not be due before the server-suggested timeout")
	}

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	waitForOperation(t, backend.operations, "SUBSCRIPTION_CHANGE")
	// a change response without a feed also triggers a poll
	waitForOperation(t, backend.operations, "POLL")

	src.Unsubscribe()
	waitForOperation(t, backend.operations, "UNSUBSCRIBE")
	waitFor(t, "unsubscribe", func() bool { return !src.IsSubscribed() })
}

func TestHTTPSourceSubscriptionLost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "SUBSCRIBE") {
			io.WriteString(w, `<response status="OK" subscription_id="sub-1"/>`)
			return
		}
		io.WriteString(w, `<response status="SUBSCRIPTION_UNKNOWN"/>`)
	}))
	defer server.Close()

	host := newTestHost()
	src := NewHTTPSource(host, server.URL)

	src.SubscribeOrChangeSubscription(nil)
	waitFor(t, "subscription", func() bool { return src.IsSubscribed() })

	// the poll answer drops the subscription, forcing a resubscribe later
	src.Poll()
	waitFor(t, "subscription loss", func() bool { return !src.IsSubscribed() })
}

func TestHTTPSourceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	host := newTestHost()
	src := NewHTTPSource(host, server.URL)
	src.SetRequestTimeout(time.Second)

	src.SubscribeOrChangeSubscription(nil)
	waitFor(t, "failure classification", func() bool {
		return src.LastAvailability() == traffic.TransportError
	})
	if src.IsSubscribed() {
		t.Error("failed subscribe left the source subscribed")
	}
}
