package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/traffgo/traffgo/pkg/config"
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

const testFeedXml = `<feed>
  <message id="msg-1"
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
  </message>
</feed>`

type testHost struct {
	mu     sync.Mutex
	bounds map[mwm.ID]geo.RectLatLon
	feeds  []traff.Feed
}

func newTestHost() *testHost {
	return &testHost{bounds: map[mwm.ID]geo.RectLatLon{}}
}

func (h *testHost) MwmBounds(id mwm.ID) (geo.RectLatLon, bool) {
	rect, found := h.bounds[id]
	return rect, found
}

func (h *testHost) ReceiveFeed(feed traff.Feed) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feeds = append(h.feeds, feed)
}

func (h *testHost) receivedFeeds() []traff.Feed {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]traff.Feed{}, h.feeds...)
}

func writeFeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMockSourcePoll(t *testing.T) {
	host := newTestHost()
	src := NewMockSource(host, writeFeedFile(t, testFeedXml))

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	if !src.IsSubscribed() {
		t.Fatal("source not subscribed")
	}
	if !src.IsPollNeeded() {
		t.Fatal("fresh subscription should need a poll")
	}

	src.Poll()

	feeds := host.receivedFeeds()
	if len(feeds) != 1 || len(feeds[0]) != 1 || feeds[0][0].ID != "msg-1" {
		t.Fatalf("received feeds = %v", feeds)
	}
	if src.LastAvailability() != traffic.IsAvailable {
		t.Errorf("availability = %v", src.LastAvailability())
	}
	if src.LastResponseTime().IsZero() {
		t.Error("last response time not recorded")
	}
	if src.IsPollNeeded() {
		t.Error("poll should not be needed right after a response")
	}

	src.Unsubscribe()
	if src.IsSubscribed() {
		t.Error("source still subscribed after Unsubscribe")
	}
}

func TestMockSourceBrokenFeed(t *testing.T) {
	host := newTestHost()
	src := NewMockSource(host, writeFeedFile(t, "not xml"))

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	src.Poll()

	if len(host.receivedFeeds()) != 0 {
		t.Error("broken feed reached the host")
	}
	if src.LastAvailability() != traffic.TransportError {
		t.Errorf("availability = %v", src.LastAvailability())
	}
	if src.IsPollNeeded() {
		t.Error("source should back off after a broken feed")
	}
}

func TestMockSourceMissingFile(t *testing.T) {
	host := newTestHost()
	src := NewMockSource(host, filepath.Join(t.TempDir(), "absent.xml"))

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	src.Poll()

	if src.LastAvailability() != traffic.TransportError {
		t.Errorf("availability = %v", src.LastAvailability())
	}
}

func TestPollIntervalOverride(t *testing.T) {
	host := newTestHost()
	src := NewMockSource(host, writeFeedFile(t, testFeedXml))
	src.SetPollInterval(time.Millisecond)

	src.SubscribeOrChangeSubscription([]mwm.ID{{Name: "Testland", Version: 1}})
	src.Poll()

	time.Sleep(5 * time.Millisecond)
	if !src.IsPollNeeded() {
		t.Error("short poll interval should make the source due again")
	}
}

func TestFromConfig(t *testing.T) {
	host := newTestHost()

	src, err := FromConfig(config.RegisteredSource{
		Identifier: "a",
		Transport:  "mock",
		Path:       "feed.xml",
	}, host)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if _, ok := src.(*MockSource); !ok {
		t.Errorf("source = %T", src)
	}

	src, err = FromConfig(config.RegisteredSource{
		Identifier: "b",
		Transport:  "http",
		Endpoint:   "https://traffic.example.com/traff",
	}, host)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Errorf("source = %T", src)
	}

	if _, err := FromConfig(config.RegisteredSource{
		Identifier: "c",
		Transport:  "carrier-pigeon",
	}, host); err == nil {
		t.Error("unknown transport should fail")
	}
}
