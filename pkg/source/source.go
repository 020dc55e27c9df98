package source

import (
	"sync"
	"time"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// updateInterval is how long a source waits after a successful response
// before polling again, unless the source suggested its own timeout.
const updateInterval = 5 * time.Minute

// Host receives feeds from sources and resolves map tile geometry for
// subscription filters.
type Host interface {
	// MwmBounds returns the bounding rect of a map tile.
	MwmBounds(id mwm.ID) (geo.RectLatLon, bool)
	// ReceiveFeed hands a received feed over for processing. Sources call
	// this from their own goroutines.
	ReceiveFeed(feed traff.Feed)
}

// Source is one provider of TraFF feeds.
//
// Subscription state is internal to the source: callers always use
// SubscribeOrChangeSubscription and the source decides whether that means a
// new subscription or a change to the current one.
type Source interface {
	Name() string

	// SubscribeOrChangeSubscription subscribes to feeds covering the given
	// tiles, or narrows/widens the current subscription to them.
	SubscribeOrChangeSubscription(mwms []mwm.ID)

	// Unsubscribe cancels the current subscription, if any.
	Unsubscribe()

	// IsPollNeeded reports whether enough time has passed that Poll should
	// be called. Push-based sources always return false.
	IsPollNeeded() bool

	// Poll requests the current feed for the subscription.
	Poll()

	IsSubscribed() bool
	LastResponseTime() time.Time
	LastAvailability() traffic.Availability
}

// base carries the state every source keeps about its subscription.
type base struct {
	mu   sync.Mutex
	host Host

	subscriptionID   string
	pollInterval     time.Duration
	lastRequestTime  time.Time
	lastResponseTime time.Time
	nextRequestTime  time.Time
	lastAvailability traffic.Availability
}

// SetPollInterval overrides the default poll interval for this source.
// Servers may still suggest a longer one per response.
func (b *base) SetPollInterval(interval time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pollInterval = interval
}

func (b *base) IsSubscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscriptionID != ""
}

func (b *base) LastResponseTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastResponseTime
}

func (b *base) LastAvailability() traffic.Availability {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAvailability
}

func (b *base) setAvailability(availability traffic.Availability) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAvailability = availability
}

// onFeedReceived records a successful response and hands the feed to the
// host. interval overrides the default poll interval if positive.
func (b *base) onFeedReceived(feed traff.Feed, interval time.Duration) {
	b.mu.Lock()
	now := time.Now()
	b.lastResponseTime = now
	if interval <= 0 {
		interval = b.pollInterval
	}
	if interval <= 0 {
		interval = updateInterval
	}
	b.nextRequestTime = now.Add(interval)
	b.lastAvailability = traffic.IsAvailable
	host := b.host
	b.mu.Unlock()

	host.ReceiveFeed(feed)
}

// mwmFilters renders the bounding boxes of the given tiles as a TraFF
// filter list.
func (b *base) mwmFilters(mwms []mwm.ID) string {
	var rects []geo.RectLatLon
	for _, id := range mwms {
		if rect, found := b.host.MwmBounds(id); found {
			rects = append(rects, rect)
		}
	}
	return traff.FiltersToXml(rects)
}
