package manager

import (
	"time"

	"github.com/traffgo/traffgo/pkg/traffic"
)

// TrafficState is the aggregate condition of the traffic service, derived
// from the per-tile cache entries.
type TrafficState int

const (
	StateDisabled TrafficState = iota
	StateEnabled
	StateWaitingData
	StateOutdated
	StateNoData
	StateNetworkError
	StateExpiredData
	StateExpiredApp
)

func (s TrafficState) String() string {
	switch s {
	case StateDisabled:
		return "Disabled"
	case StateEnabled:
		return "Enabled"
	case StateWaitingData:
		return "WaitingData"
	case StateOutdated:
		return "Outdated"
	case StateNoData:
		return "NoData"
	case StateNetworkError:
		return "NetworkError"
	case StateExpiredData:
		return "ExpiredData"
	case StateExpiredApp:
		return "ExpiredApp"
	}
	return "Unknown"
}

// StateChangedFn is notified once per state transition.
type StateChangedFn func(state TrafficState)

// cacheEntry tracks the request/response history for one map tile.
type cacheEntry struct {
	isLoaded bool
	dataSize int

	lastActiveTime   time.Time
	lastRequestTime  time.Time
	lastResponseTime time.Time

	retriesCount         int
	isWaitingForResponse bool

	lastAvailability traffic.Availability
}

func newCacheEntry(requestTime time.Time) *cacheEntry {
	return &cacheEntry{
		lastActiveTime:       requestTime,
		lastRequestTime:      requestTime,
		isWaitingForResponse: true,
		lastAvailability:     traffic.AvailabilityUnknown,
	}
}
