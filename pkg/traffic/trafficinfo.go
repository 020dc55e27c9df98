package traffic

import (
	"fmt"

	"github.com/traffgo/traffgo/pkg/mwm"
)

// Availability classifies the outcome of the last attempt to obtain traffic
// data for a tile.
type Availability int

const (
	// AvailabilityUnknown means no request was made yet, or the source
	// responded with an unclassified error.
	AvailabilityUnknown Availability = iota
	// IsAvailable means data was received.
	IsAvailable
	// NoData means the source has no traffic reports for the tile.
	NoData
	// ExpiredData means the map data is too old for the source.
	ExpiredData
	// ExpiredApp means the client version is too old for the source.
	ExpiredApp
	// SubscriptionRejected means the source refused the subscription.
	SubscriptionRejected
	// NotCovered means the source does not cover the requested area.
	NotCovered
	// TransportError means the network or IPC transport failed.
	TransportError
)

func (a Availability) String() string {
	switch a {
	case IsAvailable:
		return "IsAvailable"
	case NoData:
		return "NoData"
	case ExpiredData:
		return "ExpiredData"
	case ExpiredApp:
		return "ExpiredApp"
	case SubscriptionRejected:
		return "SubscriptionRejected"
	case NotCovered:
		return "NotCovered"
	case TransportError:
		return "TransportError"
	}
	return "Unknown"
}

const (
	ForwardDirection uint8 = 0
	ReverseDirection uint8 = 1
)

// RoadSegmentId identifies one directed segment of a road feature. A feature
// with n points has n-1 segments per direction; the segment index counts
// along the feature.
type RoadSegmentId struct {
	Fid uint32
	Idx uint16
	Dir uint8
}

func (r RoadSegmentId) Less(o RoadSegmentId) bool {
	if r.Fid != o.Fid {
		return r.Fid < o.Fid
	}
	if r.Idx != o.Idx {
		return r.Idx < o.Idx
	}
	return r.Dir < o.Dir
}

func (r RoadSegmentId) String() string {
	return fmt.Sprintf("(%d, %d, %d)", r.Fid, r.Idx, r.Dir)
}

// Coloring maps road segments to speed groups for one map tile.
type Coloring map[RoadSegmentId]SpeedGroup

// TrafficInfo carries the current coloring for one map tile, together with
// the availability classification of the data behind it.
type TrafficInfo struct {
	MwmID        mwm.ID
	Coloring     Coloring
	Availability Availability
}

func NewTrafficInfo(mwmID mwm.ID, coloring Coloring) TrafficInfo {
	availability := IsAvailable
	if len(coloring) == 0 {
		availability = NoData
	}
	return TrafficInfo{
		MwmID:        mwmID,
		Coloring:     coloring,
		Availability: availability,
	}
}

// GetSpeedGroup returns the latest known speed group for a segment, or
// Unknown if there is none.
func (t TrafficInfo) GetSpeedGroup(id RoadSegmentId) SpeedGroup {
	if group, found := t.Coloring[id]; found {
		return group
	}
	return Unknown
}

// Observer receives traffic updates for route planning.
type Observer interface {
	OnTrafficCleared()
	OnTrafficAdded(info TrafficInfo)
	OnTrafficRemoved(mwmID mwm.ID)
}

// Renderer receives traffic colorings for drawing.
type Renderer interface {
	UpdateTraffic(info TrafficInfo)
	ClearTrafficCache(mwmID mwm.ID)
}
