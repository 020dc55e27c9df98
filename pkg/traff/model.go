package traff

import (
	"time"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// Directionality indicates whether a location affects one or both directions
// of travel.
type Directionality int

const (
	OneDirection Directionality = iota
	BothDirections
)

func (d Directionality) String() string {
	if d == BothDirections {
		return "BOTH_DIRECTIONS"
	}
	return "ONE_DIRECTION"
}

// Ramps narrows a location down to ramps of a grade-separated road.
type Ramps int

const (
	RampsNone Ramps = iota
	RampsAll
	RampsEntry
	RampsExit
)

func (r Ramps) String() string {
	switch r {
	case RampsAll:
		return "ALL_RAMPS"
	case RampsEntry:
		return "ENTRY_RAMP"
	case RampsExit:
		return "EXIT_RAMP"
	}
	return "NONE"
}

// RoadClass is the coarse road classification carried in a location.
type RoadClass int

const (
	Motorway RoadClass = iota
	Trunk
	Primary
	Secondary
	Tertiary
	OtherRoad
)

func (c RoadClass) String() string {
	switch c {
	case Motorway:
		return "MOTORWAY"
	case Trunk:
		return "TRUNK"
	case Primary:
		return "PRIMARY"
	case Secondary:
		return "SECONDARY"
	case Tertiary:
		return "TERTIARY"
	}
	return "OTHER"
}

// Fuzziness hints at the precision of a location's reference points.
type Fuzziness int

const (
	FuzzinessNone Fuzziness = iota
	// LowRes marks reference points which may be well off the affected road,
	// e.g. town centres. The decoder widens its junction search for these.
	LowRes
)

func (f Fuzziness) String() string {
	if f == LowRes {
		return "LOW_RES"
	}
	return "NONE"
}

// Point is one reference point of a location. Equality considers the
// coordinates only.
type Point struct {
	Coordinates geo.PointLatLon

	// Distance along the route in km, counted from an origin defined by the
	// road operator.
	Distance *float64

	JunctionName string
	JunctionRef  string
}

func (p Point) Equal(o Point) bool {
	return p.Coordinates == o.Coordinates
}

func pointsEqual(a *Point, b *Point) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Location is the fuzzy description of where a traffic event occurs, prior
// to map matching. At least two of From, At and To must be set.
type Location struct {
	From   *Point
	At     *Point
	Via    *Point
	NotVia *Point
	To     *Point

	Directionality Directionality
	Fuzziness      Fuzziness
	RoadClass      *RoadClass
	Ramps          Ramps

	Country     string
	Territory   string
	Town        string
	Destination string
	Direction   string
	Origin      string
	RoadName    string
	RoadRef     string
}

// Equal compares the reference points only; two locations referring to the
// same points decode to the same segments regardless of auxiliary hints.
func (l *Location) Equal(o *Location) bool {
	if l == nil || o == nil {
		return l == nil && o == nil
	}
	return pointsEqual(l.From, o.From) &&
		pointsEqual(l.At, o.At) &&
		pointsEqual(l.Via, o.Via) &&
		pointsEqual(l.NotVia, o.NotVia) &&
		pointsEqual(l.To, o.To)
}

// IsValid reports whether enough reference points are set to form a path.
func (l *Location) IsValid() bool {
	numPoints := 0
	for _, point := range []*Point{l.From, l.To, l.At} {
		if point != nil {
			numPoints++
		}
	}
	return numPoints >= 2
}

// Event is one typed classification of what is happening at a location,
// optionally quantified.
type Event struct {
	Class EventClass
	Type  EventType

	// Length of the affected stretch of road in metres.
	Length *int
	// Probability in percent.
	Probability *int
	// Duration quantifier in minutes.
	DurationMins *int
	// Speed quantifier (for speed limits) in km/h.
	Speed *int
}

// MultiMwmColoring is a decoded coloring spanning multiple map tiles.
type MultiMwmColoring map[mwm.ID]traffic.Coloring

// Clone returns a deep copy.
func (m MultiMwmColoring) Clone() MultiMwmColoring {
	result := make(MultiMwmColoring, len(m))
	for mwmID, coloring := range m {
		cloned := make(traffic.Coloring, len(coloring))
		for segment, group := range coloring {
			cloned[segment] = group
		}
		result[mwmID] = cloned
	}
	return result
}

// MergeMultiMwmColoring merges delta into target. The merge is idempotent
// and monotone: an existing entry is overwritten only if the incoming value
// is worse, or the existing one is Unknown. TempBlock overrides everything.
func MergeMultiMwmColoring(delta MultiMwmColoring, target MultiMwmColoring) {
	for mwmID, coloring := range delta {
		targetColoring, found := target[mwmID]
		if !found {
			cloned := make(traffic.Coloring, len(coloring))
			for segment, group := range coloring {
				cloned[segment] = group
			}
			target[mwmID] = cloned
			continue
		}
		for segment, group := range coloring {
			existing, found := targetColoring[segment]
			if !found || group == traffic.TempBlock || existing == traffic.Unknown || group.WorseThan(existing) {
				targetColoring[segment] = group
			}
		}
	}
}

// Message is one traffic report. It is created on receipt from a source,
// mutated in place by the decoder (which fills Decoded) and kept in the
// message cache until its effective expiration time has passed.
type Message struct {
	ID       string
	Replaces []string

	ReceiveTime    time.Time
	UpdateTime     time.Time
	ExpirationTime time.Time
	StartTime      *time.Time
	EndTime        *time.Time

	Cancellation bool
	Forecast     bool

	Location *Location
	Events   []Event

	// Decoded is the map-matched coloring, filled by the decoder.
	Decoded MultiMwmColoring
}

// EffectiveExpirationTime is the expiration time, extended to the end of the
// validity window if that lies further in the future.
func (m *Message) EffectiveExpirationTime() time.Time {
	result := m.ExpirationTime
	if m.StartTime != nil && m.StartTime.After(result) {
		result = *m.StartTime
	}
	if m.EndTime != nil && m.EndTime.After(result) {
		result = *m.EndTime
	}
	return result
}

func (m *Message) IsExpired(now time.Time) bool {
	return m.EffectiveExpirationTime().Before(now)
}

// Feed is one batch of messages as received from a source.
type Feed []Message
