package traff

import (
	"fmt"

	"github.com/traffgo/traffgo/pkg/traffic"
)

// MaxspeedNone marks the absence of a speed limit in a TrafficImpact.
const MaxspeedNone = 255

// TrafficImpact is the consolidated effect of all events of one message:
// a speed group, an optional speed limit in km/h and an optional delay in
// minutes. A TempBlock speed group absorbs everything else.
type TrafficImpact struct {
	SpeedGroup traffic.SpeedGroup
	Maxspeed   int
	DelayMins  int
}

func newTrafficImpact() TrafficImpact {
	return TrafficImpact{
		SpeedGroup: traffic.Unknown,
		Maxspeed:   MaxspeedNone,
	}
}

// Equal treats two TempBlock impacts as equal regardless of the other
// fields, as TempBlock overrides them anyway.
func (i TrafficImpact) Equal(o TrafficImpact) bool {
	if i.SpeedGroup == traffic.TempBlock && o.SpeedGroup == traffic.TempBlock {
		return true
	}
	return i.SpeedGroup == o.SpeedGroup && i.Maxspeed == o.Maxspeed && i.DelayMins == o.DelayMins
}

func (i TrafficImpact) String() string {
	return fmt.Sprintf("{%v maxspeed=%d delay=%dmin}", i.SpeedGroup, i.Maxspeed, i.DelayMins)
}

func (i TrafficImpact) hasImpact() bool {
	return i.Maxspeed < MaxspeedNone || i.DelayMins > 0 || i.SpeedGroup != traffic.Unknown
}

// TrafficImpact consolidates the message's events. TempBlock on any event
// wins immediately; otherwise the worst speed group, the lowest maxspeed and
// the largest delay across all events which contributed any impact. Returns
// nil if no event yields a measurable impact.
func (m *Message) TrafficImpact() *TrafficImpact {
	if len(m.Events) == 0 {
		return nil
	}

	var impacts []TrafficImpact
	for _, event := range m.Events {
		impact := newTrafficImpact()

		if group, found := eventSpeedGroupMap[event.Type]; found {
			impact.SpeedGroup = group
		}

		if event.Speed != nil {
			impact.Maxspeed = *event.Speed
		}

		if event.Class == ClassDelay &&
			event.Type != DelayClearance &&
			event.Type != DelayForecastWithdrawn &&
			event.Type != DelaySeveralHours &&
			event.Type != DelayUncertainDuration &&
			event.DurationMins != nil {
			impact.DelayMins = *event.DurationMins
		} else if delay, found := eventDelayMap[event.Type]; found {
			impact.DelayMins = delay
		}

		if impact.SpeedGroup == traffic.TempBlock {
			return &impact
		}
		if impact.hasImpact() {
			impacts = append(impacts, impact)
		}
	}

	if len(impacts) == 0 {
		return nil
	}

	result := newTrafficImpact()
	for _, impact := range impacts {
		if result.SpeedGroup == traffic.Unknown {
			result.SpeedGroup = impact.SpeedGroup
		} else if impact.SpeedGroup != traffic.Unknown && impact.SpeedGroup < result.SpeedGroup {
			result.SpeedGroup = impact.SpeedGroup
		}

		if impact.Maxspeed < result.Maxspeed {
			result.Maxspeed = impact.Maxspeed
		}
		if impact.DelayMins > result.DelayMins {
			result.DelayMins = impact.DelayMins
		}
	}
	if !result.hasImpact() {
		return nil
	}
	return &result
}
