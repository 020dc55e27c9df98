package traff

import "github.com/traffgo/traffgo/pkg/traffic"

type EventClass string

const (
	ClassActivity        EventClass = "ACTIVITY"
	ClassAuthority       EventClass = "AUTHORITY"
	ClassCarpool         EventClass = "CARPOOL"
	ClassCongestion      EventClass = "CONGESTION"
	ClassConstruction    EventClass = "CONSTRUCTION"
	ClassDelay           EventClass = "DELAY"
	ClassEnvironment     EventClass = "ENVIRONMENT"
	ClassEquipmentStatus EventClass = "EQUIPMENT_STATUS"
	ClassHazard          EventClass = "HAZARD"
	ClassIncident        EventClass = "INCIDENT"
	ClassRestriction     EventClass = "RESTRICTION"
	ClassSecurity        EventClass = "SECURITY"
	ClassTransport       EventClass = "TRANSPORT"
	ClassWeather         EventClass = "WEATHER"
)

var knownEventClasses = map[EventClass]bool{
	ClassActivity:        true,
	ClassAuthority:       true,
	ClassCarpool:         true,
	ClassCongestion:      true,
	ClassConstruction:    true,
	ClassDelay:           true,
	ClassEnvironment:     true,
	ClassEquipmentStatus: true,
	ClassHazard:          true,
	ClassIncident:        true,
	ClassRestriction:     true,
	ClassSecurity:        true,
	ClassTransport:       true,
	ClassWeather:         true,
}

type EventType string

const (
	CongestionCleared                      EventType = "CONGESTION_CLEARED"
	CongestionForecastWithdrawn            EventType = "CONGESTION_FORECAST_WITHDRAWN"
	CongestionHeavyTraffic                 EventType = "CONGESTION_HEAVY_TRAFFIC"
	CongestionLongQueue                    EventType = "CONGESTION_LONG_QUEUE"
	CongestionNone                         EventType = "CONGESTION_NONE"
	CongestionNormalTraffic                EventType = "CONGESTION_NORMAL_TRAFFIC"
	CongestionQueue                        EventType = "CONGESTION_QUEUE"
	CongestionQueueLikely                  EventType = "CONGESTION_QUEUE_LIKELY"
	CongestionSlowTraffic                  EventType = "CONGESTION_SLOW_TRAFFIC"
	CongestionStationaryTraffic            EventType = "CONGESTION_STATIONARY_TRAFFIC"
	CongestionStationaryTrafficLikely      EventType = "CONGESTION_STATIONARY_TRAFFIC_LIKELY"
	CongestionTrafficBuildingUp            EventType = "CONGESTION_TRAFFIC_BUILDING_UP"
	CongestionTrafficCongestion            EventType = "CONGESTION_TRAFFIC_CONGESTION"
	CongestionTrafficEasing                EventType = "CONGESTION_TRAFFIC_EASING"
	CongestionTrafficFlowingFreely         EventType = "CONGESTION_TRAFFIC_FLOWING_FREELY"
	CongestionTrafficHeavierThanNormal     EventType = "CONGESTION_TRAFFIC_HEAVIER_THAN_NORMAL"
	CongestionTrafficLighterThanNormal     EventType = "CONGESTION_TRAFFIC_LIGHTER_THAN_NORMAL"
	CongestionTrafficMuchHeavierThanNormal EventType = "CONGESTION_TRAFFIC_MUCH_HEAVIER_THAN_NORMAL"
	CongestionTrafficProblem               EventType = "CONGESTION_TRAFFIC_PROBLEM"

	DelayClearance         EventType = "DELAY_CLEARANCE"
	DelayDelay             EventType = "DELAY_DELAY"
	DelayDelayPossible     EventType = "DELAY_DELAY_POSSIBLE"
	DelayForecastWithdrawn EventType = "DELAY_FORECAST_WITHDRAWN"
	DelayLongDelay         EventType = "DELAY_LONG_DELAY"
	DelaySeveralHours      EventType = "DELAY_SEVERAL_HOURS"
	DelayUncertainDuration EventType = "DELAY_UNCERTAIN_DURATION"
	DelayVeryLongDelay     EventType = "DELAY_VERY_LONG_DELAY"

	RestrictionBlocked            EventType = "RESTRICTION_BLOCKED"
	RestrictionBlockedAhead       EventType = "RESTRICTION_BLOCKED_AHEAD"
	RestrictionCarriagewayBlocked EventType = "RESTRICTION_CARRIAGEWAY_BLOCKED"
	RestrictionCarriagewayClosed  EventType = "RESTRICTION_CARRIAGEWAY_CLOSED"
	RestrictionClosed             EventType = "RESTRICTION_CLOSED"
	RestrictionClosedAhead        EventType = "RESTRICTION_CLOSED_AHEAD"
	RestrictionEntryBlocked       EventType = "RESTRICTION_ENTRY_BLOCKED"
	RestrictionEntryReopened      EventType = "RESTRICTION_ENTRY_REOPENED"
	RestrictionExitBlocked        EventType = "RESTRICTION_EXIT_BLOCKED"
	RestrictionExitReopened       EventType = "RESTRICTION_EXIT_REOPENED"
	RestrictionOpen               EventType = "RESTRICTION_OPEN"
	RestrictionRampBlocked        EventType = "RESTRICTION_RAMP_BLOCKED"
	RestrictionRampClosed         EventType = "RESTRICTION_RAMP_CLOSED"
	RestrictionRampReopened       EventType = "RESTRICTION_RAMP_REOPENED"
	RestrictionReopened           EventType = "RESTRICTION_REOPENED"
	RestrictionSpeedLimit         EventType = "RESTRICTION_SPEED_LIMIT"
	RestrictionSpeedLimitLifted   EventType = "RESTRICTION_SPEED_LIMIT_LIFTED"
)

var knownEventTypes = map[EventType]bool{
	CongestionCleared:                      true,
	CongestionForecastWithdrawn:            true,
	CongestionHeavyTraffic:                 true,
	CongestionLongQueue:                    true,
	CongestionNone:                         true,
	CongestionNormalTraffic:                true,
	CongestionQueue:                        true,
	CongestionQueueLikely:                  true,
	CongestionSlowTraffic:                  true,
	CongestionStationaryTraffic:            true,
	CongestionStationaryTrafficLikely:      true,
	CongestionTrafficBuildingUp:            true,
	CongestionTrafficCongestion:            true,
	CongestionTrafficEasing:                true,
	CongestionTrafficFlowingFreely:         true,
	CongestionTrafficHeavierThanNormal:     true,
	CongestionTrafficLighterThanNormal:     true,
	CongestionTrafficMuchHeavierThanNormal: true,
	CongestionTrafficProblem:               true,
	DelayClearance:                         true,
	DelayDelay:                             true,
	DelayDelayPossible:                     true,
	DelayForecastWithdrawn:                 true,
	DelayLongDelay:                         true,
	DelaySeveralHours:                      true,
	DelayUncertainDuration:                 true,
	DelayVeryLongDelay:                     true,
	RestrictionBlocked:                     true,
	RestrictionBlockedAhead:                true,
	RestrictionCarriagewayBlocked:          true,
	RestrictionCarriagewayClosed:           true,
	RestrictionClosed:                      true,
	RestrictionClosedAhead:                 true,
	RestrictionEntryBlocked:                true,
	RestrictionEntryReopened:               true,
	RestrictionExitBlocked:                 true,
	RestrictionExitReopened:                true,
	RestrictionOpen:                        true,
	RestrictionRampBlocked:                 true,
	RestrictionRampClosed:                  true,
	RestrictionRampReopened:                true,
	RestrictionReopened:                    true,
	RestrictionSpeedLimit:                  true,
	RestrictionSpeedLimitLifted:            true,
}

// eventSpeedGroupMap maps event types to the speed group they imply.
// Types without an entry leave the speed group Unknown.
var eventSpeedGroupMap = map[EventType]traffic.SpeedGroup{
	CongestionHeavyTraffic:                 traffic.G4,
	CongestionLongQueue:                    traffic.G0,
	CongestionNone:                         traffic.G5,
	CongestionNormalTraffic:                traffic.G5,
	CongestionQueue:                        traffic.G2,
	CongestionQueueLikely:                  traffic.G3,
	CongestionSlowTraffic:                  traffic.G3,
	CongestionStationaryTraffic:            traffic.G1,
	CongestionStationaryTrafficLikely:      traffic.G2,
	CongestionTrafficBuildingUp:            traffic.G4,
	CongestionTrafficCongestion:            traffic.G3,
	CongestionTrafficFlowingFreely:         traffic.G5,
	CongestionTrafficHeavierThanNormal:     traffic.G4,
	CongestionTrafficLighterThanNormal:     traffic.G5,
	CongestionTrafficMuchHeavierThanNormal: traffic.G3,
	CongestionTrafficProblem:               traffic.G3,

	DelayDelay:         traffic.G2,
	DelayDelayPossible: traffic.G3,
	DelayLongDelay:     traffic.G1,
	DelayVeryLongDelay: traffic.G0,

	RestrictionBlocked:      traffic.TempBlock,
	RestrictionBlockedAhead: traffic.TempBlock,
	RestrictionClosed:       traffic.TempBlock,
	RestrictionClosedAhead:  traffic.TempBlock,
	RestrictionEntryBlocked: traffic.TempBlock,
	RestrictionExitBlocked:  traffic.TempBlock,
	RestrictionRampBlocked:  traffic.TempBlock,
	RestrictionRampClosed:   traffic.TempBlock,
	RestrictionSpeedLimit:   traffic.G4,
}

// eventDelayMap assigns delays in minutes to open-ended delay categories.
var eventDelayMap = map[EventType]int{
	DelaySeveralHours:      150,
	DelayUncertainDuration: 60,
}
