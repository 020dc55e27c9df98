package traff

import (
	"testing"

	"github.com/traffgo/traffgo/pkg/traffic"
)

func intPtr(v int) *int {
	return &v
}

func TestTrafficImpact(t *testing.T) {
	testCases := []struct {
		name     string
		events   []Event
		expected *TrafficImpact
	}{
		{
			name:     "no events",
			events:   nil,
			expected: nil,
		},
		{
			name: "no measurable impact",
			events: []Event{
				{Class: ClassCongestion, Type: CongestionCleared},
			},
			expected: nil,
		},
		{
			name: "single congestion event",
			events: []Event{
				{Class: ClassCongestion, Type: CongestionQueue},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.G2, Maxspeed: MaxspeedNone},
		},
		{
			name: "temp block short circuits",
			events: []Event{
				{Class: ClassCongestion, Type: CongestionSlowTraffic},
				{Class: ClassRestriction, Type: RestrictionClosed},
				{Class: ClassDelay, Type: DelayDelay, DurationMins: intPtr(30)},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.TempBlock, Maxspeed: MaxspeedNone},
		},
		{
			name: "worst group wins",
			events: []Event{
				{Class: ClassCongestion, Type: CongestionSlowTraffic},
				{Class: ClassCongestion, Type: CongestionStationaryTraffic},
				{Class: ClassCongestion, Type: CongestionHeavyTraffic},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.G1, Maxspeed: MaxspeedNone},
		},
		{
			name: "lowest maxspeed wins",
			events: []Event{
				{Class: ClassRestriction, Type: RestrictionSpeedLimit, Speed: intPtr(80)},
				{Class: ClassRestriction, Type: RestrictionSpeedLimit, Speed: intPtr(60)},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.G4, Maxspeed: 60},
		},
		{
			name: "largest delay wins",
			events: []Event{
				{Class: ClassDelay, Type: DelayDelay, DurationMins: intPtr(15)},
				{Class: ClassDelay, Type: DelayLongDelay, DurationMins: intPtr(45)},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.G1, Maxspeed: MaxspeedNone, DelayMins: 45},
		},
		{
			name: "several hours maps to fixed delay",
			events: []Event{
				{Class: ClassDelay, Type: DelaySeveralHours, DurationMins: intPtr(10)},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.Unknown, Maxspeed: MaxspeedNone, DelayMins: 150},
		},
		{
			name: "uncertain duration maps to fixed delay",
			events: []Event{
				{Class: ClassDelay, Type: DelayUncertainDuration},
			},
			expected: &TrafficImpact{SpeedGroup: traffic.Unknown, Maxspeed: MaxspeedNone, DelayMins: 60},
		},
		{
			name: "hazard with duration carries no delay",
			events: []Event{
				{Class: ClassHazard, Type: "HAZARD_OBSTRUCTION", DurationMins: intPtr(20)},
			},
			expected: nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			message := Message{ID: "test", Events: testCase.events}
			impact := message.TrafficImpact()

			if testCase.expected == nil {
				if impact != nil {
					t.Errorf("expected no impact, got %v", impact)
				}
				return
			}
			if impact == nil {
				t.Fatalf("expected %v, got no impact", testCase.expected)
			}
			if *impact != *testCase.expected {
				t.Errorf("impact = %v, expected %v", impact, testCase.expected)
			}
		})
	}
}

func TestTrafficImpactEqual(t *testing.T) {
	blockA := TrafficImpact{SpeedGroup: traffic.TempBlock, Maxspeed: MaxspeedNone}
	blockB := TrafficImpact{SpeedGroup: traffic.TempBlock, Maxspeed: 30, DelayMins: 10}
	if !blockA.Equal(blockB) {
		t.Error("two TempBlock impacts should compare equal")
	}

	slow := TrafficImpact{SpeedGroup: traffic.G2, Maxspeed: MaxspeedNone}
	if slow.Equal(blockA) {
		t.Error("G2 should not equal TempBlock")
	}
	if !slow.Equal(slow) {
		t.Error("impact should equal itself")
	}
	withDelay := slow
	withDelay.DelayMins = 5
	if slow.Equal(withDelay) {
		t.Error("differing delays should not compare equal")
	}
}
