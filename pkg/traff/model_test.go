package traff

import (
	"testing"
	"time"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

func testMwmID(name string) mwm.ID {
	return mwm.ID{Name: name, Version: 1}
}

func TestMergeMultiMwmColoring(t *testing.T) {
	tile := testMwmID("Tile")
	segmentA := traffic.RoadSegmentId{Fid: 1, Idx: 0, Dir: traffic.ForwardDirection}
	segmentB := traffic.RoadSegmentId{Fid: 2, Idx: 0, Dir: traffic.ForwardDirection}

	target := MultiMwmColoring{}
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentA: traffic.G3}}, target)
	if target[tile][segmentA] != traffic.G3 {
		t.Fatalf("initial merge: got %v", target[tile][segmentA])
	}

	// a better group must not override a worse one
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentA: traffic.G5}}, target)
	if target[tile][segmentA] != traffic.G3 {
		t.Errorf("better group overrode worse one: got %v", target[tile][segmentA])
	}

	// a worse group does
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentA: traffic.G1}}, target)
	if target[tile][segmentA] != traffic.G1 {
		t.Errorf("worse group did not override: got %v", target[tile][segmentA])
	}

	// TempBlock overrides everything
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentA: traffic.TempBlock}}, target)
	if target[tile][segmentA] != traffic.TempBlock {
		t.Errorf("TempBlock did not override: got %v", target[tile][segmentA])
	}

	// Unknown never overrides a known value...
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentA: traffic.Unknown}}, target)
	if target[tile][segmentA] != traffic.TempBlock {
		t.Errorf("Unknown overrode TempBlock: got %v", target[tile][segmentA])
	}

	// ...but an existing Unknown is always replaced
	target[tile][segmentB] = traffic.Unknown
	MergeMultiMwmColoring(MultiMwmColoring{tile: {segmentB: traffic.G5}}, target)
	if target[tile][segmentB] != traffic.G5 {
		t.Errorf("existing Unknown was not replaced: got %v", target[tile][segmentB])
	}

	// merging must not alias the delta's coloring
	other := testMwmID("Other")
	delta := MultiMwmColoring{other: {segmentA: traffic.G2}}
	MergeMultiMwmColoring(delta, target)
	delta[other][segmentA] = traffic.G5
	if target[other][segmentA] != traffic.G2 {
		t.Error("merged coloring aliases the delta")
	}
}

func TestMultiMwmColoringClone(t *testing.T) {
	tile := testMwmID("Tile")
	segment := traffic.RoadSegmentId{Fid: 1, Idx: 0, Dir: traffic.ForwardDirection}

	original := MultiMwmColoring{tile: {segment: traffic.G2}}
	cloned := original.Clone()
	cloned[tile][segment] = traffic.G0

	if original[tile][segment] != traffic.G2 {
		t.Error("clone shares storage with the original")
	}
}

func TestEffectiveExpirationTime(t *testing.T) {
	expiration := time.Date(2021, 4, 12, 12, 0, 0, 0, time.UTC)
	later := expiration.Add(2 * time.Hour)
	earlier := expiration.Add(-2 * time.Hour)

	message := Message{ExpirationTime: expiration}
	if got := message.EffectiveExpirationTime(); !got.Equal(expiration) {
		t.Errorf("no validity window: got %v", got)
	}

	message.EndTime = &later
	if got := message.EffectiveExpirationTime(); !got.Equal(later) {
		t.Errorf("later end time should extend expiration: got %v", got)
	}

	message.EndTime = &earlier
	if got := message.EffectiveExpirationTime(); !got.Equal(expiration) {
		t.Errorf("earlier end time should not shorten expiration: got %v", got)
	}

	message.EndTime = nil
	message.StartTime = &later
	if got := message.EffectiveExpirationTime(); !got.Equal(later) {
		t.Errorf("future start time should extend expiration: got %v", got)
	}

	if !message.IsExpired(later.Add(time.Second)) {
		t.Error("message should be expired after its effective expiration")
	}
	if message.IsExpired(later) {
		t.Error("message should not be expired at its effective expiration")
	}
}

func TestLocationIsValid(t *testing.T) {
	point := func(lat, lon float64) *Point {
		return &Point{Coordinates: geo.PointLatLon{Lat: lat, Lon: lon}}
	}

	testCases := []struct {
		name     string
		location Location
		expected bool
	}{
		{name: "empty", location: Location{}, expected: false},
		{name: "from only", location: Location{From: point(1, 1)}, expected: false},
		{name: "via only does not count", location: Location{From: point(1, 1), Via: point(2, 2)}, expected: false},
		{name: "from and to", location: Location{From: point(1, 1), To: point(2, 2)}, expected: true},
		{name: "from and at", location: Location{From: point(1, 1), At: point(2, 2)}, expected: true},
		{name: "all three", location: Location{From: point(1, 1), At: point(2, 2), To: point(3, 3)}, expected: true},
	}

	for _, testCase := range testCases {
		if got := testCase.location.IsValid(); got != testCase.expected {
			t.Errorf("%s: IsValid = %v, expected %v", testCase.name, got, testCase.expected)
		}
	}
}

func TestLocationEqual(t *testing.T) {
	point := func(lat, lon float64) *Point {
		return &Point{Coordinates: geo.PointLatLon{Lat: lat, Lon: lon}}
	}

	a := &Location{From: point(1, 1), To: point(2, 2), RoadName: "A1"}
	b := &Location{From: point(1, 1), To: point(2, 2), RoadName: "A2"}
	if !a.Equal(b) {
		t.Error("locations with equal points should compare equal regardless of hints")
	}

	c := &Location{From: point(1, 1), To: point(3, 3)}
	if a.Equal(c) {
		t.Error("locations with different points should not compare equal")
	}

	var nilLocation *Location
	if a.Equal(nilLocation) {
		t.Error("location should not equal nil")
	}
	if !nilLocation.Equal(nil) {
		t.Error("two nil locations should compare equal")
	}
}
