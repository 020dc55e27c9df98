package decoder

import (
	"reflect"
	"testing"

	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/traff"
)

func TestParseRef(t *testing.T) {
	testCases := []struct {
		ref      string
		expected []string
	}{
		{"", nil},
		{"A1", []string{"a", "1"}},
		{"A 8", []string{"a", "8"}},
		{"B56n", []string{"b", "56", "n"}},
		{"E52/A8", []string{"e", "52", "a", "8"}},
		{"A 4, E 40", []string{"a", "4", "e", "40"}},
		{"St.2045", []string{"st", "2045"}},
		{" - / ", nil},
	}

	for _, testCase := range testCases {
		if got := ParseRef(testCase.ref); !reflect.DeepEqual(got, testCase.expected) {
			t.Errorf("ParseRef(%q) = %v, expected %v", testCase.ref, got, testCase.expected)
		}
	}
}

func TestRoadRefPenalty(t *testing.T) {
	testCases := []struct {
		locationRef string
		roadRef     string
		expected    float64
	}{
		{"A1", "A1", 1},
		{"A1", "A 1", 1},
		// the shared class prefix is stripped, turning these into a mismatch
		{"A1", "A2", attributePenalty},
		// different prefixes keep all tokens, the number still matches
		{"A1", "B1", reducedAttributePenalty},
		{"A1", "Hauptstrasse", attributePenalty},
		{"A1", "", attributePenalty},
		{"", "", 1},
		{"", "A1", attributePenalty},
	}

	for _, testCase := range testCases {
		d := &Decoder{roadRef: ParseRef(testCase.locationRef)}
		if got := d.roadRefPenalty(testCase.roadRef); got != testCase.expected {
			t.Errorf("roadRefPenalty(%q vs %q) = %v, expected %v",
				testCase.locationRef, testCase.roadRef, got, testCase.expected)
		}
	}
}

func TestRoadRefsPenaltyPicksBest(t *testing.T) {
	d := &Decoder{roadRef: ParseRef("E 40")}
	got := d.roadRefsPenalty([]string{"A 4", "E 40"})
	if got != 1 {
		t.Errorf("roadRefsPenalty = %v, expected 1 for a full match among the shields", got)
	}

	got = d.roadRefsPenalty([]string{"A 4"})
	if got != attributePenalty {
		t.Errorf("roadRefsPenalty = %v, expected %v", got, attributePenalty)
	}
}

func TestRoadClassPenalty(t *testing.T) {
	testCases := []struct {
		lhs      traff.RoadClass
		rhs      traff.RoadClass
		expected float64
	}{
		{traff.Motorway, traff.Motorway, 1},
		{traff.Motorway, traff.Trunk, reducedAttributePenalty},
		{traff.Motorway, traff.Primary, attributePenalty},
		{traff.Primary, traff.Secondary, reducedAttributePenalty},
		{traff.Tertiary, traff.OtherRoad, reducedAttributePenalty},
		{traff.OtherRoad, traff.Motorway, attributePenalty},
	}

	for _, testCase := range testCases {
		if got := roadClassPenalty(testCase.lhs, testCase.rhs); got != testCase.expected {
			t.Errorf("roadClassPenalty(%v, %v) = %v, expected %v",
				testCase.lhs, testCase.rhs, got, testCase.expected)
		}
	}
}

func TestHighwayTypePenalty(t *testing.T) {
	motorway := traff.Motorway

	// matching class, no ramps: no penalty
	if got := highwayTypePenalty(roadgraph.HighwayMotorway, &motorway, traff.RampsNone); got != 1 {
		t.Errorf("matching class = %v", got)
	}

	// ramp location prefers link roads
	if got := highwayTypePenalty(roadgraph.HighwayMotorwayLink, &motorway, traff.RampsAll); got != 1 {
		t.Errorf("ramp on link = %v", got)
	}
	if got := highwayTypePenalty(roadgraph.HighwayMotorway, &motorway, traff.RampsAll); got != attributePenalty {
		t.Errorf("ramp on main carriageway = %v", got)
	}

	// unclassified roads are a double mismatch when a class is given
	if got := highwayTypePenalty(roadgraph.HighwayUnknown, &motorway, traff.RampsNone); got != attributePenalty*attributePenalty {
		t.Errorf("unknown highway = %v", got)
	}
	if got := highwayTypePenalty(roadgraph.HighwayUnknown, nil, traff.RampsNone); got != attributePenalty {
		t.Errorf("unknown highway without class = %v", got)
	}
}

func TestRoadClassOf(t *testing.T) {
	testCases := []struct {
		highway  roadgraph.HighwayType
		expected traff.RoadClass
	}{
		{roadgraph.HighwayMotorway, traff.Motorway},
		{roadgraph.HighwayMotorwayLink, traff.Motorway},
		{roadgraph.HighwayTrunk, traff.Trunk},
		{roadgraph.HighwayPrimaryLink, traff.Primary},
		{roadgraph.HighwayResidential, traff.OtherRoad},
		{roadgraph.HighwayFerry, traff.OtherRoad},
	}

	for _, testCase := range testCases {
		if got := roadClassOf(testCase.highway); got != testCase.expected {
			t.Errorf("roadClassOf(%v) = %v, expected %v", testCase.highway, got, testCase.expected)
		}
	}
}
