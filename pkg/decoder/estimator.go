package decoder

import (
	"strings"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/traff"
)

const (
	// weights are expressed as metres at a nominal 1 m/s, i.e. seconds
	oneMpSInKmpH = 3.6

	offroadPenalty          = 16.0
	attributePenalty        = 4.0
	reducedAttributePenalty = 2.0

	turnPenaltyMaxDistM     = 100.0
	turnPenaltyMinAngleDeg  = 65.0
	turnPenaltyFullAngleDeg = 90.0

	uTurnPenaltyS        = 2 * 60.0
	ferryLandingPenaltyS = 20 * 60.0
)

// estimator weighs route edges by their plausibility as a match for the
// location under decode: distance is the base weight, and mismatches of
// attributes the location specifies (ramps, road class, road ref) multiply
// it by attribute penalties.
type estimator struct {
	d *Decoder
}

func (e estimator) SegmentWeight(edge roadgraph.Edge) float64 {
	result := edge.LengthM

	if e.d.location == nil || e.d.location.RoadClass == nil {
		return result
	}

	result *= highwayTypePenalty(edge.Highway, e.d.location.RoadClass, e.d.location.Ramps)

	if len(e.d.roadRef) > 0 {
		result *= e.d.roadRefsPenalty(edge.Refs)
	}

	return result
}

func (e estimator) OffroadWeight(from geo.PointLatLon, to geo.PointLatLon) float64 {
	defaultWeight := geo.DistanceM(from, to) * offroadPenalty

	// If one endpoint is a location reference point and the other is a known
	// junction candidate for it, use the weight from the junction table.
	loc := e.d.location
	if loc == nil {
		return defaultWeight
	}
	if loc.From != nil {
		if loc.From.Coordinates == from {
			return junctionOffroadWeight(to, e.d.startJunctions, defaultWeight)
		} else if loc.From.Coordinates == to {
			return junctionOffroadWeight(from, e.d.startJunctions, defaultWeight)
		}
	}
	if loc.To != nil {
		if loc.To.Coordinates == from {
			return junctionOffroadWeight(to, e.d.endJunctions, defaultWeight)
		} else if loc.To.Coordinates == to {
			return junctionOffroadWeight(from, e.d.endJunctions, defaultWeight)
		}
	}
	return defaultWeight
}

func junctionOffroadWeight(roadPoint geo.PointLatLon, junctions map[geo.PointLatLon]float64, defaultWeight float64) float64 {
	if weight, found := junctionWeightAt(junctions, roadPoint); found {
		return weight
	}
	return defaultWeight
}

// TurnPenalty penalizes sharp turns across traffic close to a location
// endpoint. Such turns usually mean the route is leaving the affected road
// prematurely instead of following it to the endpoint.
func (e estimator) TurnPenalty(angleDeg float64, junction geo.PointLatLon) float64 {
	if angleDeg < turnPenaltyMinAngleDeg {
		return 0
	}

	loc := e.d.location
	if loc == nil {
		return 0
	}
	from := loc.At
	if loc.From != nil {
		from = loc.From
	}
	to := loc.At
	if loc.To != nil {
		to = loc.To
	}
	if from == nil || to == nil {
		return 0
	}

	dist := geo.DistanceM(junction, from.Coordinates)
	if d := geo.DistanceM(junction, to.Coordinates); d < dist {
		dist = d
	}
	if dist > turnPenaltyMaxDistM {
		return 0
	}

	// The closer the turn to an endpoint, the higher the penalty. The full
	// penalty applies above turnPenaltyFullAngleDeg, proportionally less
	// between the min and full angles.
	result := (turnPenaltyMaxDistM - dist) * attributePenalty
	if angleDeg < turnPenaltyFullAngleDeg {
		result *= (angleDeg - turnPenaltyMinAngleDeg) / (turnPenaltyFullAngleDeg - turnPenaltyMinAngleDeg)
	}
	return result
}

func (e estimator) UTurnPenalty() float64 {
	return uTurnPenaltyS
}

func (e estimator) FerryLandingPenalty() float64 {
	return ferryLandingPenaltyS
}

// highwayTypePenalty is the combined penalty factor for the ramp attribute
// and the road class. A road without a highway classification is treated as
// a mismatch on both counts.
func highwayTypePenalty(highway roadgraph.HighwayType, roadClass *traff.RoadClass, ramps traff.Ramps) float64 {
	result := 1.0
	if highway == roadgraph.HighwayUnknown {
		result *= attributePenalty
		if roadClass != nil {
			result *= attributePenalty
		}
		return result
	}

	if isRamp(highway) != (ramps != traff.RampsNone) {
		result *= attributePenalty
	}
	if roadClass != nil {
		result *= roadClassPenalty(*roadClass, roadClassOf(highway))
	}
	return result
}

// roadClassOf maps a highway type to the coarse road class of locations.
// Parallel carriageways may be tagged as links, so links map like the
// underlying highway type.
func roadClassOf(highway roadgraph.HighwayType) traff.RoadClass {
	switch highway {
	case roadgraph.HighwayMotorway, roadgraph.HighwayMotorwayLink:
		return traff.Motorway
	case roadgraph.HighwayTrunk, roadgraph.HighwayTrunkLink:
		return traff.Trunk
	case roadgraph.HighwayPrimary, roadgraph.HighwayPrimaryLink:
		return traff.Primary
	case roadgraph.HighwaySecondary, roadgraph.HighwaySecondaryLink:
		return traff.Secondary
	case roadgraph.HighwayTertiary, roadgraph.HighwayTertiaryLink:
		return traff.Tertiary
	}
	return traff.OtherRoad
}

// roadClassPenalty is 1 for identical classes, reduced for adjacent classes
// (e.g. trunk and primary) and full for everything else.
func roadClassPenalty(lhs traff.RoadClass, rhs traff.RoadClass) float64 {
	if lhs == rhs {
		return 1
	}
	adjacent := false
	switch lhs {
	case traff.Motorway:
		adjacent = rhs == traff.Trunk
	case traff.Trunk:
		adjacent = rhs == traff.Motorway || rhs == traff.Primary
	case traff.Primary:
		adjacent = rhs == traff.Trunk || rhs == traff.Secondary
	case traff.Secondary:
		adjacent = rhs == traff.Primary || rhs == traff.Tertiary
	case traff.Tertiary:
		adjacent = rhs == traff.Secondary || rhs == traff.OtherRoad
	case traff.OtherRoad:
		adjacent = rhs == traff.Tertiary
	}
	if adjacent {
		return reducedAttributePenalty
	}
	return attributePenalty
}

func isRamp(highway roadgraph.HighwayType) bool {
	switch highway {
	case roadgraph.HighwayMotorwayLink,
		roadgraph.HighwayTrunkLink,
		roadgraph.HighwayPrimaryLink,
		roadgraph.HighwaySecondaryLink,
		roadgraph.HighwayTertiaryLink:
		return true
	}
	return false
}

// roadRefsPenalty returns the best (lowest) penalty across all shield names
// of a road.
func (d *Decoder) roadRefsPenalty(refs []string) float64 {
	result := attributePenalty
	for _, ref := range refs {
		if penalty := d.roadRefPenalty(ref); penalty < result {
			result = penalty
		}
		if result == 1 {
			break
		}
	}
	return result
}

// roadRefPenalty compares one shield name against the location's road ref.
// Both are tokenized; a full bidirectional match is no penalty, a partial
// match a reduced one, no match at all the full penalty.
func (d *Decoder) roadRefPenalty(ref string) float64 {
	if ref == "" {
		if len(d.roadRef) == 0 {
			return 1
		}
		return attributePenalty
	}

	r := ParseRef(ref)

	if len(d.roadRef) == 0 && len(r) == 0 {
		return 1
	} else if len(d.roadRef) == 0 || len(r) == 0 {
		return attributePenalty
	}

	l := d.roadRef
	if len(l) > 1 && len(r) > 1 && l[0] == r[0] {
		// Discard generic prefixes, which often just denote the road class.
		// This turns "A1" and "A2" into "1" and "2", making them a mismatch
		// rather than a partial match.
		l = l[1:]
		r = r[1:]
	}

	matches := 0
	for _, litem := range l {
		for _, ritem := range r {
			if litem == ritem {
				matches++
				break
			}
		}
	}
	for _, ritem := range r {
		for _, litem := range l {
			if litem == ritem {
				matches++
				break
			}
		}
	}

	switch {
	case matches == 0:
		return attributePenalty
	case matches == len(l)+len(r):
		return 1
	}
	return reducedAttributePenalty
}

type refParserState int

const (
	refWhitespace refParserState = iota
	refNumeric
	refAlpha
)

// ParseRef splits a road ref into tokens: runs of digits become numeric
// tokens, runs of anything else become lowercased letter tokens, and
// whitespace and common punctuation delimit.
func ParseRef(ref string) []string {
	var res []string
	curr := ""
	state := refWhitespace

	flush := func() {
		if state == refAlpha {
			curr = strings.ToLower(curr)
		}
		res = append(res, curr)
		curr = ""
	}

	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c <= 0x20 || c == ',' || c == '-' || c == '.' || c == '/':
			if state != refWhitespace {
				flush()
			}
			state = refWhitespace
		case c >= '0' && c <= '9':
			if state == refAlpha {
				flush()
			}
			curr += string(c)
			state = refNumeric
		default:
			if state == refNumeric {
				flush()
			}
			curr += string(c)
			state = refAlpha
		}
	}
	if curr != "" {
		flush()
	}
	return res
}
