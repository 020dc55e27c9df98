package decoder

import (
	"math"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/traff"
)

const (
	junctionRadiusMinM = 300.0
	junctionRadiusMaxM = 500.0

	// tolerance for near-matches of road points, roughly one metre
	pointAccuracyDeg = 1e-5
)

func pointNear(a geo.PointLatLon, b geo.PointLatLon) bool {
	return math.Abs(a.Lat-b.Lat) <= pointAccuracyDeg && math.Abs(a.Lon-b.Lon) <= pointAccuracyDeg
}

// junctionWeightAt looks up a point in a junction table, accepting
// near-matches within pointAccuracyDeg.
func junctionWeightAt(junctions map[geo.PointLatLon]float64, point geo.PointLatLon) (float64, bool) {
	if weight, found := junctions[point]; found {
		return weight, true
	}
	for candidate, weight := range junctions {
		if pointNear(point, candidate) {
			return weight, true
		}
	}
	return 0, false
}

type junctionCandidate struct {
	weight         float64
	segmentsIn     int
	segmentsOut    int
	twoWaySegments int
}

// junctionPointCandidates fills the start and end junction tables for
// low-resolution locations. Reference points of such locations may be well
// off the affected road (e.g. a town centre), so plausible junctions near
// them get a reduced offroad weight.
func (d *Decoder) junctionPointCandidates() {
	d.startJunctions = make(map[geo.PointLatLon]float64)
	d.endJunctions = make(map[geo.PointLatLon]float64)

	if d.location.Fuzziness != traff.LowRes {
		return
	}

	from := d.location.At
	if d.location.From != nil {
		from = d.location.From
	}
	to := d.location.At
	if d.location.To != nil {
		to = d.location.To
	}
	if from == nil || to == nil {
		return
	}

	dist := geo.DistanceM(from.Coordinates, to.Coordinates)

	d.junctionRadius = dist / 3
	if d.junctionRadius > junctionRadiusMaxM {
		d.junctionRadius = junctionRadiusMaxM
	} else if d.junctionRadius < junctionRadiusMinM {
		d.junctionRadius = dist / 2
		if d.junctionRadius > junctionRadiusMinM {
			d.junctionRadius = junctionRadiusMinM
		}
	}

	if d.location.From != nil {
		d.candidatesForPoint(d.location.From.Coordinates, d.startJunctions)
	}
	if d.location.To != nil {
		d.candidatesForPoint(d.location.To.Coordinates, d.endJunctions)
	}
}

// candidatesForPoint scans road endpoints within the junction radius of a
// reference point. A point qualifies as a junction if it can be left through
// more than one segment other than the one through which it was reached, or
// reached through more than one segment other than the one through which it
// will be left.
func (d *Decoder) candidatesForPoint(point geo.PointLatLon, junctions map[geo.PointLatLon]float64) {
	candidates := make(map[geo.PointLatLon]*junctionCandidate)

	rect := geo.RectByCenterAndSizeM(point, 2*d.junctionRadius)
	d.graph.ForEachRoadInRect(rect, func(road roadgraph.Road) {
		if len(road.Points) < 2 {
			return
		}
		for _, i := range []int{0, len(road.Points) - 1} {
			endpoint := road.Points[i]
			weight := geo.DistanceM(point, endpoint)
			if weight > d.junctionRadius {
				continue
			}

			weight *= highwayTypePenalty(road.Highway, d.location.RoadClass, d.location.Ramps)
			weight *= d.roadRefsPenalty(road.Refs)

			candidate := candidates[endpoint]
			if candidate == nil {
				candidate = &junctionCandidate{weight: weight}
				candidates[endpoint] = candidate
			} else if weight < candidate.weight {
				candidate.weight = weight
			}

			if !road.OneWay {
				candidate.twoWaySegments++
			} else if i == 0 {
				candidate.segmentsOut++
			} else {
				candidate.segmentsIn++
			}
		}
	})

	for point, candidate := range candidates {
		// discount the segments used to arrive and leave
		if candidate.segmentsIn > 0 {
			candidate.segmentsIn--
		} else if candidate.twoWaySegments > 0 {
			candidate.twoWaySegments--
		}
		if candidate.segmentsOut > 0 {
			candidate.segmentsOut--
		} else if candidate.twoWaySegments > 0 {
			candidate.twoWaySegments--
		}

		if candidate.segmentsIn > 0 || candidate.segmentsOut > 0 || candidate.twoWaySegments > 0 {
			junctions[point] = candidate.weight
		}
	}
}
