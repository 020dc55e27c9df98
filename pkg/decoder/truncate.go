package decoder

import (
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/roadgraph"
)

// truncateRoute cuts the route down to the stretch between the most
// plausible start and end junctions. The router is forced to route between
// the raw reference points; for fuzzy locations these may lie well off the
// road, so leading and trailing segments whose omission saves more weight
// than the direct offroad connection are dropped.
func (d *Decoder) truncateRoute(rsegments []roadgraph.RouteSegment, start geo.PointLatLon, finish geo.PointLatLon, backwards bool) []roadgraph.RouteSegment {
	if len(rsegments) == 0 {
		return rsegments
	}

	endWeight := rsegments[len(rsegments)-1].TimeFromStartS

	for len(rsegments) > 0 && rsegments[0].Edge.IsFake() {
		rsegments = rsegments[1:]
	}
	for len(rsegments) > 0 && rsegments[len(rsegments)-1].Edge.IsFake() {
		rsegments = rsegments[:len(rsegments)-1]
	}

	if len(rsegments) < 2 {
		return rsegments
	}

	startJunctions := d.startJunctions
	endJunctions := d.endJunctions
	if backwards {
		startJunctions, endJunctions = endJunctions, startJunctions
	}

	first, startSaving := truncateStart(rsegments, start, startJunctions)
	last, endSaving := truncateEnd(rsegments, finish, endWeight, endJunctions)

	// If the stretches to cut do not overlap, cut both. Otherwise cut where
	// the saving is bigger, then recalculate and cut the other end.
	switch {
	case first <= last:
		return rsegments[first : last+1]
	case startSaving > endSaving:
		rsegments = rsegments[first:]
		last, _ = truncateEnd(rsegments, finish, endWeight, endJunctions)
		return rsegments[:last+1]
	default:
		rsegments = rsegments[:last+1]
		first, _ = truncateStart(rsegments, start, startJunctions)
		return rsegments[first:]
	}
}

// truncateStart returns the index of the first segment to keep and the
// weight saved by dropping everything before it. For every junction point it
// compares the on-route weight against reaching that junction directly: from
// the junction table if known, as direct offroad distance otherwise.
func truncateStart(rsegments []roadgraph.RouteSegment, start geo.PointLatLon, junctions map[geo.PointLatLon]float64) (int, float64) {
	first := 0
	saving := 0.0
	for i := range rsegments {
		var newSaving float64
		if weight, found := junctionWeightAt(junctions, rsegments[i].Junction()); found {
			newSaving = rsegments[i].TimeFromStartS - weight
		} else {
			newSaving = rsegments[i].TimeFromStartS -
				geo.DistanceM(start, rsegments[i].Junction())*offroadPenalty
		}
		if newSaving > saving {
			// this segment is dropped, the next one kept
			first = i + 1
			saving = newSaving
		}
	}
	return first, saving
}

// truncateEnd returns the index of the last segment to keep and the weight
// saved by dropping everything after it.
func truncateEnd(rsegments []roadgraph.RouteSegment, finish geo.PointLatLon, endWeight float64, junctions map[geo.PointLatLon]float64) (int, float64) {
	last := len(rsegments) - 1
	saving := 0.0
	for i := range rsegments {
		var newSaving float64
		if weight, found := junctionWeightAt(junctions, rsegments[i].Junction()); found {
			newSaving = endWeight - rsegments[i].TimeFromStartS - weight
		} else {
			newSaving = endWeight - rsegments[i].TimeFromStartS -
				geo.DistanceM(rsegments[i].Junction(), finish)*offroadPenalty
		}
		if newSaving > saving {
			last = i
			saving = newSaving
		}
	}
	return last, saving
}
