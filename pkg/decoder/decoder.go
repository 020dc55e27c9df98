package decoder

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// Decoder matches TraFF locations to road segments. It routes between the
// reference points of a location with a weight policy that prefers roads
// matching the location's attributes, then post-processes the route into a
// set of directed segments.
//
// The message cache is shared with the caller: messages decoded earlier let
// the decoder skip routing when an update carries an unchanged location.
type Decoder struct {
	mu sync.Mutex

	graph  roadgraph.Graph
	router roadgraph.Router
	cache  map[string]*traff.Message

	// state of the decode in progress
	location       *traff.Location
	roadRef        []string
	junctionRadius float64
	startJunctions map[geo.PointLatLon]float64
	endJunctions   map[geo.PointLatLon]float64
}

func New(graph roadgraph.Graph, router roadgraph.Router, cache map[string]*traff.Message) *Decoder {
	return &Decoder{
		graph:  graph,
		router: router,
		cache:  cache,
	}
}

// DecodeMessage consolidates the message's events into a traffic impact,
// obtains the set of affected segments and fills message.Decoded with one
// speed group per segment. Messages whose location matches a cached message
// reuse the cached segments; if the impact is also unchanged, the cached
// coloring is taken over verbatim.
func (d *Decoder) DecodeMessage(message *traff.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if message.Location == nil {
		return
	}

	impact := message.TrafficImpact()
	log.Debug().Msgf("message %s: impact %v", message.ID, impact)

	decoded := traff.MultiMwmColoring{}
	isDecoded := false

	ids := append([]string{message.ID}, message.Replaces...)
	for _, id := range ids {
		cached, found := d.cache[id]
		if !found || len(cached.Decoded) == 0 || !cached.Location.Equal(message.Location) {
			continue
		}

		log.Debug().Msgf("message %s: location reused from cached message %s", message.ID, id)

		cachedImpact := cached.TrafficImpact()
		sameImpact := cachedImpact == nil && impact == nil ||
			cachedImpact != nil && impact != nil && cachedImpact.Equal(*impact)
		if sameImpact {
			// same impact, the whole coloring can be reused
			log.Debug().Msgf("message %s: impact unchanged, reusing cached coloring", message.ID)
			message.Decoded = cached.Decoded.Clone()
			return
		}
		if !isDecoded {
			// take the first usable location but keep searching, a later
			// one may also have a matching impact
			decoded = cached.Decoded.Clone()
			isDecoded = true
		}
	}

	if !isDecoded {
		d.DecodeLocation(message, decoded)
	}

	if impact != nil {
		d.ApplyTrafficImpact(*impact, decoded)
	} else {
		// without events the segments stay Unknown placeholders
		for _, coloring := range decoded {
			for segment := range coloring {
				coloring[segment] = traffic.Unknown
			}
		}
	}
	message.Decoded = decoded
}

// DecodeLocation resolves the message's location into segments, one pass per
// affected direction of travel. The segments are added to decoded with an
// Unknown speed group.
func (d *Decoder) DecodeLocation(message *traff.Message, decoded traff.MultiMwmColoring) {
	if message.Location == nil {
		return
	}

	d.location = message.Location
	if d.location.RoadRef != "" {
		d.roadRef = ParseRef(d.location.RoadRef)
	} else {
		d.roadRef = nil
	}

	d.junctionPointCandidates()

	dirs := 1
	if d.location.Directionality == traff.BothDirections {
		dirs = 2
	}
	for dir := 0; dir < dirs; dir++ {
		d.decodeLocationDirection(message, decoded, dir == 1)
	}

	d.location = nil
	d.roadRef = nil
}

func (d *Decoder) decodeLocationDirection(message *traff.Message, decoded traff.MultiMwmColoring, backwards bool) {
	loc := message.Location

	var points []geo.PointLatLon
	if loc.From != nil {
		points = append(points, loc.From.Coordinates)
	}
	if loc.At != nil {
		points = append(points, loc.At.Coordinates)
	} else if loc.Via != nil {
		points = append(points, loc.Via.Coordinates)
	}
	if loc.To != nil {
		points = append(points, loc.To.Coordinates)
	}
	if backwards {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	// NotVia is ignored; excluding points is not supported by the router.
	if len(points) < 2 {
		return
	}

	rsegments, code := d.router.CalculateRoute(points, estimator{d})
	if code != roadgraph.NoError {
		log.Warn().Msgf("message %s: route calculation failed: %v", message.ID, code)
		return
	}
	if len(rsegments) == 0 {
		return
	}

	rsegments = d.truncateRoute(rsegments, points[0], points[len(points)-1], backwards)
	if len(rsegments) == 0 {
		return
	}

	// Roundabouts crossing the route are usually discarded to avoid side
	// effects on the crossing roads, unless the location is a point or the
	// entire decoded stretch is a roundabout.
	keepRoundabouts := true
	var lastRoundabout roadgraph.Edge
	haveRoundabout := false
	if loc.At == nil {
		for _, rsegment := range rsegments {
			if rsegment.Edge.Roundabout {
				lastRoundabout = rsegment.Edge
				haveRoundabout = true
			} else if !haveRoundabout ||
				rsegment.Edge.MwmID != lastRoundabout.MwmID ||
				rsegment.Edge.Fid != lastRoundabout.Fid {
				keepRoundabouts = false
				break
			}
		}
	}

	switch {
	case !backwards && loc.At != nil && loc.To == nil:
		// from-at in forward direction
		addDecodedSegment(decoded, rsegments[len(rsegments)-1].Edge)
	case !backwards && loc.At != nil && loc.From == nil:
		// at-to in forward direction
		addDecodedSegment(decoded, rsegments[0].Edge)
	case backwards && loc.At != nil && loc.To == nil:
		// from-at in backward direction
		addDecodedSegment(decoded, rsegments[0].Edge)
	case backwards && loc.At != nil && loc.From == nil:
		// at-to in backward direction
		addDecodedSegment(decoded, rsegments[len(rsegments)-1].Edge)
	case loc.At != nil:
		// from-at-to, pick the segment whose junction is closest to at
		at := loc.At.Coordinates
		closest := rsegments[0]
		closestDist := geo.DistanceM(at, closest.Junction())
		for _, rsegment := range rsegments {
			// with more than two checkpoints, fake segments occur mid-route
			if rsegment.Edge.IsFake() {
				continue
			}
			if dist := geo.DistanceM(at, rsegment.Junction()); dist < closestDist {
				closest = rsegment
				closestDist = dist
			}
		}
		addDecodedSegment(decoded, closest.Edge)
	default:
		// from-[via]-to, add all real segments
		haveRoundabout = false
		for _, rsegment := range rsegments {
			if !keepRoundabouts {
				if rsegment.Edge.Roundabout {
					lastRoundabout = rsegment.Edge
					haveRoundabout = true
					continue
				} else if haveRoundabout &&
					rsegment.Edge.MwmID == lastRoundabout.MwmID &&
					rsegment.Edge.Fid == lastRoundabout.Fid {
					continue
				}
			}
			if rsegment.Edge.IsFake() {
				continue
			}
			addDecodedSegment(decoded, rsegment.Edge)
		}
	}
}

func addDecodedSegment(decoded traff.MultiMwmColoring, edge roadgraph.Edge) {
	if edge.IsFake() {
		return
	}
	coloring := decoded[edge.MwmID]
	if coloring == nil {
		coloring = traffic.Coloring{}
		decoded[edge.MwmID] = coloring
	}
	coloring[edge.SegmentID()] = traffic.Unknown
}

// ApplyTrafficImpact consolidates the impact into a single speed group per
// decoded segment. A delay is converted into a speed group by relating the
// normal travel time over the decoded stretch to the delayed one; a speed
// limit is converted per segment by relating it to the legal limit. The
// worst of the applicable groups wins, TempBlock unconditionally.
func (d *Decoder) ApplyTrafficImpact(impact traff.TrafficImpact, decoded traff.MultiMwmColoring) {
	fromDelay := traffic.Unknown

	if impact.DelayMins > 0 && impact.SpeedGroup != traffic.TempBlock {
		normalDurationS := 0.0
		for mwmID, coloring := range decoded {
			for segment := range coloring {
				road, found := d.graph.RoadByID(mwmID, segment.Fid)
				if !found || road.MaxspeedKmPH <= 0 {
					continue
				}
				normalDurationS += road.SegmentLengthM(segment.Idx) * oneMpSInKmpH / road.MaxspeedKmPH
			}
		}
		delayedDurationS := normalDurationS + float64(impact.DelayMins)*60
		fromDelay = traffic.GetSpeedGroupByPercentage(normalDurationS * 100 / delayedDurationS)

		log.Debug().Msgf("normal duration %.0fs, delayed duration %.0fs, speed group %v",
			normalDurationS, delayedDurationS, fromDelay)
	}

	for mwmID, coloring := range decoded {
		for segment := range coloring {
			sg := impact.SpeedGroup

			if sg != traffic.TempBlock && fromDelay != traffic.Unknown {
				if sg == traffic.Unknown || fromDelay < sg {
					sg = fromDelay
				}
			}

			if sg != traffic.TempBlock && impact.Maxspeed != traff.MaxspeedNone {
				if road, found := d.graph.RoadByID(mwmID, segment.Fid); found && road.MaxspeedKmPH > 0 {
					fromMaxspeed := traffic.GetSpeedGroupByPercentage(float64(impact.Maxspeed) * 100 / road.MaxspeedKmPH)
					if sg == traffic.Unknown || fromMaxspeed < sg {
						sg = fromMaxspeed
					}
				}
			}

			coloring[segment] = sg
		}
	}
}
