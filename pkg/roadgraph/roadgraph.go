package roadgraph

import (
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// HighwayType is the functional classification of a road feature.
// HighwayUnknown means the map carries no classification for the feature.
type HighwayType int

const (
	HighwayUnknown HighwayType = iota
	HighwayMotorway
	HighwayMotorwayLink
	HighwayTrunk
	HighwayTrunkLink
	HighwayPrimary
	HighwayPrimaryLink
	HighwaySecondary
	HighwaySecondaryLink
	HighwayTertiary
	HighwayTertiaryLink
	HighwayResidential
	HighwayUnclassified
	HighwayService
	HighwayFerry
)

func (t HighwayType) String() string {
	switch t {
	case HighwayMotorway:
		return "motorway"
	case HighwayMotorwayLink:
		return "motorway_link"
	case HighwayTrunk:
		return "trunk"
	case HighwayTrunkLink:
		return "trunk_link"
	case HighwayPrimary:
		return "primary"
	case HighwayPrimaryLink:
		return "primary_link"
	case HighwaySecondary:
		return "secondary"
	case HighwaySecondaryLink:
		return "secondary_link"
	case HighwayTertiary:
		return "tertiary"
	case HighwayTertiaryLink:
		return "tertiary_link"
	case HighwayResidential:
		return "residential"
	case HighwayUnclassified:
		return "unclassified"
	case HighwayService:
		return "service"
	case HighwayFerry:
		return "ferry"
	}
	return "unknown"
}

// Road is one linear map feature: an ordered polyline with routing
// attributes. Consecutive point pairs form its segments.
type Road struct {
	MwmID  mwm.ID
	Fid    uint32
	Points []geo.PointLatLon

	Highway    HighwayType
	OneWay     bool
	Roundabout bool
	// Refs are the road shield names, e.g. ["A 8", "E 52"].
	Refs []string

	// MaxspeedKmPH is the legal speed limit, 0 if unknown.
	MaxspeedKmPH float64
}

// SegmentLengthM returns the length of the segment starting at point idx.
func (r Road) SegmentLengthM(idx uint16) float64 {
	if int(idx)+1 >= len(r.Points) {
		return 0
	}
	return geo.DistanceM(r.Points[idx], r.Points[int(idx)+1])
}

// Edge is one directed segment of a road, or a fake segment connecting a
// checkpoint to the road network. Fake edges have a zero MwmID.
type Edge struct {
	MwmID   mwm.ID
	Fid     uint32
	Idx     uint16
	Forward bool

	From geo.PointLatLon
	To   geo.PointLatLon

	Highway    HighwayType
	OneWay     bool
	Roundabout bool
	Refs       []string

	LengthM float64
}

func (e Edge) IsFake() bool {
	return e.MwmID.IsZero()
}

func (e Edge) SegmentID() traffic.RoadSegmentId {
	dir := traffic.ForwardDirection
	if !e.Forward {
		dir = traffic.ReverseDirection
	}
	return traffic.RoadSegmentId{Fid: e.Fid, Idx: e.Idx, Dir: dir}
}

// RouteSegment is one edge of a calculated route together with the
// accumulated weight up to and including it.
type RouteSegment struct {
	Edge Edge

	// TimeFromStartS is the total route weight from the start checkpoint to
	// the end of this segment.
	TimeFromStartS float64
}

// Junction is the point at which the segment ends.
func (s RouteSegment) Junction() geo.PointLatLon {
	return s.Edge.To
}

// ResultCode is the outcome of a route calculation.
type ResultCode int

const (
	NoError ResultCode = iota
	StartPointNotFound
	EndPointNotFound
	IntermediatePointNotFound
	RouteNotFound
	InternalError
)

func (c ResultCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case StartPointNotFound:
		return "StartPointNotFound"
	case EndPointNotFound:
		return "EndPointNotFound"
	case IntermediatePointNotFound:
		return "IntermediatePointNotFound"
	case RouteNotFound:
		return "RouteNotFound"
	}
	return "InternalError"
}

// WeightPolicy supplies the edge weights and penalties used during route
// calculation. The caller owns the policy; routers treat it as read-only.
type WeightPolicy interface {
	// SegmentWeight is the cost of traversing a real edge.
	SegmentWeight(edge Edge) float64
	// OffroadWeight is the cost of a fake edge between a checkpoint and the
	// road network.
	OffroadWeight(from geo.PointLatLon, to geo.PointLatLon) float64
	// TurnPenalty is the cost of turning by angleDeg at the given junction.
	// A positive angle is a turn across traffic; the router flips the sign
	// for left-hand traffic before calling.
	TurnPenalty(angleDeg float64, junction geo.PointLatLon) float64
	UTurnPenalty() float64
	FerryLandingPenalty() float64
}

// Router calculates a minimum-weight route through an ordered list of
// checkpoints. The returned segments start with a fake edge from the first
// checkpoint and end with a fake edge to the last; with more than two
// checkpoints, fake edges also occur in the middle.
type Router interface {
	CalculateRoute(checkpoints []geo.PointLatLon, policy WeightPolicy) ([]RouteSegment, ResultCode)
}

// Graph is the read side of the road network used for junction analysis and
// per-segment attribute lookups.
type Graph interface {
	// ForEachRoadInRect calls fn for every road with at least one point
	// inside rect.
	ForEachRoadInRect(rect geo.RectLatLon, fn func(road Road))
	// RoadByID returns the road feature with the given IDs.
	RoadByID(mwmID mwm.ID, fid uint32) (Road, bool)
}
