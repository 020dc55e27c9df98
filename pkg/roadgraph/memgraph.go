package roadgraph

import (
	"container/heap"

	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
)

// memSnapRadiusM is how far a checkpoint may lie from the road network and
// still be connected to it by a fake edge.
const memSnapRadiusM = 2000.0

type roadKey struct {
	mwmID mwm.ID
	fid   uint32
}

// MemGraph is an in-memory road network implementing both Graph and Router.
// Roads are registered with AddRoad; routing runs an edge-based Dijkstra so
// that turn, U-turn and ferry landing penalties can be charged on the
// transition between edges.
type MemGraph struct {
	// LeftHandTraffic flips the sign of turn angles before they are handed
	// to the weight policy.
	LeftHandTraffic bool

	roads    map[roadKey]Road
	outgoing map[geo.PointLatLon][]Edge
}

func NewMemGraph() *MemGraph {
	return &MemGraph{
		roads:    make(map[roadKey]Road),
		outgoing: make(map[geo.PointLatLon][]Edge),
	}
}

// AddRoad registers a road feature and creates its directed edges. A one-way
// road is traversable from the first point towards the last only.
func (g *MemGraph) AddRoad(road Road) {
	if len(road.Points) < 2 {
		return
	}
	g.roads[roadKey{mwmID: road.MwmID, fid: road.Fid}] = road

	for i := 0; i+1 < len(road.Points); i++ {
		from := road.Points[i]
		to := road.Points[i+1]
		length := geo.DistanceM(from, to)

		forward := Edge{
			MwmID:      road.MwmID,
			Fid:        road.Fid,
			Idx:        uint16(i),
			Forward:    true,
			From:       from,
			To:         to,
			Highway:    road.Highway,
			OneWay:     road.OneWay,
			Roundabout: road.Roundabout,
			Refs:       road.Refs,
			LengthM:    length,
		}
		g.outgoing[from] = append(g.outgoing[from], forward)

		if road.OneWay {
			continue
		}
		backward := forward
		backward.Forward = false
		backward.From = to
		backward.To = from
		g.outgoing[to] = append(g.outgoing[to], backward)
	}
}

func (g *MemGraph) ForEachRoadInRect(rect geo.RectLatLon, fn func(road Road)) {
	for _, road := range g.roads {
		for _, point := range road.Points {
			if rect.Contains(point) {
				fn(road)
				break
			}
		}
	}
}

func (g *MemGraph) RoadByID(mwmID mwm.ID, fid uint32) (Road, bool) {
	road, found := g.roads[roadKey{mwmID: mwmID, fid: fid}]
	return road, found
}

// edgeKey identifies a Dijkstra state. Fake edges are keyed by their
// endpoints since they carry no feature IDs.
type edgeKey struct {
	fake    bool
	from    geo.PointLatLon
	to      geo.PointLatLon
	mwmID   mwm.ID
	fid     uint32
	idx     uint16
	forward bool
}

func keyOf(e Edge) edgeKey {
	if e.IsFake() {
		return edgeKey{fake: true, from: e.From, to: e.To}
	}
	return edgeKey{mwmID: e.MwmID, fid: e.Fid, idx: e.Idx, forward: e.Forward}
}

type queueItem struct {
	edge Edge
	cost float64
	prev *queueItem
}

type edgeQueue []*queueItem

func (q edgeQueue) Len() int            { return len(q) }
func (q edgeQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q edgeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *edgeQueue) Push(x interface{}) { *q = append(*q, x.(*queueItem)) }
func (q *edgeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// CalculateRoute routes through the checkpoints in order, concatenating one
// leg per checkpoint pair.
func (g *MemGraph) CalculateRoute(checkpoints []geo.PointLatLon, policy WeightPolicy) ([]RouteSegment, ResultCode) {
	if len(checkpoints) < 2 {
		return nil, InternalError
	}

	var result []RouteSegment
	total := 0.0
	for i := 0; i+1 < len(checkpoints); i++ {
		leg, code := g.calculateLeg(checkpoints[i], checkpoints[i+1], policy)
		if code != NoError {
			switch {
			case code != RouteNotFound:
				return nil, code
			case i == 0:
				return nil, StartPointNotFound
			case i+2 == len(checkpoints):
				return nil, EndPointNotFound
			default:
				return nil, IntermediatePointNotFound
			}
		}
		for _, edge := range leg {
			total += edge.cost
			result = append(result, RouteSegment{Edge: edge.edge, TimeFromStartS: total})
		}
	}
	return result, NoError
}

type legEdge struct {
	edge Edge
	cost float64
}

func (g *MemGraph) calculateLeg(start geo.PointLatLon, finish geo.PointLatLon, policy WeightPolicy) ([]legEdge, ResultCode) {
	queue := &edgeQueue{}
	settled := make(map[edgeKey]bool)

	// seed with fake edges from the start checkpoint to nearby nodes
	for node := range g.outgoing {
		if geo.DistanceM(start, node) > memSnapRadiusM {
			continue
		}
		fake := Edge{From: start, To: node, LengthM: geo.DistanceM(start, node)}
		heap.Push(queue, &queueItem{edge: fake, cost: policy.OffroadWeight(start, node)})
	}
	if queue.Len() == 0 {
		return nil, RouteNotFound
	}

	for queue.Len() > 0 {
		item := heap.Pop(queue).(*queueItem)
		key := keyOf(item.edge)
		if settled[key] {
			continue
		}
		settled[key] = true

		if item.edge.IsFake() && item.edge.To == finish {
			return legPath(item), NoError
		}

		node := item.edge.To
		if !item.edge.IsFake() && geo.DistanceM(node, finish) <= memSnapRadiusM {
			fake := Edge{From: node, To: finish, LengthM: geo.DistanceM(node, finish)}
			heap.Push(queue, &queueItem{
				edge: fake,
				cost: item.cost + policy.OffroadWeight(node, finish),
				prev: item,
			})
		}

		for _, next := range g.outgoing[node] {
			if settled[keyOf(next)] {
				continue
			}
			cost := item.cost + policy.SegmentWeight(next) + g.transitionPenalty(item.edge, next, policy)
			heap.Push(queue, &queueItem{edge: next, cost: cost, prev: item})
		}
	}
	return nil, RouteNotFound
}

func (g *MemGraph) transitionPenalty(prev Edge, next Edge, policy WeightPolicy) float64 {
	if prev.IsFake() {
		return 0
	}
	penalty := 0.0
	if prev.MwmID == next.MwmID && prev.Fid == next.Fid && prev.Idx == next.Idx && prev.Forward != next.Forward {
		penalty += policy.UTurnPenalty()
	}
	if next.Highway == HighwayFerry && prev.Highway != HighwayFerry {
		penalty += policy.FerryLandingPenalty()
	}
	angle := geo.TurnAngleDeg(geo.BearingDeg(prev.From, prev.To), geo.BearingDeg(next.From, next.To))
	if g.LeftHandTraffic {
		angle = -angle
	}
	penalty += policy.TurnPenalty(angle, prev.To)
	return penalty
}

func legPath(item *queueItem) []legEdge {
	var chain []*queueItem
	for it := item; it != nil; it = it.prev {
		chain = append(chain, it)
	}

	// chain is in reverse order; recover per-edge costs from cumulative ones
	path := make([]legEdge, 0, len(chain))
	prevCost := 0.0
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, legEdge{edge: chain[i].edge, cost: chain[i].cost - prevCost})
		prevCost = chain[i].cost
	}
	return path
}
