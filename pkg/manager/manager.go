package manager

import (
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/traffgo/traffgo/pkg/decoder"
	"github.com/traffgo/traffgo/pkg/geo"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/roadgraph"
	"github.com/traffgo/traffgo/pkg/source"
	"github.com/traffgo/traffgo/pkg/storage"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
	"github.com/traffgo/traffgo/pkg/util"
)

const (
	defaultPollInterval    = 1 * time.Minute
	outdatedDataExtra      = 5 * time.Minute
	networkErrorTimeout    = 20 * time.Minute
	maxRetriesCount        = 5
	rendererUpdateInterval = 10 * time.Second
	observerUpdateInterval = 1 * time.Minute
	myPositionSquareSideM  = 5000.0
)

// Options configures a Manager. Registry, Graph and Router are required;
// everything else is optional.
type Options struct {
	Registry mwm.Registry
	Graph    roadgraph.Graph
	Router   roadgraph.Router

	Renderer traffic.Renderer
	Observer traffic.Observer
	Storage  storage.Storage

	// PollInterval is how often the worker wakes up, and how long a tile may
	// go without a response before it is considered stale enough to re-poll.
	PollInterval time.Duration
}

// Manager drives the traffic pipeline: it subscribes its sources to the
// currently active map tiles, queues the feeds they deliver, decodes them one
// message per worker cycle and fans the merged coloring out to the renderer
// and the routing observer.
//
// All feed processing happens on a single worker goroutine; the public
// methods only mutate shared state under the mutex and wake the worker.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	registry mwm.Registry
	dec      *decoder.Decoder
	renderer traffic.Renderer
	observer traffic.Observer
	store    storage.Storage
	sources  *source.Manager

	pollInterval    time.Duration
	outdatedTimeout time.Duration

	state         TrafficState
	stateListener StateChangedFn

	enabled   bool
	isStarted bool
	isRunning bool
	isPaused  bool

	activeMwmsChanged bool
	isPollNeeded      bool

	feedQueue      []traff.Feed
	messageCache   map[string]*traff.Message
	allMwmColoring traff.MultiMwmColoring

	mwmCache          map[mwm.ID]*cacheEntry
	activeDrapeMwms   map[mwm.ID]struct{}
	activeRoutingMwms map[mwm.ID]struct{}

	lastDrapeMwmsByRect   []mwm.ID
	lastRoutingMwmsByRect []mwm.ID

	currentViewport geo.RectLatLon
	hasViewport     bool
	currentPosition geo.PointLatLon
	hasPosition     bool

	lastResponseTime   time.Time
	lastRendererUpdate time.Time
	lastObserverUpdate time.Time

	done chan struct{}
}

func New(opts Options) *Manager {
	m := &Manager{
		registry:          opts.Registry,
		renderer:          opts.Renderer,
		observer:          opts.Observer,
		store:             opts.Storage,
		sources:           source.NewManager(),
		pollInterval:      opts.PollInterval,
		state:             StateDisabled,
		messageCache:      map[string]*traff.Message{},
		allMwmColoring:    traff.MultiMwmColoring{},
		mwmCache:          map[mwm.ID]*cacheEntry{},
		activeDrapeMwms:   map[mwm.ID]struct{}{},
		activeRoutingMwms: map[mwm.ID]struct{}{},
		done:              make(chan struct{}),
	}
	if m.pollInterval <= 0 {
		m.pollInterval = defaultPollInterval
	}
	m.outdatedTimeout = m.pollInterval + outdatedDataExtra
	m.cond = sync.NewCond(&m.mu)
	m.dec = decoder.New(opts.Graph, opts.Router, m.messageCache)

	m.loadSnapshot()

	m.isRunning = true
	go m.run()
	return m
}

// AddSource registers a traffic source. Sources are constructed with the
// manager as their host, so this happens after New.
func (m *Manager) AddSource(src source.Source) {
	m.sources.Register(src)
	m.mu.Lock()
	m.activeMwmsChanged = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Sources exposes the source manager, e.g. for registering configured
// sources.
func (m *Manager) Sources() *source.Manager {
	return m.sources
}

// Teardown stops the worker, unsubscribes the sources and persists the
// message cache.
func (m *Manager) Teardown() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	m.mu.Unlock()
	m.cond.Broadcast()
	<-m.done

	m.saveSnapshot()
}

// MwmBounds implements source.Host.
func (m *Manager) MwmBounds(id mwm.ID) (geo.RectLatLon, bool) {
	return m.registry.Bounds(id)
}

// ReceiveFeed implements source.Host.
func (m *Manager) ReceiveFeed(feed traff.Feed) {
	m.Push(feed)
}

// Push queues a feed for decoding and wakes the worker.
func (m *Manager) Push(feed traff.Feed) {
	if len(feed) == 0 {
		return
	}
	m.mu.Lock()
	m.feedQueue = append(m.feedQueue, feed)
	m.lastResponseTime = time.Now()
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *Manager) run() {
	defer close(m.done)

	m.mu.Lock()
	now := time.Now()
	m.lastResponseTime = now
	m.lastRendererUpdate = now
	m.lastObserverUpdate = now
	m.mu.Unlock()

	for m.waitForRequest() {
		m.purgeExpiredMessages()
		m.setSubscriptionArea()
		m.pollSources()
		m.consolidateFeedQueue()
		m.decodeFirstMessage()
		m.onTrafficDataUpdate()
	}

	m.sources.Unsubscribe()
}

// waitForRequest blocks until there is work: queued feeds, a change of the
// active tiles, or the poll interval passing. It returns false when the
// manager is being torn down.
func (m *Manager) waitForRequest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return false
	}
	// once the state machine declared a network error, automatic polling
	// stops until the pipeline is re-enabled
	canPoll := func() bool { return m.isStarted && m.state != StateNetworkError }

	if m.isStarted {
		if len(m.feedQueue) > 0 {
			return true
		}
		if canPoll() && time.Since(m.lastResponseTime) >= m.pollInterval {
			m.isPollNeeded = true
			return true
		}
	}

	timedOut := false
	timer := time.AfterFunc(m.pollInterval, func() {
		m.mu.Lock()
		timedOut = true
		m.mu.Unlock()
		m.cond.Broadcast()
	})
	for m.isRunning && !m.activeMwmsChanged && !timedOut && len(m.feedQueue) == 0 {
		m.cond.Wait()
	}
	timer.Stop()

	if !m.isRunning {
		return false
	}
	if canPoll() && timedOut {
		m.isPollNeeded = true
	}
	return true
}

// purgeExpiredMessages drops expired messages from the cache and rebuilds the
// merged coloring without them.
func (m *Manager) purgeExpiredMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := false
	for id, message := range m.messageCache {
		if message.IsExpired(now) {
			log.Debug().Msgf("message %s: expired, removing from cache", id)
			delete(m.messageCache, id)
			removed = true
		}
	}
	if removed {
		m.rebuildColoringLocked()
	}
}

// rebuildColoringLocked recomputes the merged coloring from the cache. The
// merge keeps the worst group per segment, so removals need a full rebuild.
func (m *Manager) rebuildColoringLocked() {
	coloring := traff.MultiMwmColoring{}
	for _, message := range m.messageCache {
		traff.MergeMultiMwmColoring(message.Decoded, coloring)
	}
	m.allMwmColoring = coloring
}

// setSubscriptionArea pushes the current set of active tiles to the sources.
// Any number of tile changes since the last cycle collapse into a single
// subscription change per source.
func (m *Manager) setSubscriptionArea() {
	m.mu.Lock()
	if !m.isStarted {
		m.mu.Unlock()
		return
	}
	changed := m.activeMwmsChanged
	m.activeMwmsChanged = false
	mwms := m.uniteActiveMwmsLocked()
	m.mu.Unlock()

	m.sources.SubscribeOrChangeSubscription(mwms, changed)
}

func (m *Manager) pollSources() {
	m.mu.Lock()
	isPollNeeded := m.isPollNeeded
	m.isPollNeeded = false
	m.mu.Unlock()

	m.sources.Poll(isPollNeeded)
}

// consolidateFeedQueue deduplicates the queued feeds by message id. The
// message with the newer update time wins; on a tie, the more recently
// received one. Feeds emptied by the deduplication are dropped.
func (m *Manager) consolidateFeedQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.feedQueue) == 0 {
		return
	}

	keep := make([][]bool, len(m.feedQueue))
	for f := range m.feedQueue {
		keep[f] = make([]bool, len(m.feedQueue[f]))
		for i := range keep[f] {
			keep[f][i] = true
		}
	}

	latest := map[string][2]int{}
	for f, feed := range m.feedQueue {
		for i, message := range feed {
			if pos, found := latest[message.ID]; found {
				previous := m.feedQueue[pos[0]][pos[1]]
				if message.UpdateTime.Before(previous.UpdateTime) {
					keep[f][i] = false
					continue
				}
				keep[pos[0]][pos[1]] = false
			}
			latest[message.ID] = [2]int{f, i}
		}
	}

	for f := range m.feedQueue {
		i := 0
		feed := m.feedQueue[f]
		util.InPlaceFilter(&feed, func(message traff.Message) bool {
			i++
			return keep[f][i-1]
		})
		m.feedQueue[f] = feed
	}
	util.InPlaceFilter(&m.feedQueue, func(feed traff.Feed) bool { return len(feed) > 0 })
}

// decodeFirstMessage takes one message off the queue and decodes it. One
// message per cycle keeps the worker responsive to subscription changes
// while a large feed drains.
func (m *Manager) decodeFirstMessage() {
	m.mu.Lock()
	for len(m.feedQueue) > 0 && len(m.feedQueue[0]) == 0 {
		m.feedQueue = m.feedQueue[1:]
	}
	if len(m.feedQueue) == 0 {
		m.mu.Unlock()
		return
	}
	message := m.feedQueue[0][0]
	m.feedQueue[0] = m.feedQueue[0][1:]
	if len(m.feedQueue[0]) == 0 {
		m.feedQueue = m.feedQueue[1:]
	}
	cached := m.messageCache[message.ID]
	m.mu.Unlock()

	if cached != nil && !message.UpdateTime.After(cached.UpdateTime) {
		log.Debug().Msgf("message %s: cached copy is current, skipping", message.ID)
		return
	}

	if message.Cancellation {
		m.mu.Lock()
		removed := false
		for _, id := range append([]string{message.ID}, message.Replaces...) {
			if _, found := m.messageCache[id]; found {
				delete(m.messageCache, id)
				removed = true
			}
		}
		if removed {
			m.rebuildColoringLocked()
		}
		m.mu.Unlock()
		return
	}

	m.dec.DecodeMessage(&message)

	m.mu.Lock()
	replaced := cached != nil
	for _, id := range message.Replaces {
		if _, found := m.messageCache[id]; found {
			delete(m.messageCache, id)
			replaced = true
		}
	}
	m.messageCache[message.ID] = &message
	if replaced {
		m.rebuildColoringLocked()
	} else {
		traff.MergeMultiMwmColoring(message.Decoded, m.allMwmColoring)
	}
	m.mu.Unlock()
}

// onTrafficDataUpdate pushes the merged coloring to the renderer and the
// observer. While the queue is draining the notifications are throttled so
// consumers are not flooded with per-message updates.
func (m *Manager) onTrafficDataUpdate() {
	availability := m.sources.Availability()

	m.mu.Lock()
	now := time.Now()
	queueEmpty := len(m.feedQueue) == 0
	notifyRenderer := queueEmpty || now.Sub(m.lastRendererUpdate) >= rendererUpdateInterval
	notifyObserver := queueEmpty || now.Sub(m.lastObserverUpdate) >= observerUpdateInterval
	if !notifyRenderer && !notifyObserver {
		m.mu.Unlock()
		return
	}

	var infos []traffic.TrafficInfo
	for _, id := range m.uniteActiveMwmsLocked() {
		entry := m.mwmCache[id]
		if entry == nil {
			entry = newCacheEntry(now)
			m.mwmCache[id] = entry
		}

		coloring, found := m.allMwmColoring[id]
		if !found {
			entry.lastAvailability = availability
			if availability == traffic.TransportError {
				if entry.isWaitingForResponse {
					entry.retriesCount++
				}
			} else if availability != traffic.AvailabilityUnknown {
				entry.isWaitingForResponse = false
				entry.lastResponseTime = now
			}
			continue
		}

		entry.isLoaded = true
		entry.dataSize = len(coloring)
		entry.lastResponseTime = now
		entry.isWaitingForResponse = false
		entry.retriesCount = 0
		entry.lastAvailability = traffic.IsAvailable

		cloned := traffic.Coloring{}
		if err := copier.CopyWithOption(&cloned, coloring, copier.Option{DeepCopy: true}); err != nil {
			log.Error().Err(err).Msgf("Failed to copy coloring for %v", id)
			continue
		}
		infos = append(infos, traffic.NewTrafficInfo(id, cloned))
	}

	m.updateStateLocked(now)

	if notifyRenderer {
		m.lastRendererUpdate = now
	}
	if notifyObserver {
		m.lastObserverUpdate = now
	}
	renderer := m.renderer
	observer := m.observer
	m.mu.Unlock()

	for _, info := range infos {
		if notifyRenderer && renderer != nil {
			renderer.UpdateTraffic(info)
		}
		if notifyObserver && observer != nil {
			observer.OnTrafficAdded(info)
		}
	}
}

func (m *Manager) updateStateLocked(now time.Time) {
	if !m.enabled {
		return
	}

	waiting := false
	networkError := false
	expiredApp := false
	expiredData := false
	noData := false
	var maxPassedTime time.Duration

	for id := range m.activeDrapeMwms {
		entry := m.mwmCache[id]
		if entry == nil {
			continue
		}
		if entry.isWaitingForResponse {
			waiting = true
		} else {
			switch entry.lastAvailability {
			case traffic.ExpiredApp:
				expiredApp = true
			case traffic.ExpiredData:
				expiredData = true
			case traffic.NoData:
				noData = true
			}
			if entry.isLoaded {
				if passed := now.Sub(entry.lastResponseTime); passed > maxPassedTime {
					maxPassedTime = passed
				}
			}
		}
		if entry.retriesCount >= maxRetriesCount {
			networkError = true
		}
	}

	var state TrafficState
	switch {
	case networkError || maxPassedTime >= networkErrorTimeout:
		state = StateNetworkError
	case waiting:
		state = StateWaitingData
	case expiredApp:
		state = StateExpiredApp
	case expiredData:
		state = StateExpiredData
	case noData:
		state = StateNoData
	case maxPassedTime >= m.outdatedTimeout:
		state = StateOutdated
	default:
		state = StateEnabled
	}
	m.changeStateLocked(state)
}

func (m *Manager) changeStateLocked(state TrafficState) {
	if state == m.state {
		return
	}
	m.state = state
	log.Info().Msgf("Traffic state changed to %v", state)
	if m.stateListener != nil {
		listener := m.stateListener
		go listener(state)
	}
}

// UpdateViewport tells the manager which area is on screen. Traffic is
// requested for the tiles intersecting it.
func (m *Manager) UpdateViewport(rect geo.RectLatLon) {
	m.mu.Lock()
	m.currentViewport = rect
	m.hasViewport = true
	if !m.enabled || m.isPaused {
		m.mu.Unlock()
		return
	}

	mwms := m.registry.ByRect(rect)
	if sameIDs(mwms, m.lastDrapeMwmsByRect) {
		m.mu.Unlock()
		return
	}
	m.lastDrapeMwmsByRect = mwms
	m.activeDrapeMwms = idSet(mwms)
	m.requestTrafficDataLocked(mwms)
	m.mu.Unlock()
	m.cond.Broadcast()
}

// UpdateMyPosition tells the manager where the device is. Traffic is
// requested for the tiles around it so routing has data even off screen.
func (m *Manager) UpdateMyPosition(position geo.PointLatLon) {
	m.mu.Lock()
	m.currentPosition = position
	m.hasPosition = true
	if !m.enabled || m.isPaused {
		m.mu.Unlock()
		return
	}

	rect := geo.RectByCenterAndSizeM(position, myPositionSquareSideM)
	mwms := m.registry.ByRect(rect)
	if sameIDs(mwms, m.lastRoutingMwmsByRect) {
		m.mu.Unlock()
		return
	}
	m.lastRoutingMwmsByRect = mwms
	m.activeRoutingMwms = idSet(mwms)
	m.requestTrafficDataLocked(mwms)
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *Manager) requestTrafficDataLocked(mwms []mwm.ID) {
	now := time.Now()
	for _, id := range mwms {
		entry := m.mwmCache[id]
		if entry == nil {
			m.mwmCache[id] = newCacheEntry(now)
			continue
		}
		entry.lastActiveTime = now
		if now.Sub(entry.lastRequestTime) >= m.pollInterval {
			entry.lastRequestTime = now
			entry.isWaitingForResponse = true
		}
	}
	m.isStarted = true
	m.activeMwmsChanged = true
	m.updateStateLocked(now)
}

// Invalidate forgets the memoized tile lists and replays the last known
// viewport and position, re-requesting traffic for them.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.lastDrapeMwmsByRect = nil
	m.lastRoutingMwmsByRect = nil
	viewport, hasViewport := m.currentViewport, m.hasViewport
	position, hasPosition := m.currentPosition, m.hasPosition
	m.mu.Unlock()

	if hasViewport {
		m.UpdateViewport(viewport)
	}
	if hasPosition {
		m.UpdateMyPosition(position)
	}
}

// SetEnabled turns the whole pipeline on or off. Disabling clears all per
// tile state and notifies the consumers; the message cache survives so that
// re-enabling does not re-decode everything.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	if enabled == m.enabled {
		m.mu.Unlock()
		return
	}
	m.enabled = enabled
	cleared := m.clearLocked()
	if enabled {
		m.changeStateLocked(StateEnabled)
	} else {
		// pending feeds are only dropped on disable, so that enabling right
		// after startup keeps the restored snapshot queued
		m.feedQueue = nil
		m.changeStateLocked(StateDisabled)
	}
	renderer := m.renderer
	observer := m.observer
	m.mu.Unlock()

	for _, id := range cleared {
		if renderer != nil {
			renderer.ClearTrafficCache(id)
		}
		if observer != nil {
			observer.OnTrafficRemoved(id)
		}
	}

	if enabled {
		m.Invalidate()
	} else if observer != nil {
		observer.OnTrafficCleared()
	}
}

func (m *Manager) clearLocked() []mwm.ID {
	var cleared []mwm.ID
	for id, entry := range m.mwmCache {
		if entry.isLoaded {
			cleared = append(cleared, id)
		}
	}
	m.mwmCache = map[mwm.ID]*cacheEntry{}
	m.activeDrapeMwms = map[mwm.ID]struct{}{}
	m.activeRoutingMwms = map[mwm.ID]struct{}{}
	m.lastDrapeMwmsByRect = nil
	m.lastRoutingMwmsByRect = nil
	m.isStarted = false
	return cleared
}

// OnMwmDeregistered drops all traffic state for a tile that was removed.
// Hook this up to the tile registry's deregistration listener.
func (m *Manager) OnMwmDeregistered(id mwm.ID) {
	m.mu.Lock()
	entry := m.mwmCache[id]
	wasLoaded := entry != nil && entry.isLoaded
	delete(m.mwmCache, id)
	delete(m.activeDrapeMwms, id)
	delete(m.activeRoutingMwms, id)
	delete(m.allMwmColoring, id)
	m.lastDrapeMwmsByRect = nil
	m.lastRoutingMwmsByRect = nil
	renderer := m.renderer
	observer := m.observer
	m.mu.Unlock()

	if !wasLoaded {
		return
	}
	if renderer != nil {
		renderer.ClearTrafficCache(id)
	}
	if observer != nil {
		observer.OnTrafficRemoved(id)
	}
}

// Pause suspends requests for new traffic data, e.g. while the app is in the
// background. Queued feeds still get decoded.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.isPaused = true
	m.mu.Unlock()
}

// Resume lifts a Pause and re-requests traffic for the current area.
func (m *Manager) Resume() {
	m.mu.Lock()
	if !m.isPaused {
		m.mu.Unlock()
		return
	}
	m.isPaused = false
	m.mu.Unlock()
	m.Invalidate()
}

func (m *Manager) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *Manager) State() TrafficState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetStateListener registers the state transition callback. It is invoked on
// its own goroutine, once per transition.
func (m *Manager) SetStateListener(listener StateChangedFn) {
	m.mu.Lock()
	m.stateListener = listener
	m.mu.Unlock()
}

func (m *Manager) SetRenderer(renderer traffic.Renderer) {
	m.mu.Lock()
	m.renderer = renderer
	m.mu.Unlock()
}

// Colorings returns a deep copy of the current merged coloring.
func (m *Manager) Colorings() traff.MultiMwmColoring {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allMwmColoring.Clone()
}

// Infos returns the current per-tile traffic info for all active tiles.
func (m *Manager) Infos() []traffic.TrafficInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	var infos []traffic.TrafficInfo
	for _, id := range m.uniteActiveMwmsLocked() {
		entry := m.mwmCache[id]
		if entry == nil {
			continue
		}
		info := traffic.TrafficInfo{
			MwmID:        id,
			Coloring:     traffic.Coloring{},
			Availability: entry.lastAvailability,
		}
		if coloring, found := m.allMwmColoring[id]; found {
			if err := copier.CopyWithOption(&info.Coloring, coloring, copier.Option{DeepCopy: true}); err != nil {
				log.Error().Err(err).Msgf("Failed to copy coloring for %v", id)
				continue
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func (m *Manager) uniteActiveMwmsLocked() []mwm.ID {
	union := map[mwm.ID]struct{}{}
	maps.Copy(union, m.activeDrapeMwms)
	maps.Copy(union, m.activeRoutingMwms)
	ids := maps.Keys(union)
	slices.SortFunc(ids, func(a, b mwm.ID) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return int(a.Version - b.Version)
	})
	return ids
}

func (m *Manager) loadSnapshot() {
	if m.store == nil {
		return
	}
	feed, err := m.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load traffic snapshot")
		return
	}
	now := time.Now()
	var pending traff.Feed
	for _, message := range feed {
		if !message.IsExpired(now) {
			pending = append(pending, message)
		}
	}
	if len(pending) == 0 {
		return
	}
	log.Info().Msgf("Restoring %d messages from snapshot", len(pending))
	m.feedQueue = append(m.feedQueue, pending)
}

func (m *Manager) saveSnapshot() {
	if m.store == nil {
		return
	}
	m.mu.Lock()
	now := time.Now()
	var feed traff.Feed
	for _, message := range m.messageCache {
		if !message.IsExpired(now) {
			feed = append(feed, *message)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(feed, func(a, b traff.Message) int { return strings.Compare(a.ID, b.ID) })
	if err := m.store.Save(feed); err != nil {
		log.Warn().Err(err).Msg("Failed to save traffic snapshot")
	}
}

func sameIDs(a []mwm.ID, b []mwm.ID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[mwm.ID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, found := set[id]; !found {
			return false
		}
	}
	return true
}

func idSet(ids []mwm.ID) map[mwm.ID]struct{} {
	set := make(map[mwm.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
