package mwm

import (
	"fmt"
	"sync"

	"github.com/traffgo/traffgo/pkg/geo"
)

// ID identifies one map tile (an MWM) by name and data version. Traffic is
// cached and subscribed per tile.
type ID struct {
	Name    string
	Version int64
}

func (id ID) IsZero() bool {
	return id.Name == ""
}

func (id ID) String() string {
	return fmt.Sprintf("%s@%d", id.Name, id.Version)
}

// Registry enumerates the currently loaded map tiles. The traffic pipeline
// consumes this interface, it never loads tiles itself.
type Registry interface {
	// ByRect returns the IDs of all loaded tiles intersecting the rectangle.
	ByRect(rect geo.RectLatLon) []ID
	// Bounds returns the bounding rectangle of a tile.
	Bounds(id ID) (geo.RectLatLon, bool)
	// IsAlive reports whether the tile is still registered.
	IsAlive(id ID) bool
}

// MemRegistry is an in-memory Registry used by tests and the demo commands.
type MemRegistry struct {
	mutex sync.RWMutex
	tiles map[ID]geo.RectLatLon

	deregisterListeners []func(ID)
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		tiles: map[ID]geo.RectLatLon{},
	}
}

func (r *MemRegistry) Register(id ID, bounds geo.RectLatLon) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.tiles[id] = bounds
}

func (r *MemRegistry) Deregister(id ID) {
	r.mutex.Lock()
	_, found := r.tiles[id]
	delete(r.tiles, id)
	listeners := r.deregisterListeners
	r.mutex.Unlock()

	if !found {
		return
	}
	for _, listener := range listeners {
		listener(id)
	}
}

// OnDeregister registers a callback invoked whenever a tile is removed.
func (r *MemRegistry) OnDeregister(listener func(ID)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.deregisterListeners = append(r.deregisterListeners, listener)
}

func (r *MemRegistry) ByRect(rect geo.RectLatLon) []ID {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []ID
	for id, bounds := range r.tiles {
		if bounds.Intersects(rect) {
			result = append(result, id)
		}
	}
	return result
}

func (r *MemRegistry) Bounds(id ID) (geo.RectLatLon, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	bounds, found := r.tiles[id]
	return bounds, found
}

func (r *MemRegistry) IsAlive(id ID) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, found := r.tiles[id]
	return found
}
