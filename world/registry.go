package world

import (
	"errors"
	"fmt"
	"slices"

	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/yohamta/donburi"
)

var (
	ErrDuplicateEntity = errors.New("duplicate entity")
	ErrEntityNotFound  = errors.New("entity not found")
)

// Registry maps server entity ids to drawable entities stored in a donburi world.
type Registry struct {
	world donburi.World
	index map[netconfig.EntityID]donburi.Entity
}

func NewRegistry() *Registry {
	return &Registry{
		world: donburi.NewWorld(),
		index: make(map[netconfig.EntityID]donburi.Entity),
	}
}

// Insert adds an entity under id. An id already present is refused; callers
// redefining an entity must Remove it first.
func (r *Registry) Insert(id netconfig.EntityID, d components.DrawableData) error {
	if _, ok := r.index[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateEntity, id)
	}
	d.ID = id
	entity := r.world.Create(components.Drawable)
	components.Drawable.SetValue(r.world.Entry(entity), d)
	r.index[id] = entity
	return nil
}

// Remove deletes the entity under id and returns it. Absent ids return false.
func (r *Registry) Remove(id netconfig.EntityID) (components.DrawableData, bool) {
	entity, ok := r.index[id]
	if !ok {
		return components.DrawableData{}, false
	}
	delete(r.index, id)
	if !r.world.Valid(entity) {
		return components.DrawableData{}, false
	}
	d := *components.Drawable.Get(r.world.Entry(entity))
	r.world.Remove(entity)
	return d, true
}

// Get returns the entity under id. The pointer is only valid until the next
// Insert, Remove or Clear.
func (r *Registry) Get(id netconfig.EntityID) (*components.DrawableData, bool) {
	entity, ok := r.index[id]
	if !ok || !r.world.Valid(entity) {
		return nil, false
	}
	return components.Drawable.Get(r.world.Entry(entity)), true
}

// Clear removes every entity.
func (r *Registry) Clear() {
	for id, entity := range r.index {
		if r.world.Valid(entity) {
			r.world.Remove(entity)
		}
		delete(r.index, id)
	}
}

// Each calls fn once for every entity, in no particular order.
func (r *Registry) Each(fn func(*components.DrawableData)) {
	components.Drawable.Each(r.world, func(entry *donburi.Entry) {
		fn(components.Drawable.Get(entry))
	})
}

func (r *Registry) Len() int {
	return len(r.index)
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []netconfig.EntityID {
	ids := make([]netconfig.EntityID, 0, len(r.index))
	for id := range r.index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// World is the donburi world holding the entities, for systems that query it directly.
func (r *Registry) World() donburi.World {
	return r.world
}

// DrawOrder returns every entity sorted top to bottom so lower entities overlap higher
// ones. Ties are broken by id to keep the order stable between frames.
func (r *Registry) DrawOrder() []*components.DrawableData {
	out := make([]*components.DrawableData, 0, len(r.index))
	r.Each(func(d *components.DrawableData) {
		out = append(out, d)
	})
	slices.SortFunc(out, func(a, b *components.DrawableData) int {
		switch {
		case a.Position.Y < b.Position.Y:
			return -1
		case a.Position.Y > b.Position.Y:
			return 1
		}
		return int(a.ID) - int(b.ID)
	})
	return out
}
