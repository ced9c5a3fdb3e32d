package tabs

import (
	"fmt"
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// ServerRuntime is the Runtime implementation for live Dragonfly
// servers. It tracks players, assigns them entity IDs, carries their
// tag sets and feeds their events into the attached sink through the
// per-player handler.
//
// Usage:
//
//	rt := tabs.NewServerRuntime()
//	sys.Attach(rt)
//
//	for p := range srv.Accept() {
//	    bp := rt.Track(p, "aggressive")
//	    p.Handle(tabs.NewPlayerHandler(bp))
//	}
//
// Concurrency:
// The index maps are guarded so Track may run on the accept loop
// while events arrive on world goroutines. Event delivery itself is
// never locked; it stays on the world goroutine, where Dragonfly
// serializes it. The spawn event for a newly tracked player is
// delivered there too, through the world's own execution queue.
type ServerRuntime struct {
	// sink receives raw events while attached
	sink Sink

	// players holds bound players by entity ID
	players map[EntityID]*BoundPlayer

	// byHandle indexes bound players by persistent entity handle
	byHandle map[*world.EntityHandle]*BoundPlayer

	// byUUID indexes bound players by account UUID
	byUUID map[uuid.UUID]*BoundPlayer

	// order is the tracking order of bound players
	order []EntityID

	// nextID is the last assigned entity ID
	nextID EntityID

	// actorCheck classifies players into the managed bot category
	actorCheck func(p *player.Player) bool

	// state is the current round state
	state RoundState

	// mu guards the fields above
	mu sync.RWMutex
}

// ServerOption configures a ServerRuntime.
type ServerOption func(*ServerRuntime)

// WithActorCheck replaces the classification test deciding which
// players belong to the managed bot category. The default treats
// XUID-less players as bots, since real accounts always carry one.
func WithActorCheck(fn func(p *player.Player) bool) ServerOption {
	return func(rt *ServerRuntime) {
		if fn != nil {
			rt.actorCheck = fn
		}
	}
}

// NewServerRuntime creates a runtime with no tracked players, in the
// warmup round state.
func NewServerRuntime(opts ...ServerOption) *ServerRuntime {
	rt := &ServerRuntime{
		players:  make(map[EntityID]*BoundPlayer),
		byHandle: make(map[*world.EntityHandle]*BoundPlayer),
		byUUID:   make(map[uuid.UUID]*BoundPlayer),
		actorCheck: func(p *player.Player) bool {
			return p.XUID() == ""
		},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Compile-time check that ServerRuntime implements Runtime.
var _ Runtime = (*ServerRuntime)(nil)

// Attach starts delivering raw events to the sink.
func (rt *ServerRuntime) Attach(sink Sink) {
	rt.mu.Lock()
	rt.sink = sink
	rt.mu.Unlock()
}

// Detach stops event delivery. Idempotent.
func (rt *ServerRuntime) Detach() {
	rt.mu.Lock()
	rt.sink = nil
	rt.mu.Unlock()
}

// currentSink returns the sink to deliver to, nil while detached.
func (rt *ServerRuntime) currentSink() Sink {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.sink
}

// EntityByID returns the tracked player with the given ID.
func (rt *ServerRuntime) EntityByID(id EntityID) (Entity, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	bp, ok := rt.players[id]
	if !ok {
		return nil, false
	}
	return bp, true
}

// Entities returns tracked players in tracking order, at most max of
// them.
func (rt *ServerRuntime) Entities(max int) []Entity {
	if max <= 0 {
		return nil
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]Entity, 0, min(max, len(rt.order)))
	for _, id := range rt.order {
		if len(out) == max {
			break
		}
		out = append(out, rt.players[id])
	}
	return out
}

// Defer queues fn onto the player's world execution queue, running it
// after the current pass with the player's state settled. Dropped if
// the player has left the world.
func (rt *ServerRuntime) Defer(e Entity, fn func()) {
	bp, ok := e.(*BoundPlayer)
	if !ok || fn == nil {
		return
	}
	bp.handle.ExecWorld(func(*world.Tx, world.Entity) {
		fn()
	})
}

// Track begins tracking p: assigns an entity ID, caches identity,
// applies the initial tags, classifies the player and emits the spawn
// event on the player's world goroutine. Install the handler returned
// by NewPlayerHandler right after, or no further events arrive for
// the player. Tracking an already tracked player returns the existing
// binding unchanged.
func (rt *ServerRuntime) Track(p *player.Player, tags ...Tag) *BoundPlayer {
	bp := &BoundPlayer{
		handle: p.H(),
		uuid:   p.UUID(),
		name:   p.Name(),
		xuid:   p.XUID(),
		actor:  rt.actorCheck(p),
		tags:   make(map[Tag]struct{}, len(tags)),
		rt:     rt,
	}
	for _, tag := range tags {
		bp.tags[tag] = struct{}{}
	}

	rt.mu.Lock()
	if prev, ok := rt.byHandle[bp.handle]; ok {
		rt.mu.Unlock()
		return prev
	}
	rt.nextID++
	bp.id = rt.nextID
	rt.players[bp.id] = bp
	rt.byHandle[bp.handle] = bp
	rt.byUUID[bp.uuid] = bp
	rt.order = append(rt.order, bp.id)
	rt.mu.Unlock()

	bp.handle.ExecWorld(func(*world.Tx, world.Entity) {
		if sink := rt.currentSink(); sink != nil {
			sink.HandleSpawn(&SpawnEvent{Entity: bp.id})
		}
	})
	return bp
}

// Untrack stops tracking bp without waiting for a quit, emitting the
// despawn event first. Call it on the player's world goroutine.
func (rt *ServerRuntime) Untrack(bp *BoundPlayer) {
	if bp == nil {
		return
	}
	if sink := rt.currentSink(); sink != nil {
		sink.HandleDespawn(&DespawnEvent{Entity: bp.id})
	}
	rt.untrack(bp)
}

// untrack removes bp from every index.
func (rt *ServerRuntime) untrack(bp *BoundPlayer) {
	rt.mu.Lock()
	delete(rt.players, bp.id)
	delete(rt.byHandle, bp.handle)
	delete(rt.byUUID, bp.uuid)
	for i, id := range rt.order {
		if id == bp.id {
			rt.order = append(rt.order[:i], rt.order[i+1:]...)
			break
		}
	}
	rt.mu.Unlock()
}

// Player returns the bound player for p.
func (rt *ServerRuntime) Player(p *player.Player) (*BoundPlayer, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	bp, ok := rt.byHandle[p.H()]
	return bp, ok
}

// PlayerByUUID returns the bound player with the given account UUID.
func (rt *ServerRuntime) PlayerByUUID(id uuid.UUID) (*BoundPlayer, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	bp, ok := rt.byUUID[id]
	return bp, ok
}

// PlayerCount returns the number of tracked players.
func (rt *ServerRuntime) PlayerCount() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.players)
}

// playerID resolves a player to its entity ID, NoEntity for nil or
// untracked players.
func (rt *ServerRuntime) playerID(p *player.Player) EntityID {
	if p == nil {
		return NoEntity
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	bp, ok := rt.byHandle[p.H()]
	if !ok {
		return NoEntity
	}
	return bp.id
}

// SetRoundState transitions the round, emitting the transition event.
// Setting the current state again emits nothing. Call it on the world
// goroutine that delivers the round's events.
func (rt *ServerRuntime) SetRoundState(st RoundState) {
	rt.mu.Lock()
	if rt.state == st {
		rt.mu.Unlock()
		return
	}
	rt.state = st
	sink := rt.sink
	rt.mu.Unlock()
	if sink != nil {
		sink.HandleRoundState(&RoundStateEvent{State: st})
	}
}

// RoundState returns the current round state.
func (rt *ServerRuntime) RoundState() RoundState {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.state
}

// BoundPlayer is a tracked player: the persistent handle plus the
// identity and tag state the runtime keeps for it. Identity fields
// are cached once at Track and immutable afterwards.
type BoundPlayer struct {
	// handle is the persistent entity handle for the player
	handle *world.EntityHandle

	// id is the runtime-assigned entity ID
	id EntityID

	// uuid is cached for fast lookup
	uuid uuid.UUID

	// name is cached for fast lookup
	name string

	// xuid is cached for fast lookup
	xuid string

	// actor is the classification result, computed once at Track
	actor bool

	// tags is the current tag set
	tags map[Tag]struct{}

	// rt is the runtime tracking this player
	rt *ServerRuntime
}

// Compile-time check that BoundPlayer implements Entity.
var _ Entity = (*BoundPlayer)(nil)

// ID returns the runtime-assigned entity ID.
func (b *BoundPlayer) ID() EntityID {
	return b.id
}

// Name returns the player's name.
func (b *BoundPlayer) Name() string {
	return b.name
}

// Actor reports whether the player was classified into the managed
// bot category at Track.
func (b *BoundPlayer) Actor() bool {
	return b.actor
}

// HasTag reports whether the player currently carries the tag.
func (b *BoundPlayer) HasTag(tag Tag) bool {
	_, ok := b.tags[tag]
	return ok
}

// AddTag adds tags to the player. Tags take effect the next time the
// player's hook table is built. Call it on the player's world
// goroutine.
func (b *BoundPlayer) AddTag(tags ...Tag) {
	for _, tag := range tags {
		b.tags[tag] = struct{}{}
	}
}

// RemoveTag removes a tag from the player. The removal takes effect
// the next time the player's hook table is built. Call it on the
// player's world goroutine.
func (b *BoundPlayer) RemoveTag(tag Tag) {
	delete(b.tags, tag)
}

// UUID returns the player's account UUID.
func (b *BoundPlayer) UUID() uuid.UUID {
	return b.uuid
}

// XUID returns the player's XUID, empty for bots.
func (b *BoundPlayer) XUID() string {
	return b.xuid
}

// Handle returns the underlying entity handle.
func (b *BoundPlayer) Handle() *world.EntityHandle {
	return b.handle
}

// Exec runs fn within the player's world transaction. Returns false
// if the player is no longer present in a world.
func (b *BoundPlayer) Exec(fn func(tx *world.Tx, p *player.Player)) bool {
	return b.handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		p, ok := e.(*player.Player)
		if !ok {
			return
		}
		fn(tx, p)
	})
}

// String returns a string representation of the bound player for
// debugging.
func (b *BoundPlayer) String() string {
	return fmt.Sprintf("BoundPlayer{Name: %s, ID: %d, XUID: %s, UUID: %s, Actor: %t}",
		b.name, b.id, b.xuid, b.uuid, b.actor)
}
