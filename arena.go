package tabs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Arena is a deterministic in-memory Runtime. It drives the full raw
// event set from plain method calls and a cooperative frame loop, with
// no server, no goroutines and no clocks, which makes it the test
// substrate for hook modules and a reference for binding authors.
//
// Usage:
//
//	rt := tabs.NewArena()
//	sys.Attach(rt)
//	scout := rt.Spawn(tabs.BotConfig{Name: "Scout", Tags: []tabs.Tag{"aggressive"}})
//	heavy := rt.Spawn(tabs.BotConfig{Name: "Heavy"})
//	rt.EndFrame() // deferred table builds + OnSpawn hooks run here
//	rt.Damage(scout, heavy, 25, "shotgun")
//
// Concurrency:
// An Arena is single-goroutine by construction. Every method call
// dispatches synchronously into the attached sink before returning.
type Arena struct {
	// sink receives raw events while attached
	sink Sink

	// bots holds present bots by ID
	bots map[EntityID]*Bot

	// order is the spawn order of present bots
	order []EntityID

	// deferred holds the calls queued for the end of the frame
	deferred []deferredCall

	// nextID is the last assigned entity ID
	nextID EntityID

	// frame counts completed frames
	frame uint64

	// state is the current round state
	state RoundState
}

// deferredCall is one entity-scoped closure queued by Defer.
type deferredCall struct {
	id EntityID
	fn func()
}

// NewArena creates an empty arena in the warmup round state.
func NewArena() *Arena {
	return &Arena{bots: make(map[EntityID]*Bot)}
}

// Compile-time check that Arena implements Runtime.
var _ Runtime = (*Arena)(nil)

// Attach starts delivering raw events to the sink.
func (a *Arena) Attach(sink Sink) {
	a.sink = sink
}

// Detach stops event delivery. Idempotent.
func (a *Arena) Detach() {
	a.sink = nil
}

// EntityByID returns the present bot with the given ID.
func (a *Arena) EntityByID(id EntityID) (Entity, bool) {
	b, ok := a.bots[id]
	if !ok {
		return nil, false
	}
	return b, true
}

// Entities returns present bots in spawn order, at most max of them.
func (a *Arena) Entities(max int) []Entity {
	if max <= 0 {
		return nil
	}
	out := make([]Entity, 0, min(max, len(a.order)))
	for _, id := range a.order {
		if len(out) == max {
			break
		}
		out = append(out, a.bots[id])
	}
	return out
}

// Defer queues fn to run when the current frame ends. The call is
// scoped to e: it is dropped if e despawns before then.
func (a *Arena) Defer(e Entity, fn func()) {
	if e == nil || fn == nil {
		return
	}
	a.deferred = append(a.deferred, deferredCall{id: e.ID(), fn: fn})
}

// EndFrame closes the current frame: every call deferred during it
// runs now, in queue order, skipping entities that despawned. Calls
// deferred while draining run at the end of the next frame.
func (a *Arena) EndFrame() {
	a.frame++
	queue := a.deferred
	a.deferred = nil
	for _, c := range queue {
		if _, ok := a.bots[c.id]; !ok {
			continue
		}
		c.fn()
	}
}

// Frame returns the number of completed frames.
func (a *Arena) Frame() uint64 {
	return a.frame
}

// Spawn adds a bot to the arena and emits its spawn event. Zero
// vitals default to 100 health.
func (a *Arena) Spawn(cfg BotConfig) *Bot {
	a.nextID++
	b := &Bot{
		id:        a.nextID,
		uuid:      uuid.New(),
		name:      cfg.Name,
		human:     cfg.Human,
		tags:      make(map[Tag]struct{}, len(cfg.Tags)),
		health:    cfg.Health,
		healthMax: cfg.HealthMax,
		alive:     true,
		arena:     a,
	}
	if b.name == "" {
		b.name = fmt.Sprintf("bot-%d", b.id)
	}
	if b.health <= 0 {
		b.health = 100
	}
	if b.healthMax <= 0 {
		b.healthMax = b.health
	}
	for _, tag := range cfg.Tags {
		b.tags[tag] = struct{}{}
	}
	a.bots[b.id] = b
	a.order = append(a.order, b.id)
	if a.sink != nil {
		a.sink.HandleSpawn(&SpawnEvent{Entity: b.id})
	}
	return b
}

// Respawn restores the bot's vitals and re-emits its spawn event, so
// the hook table is rebuilt from the registry's current state.
func (a *Arena) Respawn(b *Bot) {
	if b == nil {
		return
	}
	if _, ok := a.bots[b.id]; !ok {
		return
	}
	b.health = b.healthMax
	b.alive = true
	if a.sink != nil {
		a.sink.HandleSpawn(&SpawnEvent{Entity: b.id})
	}
}

// Despawn removes the bot from the arena for good, emitting its
// despawn event first. Calls deferred for the bot are dropped.
func (a *Arena) Despawn(b *Bot) {
	if b == nil {
		return
	}
	if _, ok := a.bots[b.id]; !ok {
		return
	}
	if a.sink != nil {
		a.sink.HandleDespawn(&DespawnEvent{Entity: b.id})
	}
	delete(a.bots, b.id)
	for i, id := range a.order {
		if id == b.id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Damage runs one combat sequence against victim: the pre-damage
// event with a mutable amount, the application of whatever amount the
// hooks left, the post-damage event, and the death event when the
// victim's health is exhausted. A nil attacker is attackerless
// damage. Dead victims take no damage.
func (a *Arena) Damage(attacker, victim *Bot, amount float64, weapon string) {
	if victim == nil || !victim.alive {
		return
	}
	if _, ok := a.bots[victim.id]; !ok {
		return
	}
	attackerID := NoEntity
	if attacker != nil {
		attackerID = attacker.id
	}
	dmg := amount
	ev := &DamageEvent{Victim: victim.id, Attacker: attackerID, Damage: &dmg, Weapon: weapon}
	if a.sink != nil {
		a.sink.HandleDamage(ev)
	}
	victim.health -= dmg
	if a.sink != nil {
		a.sink.HandleDamagePost(&DamagePostEvent{Victim: victim.id, Attacker: attackerID, Damage: dmg})
	}
	if victim.health > 0 {
		return
	}
	victim.health = 0
	victim.alive = false
	if a.sink != nil {
		a.sink.HandleDeath(&DeathEvent{Victim: victim.id, Attacker: attackerID, Weapon: weapon})
	}
}

// SetRoundState transitions the round, emitting the transition event.
// Setting the current state again is not a transition and emits
// nothing.
func (a *Arena) SetRoundState(st RoundState) {
	if a.state == st {
		return
	}
	a.state = st
	if a.sink != nil {
		a.sink.HandleRoundState(&RoundStateEvent{State: st})
	}
}

// RoundState returns the current round state.
func (a *Arena) RoundState() RoundState {
	return a.state
}

// BotConfig configures the initial state of an arena bot.
// It is used with Arena.Spawn.
type BotConfig struct {
	// Identity
	Name string

	// Tags carried from spawn
	Tags []Tag

	// Vitals
	Health    float64
	HealthMax float64

	// Human marks the bot as outside the managed bot category, a
	// stand-in for a real player. Human bots still spawn, fight and
	// die, but never receive hook tables.
	Human bool
}

// Bot is an entity living in an Arena.
type Bot struct {
	// id is the arena-assigned identifier
	id EntityID

	// uuid is the immutable identity, assigned at spawn
	uuid uuid.UUID

	// name is the display name
	name string

	// human marks the bot as outside the managed bot category
	human bool

	// tags is the current tag set
	tags map[Tag]struct{}

	// health and healthMax are the current vitals
	health    float64
	healthMax float64

	// alive flips on death and back on respawn
	alive bool

	// arena owns this bot
	arena *Arena
}

// Compile-time check that Bot implements Entity.
var _ Entity = (*Bot)(nil)

// ID returns the arena-assigned identifier.
func (b *Bot) ID() EntityID {
	return b.id
}

// UUID returns the bot's immutable identity.
func (b *Bot) UUID() uuid.UUID {
	return b.uuid
}

// Name returns the display name.
func (b *Bot) Name() string {
	return b.name
}

// Actor reports whether the bot is inside the managed bot category.
func (b *Bot) Actor() bool {
	return !b.human
}

// HasTag reports whether the bot currently carries the tag.
func (b *Bot) HasTag(tag Tag) bool {
	_, ok := b.tags[tag]
	return ok
}

// AddTag adds tags to the bot. Tags take effect the next time the
// bot's hook table is built.
func (b *Bot) AddTag(tags ...Tag) {
	for _, tag := range tags {
		b.tags[tag] = struct{}{}
	}
}

// RemoveTag removes a tag from the bot. The removal takes effect the
// next time the bot's hook table is built.
func (b *Bot) RemoveTag(tag Tag) {
	delete(b.tags, tag)
}

// Health returns the bot's current health.
func (b *Bot) Health() float64 {
	return b.health
}

// Alive reports whether the bot is alive.
func (b *Bot) Alive() bool {
	return b.alive
}

// String returns a string representation of the bot for debugging.
func (b *Bot) String() string {
	tags := make([]string, 0, len(b.tags))
	for tag := range b.tags {
		tags = append(tags, string(tag))
	}
	slices.Sort(tags)
	return fmt.Sprintf("Bot{Name: %s, ID: %d, UUID: %s, Health: %.1f, Tags: [%s]}",
		b.name, b.id, b.uuid, b.health, strings.Join(tags, ", "))
}
