package tabs

// EntityID identifies an entity tracked by a Runtime.
// IDs are assigned by the runtime, start at 1 and are never reused
// within a round. The zero value means "no entity".
type EntityID uint64

// NoEntity is the EntityID used when a role has no entity attached,
// such as environmental damage with no attacker.
const NoEntity EntityID = 0

// Entity is the handle the core works with. Both runtimes shipped with
// this package (ServerRuntime and Arena) return their own concrete
// types through this interface; hooks may type-assert when they need
// runtime-specific state.
type Entity interface {
	// ID returns the runtime-assigned identifier.
	ID() EntityID

	// Name returns the display name of the entity.
	Name() string

	// Actor reports whether the entity belongs to the managed bot
	// category this system targets. Entities outside the category
	// never receive hook tables and are skipped during dispatch.
	Actor() bool

	// HasTag reports whether the entity currently carries the tag.
	// Queried once per registry entry while the hook table is built.
	HasTag(tag Tag) bool
}

// Runtime is the event-delivery substrate the System runs on.
// It owns entity identity and the cooperative execution loop; the
// System consumes it and never outlives a round on it.
//
// Concurrency:
// All Runtime methods and all Sink deliveries must happen on a single
// goroutine. ServerRuntime relies on Dragonfly serializing a world's
// events on its tick goroutine; Arena is synchronous by construction.
type Runtime interface {
	// Attach starts delivering raw events to the sink.
	// A runtime holds at most one sink at a time.
	Attach(sink Sink)

	// Detach stops event delivery. Idempotent.
	Detach()

	// EntityByID resolves an entity reference carried by a raw event.
	// Returns false for NoEntity and for entities the runtime no
	// longer tracks.
	EntityByID(id EntityID) (Entity, bool)

	// Entities returns currently tracked entities in tracking order,
	// at most max of them.
	Entities(max int) []Entity

	// Defer schedules fn to run after the current event-processing
	// pass completes, with zero added delay. The call is scoped to e:
	// if e leaves the runtime before the pass ends, fn is dropped.
	Defer(e Entity, fn func())
}

// Sink receives the raw events a Runtime produces. The System
// implements Sink; the six methods are the complete event surface
// of this package.
type Sink interface {
	// HandleSpawn is delivered when a tracked entity spawns or
	// respawns. Hook table construction is deferred from here.
	HandleSpawn(ev *SpawnEvent)

	// HandleDamage is delivered before damage is applied.
	// ev.Damage may be modified by hooks.
	HandleDamage(ev *DamageEvent)

	// HandleDamagePost is delivered after damage has been applied.
	HandleDamagePost(ev *DamagePostEvent)

	// HandleDeath is delivered when a tracked entity dies.
	HandleDeath(ev *DeathEvent)

	// HandleDespawn is delivered when a tracked entity leaves the
	// runtime for good, quitting players included.
	HandleDespawn(ev *DespawnEvent)

	// HandleRoundState is delivered on every round state transition.
	HandleRoundState(ev *RoundStateEvent)
}

// RoundState is the phase a round is in, reported through
// RoundStateEvent on every transition.
type RoundState uint8

const (
	// RoundWarmup is the setup phase before a round starts.
	RoundWarmup RoundState = iota

	// RoundActive is the in-progress phase. A transition into this
	// state tears the System down so the new round starts clean.
	RoundActive

	// RoundOver is the phase after a round has been decided.
	RoundOver
)

// String returns the string representation of the round state.
func (s RoundState) String() string {
	switch s {
	case RoundWarmup:
		return "Warmup"
	case RoundActive:
		return "Active"
	case RoundOver:
		return "Over"
	default:
		return "Unknown"
	}
}
