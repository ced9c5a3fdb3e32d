package tabs

// Raw event types delivered by a Runtime to the Sink.
// Hooks receive these as their opaque params value, unchanged; the
// core only reads the entity reference fields to resolve roles.

// SpawnEvent is emitted when an entity spawns or respawns.
type SpawnEvent struct {
	// Entity is the spawning entity.
	Entity EntityID
}

// DamageEvent is emitted before damage is applied to an entity.
type DamageEvent struct {
	// Victim is the entity about to take damage.
	Victim EntityID

	// Attacker is the entity dealing the damage, NoEntity when the
	// damage has no attacker (fall, fire, void).
	Attacker EntityID

	// Damage is the pending amount. Hooks may modify it before the
	// runtime applies it.
	Damage *float64

	// Weapon names the damage source, runtime-defined.
	Weapon string
}

// DamagePostEvent is emitted after damage has been applied.
type DamagePostEvent struct {
	// Victim is the entity that took the damage.
	Victim EntityID

	// Attacker is the entity that dealt it, NoEntity when absent.
	Attacker EntityID

	// Damage is the amount that was applied.
	Damage float64
}

// DeathEvent is emitted when an entity dies.
type DeathEvent struct {
	// Victim is the entity that died.
	Victim EntityID

	// Attacker is the killer, NoEntity when the death had none.
	Attacker EntityID

	// Weapon names the killing damage source, runtime-defined.
	Weapon string
}

// DespawnEvent is emitted when an entity leaves the runtime for good.
type DespawnEvent struct {
	// Entity is the departing entity.
	Entity EntityID
}

// RoundStateEvent is emitted on every round state transition.
type RoundStateEvent struct {
	// State is the state the round transitioned into.
	State RoundState
}
