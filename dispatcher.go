package tabs

// Compile-time check that System implements Sink.
var _ Sink = (*System)(nil)

// FireHooks invokes every callback in e's hook table entry for kind,
// in accumulation order, passing (e, params). An entity without a
// table is skipped silently. Callback panics are not recovered here;
// they propagate to the delivering runtime.
func (s *System) FireHooks(e Entity, kind HookKind, params any) {
	if e == nil || !kind.valid() {
		return
	}
	t, ok := s.tables[e.ID()]
	if !ok || !t.mask.has(kind) {
		return
	}
	for _, fn := range t.hooks[kind] {
		fn(e, params)
	}
}

// resolve maps a raw event's entity reference to a dispatchable
// entity: present, known to the runtime and inside the managed bot
// category. Anything else resolves to nothing, which the adapters
// treat as a silent skip.
func (s *System) resolve(id EntityID) (Entity, bool) {
	if id == NoEntity || s.rt == nil {
		return nil, false
	}
	e, ok := s.rt.EntityByID(id)
	if !ok || e == nil || !e.Actor() {
		return nil, false
	}
	return e, true
}

// HandleSpawn installs an empty table for the subject immediately and
// defers the registry fold plus OnSpawn dispatch to the end of the
// current pass. Events arriving in the window find empty lists, the
// same silent outcome as an absent table.
func (s *System) HandleSpawn(ev *SpawnEvent) {
	e, ok := s.resolve(ev.Entity)
	if !ok {
		return
	}
	t, ok := s.tables[e.ID()]
	if !ok {
		t = newHookTable()
		s.tables[e.ID()] = t
	}
	t.clear()
	s.rt.Defer(e, func() {
		s.BuildHookTable(e)
	})
}

// HandleDamage splits the pre-damage event into its two roles: the
// victim's OnTakeDamage and, when an attacker is attached, the
// attacker's OnDealDamage.
func (s *System) HandleDamage(ev *DamageEvent) {
	if v, ok := s.resolve(ev.Victim); ok {
		s.FireHooks(v, OnTakeDamage, ev)
	}
	if a, ok := s.resolve(ev.Attacker); ok {
		s.FireHooks(a, OnDealDamage, ev)
	}
}

// HandleDamagePost splits the post-damage event into the victim's
// OnTakeDamagePost and the attacker's OnDealDamagePost.
func (s *System) HandleDamagePost(ev *DamagePostEvent) {
	if v, ok := s.resolve(ev.Victim); ok {
		s.FireHooks(v, OnTakeDamagePost, ev)
	}
	if a, ok := s.resolve(ev.Attacker); ok {
		s.FireHooks(a, OnDealDamagePost, ev)
	}
}

// HandleDeath fires the victim's OnDeath hooks, clears the victim's
// table, then fires the attacker's OnKill hooks. The clear sits
// between the two roles, so a self-kill finds its own table already
// empty when the attacker role resolves.
func (s *System) HandleDeath(ev *DeathEvent) {
	if v, ok := s.resolve(ev.Victim); ok {
		s.FireHooks(v, OnDeath, ev)
		if t, ok := s.tables[v.ID()]; ok {
			t.clear()
			s.opts.Log.Debug("tabs: hook table cleared", "entity", v.Name())
		}
	}
	if a, ok := s.resolve(ev.Attacker); ok {
		s.FireHooks(a, OnKill, ev)
	}
}

// HandleDespawn drops the entity's table entry entirely. A departed
// entity cannot respawn into a stale table, and the side table does
// not leak entries for entities the runtime has forgotten.
func (s *System) HandleDespawn(ev *DespawnEvent) {
	delete(s.tables, ev.Entity)
}

// HandleRoundState tears the system down when the round transitions
// into its active state, so every round starts from a clean registry.
func (s *System) HandleRoundState(ev *RoundStateEvent) {
	if ev.State != RoundActive {
		return
	}
	s.opts.Log.Debug("tabs: round active, tearing down")
	s.Teardown()
}
