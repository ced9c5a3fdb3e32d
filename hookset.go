package tabs

import (
	"fmt"
)

// HookSet is the ordered collection of hooks a module registers under
// its tag, grouped by kind. Build one with NewHookSet and the kind
// methods, then pass it to System.Register.
//
// Usage:
//
//	set := tabs.NewHookSet().
//	    OnSpawn(func(e tabs.Entity) {
//	        // loadout, team colors, ...
//	    }).
//	    OnDealDamage(func(e tabs.Entity, params any) {
//	        ev := params.(*tabs.DamageEvent)
//	        *ev.Damage *= 1.5
//	    })
//	sys.Register("aggressive", set)
//
// A HookSet that was fed an unrecognized kind through Add is invalid
// as a whole; Register rejects it without committing anything.
type HookSet struct {
	// hooks is indexed by HookKind. Order within a kind is the order
	// hooks were added.
	hooks [hookKindCount][]Hook

	// err is the first invalid-kind error seen by Add, sticky.
	err error
}

// NewHookSet creates an empty hook set.
func NewHookSet() *HookSet {
	return &HookSet{}
}

// Add appends hooks under the given kind. An unrecognized kind marks
// the whole set invalid; the error surfaces when the set is
// registered.
func (hs *HookSet) Add(kind HookKind, hooks ...Hook) *HookSet {
	if !kind.valid() {
		if hs.err == nil {
			hs.err = fmt.Errorf("%w %d", ErrUnknownHook, kind)
		}
		return hs
	}
	hs.hooks[kind] = append(hs.hooks[kind], hooks...)
	return hs
}

// OnSpawn appends spawn hooks. Spawn hooks receive only the entity;
// there is no event payload for this kind.
func (hs *HookSet) OnSpawn(hooks ...func(e Entity)) *HookSet {
	for _, fn := range hooks {
		hs.hooks[OnSpawn] = append(hs.hooks[OnSpawn], func(e Entity, _ any) { fn(e) })
	}
	return hs
}

// OnTakeDamage appends hooks fired on the victim before damage is
// applied. params is a *DamageEvent.
func (hs *HookSet) OnTakeDamage(hooks ...Hook) *HookSet {
	return hs.Add(OnTakeDamage, hooks...)
}

// OnDealDamage appends hooks fired on the attacker before damage is
// applied. params is a *DamageEvent.
func (hs *HookSet) OnDealDamage(hooks ...Hook) *HookSet {
	return hs.Add(OnDealDamage, hooks...)
}

// OnTakeDamagePost appends hooks fired on the victim after damage is
// applied. params is a *DamagePostEvent.
func (hs *HookSet) OnTakeDamagePost(hooks ...Hook) *HookSet {
	return hs.Add(OnTakeDamagePost, hooks...)
}

// OnDealDamagePost appends hooks fired on the attacker after damage
// is applied. params is a *DamagePostEvent.
func (hs *HookSet) OnDealDamagePost(hooks ...Hook) *HookSet {
	return hs.Add(OnDealDamagePost, hooks...)
}

// OnDeath appends hooks fired on the victim of a death. params is a
// *DeathEvent.
func (hs *HookSet) OnDeath(hooks ...Hook) *HookSet {
	return hs.Add(OnDeath, hooks...)
}

// OnKill appends hooks fired on the attacker of a death. params is a
// *DeathEvent.
func (hs *HookSet) OnKill(hooks ...Hook) *HookSet {
	return hs.Add(OnKill, hooks...)
}

// Count returns the number of hooks held for kind. Unknown kinds
// count zero. This is primarily for debugging and testing.
func (hs *HookSet) Count(kind HookKind) int {
	if hs == nil || !kind.valid() {
		return 0
	}
	return len(hs.hooks[kind])
}

// validate returns the sticky error accumulated while building.
func (hs *HookSet) validate() error {
	if hs == nil {
		return nil
	}
	return hs.err
}

// HookSetByName builds a hook set from kind names, the entry point
// for data-driven registration. Every key must name one of the seven
// kinds; an unknown name fails the whole set.
func HookSetByName(hooks map[string][]Hook) (*HookSet, error) {
	hs := NewHookSet()
	for name, list := range hooks {
		kind, err := ParseHookKind(name)
		if err != nil {
			return nil, err
		}
		hs.hooks[kind] = append(hs.hooks[kind], list...)
	}
	return hs, nil
}
