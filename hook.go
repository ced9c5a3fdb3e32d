package tabs

import (
	"errors"
	"fmt"
)

// Tag names a behavior module. Entities carry any number of tags;
// a tag is the key under which a module registers its hooks.
type Tag string

// Hook is a callback registered against a HookKind. params is the raw
// event that triggered the dispatch (*DamageEvent, *DeathEvent, ...),
// forwarded unchanged. For OnSpawn, params is always nil.
type Hook func(e Entity, params any)

// HookKind is one of the seven fixed event categories a hook can be
// registered against. The set is closed; it is never extended at
// runtime.
type HookKind uint8

const (
	// OnSpawn fires after an entity's hook table has been built,
	// deferred to the end of the spawn frame so post-spawn attributes
	// are settled. Receives no params.
	OnSpawn HookKind = iota

	// OnTakeDamage fires on the victim before damage is applied.
	OnTakeDamage

	// OnDealDamage fires on the attacker before damage is applied.
	OnDealDamage

	// OnTakeDamagePost fires on the victim after damage is applied.
	OnTakeDamagePost

	// OnDealDamagePost fires on the attacker after damage is applied.
	OnDealDamagePost

	// OnDeath fires on the victim of a death. The victim's table is
	// cleared immediately afterwards.
	OnDeath

	// OnKill fires on the attacker of a death.
	OnKill

	// hookKindCount is the total number of hook kinds.
	hookKindCount
)

// ErrUnknownHook is returned when a hook kind arriving as data does
// not name one of the seven recognized kinds. Registration carrying
// an unknown kind fails before any state is committed.
var ErrUnknownHook = errors.New("unknown hook kind")

// hookKindNames is indexed by HookKind.
var hookKindNames = [hookKindCount]string{
	"OnSpawn",
	"OnTakeDamage",
	"OnDealDamage",
	"OnTakeDamagePost",
	"OnDealDamagePost",
	"OnDeath",
	"OnKill",
}

// String returns the string representation of the hook kind.
func (k HookKind) String() string {
	if !k.valid() {
		return "Unknown"
	}
	return hookKindNames[k]
}

// valid reports whether k is one of the seven recognized kinds.
func (k HookKind) valid() bool {
	return k < hookKindCount
}

// ParseHookKind maps a hook kind name to its HookKind. It is the
// validation step for registrations whose kinds arrive as data, such
// as configuration-driven module setup. Unknown names return an error
// wrapping ErrUnknownHook.
func ParseHookKind(name string) (HookKind, error) {
	for k, n := range hookKindNames {
		if n == name {
			return HookKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownHook, name)
}
