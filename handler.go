package tabs

import (
	"fmt"
	"time"

	"github.com/df-mc/dragonfly/server/entity"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// playerHandler translates one tracked player's Dragonfly callbacks
// into raw events for the runtime's sink. Everything not translated
// falls through to NopHandler.
//
// Concurrency:
// Dragonfly executes handlers synchronously within the world's tick
// loop or packet processing, so deliveries for one world are
// serialized. The System's single-goroutine model relies on that.
type playerHandler struct {
	player.NopHandler
	bp *BoundPlayer
}

// NewPlayerHandler creates the player.Handler that feeds a tracked
// player's events into the runtime. Install it right after tracking:
//
//	bp := rt.Track(p, "aggressive")
//	p.Handle(tabs.NewPlayerHandler(bp))
func NewPlayerHandler(bp *BoundPlayer) player.Handler {
	if bp == nil {
		panic("tabs: handler for nil bound player")
	}
	return &playerHandler{bp: bp}
}

// Compile-time check that playerHandler implements player.Handler.
var _ player.Handler = (*playerHandler)(nil)

// HandleHurt delivers the pre-damage event while the amount is still
// mutable, then the post-damage event, unless a hook cancelled the
// hurt. Immune hits apply no damage and deliver nothing.
func (h *playerHandler) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	sink := h.bp.rt.currentSink()
	if sink == nil || immune {
		return
	}
	attacker := h.bp.rt.playerID(attackerOf(src))
	ev := &DamageEvent{
		Victim:   h.bp.id,
		Attacker: attacker,
		Damage:   damage,
		Weapon:   weaponName(src),
	}
	sink.HandleDamage(ev)
	if ctx.Cancelled() {
		return
	}
	sink.HandleDamagePost(&DamagePostEvent{
		Victim:   h.bp.id,
		Attacker: attacker,
		Damage:   *damage,
	})
}

// HandleDeath delivers the death event.
func (h *playerHandler) HandleDeath(p *player.Player, src world.DamageSource, keepInv *bool) {
	sink := h.bp.rt.currentSink()
	if sink == nil {
		return
	}
	sink.HandleDeath(&DeathEvent{
		Victim:   h.bp.id,
		Attacker: h.bp.rt.playerID(attackerOf(src)),
		Weapon:   weaponName(src),
	})
}

// HandleRespawn delivers a fresh spawn event, so the player's hook
// table is rebuilt from the registry's current state.
func (h *playerHandler) HandleRespawn(p *player.Player, pos *mgl64.Vec3, w **world.World) {
	sink := h.bp.rt.currentSink()
	if sink == nil {
		return
	}
	sink.HandleSpawn(&SpawnEvent{Entity: h.bp.id})
}

// HandleQuit delivers the despawn event and stops tracking the
// player.
func (h *playerHandler) HandleQuit(p *player.Player) {
	if sink := h.bp.rt.currentSink(); sink != nil {
		sink.HandleDespawn(&DespawnEvent{Entity: h.bp.id})
	}
	h.bp.rt.untrack(h.bp)
}

// attackerOf extracts the attacking player from a damage source.
// Only player attackers resolve; everything else is attackerless.
func attackerOf(src world.DamageSource) *player.Player {
	var e world.Entity
	switch s := src.(type) {
	case entity.AttackDamageSource:
		e = s.Attacker
	case entity.ProjectileDamageSource:
		e = s.Owner
	default:
		return nil
	}
	p, ok := e.(*player.Player)
	if !ok {
		return nil
	}
	return p
}

// weaponName names a damage source for event payloads.
func weaponName(src world.DamageSource) string {
	switch src.(type) {
	case entity.AttackDamageSource:
		return "attack"
	case entity.ProjectileDamageSource:
		return "projectile"
	default:
		return fmt.Sprintf("%T", src)
	}
}
