// Package tabs provides a Tag-Attached Behavior System for Dragonfly servers.
//
// TABS lets independent behavior modules attach to entity lifecycle and
// combat events without knowing about each other or about the underlying
// event delivery:
//   - A module registers a named tag with a set of hook callbacks
//   - Every entity carrying the tag has the callbacks folded into its own
//     hook table at spawn
//   - Raw events are translated into per-entity dispatch, splitting
//     victim and attacker roles
//   - Death clears an entity's table; the round transitioning into its
//     active state tears the whole system down for a clean reload
//
// # Quick Start
//
// Register modules, attach a runtime, track players:
//
//	sys := tabs.New()
//	sys.MustRegister("aggressive", tabs.NewHookSet().
//	    OnSpawn(func(e tabs.Entity) {
//	        // post-spawn attributes are settled here
//	    }).
//	    OnDealDamage(func(e tabs.Entity, params any) {
//	        ev := params.(*tabs.DamageEvent)
//	        *ev.Damage *= 1.5
//	    }))
//
//	rt := tabs.NewServerRuntime()
//	sys.Attach(rt)
//
//	for p := range srv.Accept() {
//	    bp := rt.Track(p, "aggressive")
//	    p.Handle(tabs.NewPlayerHandler(bp))
//	}
//
// Without a server, the Arena runtime drives the same event set from a
// deterministic in-memory loop:
//
//	rt := tabs.NewArena()
//	sys.Attach(rt)
//	bot := rt.Spawn(tabs.BotConfig{Name: "Scout", Tags: []tabs.Tag{"aggressive"}})
//	rt.EndFrame() // deferred table build + OnSpawn run here
//
// # Hook Reference
//
//	OnSpawn            subject, after deferred table build  (no params)
//	OnTakeDamage       victim, before damage applies        (*DamageEvent)
//	OnDealDamage       attacker, before damage applies      (*DamageEvent)
//	OnTakeDamagePost   victim, after damage applied         (*DamagePostEvent)
//	OnDealDamagePost   attacker, after damage applied       (*DamagePostEvent)
//	OnDeath            victim of a death, then table clears (*DeathEvent)
//	OnKill             attacker of a death                  (*DeathEvent)
//
// Role resolution only ever dispatches to entities inside the managed
// bot category; everything else is skipped silently.
package tabs

// Version is the TABS version.
const Version = "1.0.0"
