package tabs

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// testSystem returns a system attached to a fresh arena, with logging
// silenced.
func testSystem() (*System, *Arena) {
	sys := New(WithLogger(slog.New(slog.DiscardHandler)))
	rt := NewArena()
	sys.Attach(rt)
	return sys, rt
}

// TestSpawnDefersTableBuild tests that spawning installs an empty
// table immediately and runs the registry fold plus OnSpawn only when
// the frame ends.
func TestSpawnDefersTableBuild(t *testing.T) {
	sys, rt := testSystem()

	var spawned []Entity
	sys.MustRegister("aggressive", NewHookSet().
		Add(OnSpawn, func(e Entity, params any) {
			spawned = append(spawned, e)
			if params != nil {
				t.Errorf("Expected nil params for OnSpawn, got %v", params)
			}
		}))

	bot := rt.Spawn(BotConfig{Name: "Scout", Tags: []Tag{"aggressive"}})

	// Inside the spawn frame: the table exists but holds nothing, and
	// no spawn hook has run yet.
	tbl, ok := sys.Table(bot.ID())
	if !ok {
		t.Fatal("expected a table immediately after spawn")
	}
	if !tbl.Empty() {
		t.Error("Expected the freshly installed table to be empty")
	}
	if len(spawned) != 0 {
		t.Fatalf("expected no spawn hooks before frame end, got %d", len(spawned))
	}

	rt.EndFrame()

	if len(spawned) != 1 {
		t.Fatalf("expected 1 spawn hook invocation, got %d", len(spawned))
	}
	if spawned[0].ID() != bot.ID() {
		t.Errorf("Expected spawn hook for entity %d, got %d", bot.ID(), spawned[0].ID())
	}
	if got := tbl.Count(OnSpawn); got != 1 {
		t.Errorf("Expected 1 OnSpawn entry after build, got %d", got)
	}
}

// TestSpawnWindowIsSilent tests that events landing between spawn and
// frame end find empty lists and fire nothing.
func TestSpawnWindowIsSilent(t *testing.T) {
	sys, rt := testSystem()

	taken := 0
	sys.MustRegister("tough", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { taken++ }))

	victim := rt.Spawn(BotConfig{Name: "Heavy", Tags: []Tag{"tough"}})

	// Damage in the same frame as the spawn: silently skipped.
	rt.Damage(nil, victim, 10, "fall")
	if taken != 0 {
		t.Fatalf("expected no hooks inside the spawn window, got %d", taken)
	}

	rt.EndFrame()
	rt.Damage(nil, victim, 10, "fall")
	if taken != 1 {
		t.Errorf("Expected 1 hook invocation after the window closed, got %d", taken)
	}
}

// TestBuildFoldsRegistrationOrder tests that hooks accumulate across
// tags in registration order, not tag-carry order.
func TestBuildFoldsRegistrationOrder(t *testing.T) {
	sys, rt := testSystem()

	var fired []string
	sys.MustRegister("first", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { fired = append(fired, "first") }))
	sys.MustRegister("second", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { fired = append(fired, "second") }))

	// The bot lists its tags in the opposite order; registration order
	// wins.
	bot := rt.Spawn(BotConfig{Name: "Medic", Tags: []Tag{"second", "first"}})
	rt.EndFrame()
	rt.Damage(nil, bot, 5, "saw")

	want := []string{"first", "second"}
	if len(fired) != len(want) {
		t.Fatalf("expected %d invocations, got %d", len(want), len(fired))
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("Expected %q at position %d, got %q", want[i], i, fired[i])
		}
	}
}

// TestRegistrationDoesNotRetrofit tests that a registration after a
// build leaves existing tables alone until the next rebuild.
func TestRegistrationDoesNotRetrofit(t *testing.T) {
	sys, rt := testSystem()

	var fired []string
	sys.MustRegister("early", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { fired = append(fired, "early") }))

	bot := rt.Spawn(BotConfig{Name: "Sniper", Tags: []Tag{"early", "late"}})
	rt.EndFrame()

	// Registered after the bot's table was built; the carried tag is
	// not retrofitted.
	sys.MustRegister("late", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { fired = append(fired, "late") }))

	rt.Damage(nil, bot, 5, "knife")
	if len(fired) != 1 || fired[0] != "early" {
		t.Fatalf("expected only the early hook, got %v", fired)
	}

	// A respawn rebuild picks the late registration up.
	fired = nil
	rt.Respawn(bot)
	rt.EndFrame()
	rt.Damage(nil, bot, 5, "knife")
	if len(fired) != 2 {
		t.Fatalf("expected both hooks after rebuild, got %v", fired)
	}
}

// TestDeathClearsThenRespawnRebuilds tests the death-respawn cycle:
// death empties the table in place, respawn rebuilds it from the
// registry's current state.
func TestDeathClearsThenRespawnRebuilds(t *testing.T) {
	sys, rt := testSystem()

	deaths := 0
	sys.MustRegister("brawler", NewHookSet().
		OnDeath(func(e Entity, params any) { deaths++ }))

	bot := rt.Spawn(BotConfig{Name: "Soldier", Tags: []Tag{"brawler"}, Health: 50})
	rt.EndFrame()

	rt.Damage(nil, bot, 50, "train")
	if deaths != 1 {
		t.Fatalf("expected 1 death hook, got %d", deaths)
	}

	// The table survives death cleared, not deleted.
	tbl, ok := sys.Table(bot.ID())
	if !ok {
		t.Fatal("expected the table to remain keyed after death")
	}
	if !tbl.Empty() {
		t.Error("Expected the table to be cleared after death")
	}

	// Swap the tag's hooks while the bot is dead; the respawn rebuild
	// uses the replacement.
	takes := 0
	sys.MustRegister("brawler", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { takes++ }))

	rt.Respawn(bot)
	rt.EndFrame()

	if got := tbl.Count(OnDeath); got != 0 {
		t.Errorf("Expected 0 OnDeath hooks after replacement rebuild, got %d", got)
	}
	rt.Damage(nil, bot, 5, "fall")
	if takes != 1 {
		t.Errorf("Expected 1 take hook after respawn, got %d", takes)
	}
}

// TestDespawnDropsTable tests that a despawned entity's table entry is
// removed outright.
func TestDespawnDropsTable(t *testing.T) {
	sys, rt := testSystem()

	bot := rt.Spawn(BotConfig{Name: "Spy"})
	rt.EndFrame()
	if _, ok := sys.Table(bot.ID()); !ok {
		t.Fatal("expected a table while present")
	}

	rt.Despawn(bot)
	if _, ok := sys.Table(bot.ID()); ok {
		t.Error("Expected no table after despawn")
	}
}

// TestTeardownDiscardsEverything tests that teardown empties the side
// table, empties the registry and detaches, in that order, so nothing
// fires afterwards.
func TestTeardownDiscardsEverything(t *testing.T) {
	sys, rt := testSystem()

	fired := 0
	sys.MustRegister("aggressive", NewHookSet().
		OnDealDamage(func(e Entity, params any) { fired++ }))

	attacker := rt.Spawn(BotConfig{Name: "Scout", Tags: []Tag{"aggressive"}})
	victim := rt.Spawn(BotConfig{Name: "Heavy"})
	rt.EndFrame()

	rt.Damage(attacker, victim, 5, "bat")
	if fired != 1 {
		t.Fatalf("expected the hook to fire before teardown, got %d", fired)
	}

	sys.Teardown()

	if _, ok := sys.Table(attacker.ID()); ok {
		t.Error("Expected no table for the attacker after teardown")
	}
	if _, ok := sys.Table(victim.ID()); ok {
		t.Error("Expected no table for the victim after teardown")
	}
	if got := len(sys.Tags()); got != 0 {
		t.Errorf("Expected an empty registry after teardown, got %d tags", got)
	}
	if sys.Attached() {
		t.Error("Expected the runtime to be detached after teardown")
	}

	// Detached means delivered events go nowhere.
	rt.Damage(attacker, victim, 5, "bat")
	if fired != 1 {
		t.Errorf("Expected no hooks after teardown, got %d invocations", fired)
	}
}

// TestTeardownIdempotent tests that tearing down twice is harmless.
func TestTeardownIdempotent(t *testing.T) {
	sys, rt := testSystem()
	rt.Spawn(BotConfig{Name: "Pyro"})
	rt.EndFrame()

	sys.Teardown()
	sys.Teardown()

	if sys.Attached() {
		t.Error("Expected the system to stay detached")
	}
}

// TestTeardownBeyondScanLimit tests that entities past the enumeration
// limit still lose their tables through the wholesale drop.
func TestTeardownBeyondScanLimit(t *testing.T) {
	sys := New(WithLogger(slog.New(slog.DiscardHandler)), WithScanLimit(2))
	rt := NewArena()
	sys.Attach(rt)

	bots := []*Bot{
		rt.Spawn(BotConfig{Name: "One"}),
		rt.Spawn(BotConfig{Name: "Two"}),
		rt.Spawn(BotConfig{Name: "Three"}),
	}
	rt.EndFrame()

	sys.Teardown()

	for _, b := range bots {
		if _, ok := sys.Table(b.ID()); ok {
			t.Errorf("Expected no table for %s after teardown", b.Name())
		}
	}
}

// TestSystemReuseAfterTeardown tests that a torn-down system accepts a
// fresh round: new registrations, a re-attach and working dispatch.
func TestSystemReuseAfterTeardown(t *testing.T) {
	sys, rt := testSystem()
	sys.MustRegister("old", NewHookSet())
	rt.Spawn(BotConfig{Name: "Relic"})
	rt.EndFrame()
	sys.Teardown()

	fired := 0
	sys.MustRegister("fresh", NewHookSet().
		OnTakeDamage(func(e Entity, params any) { fired++ }))
	sys.Attach(rt)

	bot := rt.Spawn(BotConfig{Name: "Rookie", Tags: []Tag{"fresh"}})
	rt.EndFrame()
	rt.Damage(nil, bot, 5, "fall")

	if fired != 1 {
		t.Errorf("Expected the fresh round's hook to fire, got %d", fired)
	}
	if got := len(sys.Tags()); got != 1 {
		t.Errorf("Expected only the fresh registration, got %d tags", got)
	}
}

// TestAttachSwitchesRuntime tests that attaching a second runtime
// detaches the first.
func TestAttachSwitchesRuntime(t *testing.T) {
	sys := New(WithLogger(slog.New(slog.DiscardHandler)))
	rtA := NewArena()
	rtB := NewArena()

	sys.Attach(rtA)
	sys.Attach(rtB)

	// Spawns on the replaced runtime never reach the system.
	botA := rtA.Spawn(BotConfig{Name: "Ghost"})
	if _, ok := sys.Table(botA.ID()); ok {
		t.Error("Expected no table from the detached runtime")
	}

	botB := rtB.Spawn(BotConfig{Name: "Live"})
	if _, ok := sys.Table(botB.ID()); !ok {
		t.Error("Expected a table from the attached runtime")
	}
}

// TestAttachNilRuntimePanics tests that attaching nothing is a
// programmer error.
func TestAttachNilRuntimePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for a nil runtime")
		}
		if msg, ok := r.(string); !ok || !strings.HasPrefix(msg, "tabs: ") {
			t.Errorf("Expected a tabs-prefixed panic message, got %v", r)
		}
	}()
	New(WithLogger(slog.New(slog.DiscardHandler))).Attach(nil)
}

// TestMustRegisterPanics tests that MustRegister panics on an invalid
// set with a tabs-prefixed message.
func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic for an invalid hook set")
		}
		if msg, ok := r.(string); !ok || !strings.HasPrefix(msg, "tabs: ") {
			t.Errorf("Expected a tabs-prefixed panic message, got %v", r)
		}
	}()

	sys := New(WithLogger(slog.New(slog.DiscardHandler)))
	sys.MustRegister("bad", NewHookSet().Add(HookKind(77), func(e Entity, params any) {}))
}

// TestRegisterByName tests the data-driven registration path end to
// end on the system.
func TestRegisterByName(t *testing.T) {
	sys, rt := testSystem()

	kills := 0
	err := sys.RegisterByName("hunter", map[string][]Hook{
		"OnKill": {func(e Entity, params any) { kills++ }},
	})
	if err != nil {
		t.Fatalf("register by name: %v", err)
	}

	// An unknown kind name commits nothing.
	err = sys.RegisterByName("broken", map[string][]Hook{
		"OnVictory": {func(e Entity, params any) {}},
	})
	if !errors.Is(err, ErrUnknownHook) {
		t.Fatalf("expected ErrUnknownHook, got %v", err)
	}
	if got := len(sys.Tags()); got != 1 {
		t.Fatalf("expected 1 registered tag, got %d", got)
	}

	hunter := rt.Spawn(BotConfig{Name: "Hunter", Tags: []Tag{"hunter"}})
	prey := rt.Spawn(BotConfig{Name: "Prey", Health: 10})
	rt.EndFrame()
	rt.Damage(hunter, prey, 10, "bow")

	if kills != 1 {
		t.Errorf("Expected 1 kill hook invocation, got %d", kills)
	}
}

// TestDefaultOptions tests option normalization at construction.
func TestDefaultOptions(t *testing.T) {
	sys := New(WithLogger(nil), WithScanLimit(-5))
	if sys.opts.Log == nil {
		t.Error("Expected a fallback logger for a nil option")
	}
	if sys.opts.ScanLimit != defaultOptions().ScanLimit {
		t.Errorf("Expected the default scan limit, got %d", sys.opts.ScanLimit)
	}
}
