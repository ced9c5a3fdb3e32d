package tabs

import (
	"fmt"
	"log/slog"
)

// System owns all hooked-tag state for one round: the registry of tag
// registrations and the side table of per-entity hook tables. It is
// an explicit object rather than package state so multiple isolated
// instances can coexist and so a round teardown is a real discard,
// not a best-effort reset.
//
// Usage:
//
//	sys := tabs.New()
//	sys.MustRegister("aggressive", tabs.NewHookSet().
//	    OnDealDamage(func(e tabs.Entity, params any) { ... }))
//
//	rt := tabs.NewArena()
//	sys.Attach(rt)
//
// Concurrency:
// A System is single-goroutine. Every event the runtime delivers and
// every method call must happen on the same goroutine; dispatch runs
// callbacks synchronously and to completion before returning to the
// runtime. There is no locking anywhere in the core.
type System struct {
	// registry holds this round's tag registrations
	registry *Registry

	// tables maps entity IDs to their hook tables
	tables map[EntityID]*HookTable

	// rt delivers events while attached, nil otherwise
	rt Runtime

	// opts is the configuration applied at construction
	opts Options
}

// Options configures a System.
type Options struct {
	// Log receives debug and warning output.
	// Default: slog.Default().
	Log *slog.Logger

	// ScanLimit bounds the entity enumeration performed at teardown.
	// Default: 128.
	ScanLimit int
}

// defaultOptions returns sensible defaults.
func defaultOptions() Options {
	return Options{
		Log:       slog.Default(),
		ScanLimit: 128,
	}
}

// Option configures a System.
type Option func(*Options)

// WithLogger sets the logger the system writes to.
func WithLogger(log *slog.Logger) Option {
	return func(o *Options) {
		o.Log = log
	}
}

// WithScanLimit sets the maximum number of entities enumerated during
// teardown.
func WithScanLimit(n int) Option {
	return func(o *Options) {
		o.ScanLimit = n
	}
}

// New creates a System with an empty registry and no tables.
func New(opts ...Option) *System {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Log == nil {
		options.Log = slog.Default()
	}
	if options.ScanLimit <= 0 {
		options.ScanLimit = defaultOptions().ScanLimit
	}
	return &System{
		registry: newRegistry(),
		tables:   make(map[EntityID]*HookTable),
		opts:     options,
	}
}

// Register stores a module's hook set under tag. Registration is
// all-or-nothing: a set carrying an unrecognized kind returns an
// error wrapping ErrUnknownHook and leaves the registry untouched.
// Registering an existing tag replaces its set wholesale.
//
// Entities already spawned keep the tables they were built with;
// registrations affect tables built afterwards.
func (s *System) Register(tag Tag, set *HookSet) error {
	if err := s.registry.Register(tag, set); err != nil {
		return err
	}
	s.opts.Log.Debug("tabs: tag registered", "tag", string(tag))
	return nil
}

// MustRegister is Register for load-time module setup, where an
// invalid hook set is a programmer error. Panics on failure.
func (s *System) MustRegister(tag Tag, set *HookSet) {
	if err := s.Register(tag, set); err != nil {
		panic("tabs: " + err.Error())
	}
}

// RegisterByName registers hooks keyed by kind name instead of
// HookKind, for registrations driven by configuration or other data.
// Every key must name one of the seven kinds; an unknown name fails
// the whole registration with nothing committed.
func (s *System) RegisterByName(tag Tag, hooks map[string][]Hook) error {
	set, err := HookSetByName(hooks)
	if err != nil {
		return fmt.Errorf("register tag %q: %w", tag, err)
	}
	return s.Register(tag, set)
}

// Tags returns the registered tags in registration order.
func (s *System) Tags() []Tag {
	return s.registry.Tags()
}

// Attach binds the system to rt and starts consuming its events.
// Attaching while already attached detaches from the previous
// runtime first.
func (s *System) Attach(rt Runtime) {
	if rt == nil {
		panic("tabs: attach with nil runtime")
	}
	if s.rt != nil {
		s.Detach()
	}
	s.rt = rt
	rt.Attach(s)
	s.opts.Log.Debug("tabs: runtime attached")
}

// Detach stops event delivery. Idempotent.
func (s *System) Detach() {
	if s.rt == nil {
		return
	}
	s.rt.Detach()
	s.rt = nil
	s.opts.Log.Debug("tabs: runtime detached")
}

// Attached reports whether a runtime is currently delivering events.
func (s *System) Attached() bool {
	return s.rt != nil
}

// Table returns the hook table held for the entity ID. This is
// primarily for debugging and testing.
func (s *System) Table(id EntityID) (*HookTable, bool) {
	t, ok := s.tables[id]
	return t, ok
}

// BuildHookTable folds the registry into e's hook table and then
// fires the accumulated OnSpawn hooks with the entity alone. For each
// registered tag, in registration order, the tag's hooks are appended
// per kind if e carries the tag.
//
// The spawn adapter invokes this through the runtime's deferral
// primitive, never synchronously, so the entity's post-spawn
// attributes are settled by the time hooks run. The fold starts from
// cleared lists, which keeps a duplicate spawn delivery from
// double-registering.
func (s *System) BuildHookTable(e Entity) {
	t, ok := s.tables[e.ID()]
	if !ok {
		t = newHookTable()
		s.tables[e.ID()] = t
	}
	t.clear()

	matched := 0
	for _, tag := range s.registry.order {
		if !e.HasTag(tag) {
			continue
		}
		matched++
		set := s.registry.sets[tag]
		for kind := HookKind(0); kind < hookKindCount; kind++ {
			t.appendHooks(kind, set.hooks[kind])
		}
	}
	s.opts.Log.Debug("tabs: hook table built",
		"entity", e.Name(),
		"id", uint64(e.ID()),
		"tags", matched)

	for _, fn := range t.hooks[OnSpawn] {
		fn(e, nil)
	}
}

// Teardown ends the round: every enumerated entity's hook table is
// discarded, remaining tables are dropped with them, the registry is
// emptied, and the runtime is detached last, since detaching is what
// stops further events from reaching a half-torn-down system.
// Unconditional and idempotent.
func (s *System) Teardown() {
	if s.rt != nil {
		ents := s.rt.Entities(s.opts.ScanLimit)
		if len(ents) == s.opts.ScanLimit {
			s.opts.Log.Warn("tabs: teardown entity scan hit limit", "limit", s.opts.ScanLimit)
		}
		for _, e := range ents {
			if _, ok := s.tables[e.ID()]; ok {
				delete(s.tables, e.ID())
				s.opts.Log.Debug("tabs: hook table discarded", "entity", e.Name())
			}
		}
	}
	// Entities the runtime no longer reports release their tables too.
	clear(s.tables)
	s.registry.reset()
	s.Detach()
	s.opts.Log.Debug("tabs: teardown complete")
}
