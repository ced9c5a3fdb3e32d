package tabs

import (
	"fmt"
)

// Registry is the tag to hook set mapping for one round. It lives on
// a System: created empty, populated by module registrations at load
// time, discarded wholesale at teardown. There is no way to remove a
// single entry.
//
// Iteration order is registration order. Re-registering a tag
// replaces its set in place and keeps the tag's original slot, so
// hook tables built afterwards see the same tag ordering.
type Registry struct {
	order []Tag
	sets  map[Tag]*HookSet
}

// newRegistry creates an empty registry.
func newRegistry() *Registry {
	return &Registry{sets: make(map[Tag]*HookSet)}
}

// Register stores set under tag. A set holding an unrecognized hook
// kind fails the whole registration; the registry is left untouched.
// A prior entry for tag is replaced wholesale. A nil set registers as
// empty.
func (r *Registry) Register(tag Tag, set *HookSet) error {
	if set == nil {
		set = NewHookSet()
	}
	if err := set.validate(); err != nil {
		return fmt.Errorf("register tag %q: %w", tag, err)
	}
	if _, ok := r.sets[tag]; !ok {
		r.order = append(r.order, tag)
	}
	r.sets[tag] = set
	return nil
}

// lookup returns the set registered under tag.
func (r *Registry) lookup(tag Tag) (*HookSet, bool) {
	set, ok := r.sets[tag]
	return set, ok
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	return len(r.order)
}

// Tags returns the registered tags in registration order.
func (r *Registry) Tags() []Tag {
	out := make([]Tag, len(r.order))
	copy(out, r.order)
	return out
}

// reset discards every entry, returning the registry to its created
// state.
func (r *Registry) reset() {
	r.order = nil
	r.sets = make(map[Tag]*HookSet)
}
