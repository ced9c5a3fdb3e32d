package tabs

// kindMask tracks which hook kinds hold at least one callback, one
// bit per kind.
type kindMask uint8

// set sets the bit for the given kind.
func (m *kindMask) set(k HookKind) {
	*m |= 1 << k
}

// has returns true if the bit for the given kind is set.
func (m kindMask) has(k HookKind) bool {
	return m&(1<<k) != 0
}

// zero returns true if no bits are set.
func (m kindMask) zero() bool {
	return m == 0
}

// HookTable is an entity's resolved callback lists, one per kind,
// accumulated from every registered tag the entity carries. Tables
// are owned by the System's side table, never by the entity itself.
//
// All seven entries exist from the moment the table does; appends
// never hit a missing key.
type HookTable struct {
	// hooks is indexed by HookKind, accumulation order within a kind.
	hooks [hookKindCount][]Hook

	// mask mirrors which kinds are non-empty.
	mask kindMask
}

// newHookTable creates a table with all seven entries empty.
func newHookTable() *HookTable {
	return &HookTable{}
}

// appendHooks appends hooks under kind, preserving accumulation
// order across tags.
func (t *HookTable) appendHooks(kind HookKind, hooks []Hook) {
	if len(hooks) == 0 {
		return
	}
	t.hooks[kind] = append(t.hooks[kind], hooks...)
	t.mask.set(kind)
}

// Count returns the number of callbacks held for kind. Unknown kinds
// count zero. This is primarily for debugging and testing.
func (t *HookTable) Count(kind HookKind) int {
	if t == nil || !kind.valid() {
		return 0
	}
	return len(t.hooks[kind])
}

// Empty reports whether no kind holds any callback.
func (t *HookTable) Empty() bool {
	return t.mask.zero()
}

// clear empties every kind's list. The table stays allocated and
// keyed so a respawn can rebuild into it.
func (t *HookTable) clear() {
	for i := range t.hooks {
		t.hooks[i] = nil
	}
	t.mask = 0
}
