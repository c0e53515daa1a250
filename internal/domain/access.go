package domain

// AccessEntry holds the four operation flags for one access category.
type AccessEntry struct {
	Type   AccessType
	Select bool
	Insert bool
	Update bool
	Delete bool
}

// Allows reports whether the entry grants the given operation.
func (e AccessEntry) Allows(op OperationType) bool {
	switch op {
	case OpSelect:
		return e.Select
	case OpInsert:
		return e.Insert
	case OpUpdate:
		return e.Update
	case OpDelete:
		return e.Delete
	}
	return false
}

// GroupTaskAccess is the explicit access rule of one group on one task.
// Recursive rules also apply to all descendants that carry no rule of their own.
type GroupTaskAccess struct {
	ID          int64
	TaskID      int64
	GroupID     int64
	Recursive   bool
	Description string
	Entries     map[AccessType]AccessEntry
}

// Entry returns the entry for the given access type, if any.
func (g *GroupTaskAccess) Entry(t AccessType) (AccessEntry, bool) {
	if g == nil {
		return AccessEntry{}, false
	}
	e, ok := g.Entries[t]
	return e, ok
}

// SetEntry adds or replaces the entry for e.Type.
func (g *GroupTaskAccess) SetEntry(e AccessEntry) {
	if g.Entries == nil {
		g.Entries = make(map[AccessType]AccessEntry)
	}
	g.Entries[e.Type] = e
}

// Clone returns a copy with its own entry map.
func (g *GroupTaskAccess) Clone() *GroupTaskAccess {
	if g == nil {
		return nil
	}
	c := *g
	c.Entries = make(map[AccessType]AccessEntry, len(g.Entries))
	for k, v := range g.Entries {
		c.Entries[k] = v
	}
	return &c
}
