package metadata

// Record is an entity instance as seen by the condition compiler.
type Record interface {
	EntityName() string
	RecordID() any
}

// Instance is a generic Record backed by a value map.
type Instance struct {
	Entity string
	ID     any
	Values map[string]any
}

// EntityName implements Record.
func (i *Instance) EntityName() string { return i.Entity }

// RecordID implements Record.
func (i *Instance) RecordID() any { return i.ID }

// Get returns the named value or nil.
func (i *Instance) Get(name string) any {
	if i.Values == nil {
		return nil
	}
	return i.Values[name]
}

// IsRecord reports whether v is an entity instance.
func IsRecord(v any) bool {
	_, ok := v.(Record)
	return ok
}

// RecordID returns the identifier of v if it is an entity instance, or
// nil otherwise.
func RecordID(v any) any {
	if r, ok := v.(Record); ok {
		return r.RecordID()
	}
	return nil
}
