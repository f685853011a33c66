package domain

// Record is a patient's stored data.
// Fields are unexported so the identifier cannot change after allocation.
type Record struct {
	id   string
	name string
}

// NewRecord builds a detached Record value. Records stored in a Registry are
// only ever created by Register.
func NewRecord(id, name string) Record {
	return Record{id: id, name: name}
}

// ID returns the patient identifier.
func (r Record) ID() string {
	return r.id
}

// Name returns the patient name.
func (r Record) Name() string {
	return r.name
}

// IsZero reports whether r is the zero Record.
func (r Record) IsZero() bool {
	return r.id == "" && r.name == ""
}

// withName returns a copy of r carrying name.
func (r Record) withName(name string) Record {
	r.name = name
	return r
}
