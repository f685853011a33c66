package domain

import (
	"slices"
	"strings"
)

// Registry owns the id-to-record table and the identifier counter.
// It is not safe for concurrent use.
type Registry struct {
	records map[string]Record
	order   []string
	next    int
}

// NewRegistry creates an empty registry whose first identifier is P-101.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]Record),
		order:   make([]string, 0),
		next:    FirstSequence,
	}
}

// Register allocates the next identifier and stores name under it.
// The name is stored as given; it only has to contain a non-space character.
func (r *Registry) Register(name string) (string, error) {
	if isBlank(name) {
		return "", &InvalidArgumentError{Field: FieldName}
	}

	id := FormatID(r.next)
	r.next++

	r.records[id] = Record{id: id, name: name}
	r.order = append(r.order, id)
	return id, nil
}

// Get returns the record stored under id.
func (r *Registry) Get(id string) (Record, error) {
	if err := r.checkID(id); err != nil {
		return Record{}, err
	}
	return r.records[id], nil
}

// UpdateName replaces the name of the record stored under id.
func (r *Registry) UpdateName(id, newName string) (Record, error) {
	if err := r.checkID(id); err != nil {
		return Record{}, err
	}
	if isBlank(newName) {
		return Record{}, &InvalidArgumentError{Field: FieldName}
	}

	rec := r.records[id].withName(newName)
	r.records[id] = rec
	return rec, nil
}

// Delete removes the record stored under id.
func (r *Registry) Delete(id string) error {
	if err := r.checkID(id); err != nil {
		return err
	}

	delete(r.records, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

// List returns every record in insertion order. The slice is never nil.
func (r *Registry) List() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// Len returns the number of stored records.
func (r *Registry) Len() int {
	return len(r.order)
}

// NextID returns the identifier the next successful Register will allocate.
func (r *Registry) NextID() string {
	return FormatID(r.next)
}

func (r *Registry) checkID(id string) error {
	if isBlank(id) {
		return &InvalidArgumentError{Field: FieldID}
	}
	if _, ok := r.records[id]; !ok {
		return &NotFoundError{ID: id}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
