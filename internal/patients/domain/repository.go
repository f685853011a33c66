package domain

// Repository is the set of registry operations the application layer uses.
// Registry implements it; tests substitute mocks.
type Repository interface {
	// Register stores a new record and returns its freshly allocated identifier.
	// Returns InvalidArgumentError if name is empty or whitespace.
	Register(name string) (string, error)

	// Get returns the record stored under id.
	// Returns InvalidArgumentError for an empty id and NotFoundError for an unknown one.
	Get(id string) (Record, error)

	// UpdateName replaces the name of the record stored under id and returns
	// the updated record. The identifier never changes.
	UpdateName(id, newName string) (Record, error)

	// Delete removes the record stored under id. A nil error means the record
	// existed and is gone.
	Delete(id string) error

	// List returns every record in insertion order.
	List() []Record

	// NextID returns the identifier the next successful Register will allocate.
	NextID() string
}

// Compile-time check that Registry implements Repository.
var _ Repository = (*Registry)(nil)
