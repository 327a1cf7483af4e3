package roster

// Store holds the roster for the process lifetime. It is never mutated after
// construction, so concurrent readers need no coordination.
type Store struct {
	records []EmployeeRecord
}

// NewStore copies the records into a new read-only store.
func NewStore(records []EmployeeRecord) *Store {
	cp := make([]EmployeeRecord, len(records))
	for i, r := range records {
		r.Skills = append([]string(nil), r.Skills...)
		r.Projects = append([]string(nil), r.Projects...)
		cp[i] = r
	}
	return &Store{records: cp}
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// All returns the roster in load order. Callers must not modify the returned slice.
func (s *Store) All() []EmployeeRecord {
	if s == nil {
		return nil
	}
	return s.records
}

// Projections renders every record in roster order.
func (s *Store) Projections() []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.All() {
		out = append(out, Projection(r))
	}
	return out
}
