package roster

import "testing"

func TestProjection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record EmployeeRecord
		expect string
	}{
		{
			name: "all fields",
			record: EmployeeRecord{
				ID:              1,
				Name:            "Alice Johnson",
				Skills:          []string{"Python", "React", "AWS"},
				ExperienceYears: 5,
				Projects:        []string{"E-commerce Platform", "Healthcare Dashboard"},
				Availability:    "available",
				Department:      "Engineering",
				Location:        "Berlin",
			},
			expect: "Name: Alice Johnson\n" +
				"Skills: Python, React, AWS\n" +
				"Experience: 5 years\n" +
				"Projects: E-commerce Platform, Healthcare Dashboard\n" +
				"Department: Engineering\n" +
				"Location: Berlin\n" +
				"Availability: available",
		},
		{
			name: "optional fields missing",
			record: EmployeeRecord{
				ID:           2,
				Name:         "Bob",
				Skills:       []string{"Go"},
				Availability: "busy",
			},
			expect: "Name: Bob\n" +
				"Skills: Go\n" +
				"Experience: 0 years\n" +
				"Projects: \n" +
				"Department: Unknown\n" +
				"Location: Unknown\n" +
				"Availability: busy",
		},
		{
			name: "blank optional fields and list items",
			record: EmployeeRecord{
				Name:         "Carol",
				Skills:       []string{" Java ", "", "Kotlin"},
				Projects:     []string{"Payments"},
				Availability: "on leave",
				Department:   "   ",
			},
			expect: "Name: Carol\n" +
				"Skills: Java, Kotlin\n" +
				"Experience: 0 years\n" +
				"Projects: Payments\n" +
				"Department: Unknown\n" +
				"Location: Unknown\n" +
				"Availability: on leave",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Projection(tt.record); got != tt.expect {
				t.Fatalf("unexpected projection:\n%s\nwant:\n%s", got, tt.expect)
			}
		})
	}
}

func TestProjectionIsDeterministic(t *testing.T) {
	record := EmployeeRecord{
		ID:              7,
		Name:            "Dana",
		Skills:          []string{"Rust", "WebAssembly"},
		ExperienceYears: 3,
		Projects:        []string{"Edge Runtime"},
		Availability:    "Available",
		Location:        "Remote",
	}

	first := Projection(record)
	for i := 0; i < 10; i++ {
		if got := Projection(record); got != first {
			t.Fatalf("projection changed between calls: %q vs %q", first, got)
		}
	}
}

func TestEmployeeRecordHelpers(t *testing.T) {
	record := EmployeeRecord{
		Skills:       []string{"React", " Node.js "},
		Availability: " AVAILABLE ",
	}

	if !record.IsAvailable() {
		t.Fatalf("expected availability to be matched case-insensitively")
	}
	if !record.HasSkill("node.js") {
		t.Fatalf("expected skill match ignoring case and spaces")
	}
	if record.HasSkill("") {
		t.Fatalf("empty skill must never match")
	}
	if record.DepartmentOrUnknown() != Unknown || record.LocationOrUnknown() != Unknown {
		t.Fatalf("expected Unknown placeholders")
	}
}

func TestStoreIsolatedFromInput(t *testing.T) {
	input := []EmployeeRecord{{ID: 1, Name: "Eve", Skills: []string{"SQL"}, Availability: "busy"}}
	store := NewStore(input)

	input[0].Name = "Mallory"
	input[0].Skills[0] = "COBOL"

	got := store.All()[0]
	if got.Name != "Eve" || got.Skills[0] != "SQL" {
		t.Fatalf("store must not share memory with the caller: %+v", got)
	}
	if store.Len() != 1 || len(store.Projections()) != 1 {
		t.Fatalf("unexpected store size")
	}

	var empty *Store
	if empty.Len() != 0 || empty.All() != nil {
		t.Fatalf("nil store must behave as empty")
	}
}
